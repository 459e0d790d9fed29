package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/nox-hq/gptcore/cli/tui"
	"github.com/nox-hq/gptcore/core"
)

// runTUI runs the session in a full-screen Bubble Tea UI. The UI and the
// conversation loop run side by side; prompts flow to the loop over a
// channel and replies come back as program messages.
func runTUI(args []string, opts globalOptions) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_, conv, code := startSession(opts)
	if conv == nil {
		return code
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	prompts := make(chan string)
	submit := func(prompt string) {
		select {
		case prompts <- prompt:
		case <-gctx.Done():
		}
	}

	p := tea.NewProgram(tui.New(conv.Model(), submit), tea.WithAltScreen())

	var sessionErr error
	g.Go(func() error {
		_, err := p.Run()
		// Leaving the UI ends the session, including a turn in flight.
		cancel()
		return err
	})
	g.Go(func() error {
		input := func() (string, error) {
			select {
			case prompt := <-prompts:
				return prompt, nil
			case <-gctx.Done():
				return "", nil
			}
		}
		output := func(reply string, usage core.UsageInfo) {
			p.Send(tui.ReplyMsg{Reply: reply, Usage: usage})
		}
		sessionErr = conv.Run(gctx, input, output)
		p.Send(tui.SessionEndedMsg{Err: sessionErr})
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: TUI failed: %v\n", err)
		return 2
	}
	if errors.Is(sessionErr, context.Canceled) {
		return 0
	}
	return endSession(sessionErr)
}
