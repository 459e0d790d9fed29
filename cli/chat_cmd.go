package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/nox-hq/gptcore/core"
)

const chatPrompt = "> "

// runChat runs an interactive session on the terminal. An empty line, EOF
// or Ctrl+C at the prompt ends the session.
func runChat(args []string, opts globalOptions) int {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)

	var (
		historyFile string
		noHistory   bool
	)

	fs.StringVar(&historyFile, "history", defaultHistoryFile(), "prompt history file")
	fs.BoolVar(&noHistory, "no-history", false, "do not load or save prompt history")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if noHistory {
		historyFile = ""
	}

	cfg, conv, code := startSession(opts)
	if conv == nil {
		return code
	}

	var input core.Input
	if isTerminal(os.Stdin) {
		li := newLineInput(historyFile)
		defer li.Close()
		input = li.Next
	} else {
		input = scannerInput(os.Stdin)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := newRenderer(os.Stdout, cfg.Render, isTerminal(os.Stdout))
	return endSession(conv.Run(ctx, input, r.Output))
}

// lineInput reads prompts with line editing and persistent history.
type lineInput struct {
	line        *liner.State
	historyFile string
}

func newLineInput(historyFile string) *lineInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	li := &lineInput{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return li
}

// Next implements core.Input.
func (l *lineInput) Next() (string, error) {
	text, err := l.line.Prompt(chatPrompt)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}

	text = strings.TrimSpace(text)
	if text != "" {
		l.line.AppendHistory(text)
	}
	return text, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (l *lineInput) Close() error {
	if l.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(l.historyFile), 0o700); err == nil {
			if f, err := os.OpenFile(l.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				_, _ = l.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return l.line.Close()
}

// scannerInput reads one prompt per line from r. EOF or a blank line ends
// the session.
func scannerInput(r io.Reader) core.Input {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("reading prompt: %w", err)
			}
			return "", nil
		}
		return strings.TrimSpace(sc.Text()), nil
	}
}

// defaultHistoryFile returns the history path under the user config dir, or
// "" when there is none.
func defaultHistoryFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gptcore", "history")
}
