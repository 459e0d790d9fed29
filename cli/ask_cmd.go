package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nox-hq/gptcore/core"
)

// runAsk sends a single prompt, prints the reply and exits. The prompt is
// taken from the arguments, or from stdin when no arguments are given.
func runAsk(args []string, opts globalOptions) int {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" && !isTerminal(os.Stdin) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: reading stdin: %v\n", err)
			return 2
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "Usage: gptcore ask <prompt>")
		return 2
	}

	cfg, conv, code := startSession(opts)
	if conv == nil {
		return code
	}

	r := newRenderer(os.Stdout, cfg.Render, isTerminal(os.Stdout))
	return endSession(conv.Run(context.Background(), onceInput(prompt), r.Output))
}

// onceInput yields prompt on the first call and "" afterwards.
func onceInput(prompt string) core.Input {
	sent := false
	return func() (string, error) {
		if sent {
			return "", nil
		}
		sent = true
		return prompt, nil
	}
}
