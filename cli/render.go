package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nox-hq/gptcore/core"
)

var (
	replyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E9F0"))

	usageStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#888888"))
)

// renderer is the terminal Output Sink: it prints each reply followed by
// its usage line.
type renderer struct {
	out      io.Writer
	markdown *glamour.TermRenderer // nil prints replies as plain text
}

// newRenderer picks markdown or plain output for mode. In auto mode markdown
// is used only when out is a terminal, so piped output stays unstyled.
func newRenderer(out io.Writer, mode string, tty bool) *renderer {
	r := &renderer{out: out}

	useMarkdown := mode == core.RenderMarkdown || (mode == core.RenderAuto && tty)
	if !useMarkdown {
		return r
	}

	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		r.markdown = md
	}
	return r
}

// Output implements core.Output.
func (r *renderer) Output(reply string, usage core.UsageInfo) {
	if r.markdown == nil {
		fmt.Fprintln(r.out, reply)
		fmt.Fprintln(r.out, usage.String())
		fmt.Fprintln(r.out)
		return
	}

	rendered, err := r.markdown.Render(reply)
	if err != nil {
		rendered = replyStyle.Render(reply) + "\n"
	}
	fmt.Fprint(r.out, rendered)
	fmt.Fprintln(r.out, usageStyle.Render(usage.String()))
	fmt.Fprintln(r.out)
}

// isTerminal returns true if f is connected to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
