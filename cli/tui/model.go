// Package tui provides a full-screen chat front-end for a conversation
// session using the Bubble Tea framework.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nox-hq/gptcore/assist"
	"github.com/nox-hq/gptcore/core"
)

// ReplyMsg delivers a completed turn to the UI.
type ReplyMsg struct {
	Reply string
	Usage core.UsageInfo
}

// SessionEndedMsg is sent when the conversation loop returns. A non-nil Err
// means the session failed mid-way.
type SessionEndedMsg struct {
	Err error
}

type entry struct {
	role assist.Role
	text string
}

// Model is the root Bubble Tea model for the chat UI. Prompts are handed to
// submit, which may block until the conversation loop accepts them; an empty
// prompt asks the loop to end the session.
type Model struct {
	model  string
	submit func(string)

	input    textinput.Model
	viewport viewport.Model

	entries   []entry
	usage     core.UsageInfo
	haveUsage bool
	waiting   bool
	ended     bool
	err       error

	width  int
	height int
}

// New creates a chat Model for the given model name.
func New(model string, submit func(string)) *Model {
	in := textinput.New()
	in.Placeholder = "Ask anything"
	in.Prompt = "> "
	in.CharLimit = 0
	in.Focus()

	m := &Model{
		model:    model,
		submit:   submit,
		input:    in,
		viewport: viewport.New(80, 18),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Err returns the error the session ended with, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		m.entries = append(m.entries, entry{role: assist.RoleAssistant, text: msg.Reply})
		m.usage = msg.Usage
		m.haveUsage = true
		m.waiting = false
		m.refresh()
		return m, nil

	case SessionEndedMsg:
		m.err = msg.Err
		m.ended = true
		m.waiting = false
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matchesBinding(msg, keys.Quit):
		return m, tea.Quit

	case matchesBinding(msg, keys.ScrollUp), matchesBinding(msg, keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case matchesBinding(msg, keys.Send):
		if m.waiting || m.ended {
			return m, nil
		}
		prompt := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if prompt == "" {
			m.ended = true
			return m, m.send("")
		}
		m.entries = append(m.entries, entry{role: assist.RoleUser, text: prompt})
		m.waiting = true
		m.refresh()
		return m, m.send(prompt)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send hands prompt to the conversation loop off the UI goroutine.
func (m *Model) send(prompt string) tea.Cmd {
	submit := m.submit
	return func() tea.Msg {
		if submit != nil {
			submit(prompt)
		}
		return nil
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - len(m.input.Prompt) - 1

	// Title, separator, status, input and help lines.
	vh := height - 6
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.refresh()
}

// refresh re-renders the transcript into the viewport and keeps the latest
// entry in view.
func (m *Model) refresh() {
	m.viewport.SetContent(renderEntries(m.entries, m.width))
	m.viewport.GotoBottom()
}

// matchesBinding checks if a key message matches a key binding.
func matchesBinding(msg tea.KeyMsg, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}
