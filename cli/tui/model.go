// Package tui provides an interactive terminal chat with a parley server
// using the Bubble Tea framework.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Sender delivers one message with its prior exchanges and returns the text
// to display.
type Sender interface {
	Send(ctx context.Context, message string, history []Exchange) string
}

// replyMsg carries a finished round trip back into Update.
type replyMsg struct {
	gen  int
	user string
	text string
}

// Model is the root Bubble Tea model for the chat widget.
type Model struct {
	sender    Sender
	title     string
	exchanges []Exchange
	pending   string
	waiting   bool
	gen       int

	transcript viewport.Model
	input      textinput.Model
	width      int
	height     int
}

// New creates a chat Model that talks through s.
func New(s Sender, title string) *Model {
	in := textinput.New()
	in.Placeholder = "Type your message here..."
	in.Prompt = "> "
	in.CharLimit = 4096
	in.Focus()

	m := &Model{
		sender:     s,
		title:      title,
		transcript: viewport.New(80, 20),
		input:      in,
		width:      80,
		height:     24,
	}
	m.render()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Width = msg.Width
		m.transcript.Height = max(msg.Height-5, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.render()
		return m, nil

	case replyMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.exchanges = append(m.exchanges, Exchange{User: msg.user, Assistant: msg.text})
		m.pending = ""
		m.waiting = false
		m.render()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(titleStyle.Render(m.title)))
	b.WriteString("\n")
	b.WriteString(m.transcript.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine()))
	return b.String()
}

// Exchanges returns a copy of the completed transcript.
func (m *Model) Exchanges() []Exchange {
	return append([]Exchange(nil), m.exchanges...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Clear):
		m.exchanges = nil
		m.pending = ""
		m.waiting = false
		m.gen++
		m.render()
		return m, nil

	case key.Matches(msg, keys.Send):
		return m, m.submit()

	case key.Matches(msg, keys.ScrollUp), key.Matches(msg, keys.ScrollDn):
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a round trip for the current input. Blank input and input
// typed while a reply is outstanding are ignored.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return nil
	}
	m.input.Reset()
	m.pending = text
	m.waiting = true
	m.render()

	sender := m.sender
	history := m.Exchanges()
	gen := m.gen
	return func() tea.Msg {
		reply := sender.Send(context.Background(), text, history)
		return replyMsg{gen: gen, user: text, text: reply}
	}
}

func (m *Model) render() {
	var b strings.Builder
	if len(m.exchanges) == 0 && !m.waiting {
		b.WriteString(subtleStyle.Render("Send a message to start chatting."))
		b.WriteString("\n")
	}
	for _, ex := range m.exchanges {
		writeTurn(&b, ex.User, ex.Assistant)
	}
	if m.waiting {
		writeTurn(&b, m.pending, "")
		b.WriteString(subtleStyle.Render("thinking..."))
		b.WriteString("\n")
	}
	m.transcript.SetContent(b.String())
	m.transcript.GotoBottom()
}

func writeTurn(b *strings.Builder, user, reply string) {
	fmt.Fprintf(b, "%s %s\n", userStyle.Render("You:"), user)
	if reply != "" {
		fmt.Fprintf(b, "%s %s\n\n", assistantStyle.Render("Assistant:"), replyStyle(reply).Render(reply))
	}
}

// isErrorText reports whether a reply is an error sentence rather than a
// completion.
func isErrorText(text string) bool {
	return strings.HasPrefix(text, "Error:") || strings.HasPrefix(text, "Sorry, I encountered an error")
}
