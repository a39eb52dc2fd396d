package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the full-screen chat and blocks until the user quits.
func Run(s Sender, title string) error {
	p := tea.NewProgram(New(s, title), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}

// RunLines is the line-mode chat used when the input is not a terminal. Each
// non-blank input line is one message; replies are written to out. It returns
// when in is exhausted or ctx is done.
func RunLines(ctx context.Context, s Sender, in io.Reader, out io.Writer) error {
	var history []Exchange
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reply := s.Send(ctx, line, history)
		history = append(history, Exchange{User: line, Assistant: reply})
		if _, err := fmt.Fprintln(out, reply); err != nil {
			return fmt.Errorf("writing reply: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
