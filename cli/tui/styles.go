package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorTitle     = lipgloss.Color("#FFFFFF")
	colorSubtle    = lipgloss.Color("#666666")
	colorUser      = lipgloss.Color("#7D56F4")
	colorAssistant = lipgloss.Color("#A3BE8C")
	colorError     = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSubtle)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorUser)

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAssistant)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)
)

// replyStyle picks the style for an assistant reply; error sentences are
// highlighted.
func replyStyle(text string) lipgloss.Style {
	if isErrorText(text) {
		return errorStyle
	}
	return lipgloss.NewStyle()
}
