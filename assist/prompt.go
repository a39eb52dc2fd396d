package assist

import (
	"fmt"
	"strings"
)

// DefaultFraming is the system sentence that opens every prompt unless the
// caller supplies its own.
const DefaultFraming = "You are a helpful AI assistant."

// Prompt is the rendered input for a backend.
type Prompt struct {
	// Body is the full text sent to the backend: framing, history, new turn.
	Body string
	// History is the serialized conversation embedded in Body.
	History string
}

// Format renders message and history into a Prompt using DefaultFraming.
// History is rendered in full; bounding it is the caller's job (see Budget).
func Format(message string, history []Turn) Prompt {
	return FormatWithFraming(DefaultFraming, message, history)
}

// FormatWithFraming is Format with a caller-chosen framing sentence. An empty
// framing falls back to DefaultFraming.
func FormatWithFraming(framing, message string, history []Turn) Prompt {
	if strings.TrimSpace(framing) == "" {
		framing = DefaultFraming
	}
	block := formatHistory(history)

	var b strings.Builder
	b.WriteString(framing)
	b.WriteString("\n\nCurrent conversation:\n")
	b.WriteString(block)
	fmt.Fprintf(&b, "\nHuman: %s\n\nAssistant:", message)

	return Prompt{Body: b.String(), History: block}
}

// formatHistory writes one line per turn, in input order.
func formatHistory(history []Turn) string {
	var b strings.Builder
	for _, t := range history {
		switch t.Role {
		case RoleUser:
			fmt.Fprintf(&b, "Human: %s\n", t.Content)
		default:
			fmt.Fprintf(&b, "Assistant: %s\n", t.Content)
		}
	}
	return b.String()
}
