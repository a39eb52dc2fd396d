package assist

import "context"

// Response holds a backend's reply along with token usage metadata.
type Response struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Backend is an invocable connection to one provider's completion capability.
// Invoke performs a single network call and returns an error on any transport,
// authentication, or provider-side failure. Implementations must be safe for
// concurrent use.
type Backend interface {
	Invoke(ctx context.Context, prompt string) (*Response, error)
}
