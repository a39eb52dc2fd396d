package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeout bounds a single backend invocation when the BackendConfig
// does not set one.
const DefaultTimeout = 30 * time.Second

// Request is one completion request: a new message plus the prior turns.
type Request struct {
	Message string
	History []Turn
	// SystemPrompt replaces the framing sentence when non-empty.
	SystemPrompt string
}

// Usage reports token consumption of a successful completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Pipeline composes backend resolution, prompt formatting and a single
// backend invocation. It holds no mutable state and is safe for concurrent
// use.
type Pipeline struct {
	config   BackendConfig
	resolver *Resolver
	budget   Budget
	counter  TokenCounter
	redactor *Redactor
	timeout  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithResolver replaces the default Resolver.
func WithResolver(r *Resolver) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.resolver = r
		}
	}
}

// WithBudget bounds the history rendered into each prompt.
func WithBudget(b Budget) Option {
	return func(p *Pipeline) { p.budget = b }
}

// WithTokenCounter enables the token dimension of the Budget.
func WithTokenCounter(c TokenCounter) Option {
	return func(p *Pipeline) { p.counter = c }
}

// NewPipeline creates a Pipeline over cfg. cfg is copied and never re-read
// from the environment.
func NewPipeline(cfg BackendConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:   cfg,
		redactor: NewRedactor(cfg.secrets()...),
		timeout:  cfg.Timeout,
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	for _, o := range opts {
		o(p)
	}
	if p.resolver == nil {
		p.resolver = NewResolver()
	}
	return p
}

// Provider returns the configured provider id.
func (p *Pipeline) Provider() ProviderID { return p.config.Provider }

// Model returns the configured model id.
func (p *Pipeline) Model() string { return p.config.Model }

// Configured reports whether the pipeline's configuration resolves to a
// backend.
func (p *Pipeline) Configured() bool { return p.resolver.Configured(p.config) }

// Complete runs one completion. It always returns a Result: every failure,
// including a panicking backend, is converted to Result.Err. The backend is
// invoked at most once per call.
func (p *Pipeline) Complete(ctx context.Context, req Request) (Result, Usage) {
	backend, ok := p.resolver.Resolve(p.config)
	if !ok {
		return errResult(KindNotConfigured, detailNotConfigured, nil), Usage{}
	}

	history := p.budget.Apply(req.History, p.counter)
	if dropped := len(req.History) - len(history); dropped > 0 {
		slog.Debug("history truncated", "dropped", dropped, "kept", len(history))
	}
	prompt := FormatWithFraming(req.SystemPrompt, req.Message, history)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := invoke(ctx, backend, prompt.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("backend timed out after %s: %w", p.timeout, err)
		}
		detail, _ := p.redactor.Redact(err.Error())
		slog.Error("error running completion", "provider", string(p.config.Provider), "error", detail)
		return errResult(KindBackendFailure, detail, err), Usage{}
	}

	return okResult(strings.TrimSpace(resp.Text)), Usage{
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
	}
}

// invoke calls the backend, converting a panic or a nil response into an
// error.
func invoke(ctx context.Context, b Backend, prompt string) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("backend panic: %v", r)
		}
	}()

	resp, err = b.Invoke(ctx, prompt)
	if err == nil && resp == nil {
		err = errors.New("backend returned no response")
	}
	return resp, err
}
