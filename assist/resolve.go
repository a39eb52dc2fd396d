package assist

import "log/slog"

// Factory builds a Backend for a provider whose credentials are known to be
// present.
type Factory func(cfg BackendConfig) Backend

// variant pairs a provider's credential requirement with its constructor.
type variant struct {
	ready func(BackendConfig) bool
	build Factory
}

// Resolver selects a Backend from a BackendConfig. Selection is a single
// lookup on the provider id; an unknown id or a missing credential yields no
// backend.
type Resolver struct {
	variants map[ProviderID]variant
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFactory replaces the constructor for a known provider. The provider's
// credential requirement is unchanged. Unknown provider ids are ignored.
func WithFactory(id ProviderID, f Factory) ResolverOption {
	return func(r *Resolver) {
		v, ok := r.variants[id]
		if !ok || f == nil {
			return
		}
		v.build = f
		r.variants[id] = v
	}
}

// NewResolver returns a Resolver for the OpenAI, LongCat and Anthropic
// providers.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		variants: map[ProviderID]variant{
			ProviderOpenAI: {
				ready: func(c BackendConfig) bool { return c.Credentials.OpenAIKey != "" },
				build: newOpenAI,
			},
			ProviderLongCat: {
				ready: func(c BackendConfig) bool { return c.Credentials.LongCatBaseURL != "" && longCatKey(c) != "" },
				build: newLongCat,
			},
			ProviderAnthropic: {
				ready: func(c BackendConfig) bool { return c.Credentials.AnthropicKey != "" },
				build: newAnthropic,
			},
		},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the backend selected by cfg, or false when the deployment is
// unconfigured. It constructs a fresh backend on every call.
func (r *Resolver) Resolve(cfg BackendConfig) (Backend, bool) {
	v, ok := r.variants[cfg.Provider]
	if !ok || !v.ready(cfg) {
		slog.Warn("no valid API key found", "provider", string(cfg.Provider))
		return nil, false
	}
	slog.Info("using backend", "provider", string(cfg.Provider), "model", cfg.Model)
	return v.build(cfg), true
}

// Configured reports whether cfg would resolve to a backend, without building
// one or tracing.
func (r *Resolver) Configured(cfg BackendConfig) bool {
	v, ok := r.variants[cfg.Provider]
	return ok && v.ready(cfg)
}

// longCatKey prefers the LongCat key and falls back to the OpenAI key.
func longCatKey(c BackendConfig) string {
	if c.Credentials.LongCatKey != "" {
		return c.Credentials.LongCatKey
	}
	return c.Credentials.OpenAIKey
}

func newOpenAI(c BackendConfig) Backend {
	return NewOpenAIBackend(
		WithModel(c.Model),
		WithAPIKey(c.Credentials.OpenAIKey),
		WithTemperature(c.Temperature),
		WithMaxTokens(c.MaxTokens),
	)
}

func newLongCat(c BackendConfig) Backend {
	return NewOpenAIBackend(
		WithModel(c.Model),
		WithAPIKey(longCatKey(c)),
		WithBaseURL(c.Credentials.LongCatBaseURL),
		WithTemperature(c.Temperature),
		WithMaxTokens(c.MaxTokens),
	)
}

func newAnthropic(c BackendConfig) Backend {
	return NewAnthropicBackend(
		WithAnthropicModel(c.Model),
		WithAnthropicAPIKey(c.Credentials.AnthropicKey),
		WithAnthropicTemperature(c.Temperature),
		WithAnthropicMaxTokens(c.MaxTokens),
	)
}
