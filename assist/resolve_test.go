package assist

import "testing"

func TestResolve_SelectsByProvider(t *testing.T) {
	tests := []struct {
		name   string
		cfg    BackendConfig
		wantOK bool
	}{
		{
			name:   "openai with key",
			cfg:    BackendConfig{Provider: ProviderOpenAI, Credentials: Credentials{OpenAIKey: "sk-test"}},
			wantOK: true,
		},
		{
			name:   "openai without key",
			cfg:    BackendConfig{Provider: ProviderOpenAI, Credentials: Credentials{AnthropicKey: "ak"}},
			wantOK: false,
		},
		{
			name:   "anthropic with key",
			cfg:    BackendConfig{Provider: ProviderAnthropic, Credentials: Credentials{AnthropicKey: "ak"}},
			wantOK: true,
		},
		{
			name:   "anthropic with only openai key",
			cfg:    BackendConfig{Provider: ProviderAnthropic, Credentials: Credentials{OpenAIKey: "sk-test"}},
			wantOK: false,
		},
		{
			name: "longcat with own key",
			cfg: BackendConfig{Provider: ProviderLongCat, Credentials: Credentials{
				LongCatKey: "lc", LongCatBaseURL: "https://api.longcat.chat/openai",
			}},
			wantOK: true,
		},
		{
			name: "longcat falls back to openai key",
			cfg: BackendConfig{Provider: ProviderLongCat, Credentials: Credentials{
				OpenAIKey: "sk-test", LongCatBaseURL: "https://api.longcat.chat/openai",
			}},
			wantOK: true,
		},
		{
			name:   "longcat without base url",
			cfg:    BackendConfig{Provider: ProviderLongCat, Credentials: Credentials{LongCatKey: "lc"}},
			wantOK: false,
		},
		{
			name:   "longcat without any key",
			cfg:    BackendConfig{Provider: ProviderLongCat, Credentials: Credentials{LongCatBaseURL: "https://x"}},
			wantOK: false,
		},
		{
			name:   "unknown provider",
			cfg:    BackendConfig{Provider: "google", Credentials: Credentials{OpenAIKey: "sk-test"}},
			wantOK: false,
		},
		{
			name:   "unset provider",
			cfg:    BackendConfig{Provider: ProviderUnset, Credentials: Credentials{OpenAIKey: "sk-test"}},
			wantOK: false,
		},
	}

	stub := &StubBackend{}
	r := stubResolver(stub)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := r.Resolve(tt.cfg)
			if ok != tt.wantOK {
				t.Fatalf("Resolve ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && b == nil {
				t.Fatal("expected a backend when ok")
			}
			if !ok && b != nil {
				t.Fatal("expected no backend when unconfigured")
			}
			if got := r.Configured(tt.cfg); got != tt.wantOK {
				t.Fatalf("Configured = %v, want %v", got, tt.wantOK)
			}
		})
	}

	if stub.Calls() != 0 {
		t.Fatalf("resolution must not invoke the backend, got %d calls", stub.Calls())
	}
}

func TestResolve_DefaultFactories(t *testing.T) {
	r := NewResolver()

	b, ok := r.Resolve(BackendConfig{
		Provider: ProviderOpenAI, Model: "gpt-4",
		Credentials: Credentials{OpenAIKey: "sk-test"},
	})
	if !ok {
		t.Fatal("expected openai to resolve")
	}
	ob, isOpenAI := b.(*OpenAIBackend)
	if !isOpenAI {
		t.Fatalf("expected *OpenAIBackend, got %T", b)
	}
	if ob.model != "gpt-4" {
		t.Fatalf("expected model gpt-4, got %q", ob.model)
	}

	b, ok = r.Resolve(BackendConfig{
		Provider: ProviderLongCat, Model: "LongCat-Flash-Chat",
		Credentials: Credentials{LongCatKey: "lc", LongCatBaseURL: "https://api.longcat.chat/openai"},
	})
	if !ok {
		t.Fatal("expected longcat to resolve")
	}
	if _, isOpenAI := b.(*OpenAIBackend); !isOpenAI {
		t.Fatalf("expected longcat to use *OpenAIBackend, got %T", b)
	}

	b, ok = r.Resolve(BackendConfig{
		Provider: ProviderAnthropic, Model: "claude-3-haiku",
		Credentials: Credentials{AnthropicKey: "ak"},
	})
	if !ok {
		t.Fatal("expected anthropic to resolve")
	}
	ab, isAnthropic := b.(*AnthropicBackend)
	if !isAnthropic {
		t.Fatalf("expected *AnthropicBackend, got %T", b)
	}
	if ab.model != "claude-3-haiku" {
		t.Fatalf("expected model claude-3-haiku, got %q", ab.model)
	}
}

func TestResolve_FreshBackendPerCall(t *testing.T) {
	r := NewResolver()
	cfg := BackendConfig{Provider: ProviderOpenAI, Credentials: Credentials{OpenAIKey: "sk-test"}}

	a, _ := r.Resolve(cfg)
	b, _ := r.Resolve(cfg)
	if a == b {
		t.Fatal("expected a new backend instance per Resolve call")
	}
}

func TestWithFactory_UnknownProviderIgnored(t *testing.T) {
	r := NewResolver(WithFactory("google", func(BackendConfig) Backend { return &StubBackend{} }))

	if _, ok := r.Resolve(BackendConfig{Provider: "google", Credentials: Credentials{OpenAIKey: "k"}}); ok {
		t.Fatal("expected unknown provider to stay unconfigured")
	}
}

func TestLongCatKey(t *testing.T) {
	c := BackendConfig{Credentials: Credentials{OpenAIKey: "openai", LongCatKey: "longcat"}}
	if got := longCatKey(c); got != "longcat" {
		t.Fatalf("expected longcat key, got %q", got)
	}
	c.Credentials.LongCatKey = ""
	if got := longCatKey(c); got != "openai" {
		t.Fatalf("expected fallback to openai key, got %q", got)
	}
}
