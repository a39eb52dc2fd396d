package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func openaiBackendConfig(key string) BackendConfig {
	return BackendConfig{
		Provider:    ProviderOpenAI,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		Credentials: Credentials{OpenAIKey: key},
	}
}

func TestComplete_OK(t *testing.T) {
	stub := &StubBackend{Text: "4"}
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(stubResolver(stub)))

	res, usage := p.Complete(context.Background(), Request{Message: "What is 2+2?"})
	if !res.OK() {
		t.Fatalf("expected Ok, got %v", res.Err)
	}
	if res.Text != "4" {
		t.Fatalf("expected text %q, got %q", "4", res.Text)
	}
	if usage.PromptTokens != 10 || usage.CompletionTokens != 5 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
	if stub.Calls() != 1 {
		t.Fatalf("expected 1 call, got %d", stub.Calls())
	}
	if !strings.Contains(stub.Prompts[0], "Human: What is 2+2?") {
		t.Fatalf("expected formatted prompt, got %q", stub.Prompts[0])
	}
}

func TestComplete_TrimsWhitespace(t *testing.T) {
	stub := &StubBackend{Text: "\n  hello there \t\n"}
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(stubResolver(stub)))

	res, _ := p.Complete(context.Background(), Request{Message: "hi"})
	if res.Text != "hello there" {
		t.Fatalf("expected trimmed text, got %q", res.Text)
	}
}

func TestComplete_NotConfigured(t *testing.T) {
	stub := &StubBackend{Text: "unused"}
	p := NewPipeline(BackendConfig{Provider: ProviderOpenAI}, WithResolver(stubResolver(stub)))

	res, _ := p.Complete(context.Background(), Request{Message: "hi"})
	if res.OK() {
		t.Fatal("expected Err")
	}
	if res.Err.Kind != KindNotConfigured {
		t.Fatalf("expected kind %q, got %q", KindNotConfigured, res.Err.Kind)
	}
	if !strings.Contains(res.Err.Detail, "no valid API key") {
		t.Fatalf("expected detail to mention missing key, got %q", res.Err.Detail)
	}
	if res.Text != "" {
		t.Fatalf("expected empty text on failure, got %q", res.Text)
	}
	if stub.Calls() != 0 {
		t.Fatalf("expected no backend calls, got %d", stub.Calls())
	}
}

func TestComplete_NotConfiguredForEveryProvider(t *testing.T) {
	stub := &StubBackend{Text: "unused"}
	for _, id := range []ProviderID{ProviderOpenAI, ProviderAnthropic, ProviderLongCat, ProviderUnset, "google"} {
		p := NewPipeline(BackendConfig{Provider: id}, WithResolver(stubResolver(stub)))
		res, _ := p.Complete(context.Background(), Request{Message: "hi"})
		if res.OK() || res.Err.Kind != KindNotConfigured {
			t.Fatalf("provider %q: expected not_configured, got %+v", id, res)
		}
	}
	if stub.Calls() != 0 {
		t.Fatalf("expected no backend calls, got %d", stub.Calls())
	}
}

func TestComplete_BackendFailureNotRetried(t *testing.T) {
	stub := &StubBackend{Err: errors.New("dial tcp: connection refused")}
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(stubResolver(stub)))

	res, _ := p.Complete(context.Background(), Request{Message: "hi"})
	if res.OK() {
		t.Fatal("expected Err")
	}
	if res.Err.Kind != KindBackendFailure {
		t.Fatalf("expected kind %q, got %q", KindBackendFailure, res.Err.Kind)
	}
	if !strings.Contains(res.Err.Detail, "connection refused") {
		t.Fatalf("expected detail to carry the fault, got %q", res.Err.Detail)
	}
	if !errors.Is(res.Err, stub.Err) {
		t.Fatal("expected Err to unwrap to the backend fault")
	}
	if stub.Calls() != 1 {
		t.Fatalf("expected exactly 1 call, got %d", stub.Calls())
	}
}

func TestComplete_PanicRecovered(t *testing.T) {
	stub := &StubBackend{Panic: "boom"}
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(stubResolver(stub)))

	res, _ := p.Complete(context.Background(), Request{Message: "hi"})
	if res.OK() || res.Err.Kind != KindBackendFailure {
		t.Fatalf("expected backend_failure, got %+v", res)
	}
	if !strings.Contains(res.Err.Detail, "boom") {
		t.Fatalf("expected panic value in detail, got %q", res.Err.Detail)
	}
}

type nilBackend struct{}

func (nilBackend) Invoke(context.Context, string) (*Response, error) { return nil, nil }

func TestComplete_NilResponse(t *testing.T) {
	r := NewResolver(WithFactory(ProviderOpenAI, func(BackendConfig) Backend { return nilBackend{} }))
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(r))

	res, _ := p.Complete(context.Background(), Request{Message: "hi"})
	if res.OK() || res.Err.Kind != KindBackendFailure {
		t.Fatalf("expected backend_failure, got %+v", res)
	}
}

// blockingBackend waits for its context to end.
type blockingBackend struct{}

func (blockingBackend) Invoke(ctx context.Context, _ string) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestComplete_Timeout(t *testing.T) {
	cfg := openaiBackendConfig("sk-test")
	cfg.Timeout = 20 * time.Millisecond
	r := NewResolver(WithFactory(ProviderOpenAI, func(BackendConfig) Backend { return blockingBackend{} }))
	p := NewPipeline(cfg, WithResolver(r))

	start := time.Now()
	res, _ := p.Complete(context.Background(), Request{Message: "hi"})
	if res.OK() || res.Err.Kind != KindBackendFailure {
		t.Fatalf("expected backend_failure, got %+v", res)
	}
	if !strings.Contains(res.Err.Detail, "timed out") {
		t.Fatalf("expected timeout detail, got %q", res.Err.Detail)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("timeout was not enforced")
	}
}

func TestComplete_CallerCancellation(t *testing.T) {
	r := NewResolver(WithFactory(ProviderOpenAI, func(BackendConfig) Backend { return blockingBackend{} }))
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(r))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, _ := p.Complete(ctx, Request{Message: "hi"})
	if res.OK() || res.Err.Kind != KindBackendFailure {
		t.Fatalf("expected backend_failure, got %+v", res)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}
}

func TestComplete_DefaultTimeout(t *testing.T) {
	p := NewPipeline(openaiBackendConfig("sk-test"))
	if p.timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %s, got %s", DefaultTimeout, p.timeout)
	}
}

func TestComplete_RedactsCredentialInDetail(t *testing.T) {
	key := "sk-proj-abcdefghijklmnopqrstuvwxyz"
	stub := &StubBackend{Err: fmt.Errorf("401 Unauthorized: Incorrect API key provided: %s", key)}
	p := NewPipeline(openaiBackendConfig(key), WithResolver(stubResolver(stub)))

	res, _ := p.Complete(context.Background(), Request{Message: "hi"})
	if res.OK() {
		t.Fatal("expected Err")
	}
	if strings.Contains(res.Err.Detail, key) {
		t.Fatalf("expected key to be redacted, got %q", res.Err.Detail)
	}
	if !strings.Contains(res.Err.Detail, "[REDACTED]") {
		t.Fatalf("expected redaction marker, got %q", res.Err.Detail)
	}
}

func TestComplete_SystemPromptReplacesFraming(t *testing.T) {
	stub := &StubBackend{Text: "arr"}
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(stubResolver(stub)))

	p.Complete(context.Background(), Request{Message: "hi", SystemPrompt: "You are a pirate."})
	if !strings.HasPrefix(stub.Prompts[0], "You are a pirate.") {
		t.Fatalf("expected custom framing, got %q", stub.Prompts[0])
	}
}

func TestComplete_BudgetApplied(t *testing.T) {
	stub := &StubBackend{Text: "ok"}
	p := NewPipeline(openaiBackendConfig("sk-test"),
		WithResolver(stubResolver(stub)),
		WithBudget(Budget{MaxTurns: 2}),
	)

	p.Complete(context.Background(), Request{Message: "latest", History: makeHistory(10)})

	prompt := stub.Prompts[0]
	if strings.Contains(prompt, "turn-07") {
		t.Fatalf("expected oldest turns dropped, got %q", prompt)
	}
	if !strings.Contains(prompt, "turn-08") || !strings.Contains(prompt, "turn-09") {
		t.Fatalf("expected newest turns kept, got %q", prompt)
	}
	if !strings.Contains(prompt, "Human: latest") {
		t.Fatalf("expected new message kept, got %q", prompt)
	}
}

func TestComplete_FiftyTurnsWithoutBudget(t *testing.T) {
	stub := &StubBackend{Text: "ok"}
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(stubResolver(stub)))

	p.Complete(context.Background(), Request{Message: "latest", History: makeHistory(50)})
	for i := 0; i < 50; i++ {
		if !strings.Contains(stub.Prompts[0], fmt.Sprintf("turn-%02d", i)) {
			t.Fatalf("expected turn %d in prompt", i)
		}
	}
}

func TestComplete_Concurrent(t *testing.T) {
	stub := &StubBackend{Text: "ok"}
	p := NewPipeline(openaiBackendConfig("sk-test"), WithResolver(stubResolver(stub)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, _ := p.Complete(context.Background(), Request{Message: fmt.Sprintf("q%d", i)})
			if !res.OK() {
				t.Errorf("request %d failed: %v", i, res.Err)
			}
		}(i)
	}
	wg.Wait()

	if stub.Calls() != 20 {
		t.Fatalf("expected 20 calls, got %d", stub.Calls())
	}
}

func TestPipeline_Configured(t *testing.T) {
	if !NewPipeline(openaiBackendConfig("sk-test")).Configured() {
		t.Fatal("expected configured pipeline")
	}
	if NewPipeline(openaiBackendConfig("")).Configured() {
		t.Fatal("expected unconfigured pipeline")
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindBackendFailure, Detail: "boom"}
	if err.Error() != "backend_failure: boom" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}
