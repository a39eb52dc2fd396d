package assist

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultAnthropicMaxTokens is used when no limit is configured; the Messages
// API requires one.
const defaultAnthropicMaxTokens = 2000

// DefaultAnthropicBaseURL is used when no base URL is configured.
const DefaultAnthropicBaseURL = "https://api.anthropic.com/"

// AnthropicBackend implements Backend using the Anthropic Messages API.
type AnthropicBackend struct {
	client      anthropic.Client
	model       string
	temperature *float64
	maxTokens   int
}

// AnthropicOption configures an AnthropicBackend.
type AnthropicOption func(*anthropicConfig)

type anthropicConfig struct {
	model       string
	apiKey      string
	baseURL     string
	timeout     time.Duration
	temperature *float64
	maxTokens   int
	httpClient  *http.Client
}

// WithAnthropicModel sets the model name (default: "claude-3-haiku-20240307").
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *anthropicConfig) { c.model = model }
}

// WithAnthropicAPIKey sets the API key.
func WithAnthropicAPIKey(key string) AnthropicOption {
	return func(c *anthropicConfig) { c.apiKey = key }
}

// WithAnthropicBaseURL points the client at a different endpoint.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(c *anthropicConfig) { c.baseURL = url }
}

// WithAnthropicTimeout sets the per-request timeout for API calls.
func WithAnthropicTimeout(d time.Duration) AnthropicOption {
	return func(c *anthropicConfig) { c.timeout = d }
}

// WithAnthropicTemperature sets the sampling temperature.
func WithAnthropicTemperature(t float64) AnthropicOption {
	return func(c *anthropicConfig) { c.temperature = &t }
}

// WithAnthropicMaxTokens caps the completion length.
func WithAnthropicMaxTokens(n int) AnthropicOption {
	return func(c *anthropicConfig) { c.maxTokens = n }
}

// WithAnthropicHTTPClient replaces the HTTP client used for API calls.
func WithAnthropicHTTPClient(hc *http.Client) AnthropicOption {
	return func(c *anthropicConfig) { c.httpClient = hc }
}

// NewAnthropicBackend creates an AnthropicBackend with the given options. SDK
// retries are disabled. The SDK's ANTHROPIC_* environment defaults are
// overridden, including any ambient bearer token.
func NewAnthropicBackend(opts ...AnthropicOption) *AnthropicBackend {
	cfg := anthropicConfig{
		model:     "claude-3-haiku-20240307",
		maxTokens: defaultAnthropicMaxTokens,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.maxTokens <= 0 {
		cfg.maxTokens = defaultAnthropicMaxTokens
	}
	if cfg.baseURL == "" {
		cfg.baseURL = DefaultAnthropicBaseURL
	}

	clientOpts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithBaseURL(cfg.baseURL),
		option.WithAPIKey(cfg.apiKey),
		option.WithHeaderDel("authorization"),
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &AnthropicBackend{
		client:      anthropic.NewClient(clientOpts...),
		model:       cfg.model,
		temperature: cfg.temperature,
		maxTokens:   cfg.maxTokens,
	}
}

// Invoke sends the prompt as a single user message and concatenates the text
// blocks of the reply.
func (b *AnthropicBackend) Invoke(ctx context.Context, prompt string) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: int64(b.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if b.temperature != nil {
		params.Temperature = anthropic.Float(*b.temperature)
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic returned no text content")
	}

	return &Response{
		Text:             text.String(),
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}, nil
}
