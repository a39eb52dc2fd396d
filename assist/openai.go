package assist

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultOpenAIBaseURL is used when no base URL is configured.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1/"

// OpenAIBackend implements Backend using the official OpenAI Go SDK.
// It serves any OpenAI-compatible endpoint via WithBaseURL, which is how the
// LongCat provider is reached.
type OpenAIBackend struct {
	client      openai.Client
	model       string
	temperature *float64
	maxTokens   int
}

// OpenAIOption configures an OpenAIBackend.
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	model       string
	apiKey      string
	baseURL     string
	timeout     time.Duration
	temperature *float64
	maxTokens   int
	httpClient  *http.Client
}

// WithModel sets the model name (default: "gpt-3.5-turbo").
func WithModel(model string) OpenAIOption {
	return func(c *openaiConfig) { c.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) OpenAIOption {
	return func(c *openaiConfig) { c.apiKey = key }
}

// WithBaseURL sets a custom base URL, enabling LongCat, Ollama, vLLM, or other
// OpenAI-compatible endpoints.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openaiConfig) { c.baseURL = url }
}

// WithTimeout sets the per-request timeout for API calls.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openaiConfig) { c.timeout = d }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) OpenAIOption {
	return func(c *openaiConfig) { c.temperature = &t }
}

// WithMaxTokens caps the completion length. Zero leaves the provider default.
func WithMaxTokens(n int) OpenAIOption {
	return func(c *openaiConfig) { c.maxTokens = n }
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openaiConfig) { c.httpClient = hc }
}

// NewOpenAIBackend creates an OpenAIBackend with the given options. SDK retries
// are disabled: a call is attempted exactly once. Endpoint and credentials come
// only from the options; the SDK's OPENAI_* environment defaults are overridden.
func NewOpenAIBackend(opts ...OpenAIOption) *OpenAIBackend {
	cfg := openaiConfig{model: "gpt-3.5-turbo"}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.baseURL == "" {
		cfg.baseURL = DefaultOpenAIBaseURL
	}

	clientOpts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithBaseURL(cfg.baseURL),
		option.WithAPIKey(cfg.apiKey),
		option.WithHeaderDel("OpenAI-Organization"),
		option.WithHeaderDel("OpenAI-Project"),
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &OpenAIBackend{
		client:      openai.NewClient(clientOpts...),
		model:       cfg.model,
		temperature: cfg.temperature,
		maxTokens:   cfg.maxTokens,
	}
}

// Invoke sends the prompt as a single user message to the chat completions
// API and returns the first choice with token usage metadata.
func (b *OpenAIBackend) Invoke(ctx context.Context, prompt string) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if b.temperature != nil {
		params.Temperature = openai.Float(*b.temperature)
	}
	if b.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(b.maxTokens))
	}

	completion, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Response{
		Text:             completion.Choices[0].Message.Content,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
	}, nil
}
