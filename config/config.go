// Package config loads parley's process-wide configuration from a
// .parley.yaml file and environment variables. It is read once at startup;
// the result is handed to the pipeline and the servers by value.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nox-hq/parley/assist"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".parley.yaml"

// Config represents the .parley.yaml configuration file.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Models  []Model       `yaml:"models"`
}

// LLMConfig selects and parameterizes the completion backend.
type LLMConfig struct {
	Provider        string  `yaml:"provider"`
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	OpenAIAPIKey    string  `yaml:"openai_api_key"`
	AnthropicAPIKey string  `yaml:"anthropic_api_key"`
	LongCatAPIKey   string  `yaml:"longcat_api_key"`
	LongCatAPIBase  string  `yaml:"longcat_api_base"`
}

// HistoryConfig bounds the history rendered into each prompt. Zero disables a
// limit.
type HistoryConfig struct {
	MaxTurns  int `yaml:"max_turns"`
	MaxChars  int `yaml:"max_chars"`
	MaxTokens int `yaml:"max_tokens"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	LegacyErrors      bool   `yaml:"legacy_errors"`
	HealthAddr        string `yaml:"health_addr"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Model is one entry of the static model catalog.
type Model struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// DefaultModels is the catalog served when the configuration lists none.
var DefaultModels = []Model{
	{ID: "gpt-3.5-turbo", Name: "OpenAI GPT-3.5 Turbo"},
	{ID: "gpt-4", Name: "OpenAI GPT-4"},
	{ID: "claude-3-haiku", Name: "Anthropic Claude 3 Haiku"},
	{ID: "claude-3-sonnet", Name: "Anthropic Claude 3 Sonnet"},
}

// Default returns the configuration used when neither file nor environment
// set a value.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-3.5-turbo",
			Temperature:    0.7,
			MaxTokens:      2000,
			TimeoutSeconds: 30,
			LongCatAPIBase: "https://api.longcat.chat/openai",
		},
		History: HistoryConfig{
			MaxTurns: 100,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path on top of Default, then applies
// environment overrides. A missing file is not an error. Malformed YAML,
// malformed numeric environment values and invalid settings are.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if len(cfg.Models) == 0 {
		cfg.Models = append([]Model(nil), DefaultModels...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Unset and empty
// variables leave the current value in place.
func (c *Config) applyEnv() error {
	envString(&c.LLM.Provider, "LLM_PROVIDER")
	envString(&c.LLM.Model, "LLM_MODEL")
	envString(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	envString(&c.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envString(&c.LLM.LongCatAPIKey, "LONGCAT_API_KEY")
	envString(&c.LLM.LongCatAPIBase, "LONGCAT_API_BASE")
	envString(&c.Server.Host, "API_HOST")
	envString(&c.Server.HealthAddr, "PARLEY_HEALTH_ADDR")
	envString(&c.Log.Level, "LOG_LEVEL")
	envString(&c.Log.Format, "LOG_FORMAT")

	var errs []error
	errs = append(errs,
		envFloat(&c.LLM.Temperature, "AGENT_MODEL_TEMPERATURE"),
		envInt(&c.LLM.MaxTokens, "AGENT_MAX_TOKENS"),
		envInt(&c.LLM.TimeoutSeconds, "PARLEY_TIMEOUT_SECONDS"),
		envInt(&c.Server.Port, "API_PORT"),
		envInt(&c.Server.RequestsPerMinute, "PARLEY_REQUESTS_PER_MINUTE"),
		envBool(&c.Server.LegacyErrors, "PARLEY_LEGACY_ERRORS"),
		envInt(&c.History.MaxTurns, "PARLEY_MAX_HISTORY_TURNS"),
		envInt(&c.History.MaxChars, "PARLEY_MAX_HISTORY_CHARS"),
		envInt(&c.History.MaxTokens, "PARLEY_MAX_HISTORY_TOKENS"),
	)
	return errors.Join(errs...)
}

// Validate checks value ranges. Missing credentials are not an error here:
// they surface as a not-configured completion instead.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.LLM.Temperature)
	}
	for name, v := range map[string]int{
		"max_tokens":          c.LLM.MaxTokens,
		"timeout_seconds":     c.LLM.TimeoutSeconds,
		"requests_per_minute": c.Server.RequestsPerMinute,
		"history.max_turns":   c.History.MaxTurns,
		"history.max_chars":   c.History.MaxChars,
		"history.max_tokens":  c.History.MaxTokens,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

// Backend returns the immutable backend configuration for the pipeline.
func (c *Config) Backend() assist.BackendConfig {
	return assist.BackendConfig{
		Provider:    assist.ProviderID(strings.ToLower(strings.TrimSpace(c.LLM.Provider))),
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Timeout:     time.Duration(c.LLM.TimeoutSeconds) * time.Second,
		Credentials: assist.Credentials{
			OpenAIKey:      c.LLM.OpenAIAPIKey,
			AnthropicKey:   c.LLM.AnthropicAPIKey,
			LongCatKey:     c.LLM.LongCatAPIKey,
			LongCatBaseURL: c.LLM.LongCatAPIBase,
		},
	}
}

// Budget returns the history budget for the pipeline.
func (c *Config) Budget() assist.Budget {
	return assist.Budget{
		MaxTurns:  c.History.MaxTurns,
		MaxChars:  c.History.MaxChars,
		MaxTokens: c.History.MaxTokens,
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LogLevel parses Log.Level. Unknown names fall back to INFO.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, v)
	}
	*dst = f
	return nil
}

func envBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}
