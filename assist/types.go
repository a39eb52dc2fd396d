// Package assist is the provider-agnostic completion pipeline behind parley.
// It resolves a backend from a BackendConfig, renders the conversation into a
// single prompt, invokes the backend once, and normalizes every outcome into a
// Result.
//
// The package never reads process-wide state: configuration arrives as a
// BackendConfig value built once at startup.
package assist

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a wire role onto a Role. The chat widget and older clients
// send "human" for user turns, so it is accepted as an alias.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser, nil
	case "assistant", "ai":
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Turn is one message in a conversation. Turns are ordered by the caller and
// never reordered or timestamped here.
type Turn struct {
	Role    Role
	Content string
}

// ProviderID names an LLM vendor that a BackendConfig can select.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderLongCat   ProviderID = "longcat"
	ProviderUnset     ProviderID = ""
)

// Credentials holds the secrets and endpoints each provider needs. Fields that
// do not apply to the selected provider are ignored.
type Credentials struct {
	OpenAIKey      string
	AnthropicKey   string
	LongCatKey     string
	LongCatBaseURL string
}

// BackendConfig is the static, read-only configuration a Pipeline resolves
// backends from.
type BackendConfig struct {
	Provider    ProviderID
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Credentials Credentials
}

// secrets returns the non-empty credential values, used for redaction.
func (c BackendConfig) secrets() []string {
	var out []string
	for _, s := range []string{c.Credentials.OpenAIKey, c.Credentials.AnthropicKey, c.Credentials.LongCatKey} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
