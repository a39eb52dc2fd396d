// Package server exposes the completion pipeline over HTTP, MCP (stdio) and
// a gRPC health service. It owns every transport-level decision: request
// validation, status codes, error strings, rate limiting and telemetry.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nox-hq/parley/assist"
)

// Completer is the pipeline contract the transports drive.
type Completer interface {
	Complete(ctx context.Context, req assist.Request) (assist.Result, assist.Usage)
	Provider() assist.ProviderID
	Configured() bool
}

// notConfiguredText is shown to chat users when no backend is configured.
const notConfiguredText = "Error: No LLM configured. Please set your API key in .env"

var errEmptyMessage = errors.New("message must not be empty")

// chatMessage is one prior turn on the wire.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the body of POST /api/chat and the arguments of the MCP chat
// tool.
type chatRequest struct {
	Message      string        `json:"message"`
	History      []chatMessage `json:"history"`
	SystemPrompt string        `json:"system_prompt,omitempty"`
}

// toRequest validates the wire request and converts it for the pipeline.
func (r chatRequest) toRequest() (assist.Request, error) {
	if strings.TrimSpace(r.Message) == "" {
		return assist.Request{}, errEmptyMessage
	}
	history := make([]assist.Turn, 0, len(r.History))
	for i, m := range r.History {
		role, err := assist.ParseRole(m.Role)
		if err != nil {
			return assist.Request{}, fmt.Errorf("history[%d]: %w", i, err)
		}
		history = append(history, assist.Turn{Role: role, Content: m.Content})
	}
	return assist.Request{
		Message:      r.Message,
		History:      history,
		SystemPrompt: r.SystemPrompt,
	}, nil
}

// displayText renders a Result the way chat users see it.
func displayText(res assist.Result) string {
	if res.OK() {
		return res.Text
	}
	if res.Err.Kind == assist.KindNotConfigured {
		return notConfiguredText
	}
	return "Error: " + res.Err.Detail
}

// newConversationID returns a fresh opaque id. Ids are not tied to history
// and are never reused.
func newConversationID() string {
	return uuid.NewString()
}

// complete runs one request through c and records its outcome.
func complete(ctx context.Context, c Completer, tc *telemetryCollector, req assist.Request) assist.Result {
	start := time.Now()
	res, usage := c.Complete(ctx, req)
	provider := string(c.Provider())
	if provider == "" {
		provider = "unset"
	}
	tc.Record(provider, time.Since(start), res, usage)
	return res
}
