package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one round trip to the chat endpoint.
const DefaultTimeout = 30 * time.Second

// Exchange is one completed user/assistant pair in the local transcript.
type Exchange struct {
	User      string
	Assistant string
}

// Client posts chat messages to a parley HTTP server.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a Client for the server at baseURL. A zero timeout uses
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/chat",
		http:     &http.Client{Timeout: timeout},
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Message string        `json:"message"`
	History []wireMessage `json:"history"`
}

type wireResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// Send posts message with the prior exchanges and returns the text to show.
// It never fails: transport and status errors are rendered as text.
func (c *Client) Send(ctx context.Context, message string, history []Exchange) string {
	text, err := c.send(ctx, message, history)
	if err != nil {
		return fmt.Sprintf("Sorry, I encountered an error: %v", err)
	}
	return text
}

func (c *Client) send(ctx context.Context, message string, history []Exchange) (string, error) {
	body := wireRequest{Message: message, History: historyMessages(history)}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	// Failures from the server still carry a renderable response field.
	var out wireResponse
	if json.Unmarshal(raw, &out) == nil && out.Response != "" {
		return out.Response, nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error: %d", resp.StatusCode), nil
	}
	return out.Response, nil
}

// historyMessages flattens exchanges into the wire history, oldest first.
// Error replies are local notices and are not sent back as assistant turns.
func historyMessages(history []Exchange) []wireMessage {
	out := make([]wireMessage, 0, 2*len(history))
	for _, ex := range history {
		if ex.User != "" {
			out = append(out, wireMessage{Role: "human", Content: ex.User})
		}
		if ex.Assistant != "" && !isErrorText(ex.Assistant) {
			out = append(out, wireMessage{Role: "assistant", Content: ex.Assistant})
		}
	}
	return out
}
