package server

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/nox-hq/parley/config"
)

// maxOutputBytes is the maximum tool response size before truncation (1 MB).
const maxOutputBytes = 1 << 20

// MCPServer exposes the completion pipeline as an MCP tool over stdio.
type MCPServer struct {
	version   string
	completer Completer
	models    []config.Model
	limiter   *RateLimiter
	telemetry *telemetryCollector
}

// NewMCPServer creates an MCP server driving c. A requestsPerMin of 0 means
// unlimited.
func NewMCPServer(version string, c Completer, models []config.Model, requestsPerMin int) *MCPServer {
	if len(models) == 0 {
		models = config.DefaultModels
	}
	return &MCPServer{
		version:   version,
		completer: c,
		models:    models,
		limiter:   NewRateLimiter(requestsPerMin),
		telemetry: newTelemetryCollector(),
	}
}

// Serve starts the MCP server on stdio and blocks until the client disconnects.
func (s *MCPServer) Serve() error {
	srv := mcpserver.NewMCPServer(
		"parley",
		s.version,
		mcpserver.WithRecovery(),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
	)

	s.registerTools(srv)
	s.registerResources(srv)

	return mcpserver.ServeStdio(srv)
}

func (s *MCPServer) registerTools(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send a message plus prior turns to the configured LLM and return its reply"),
			mcp.WithString("message",
				mcp.Description("The new user message"),
				mcp.Required(),
			),
			mcp.WithArray("history",
				mcp.Description("Prior turns, oldest first, as {role, content} objects; role is user|human|assistant"),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"role":    map[string]any{"type": "string"},
						"content": map[string]any{"type": "string"},
					},
					"required": []string{"role", "content"},
				}),
			),
			mcp.WithString("system_prompt",
				mcp.Description("Optional framing sentence replacing the default system prompt"),
			),
		),
		s.handleChat,
	)

	srv.AddTool(
		mcp.NewTool("list_models",
			mcp.WithDescription("List the model identifiers this deployment advertises"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleListModels,
	)
}

func (s *MCPServer) registerResources(srv *mcpserver.MCPServer) {
	srv.AddResource(
		mcp.NewResource("parley://models", "Model catalog",
			mcp.WithResourceDescription("Static list of advertised backend models"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceModels,
	)
}

func (s *MCPServer) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := chatArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req, err := body.toRequest()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rate limited: %v", err)), nil
	}

	res := complete(ctx, s.completer, s.telemetry, req)
	if !res.OK() {
		return mcp.NewToolResultError(displayText(res)), nil
	}
	return mcp.NewToolResultText(truncate(res.Text)), nil
}

func (s *MCPServer) handleListModels(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.modelsJSON()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(data), nil
}

func (s *MCPServer) handleResourceModels(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := s.modelsJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     data,
		},
	}, nil
}

func (s *MCPServer) modelsJSON() (string, error) {
	data, err := json.Marshal(map[string]any{"models": s.models})
	if err != nil {
		return "", fmt.Errorf("marshalling models: %w", err)
	}
	return string(data), nil
}

// chatArguments decodes the chat tool arguments into a chatRequest.
func chatArguments(request mcp.CallToolRequest) (chatRequest, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return chatRequest{}, fmt.Errorf("missing required argument: message")
	}
	body := chatRequest{
		Message:      message,
		SystemPrompt: request.GetString("system_prompt", ""),
	}

	if raw, ok := request.GetArguments()["history"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return chatRequest{}, fmt.Errorf("invalid history: %w", err)
		}
		if err := json.Unmarshal(data, &body.History); err != nil {
			return chatRequest{}, fmt.Errorf("invalid history: %w", err)
		}
	}
	return body, nil
}

// truncate limits output to maxOutputBytes, appending a truncation notice if
// needed. The cut never splits a UTF-8 sequence.
func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	cut := maxOutputBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... [truncated: output exceeded 1MB limit]"
}
