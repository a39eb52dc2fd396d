package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nox-hq/parley/assist"
	"github.com/nox-hq/parley/config"
)

const (
	// maxRequestBytes caps the size of a chat request body (1 MB).
	maxRequestBytes = 1 << 20

	// shutdownGrace is added to the completion timeout when draining.
	shutdownGrace = 5 * time.Second
)

// HTTPServer serves the chat API.
type HTTPServer struct {
	version      string
	completer    Completer
	models       []config.Model
	limiter      *RateLimiter
	telemetry    *telemetryCollector
	legacyErrors bool
	timeout      time.Duration
}

// HTTPOption configures an HTTPServer.
type HTTPOption func(*HTTPServer)

// WithModels sets the catalog served by GET /api/models.
func WithModels(models []config.Model) HTTPOption {
	return func(s *HTTPServer) { s.models = models }
}

// WithRateLimit limits /api/chat to requestsPerMin completions per minute.
func WithRateLimit(requestsPerMin int) HTTPOption {
	return func(s *HTTPServer) { s.limiter = NewRateLimiter(requestsPerMin) }
}

// WithLegacyErrors reports pipeline failures with status 200 and the error
// sentence in the response field, as older clients expect.
func WithLegacyErrors(legacy bool) HTTPOption {
	return func(s *HTTPServer) { s.legacyErrors = legacy }
}

// WithTimeout sets the completion timeout. It becomes the chat page's client
// timeout and bounds how long shutdown waits for in-flight requests.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPServer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewHTTPServer creates an HTTPServer driving c.
func NewHTTPServer(version string, c Completer, opts ...HTTPOption) *HTTPServer {
	s := &HTTPServer{
		version:   version,
		completer: c,
		models:    config.DefaultModels,
		limiter:   NewRateLimiter(0),
		telemetry: newTelemetryCollector(),
		timeout:   assist.DefaultTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// chatResponse is the body returned by POST /api/chat.
type chatResponse struct {
	Response       string     `json:"response"`
	ConversationID string     `json:"conversation_id"`
	Error          *chatError `json:"error,omitempty"`
}

type chatError struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Handler returns the routed, CORS-wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /ui", s.handleUI)
	return withCORS(mux)
}

// ListenAndServe listens on addr and calls Serve.
func (s *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled, then shuts down gracefully,
// letting in-flight completions finish.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", lis.Addr().String(), "version", s.version)
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout+shutdownGrace)
		defer cancel()
		slog.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "parley API is running",
	})
}

func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeDetail(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var body chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("received message", "length", len(req.Message), "history", len(req.History))

	res := complete(r.Context(), s.completer, s.telemetry, req)
	resp := chatResponse{
		Response:       displayText(res),
		ConversationID: newConversationID(),
	}
	if res.Err != nil {
		resp.Error = &chatError{Kind: string(res.Err.Kind), Detail: res.Err.Detail}
	}
	writeJSON(w, s.status(res), resp)
}

// status maps a Result onto an HTTP status code.
func (s *HTTPServer) status(res assist.Result) int {
	if res.OK() || s.legacyErrors {
		return http.StatusOK
	}
	switch res.Err.Kind {
	case assist.KindNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *HTTPServer) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"models": s.models})
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":   s.version,
		"providers": s.telemetry.Snapshot(),
	})
}

func (s *HTTPServer) handleUI(w http.ResponseWriter, _ *http.Request) {
	html, err := GenerateChatHTML(s.version, s.models, s.timeout)
	if err != nil {
		slog.Error("rendering chat page", "error", err)
		writeDetail(w, http.StatusInternalServerError, "chat page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, html); err != nil {
		slog.Warn("writing chat page", "error", err)
	}
}

// withCORS allows any origin, method and header, and answers preflight
// requests directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
