package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CompletionService is the service name reported by the health server.
const CompletionService = "parley.Completion"

// HealthServer reports whether a completion backend is configured using the
// standard gRPC health protocol. The overall ("") status and
// CompletionService share one status: SERVING when a backend resolves,
// NOT_SERVING otherwise.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
}

// NewHealthServer builds a health server for c.
func NewHealthServer(c Completer) *HealthServer {
	hs := health.NewServer()
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if c.Configured() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(CompletionService, status)

	g := grpc.NewServer()
	healthpb.RegisterHealthServer(g, hs)
	return &HealthServer{grpc: g, health: hs}
}

// ListenAndServe listens on addr and calls Serve.
func (h *HealthServer) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return h.Serve(lis)
}

// Serve blocks serving health checks on lis until Stop is called.
func (h *HealthServer) Serve(lis net.Listener) error {
	slog.Info("health server listening", "addr", lis.Addr().String())
	if err := h.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

// Stop marks every service NOT_SERVING and stops the server gracefully.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
