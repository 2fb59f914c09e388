package api

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/banshee-data/intersim/internal/monitoring"
)

// SimulationService is the service name reported by the gRPC health server.
const SimulationService = "intersim.Simulation"

// HealthServer wraps the standard gRPC health service. The overall status
// ("") and SimulationService start as SERVING.
type HealthServer struct {
	health *health.Server
	grpc   *grpc.Server
}

// NewHealthServer creates a gRPC server with the health service registered.
func NewHealthServer() *HealthServer {
	hs := &HealthServer{
		health: health.NewServer(),
		grpc:   grpc.NewServer(),
	}
	hs.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.health.SetServingStatus(SimulationService, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(hs.grpc, hs.health)
	return hs
}

// SetServing flips SimulationService between SERVING and NOT_SERVING.
func (hs *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.health.SetServingStatus(SimulationService, status)
}

// Serve accepts connections on lis until ctx is cancelled, then marks every
// service NOT_SERVING and stops gracefully.
func (hs *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("Starting gRPC health server on %s", lis.Addr())
		errc <- hs.grpc.Serve(lis)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("gRPC server: %w", err)
	case <-ctx.Done():
	}
	hs.health.Shutdown()
	hs.grpc.GracefulStop()
	monitoring.Logf("gRPC server routine stopped")
	return nil
}

// StartGRPC listens on addr and serves the health service until ctx is
// cancelled.
func StartGRPC(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return NewHealthServer().Serve(ctx, lis)
}
