// Package grpcserver exposes the standard gRPC health service so
// orchestrators can health-check the dashboard.
//
// The overall server ("") reports SERVING once started. The "jobs" service
// follows the outcome of the latest cache refresh and starts NOT_SERVING
// until the first one succeeds.
package grpcserver

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"jobmate/dashboard-service/internal/logger"
)

// JobsService is the health service name tracking the job cache.
const JobsService = "jobs"

// Server wraps a grpc.Server carrying the health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    logger.Logger
}

// New constructs a Server with the health service registered.
func New(log logger.Logger) *Server {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(JobsService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{grpc: gs, health: hs, log: logger.OrNop(log)}
}

// SetServing flips the jobs service status.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(JobsService, st)
}

// Serve blocks accepting connections on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server listening", logger.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains connections.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
