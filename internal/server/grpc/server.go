// Package grpc exposes the PotKeeper services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/logging"
	"github.com/dmitrijs2005/potkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/potkeeper/internal/server/services"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Services are the business services the server dispatches to.
type Services struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
	Pots     *services.PotService
	Accounts *services.AccountService
}

type GRPCServer struct {
	address   string
	svc       Services
	programID string
	clock     timex.Clock
	metrics   *metrics.Metrics
	logger    logging.Logger
	health    *health.Server
}

func NewGRPCServer(a string, l logging.Logger, svc Services, m *metrics.Metrics, programID string, clock timex.Clock) *GRPCServer {
	return &GRPCServer{
		address:   a,
		svc:       svc,
		programID: programID,
		clock:     clock,
		metrics:   m,
		logger:    l.With("module", "grpc_server"),
		health:    health.NewServer(),
	}
}

// newServer builds a grpc.Server with the interceptors and services
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.observeInterceptor, s.accessTokenInterceptor))
	api.RegisterPotKeeperServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, l net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil {
		return err
	}
	return nil
}
