package grpc

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Server exposes the standard gRPC health service for the market process.
type Server struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

func NewServer(port string) (*Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor,
			recoveryInterceptor,
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		server:   grpcServer,
		health:   healthServer,
		listener: lis,
	}, nil
}

// SetServing reports the overall serving status of the process.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

func (s *Server) Start() error {
	zap.L().Info("gRPC server started successfully",
		zap.String("address", s.listener.Addr().String()))
	return s.server.Serve(s.listener)
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
