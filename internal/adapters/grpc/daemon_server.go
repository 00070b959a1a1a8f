package grpc

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
)

// DaemonServer serves the colony control plane over gRPC
// Every call is translated into a mediator request
type DaemonServer struct {
	server     *grpc.Server
	health     *health.Server
	listener   net.Listener
	socketPath string
	logger     *log.Logger
}

// NewDaemonServer creates a server that dispatches through m
func NewDaemonServer(m mediator.Mediator, logger *log.Logger) *DaemonServer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &DaemonServer{
		health: health.NewServer(),
		logger: logger,
	}
	s.server = grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	s.server.RegisterService(ServiceDesc(), &colonyService{mediator: m})
	healthpb.RegisterHealthServer(s.server, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Listen opens the unix socket the CLI dials
func (s *DaemonServer) Listen(socketPath string) error {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Set socket permissions (owner only)
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.socketPath = socketPath
	return nil
}

// Start serves on the socket opened by Listen until Stop
func (s *DaemonServer) Start() error {
	if s.listener == nil {
		return fmt.Errorf("daemon server is not listening")
	}
	return s.Serve(s.listener)
}

// Serve serves on lis until Stop
func (s *DaemonServer) Serve(lis net.Listener) error {
	s.logger.Info("daemon server listening", "address", lis.Addr().String())

	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC server error: %w", err)
	}
	return nil
}

// Stop drains in-flight calls and removes the socket
func (s *DaemonServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
	if s.socketPath != "" {
		_ = os.Remove(s.socketPath)
	}
	s.logger.Info("daemon server stopped")
}

func (s *DaemonServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	logger := s.logger.With("method", info.FullMethod)

	resp, err := handler(common.WithLogger(ctx, logger), req)

	if err != nil {
		logger.Warn("request failed", "code", status.Code(err).String(), "duration", time.Since(start), "error", err)
	} else {
		logger.Debug("request served", "duration", time.Since(start))
	}
	return resp, err
}
