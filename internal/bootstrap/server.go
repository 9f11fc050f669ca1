package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/airtickets/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Servers struct {
	grpcServer      *grpc.Server
	health          *health.Server
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             *zap.Logger
}

func NewServers(cfg *config.Config, handler http.Handler, log *zap.Logger) *Servers {
	if log == nil {
		log = zap.NewNop()
	}
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: 5 * time.Second,
		log:             log,
	}
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or a
// server fails. Both servers are stopped on return.
func (s *Servers) Run(ctx context.Context, grpcAddress string) error {
	grpcLis, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", grpcAddress, err)
	}
	httpLis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("listen HTTP %s: %w", s.httpServer.Addr, err)
	}
	return s.serve(ctx, grpcLis, httpLis)
}

func (s *Servers) serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	errCh := make(chan error, 2)
	go func() {
		if err := s.grpcServer.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		if err := s.httpServer.Serve(httpLis); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	s.log.Info("servers started", zap.String("grpc", grpcLis.Addr().String()), zap.String("http", httpLis.Addr().String()))

	var runErr error
	select {
	case runErr = <-errCh:
		s.log.Error("server failed", zap.Error(runErr))
	case <-ctx.Done():
		s.log.Info("shutting down servers")
	}

	if err := s.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (s *Servers) shutdown() error {
	s.health.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	httpErr := s.httpServer.Shutdown(ctx)

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.log.Warn("grpc graceful stop timed out, closing connections")
		s.grpcServer.Stop()
		<-stopped
	}

	if httpErr != nil {
		return fmt.Errorf("shutdown http server: %w", httpErr)
	}
	return nil
}

// dialTarget turns a listen address such as ":9090" into something a client
// can dial.
func dialTarget(address string) string {
	if strings.HasPrefix(address, ":") {
		return "localhost" + address
	}
	return address
}
