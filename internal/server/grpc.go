package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/MKhiriev/go-support-portal/internal/config"
	myGRPC "github.com/MKhiriev/go-support-portal/internal/handler/grpc"
	"github.com/MKhiriev/go-support-portal/internal/logger"
)

// healthRefreshInterval is how often the gRPC health status is refreshed.
const healthRefreshInterval = 15 * time.Second

type grpcServer struct {
	handler *myGRPC.Handler

	server          *grpc.Server
	gRPCNetListener net.Listener
	address         string

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	srv := grpc.NewServer()
	handler.Register(srv)

	return &grpcServer{
		handler: handler,
		server:  srv,
		address: cfg.GRPCAddress,
		logger:  logger,
	}
}

// RunServer serves the health service and keeps its status fresh until
// Shutdown is called.
func (g *grpcServer) RunServer(ctx context.Context) error {
	lis := g.gRPCNetListener
	if lis == nil {
		var err error
		if lis, err = net.Listen("tcp", g.address); err != nil {
			return fmt.Errorf("gRPC server listen: %w", err)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go g.handler.Watch(watchCtx, healthRefreshInterval)

	g.logger.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
	if err := g.server.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server Serve: %w", err)
	}
	return nil
}

// Shutdown reports NOT_SERVING first so that balancers drain the server,
// then stops it gracefully. When ctx expires open streams are cut.
func (g *grpcServer) Shutdown(ctx context.Context) error {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.handler.Shutdown()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		g.server.Stop()
		return ctx.Err()
	}
}
