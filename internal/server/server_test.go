package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/handler"
	myGRPC "github.com/MKhiriev/go-support-portal/internal/handler/grpc"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/mock"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/models"
)

func TestNewServer_NoServers(t *testing.T) {
	_, err := NewServer(&handler.Handlers{}, config.Server{}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestServer_RunAndShutdown(t *testing.T) {
	cfg := config.Server{HTTPAddress: "127.0.0.1:0", GRPCAddress: "bufnet", RequestTimeout: time.Second}

	// HTTP on a real ephemeral port
	httpLis, err := net.Listen("tcp", cfg.HTTPAddress)
	require.NoError(t, err)
	hs := newHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), cfg, logger.Nop())
	hs.listener = httpLis

	// gRPC health on an in-memory listener
	health := mock.NewMockHealthService(gomock.NewController(t))
	health.EXPECT().Check(gomock.Any()).Return(models.HealthReport{Status: models.HealthOK}).AnyTimes()
	grpcHandler := myGRPC.NewHandler(&service.Services{HealthService: health}, logger.Nop())
	bufLis := bufconn.Listen(1 << 20)
	gs := newGRPCServer(grpcHandler, cfg, logger.Nop())
	gs.gRPCNetListener = bufLis

	srv := &server{httpServer: hs, gRPCServer: gs, logger: logger.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.RunServer(ctx) }()

	url := "http://" + httpLis.Addr().String() + "/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 10*time.Millisecond)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return bufLis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	require.Eventually(t, func() bool {
		resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: myGRPC.ServiceName})
		return err == nil && resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = http.Get(url)
	assert.Error(t, err, "the HTTP listener must be closed")
}

func TestServer_ListenFailureStopsAll(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := config.Server{HTTPAddress: busy.Addr().String()}
	srv := &server{
		httpServer: newHTTPServer(http.NotFoundHandler(), cfg, logger.Nop()),
		logger:     logger.Nop(),
	}

	err = srv.RunServer(context.Background())
	assert.ErrorContains(t, err, "HTTP server listen")
}
