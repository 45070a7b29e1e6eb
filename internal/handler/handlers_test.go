package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/service"
)

func newTestConfig(httpAddress, grpcAddress string) *config.StructuredConfig {
	return &config.StructuredConfig{
		Server: config.Server{HTTPAddress: httpAddress, GRPCAddress: grpcAddress},
	}
}

// Handlers only store the services at construction time, so an empty
// container is enough here.
func TestNewHandlers(t *testing.T) {
	tests := []struct {
		name     string
		http     string
		grpc     string
		wantHTTP bool
		wantGRPC bool
		wantErr  error
	}{
		{name: "both", http: ":8080", grpc: ":9090", wantHTTP: true, wantGRPC: true},
		{name: "only HTTP", http: ":8080", wantHTTP: true},
		{name: "only gRPC", grpc: ":9090", wantGRPC: true},
		{name: "none", wantErr: errNoHandlersAreCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandlers(&service.Services{}, nil, newTestConfig(tt.http, tt.grpc), logger.Nop())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHTTP, h.HTTP != nil)
			assert.Equal(t, tt.wantGRPC, h.GRPC != nil)
		})
	}
}

func TestNewHandlers_IndependentInstances(t *testing.T) {
	cfg := newTestConfig(":8080", ":9090")

	h1, err := NewHandlers(&service.Services{}, nil, cfg, logger.Nop())
	require.NoError(t, err)
	h2, err := NewHandlers(&service.Services{}, nil, cfg, logger.Nop())
	require.NoError(t, err)

	assert.NotSame(t, h1.HTTP, h2.HTTP)
	assert.NotSame(t, h1.GRPC, h2.GRPC)
}
