package frontend

import (
	"context"
	"fmt"

	"github.com/instantcocoa/meshtrace/pkg/config"
	"github.com/instantcocoa/meshtrace/pkg/httputil"
	"github.com/instantcocoa/meshtrace/pkg/telemetry"
)

// Run wires the entry tier and serves HTTP until shutdown.
func Run(ctx context.Context, cfg *config.Base) error {
	tp, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:     cfg.ServiceName,
		ServiceTier:     cfg.ServiceTier,
		ServiceVersion:  cfg.Version,
		Environment:     cfg.Environment,
		OTLPEndpoint:    cfg.OTLPEndpoint,
		TracingEnabled:  cfg.TracingEnabled,
		TracingSampling: cfg.TracingSampling,
		LogLevel:        cfg.LogLevel,
		LogFormat:       cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer tp.Shutdown(ctx)

	logger := tp.Logger()

	hc := httputil.NewClient(tp.TracerProvider(), tp.Propagator(), cfg.DownstreamTimeout)
	backendClient := NewClient(cfg.DownstreamURL, hc, logger)
	svc := NewService(backendClient, tp.Tracer("frontend"), logger)

	mux := httputil.NewMux(tp.TracerProvider(), tp.Propagator())
	NewHandler(svc, logger).Register(mux)

	serverCfg := httputil.DefaultServerConfig(cfg.HTTPPort, cfg.ServiceName)
	server := httputil.NewServer(serverCfg, mux, logger)

	logger.Info("starting frontend service",
		"port", cfg.HTTPPort,
		"backend", cfg.DownstreamURL,
		"env", cfg.Environment,
	)

	// Run server (blocks until shutdown)
	return server.Run(ctx)
}
