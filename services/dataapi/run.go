package dataapi

import (
	"context"
	"fmt"

	"github.com/instantcocoa/meshtrace/pkg/config"
	"github.com/instantcocoa/meshtrace/pkg/httputil"
	"github.com/instantcocoa/meshtrace/pkg/latency"
	"github.com/instantcocoa/meshtrace/pkg/telemetry"
)

// Run wires the data tier and serves HTTP until shutdown.
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

	var opts []Option
	if cfg.LatencyProfilePath != "" {
		profile, err := latency.LoadProfile(cfg.LatencyProfilePath)
		if err != nil {
			return err
		}
		opts = append(opts, WithQuerySampler(latency.NewSampler(profile)))
	}

	svc := NewService(NewStore(), tp.Tracer("dataapi"), logger, opts...)

	mux := httputil.NewMux(tp.TracerProvider(), tp.Propagator())
	NewHandler(svc, logger).Register(mux)

	serverCfg := httputil.DefaultServerConfig(cfg.HTTPPort, cfg.ServiceName)
	server := httputil.NewServer(serverCfg, mux, logger)

	logger.Info("starting dataapi service",
		"port", cfg.HTTPPort,
		"env", cfg.Environment,
	)

	// Run server (blocks until shutdown)
	return server.Run(ctx)
}
