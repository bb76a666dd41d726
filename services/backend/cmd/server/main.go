package main

import (
	"context"
	"fmt"
	"os"

	"github.com/instantcocoa/meshtrace/pkg/config"
	"github.com/instantcocoa/meshtrace/services/backend"
)

const (
	serviceName       = "backend"
	serviceTier       = "api"
	defaultPort       = 8081
	defaultDownstream = "http://localhost:8082"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(serviceName)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ServiceTier = serviceTier
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = defaultPort
	}
	if cfg.DownstreamURL == "" {
		cfg.DownstreamURL = defaultDownstream
	}

	return backend.Run(ctx, cfg)
}
