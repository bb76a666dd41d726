package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/instantcocoa/meshtrace/pkg/config"
	"github.com/instantcocoa/meshtrace/services/backend"
	"github.com/instantcocoa/meshtrace/services/dataapi"
	"github.com/instantcocoa/meshtrace/services/frontend"
)

const version = "0.1.0"

var (
	frontendPort int
	backendPort  int
	dataapiPort  int

	frontendDownstream string
	backendDownstream  string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "meshtrace",
	Short: "meshtrace - a traced three-tier demo mesh",
	Long: `meshtrace runs a three-tier HTTP service chain (frontend, backend,
dataapi) instrumented with distributed tracing. Every request through the
chain produces a multi-service trace exported over OTLP.

Examples:
  # Run all three tiers in one process
  meshtrace all

  # Run a single tier
  meshtrace frontend --port 8080

  # Then drive the canonical fan-out trace
  curl http://localhost:8080/work
`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(frontendCmd)
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(dataapiCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(versionCmd)

	frontendCmd.Flags().IntVarP(&frontendPort, "port", "p", 8080, "port the frontend listens on")
	frontendCmd.Flags().StringVar(&frontendDownstream, "backend", "http://localhost:8081", "base URL of the backend service")

	backendCmd.Flags().IntVarP(&backendPort, "port", "p", 8081, "port the backend listens on")
	backendCmd.Flags().StringVar(&backendDownstream, "dataapi", "http://localhost:8082", "base URL of the dataapi service")

	dataapiCmd.Flags().IntVarP(&dataapiPort, "port", "p", 8082, "port the dataapi listens on")
}

var frontendCmd = &cobra.Command{
	Use:   "frontend",
	Short: "Start the frontend (web tier) service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig("frontend", "web", frontendPort, frontendDownstream)
		if err != nil {
			return err
		}
		return frontend.Run(cmd.Context(), cfg)
	},
}

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Start the backend (api tier) service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig("backend", "api", backendPort, backendDownstream)
		if err != nil {
			return err
		}
		return backend.Run(cmd.Context(), cfg)
	},
}

var dataapiCmd = &cobra.Command{
	Use:   "dataapi",
	Short: "Start the dataapi (data tier) service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig("dataapi", "data", dataapiPort, "")
		if err != nil {
			return err
		}
		return dataapi.Run(cmd.Context(), cfg)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Start all three tiers in one process",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		errCh := make(chan error, 3)
		start := func(run func() error) {
			go func() {
				if err := run(); err != nil {
					errCh <- err
				}
				// Any tier exiting takes the process down.
				cancel()
			}()
		}

		dataCfg, err := loadConfig("dataapi", "data", dataapiPort, "")
		if err != nil {
			return err
		}
		backCfg, err := loadConfig("backend", "api", backendPort, backendDownstream)
		if err != nil {
			return err
		}
		frontCfg, err := loadConfig("frontend", "web", frontendPort, frontendDownstream)
		if err != nil {
			return err
		}

		start(func() error { return dataapi.Run(ctx, dataCfg) })
		start(func() error { return backend.Run(ctx, backCfg) })
		start(func() error { return frontend.Run(ctx, frontCfg) })

		<-ctx.Done()
		select {
		case err := <-errCh:
			return err
		default:
			return nil
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("meshtrace version " + version)
	},
}

// loadConfig loads the environment config for a tier, then applies the CLI
// defaults for anything the environment left unset. Environment wins over
// flag defaults; explicit flags win by being the defaults shown here.
func loadConfig(serviceName, tier string, port int, downstream string) (*config.Base, error) {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, err
	}
	cfg.ServiceTier = tier
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = port
	}
	if cfg.DownstreamURL == "" {
		cfg.DownstreamURL = downstream
	}
	return cfg, nil
}
