package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/legajos-penal/internal/app"
	"github.com/turtacn/legajos-penal/internal/config"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
)

// NewServeCmd starts the HTTP API and blocks until SIGINT or SIGTERM.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Connect to PostgreSQL, Redis and (optionally) MinIO, then serve the API until
interrupted. When the configuration came from a file, edits to log.level are
applied without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			log := cliCtx.Logger
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cliCtx.Config, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if cliCtx.ConfigPath != "" {
				watchLogLevel(cliCtx.ConfigPath, cliCtx.Config.Log.Level, log)
			}
			return a.Run(ctx)
		},
	}
}

// watchLogLevel follows path and applies log.level changes to log.
func watchLogLevel(path, current string, log logging.Logger) {
	err := config.Watch(path, func(cfg *config.Config) {
		if cfg.Log.Level == current {
			return
		}
		if logging.SetLevel(log, cfg.Log.Level) {
			log.Info("log level changed", logging.String("from", current), logging.String("to", cfg.Log.Level))
			current = cfg.Log.Level
		}
	}, func(err error) {
		log.Warn("ignoring invalid configuration change", logging.Err(err))
	})
	if err != nil {
		log.Warn("config watch disabled", logging.String("path", path), logging.Err(err))
	}
}
