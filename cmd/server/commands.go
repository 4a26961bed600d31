package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/platform/postgres"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskhub",
		Short:         "Project and task tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config-dir", ".", "Directory holding config.yaml and .env")
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// bootstrap loads configuration and installs the logger.
func bootstrap(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	dir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("bootstrap_admin", cfg.Auth.BootstrapAdminEmail != ""))
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			if migrate {
				if err := postgres.Migrate(ctx, db, "up", log); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <command> [args]",
		Short:     "Run a schema migration command",
		Long:      "Commands: " + strings.Join(postgres.MigrationCommands, ", "),
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(ctx, db, args[0], log, args[1:]...)
		},
	}
}
