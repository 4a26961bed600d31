package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phrazzld/taskhub/internal/cli/formatter"
	"github.com/phrazzld/taskhub/internal/client"
)

// API is the part of the client the commands use.
type API interface {
	Snapshot(ctx context.Context) client.Snapshot
	Login(ctx context.Context, email, password string) (string, error)
}

// App holds the dependencies shared by the commands. When API is nil it is
// built from flags and TASKHUB_* environment variables before a command runs.
type App struct {
	API    API
	Now    func() time.Time
	Logger *slog.Logger
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the taskctl command tree.
func NewRootCmd(app *App) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Workload, timeline and summary reports for taskhub",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.API != nil {
				return nil
			}
			cfg, err := clientConfig(v)
			if err != nil {
				return err
			}
			c, err := client.New(cfg, app.Logger)
			if err != nil {
				return err
			}
			app.API = c
			return nil
		},
	}

	defaults := client.DefaultConfig()
	flags := root.PersistentFlags()
	flags.String("api-url", defaults.BaseURL, "Base URL of the taskhub API")
	flags.String("token", "", "Bearer token (see taskctl login)")
	flags.Duration("timeout", defaults.Timeout, "Per-request timeout")
	flags.Duration("breaker-timeout", defaults.BreakerTimeout, "How long the circuit breaker stays open")
	flags.Uint32("max-failures", defaults.MaxFailures, "Consecutive failures that open the circuit breaker")

	for key, flag := range map[string]string{
		"api_url":         "api-url",
		"token":           "token",
		"timeout":         "timeout",
		"breaker_timeout": "breaker-timeout",
		"max_failures":    "max-failures",
	} {
		// Only fails for a nil flag.
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	v.SetEnvPrefix("TASKHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newWorkloadCmd(app),
		newTimelineCmd(app),
		newSummaryCmd(app),
		newExportCmd(app),
		newLoginCmd(app),
	)
	return root
}

func clientConfig(v *viper.Viper) (client.Config, error) {
	var cfg client.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to read client settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// printNotices writes one line per collection that failed to load.
func printNotices(w io.Writer, notices []client.Notice) {
	if len(notices) == 0 {
		return
	}
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		lines = append(lines, n.String())
	}
	fmt.Fprint(w, formatter.RenderNotices(lines))
}
