// Command taskctl prints workload, timeline and summary reports computed from
// a running taskhub API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/phrazzld/taskhub/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Piped or redirected reports are written without ANSI styling.
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	root := cli.NewRootCmd(&cli.App{Logger: log})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
