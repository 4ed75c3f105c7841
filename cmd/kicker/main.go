// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/kicker/apiclient"
	"github.com/danielhkuo/kicker/cliparse"
	"github.com/danielhkuo/kicker/connectivity"
	"github.com/danielhkuo/kicker/kickerapp"
	"github.com/danielhkuo/kicker/navigation"
	"github.com/danielhkuo/kicker/pages"
	"github.com/danielhkuo/kicker/tui"
)

const defaultServer = "http://localhost:3318"

// options are the flags shared by every command.
type options struct {
	server  string
	token   string
	mode    string
	open    string
	reuse   string
	logFile string
	probe   time.Duration
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "kicker",
		Short: "Terminal client for the kicker league",
		Long: `Browse your dashboard, rankings and community and record games
from the terminal.

The server address and player token fall back to KICKER_SERVER and
KICKER_TOKEN. Get a token with "kicker signup" or "kicker login".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cliparse.LoadEnvFile(""); err != nil {
				return fmt.Errorf("invalid env file: %w", err)
			}
			opts.resolve()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return browse(cmd.Context(), opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", "", "Server URL (default "+defaultServer+")")
	flags.StringVar(&opts.token, "token", "", "Player token")
	rootCmd.Flags().StringVar(&opts.mode, "mode", "history", "Address mode: history or hash")
	rootCmd.Flags().StringVar(&opts.open, "open", "", "Path to open at start, e.g. /app/rankings")
	rootCmd.Flags().StringVar(&opts.reuse, "reuse", "id", "Keep the page on same-page navigation by id or params")
	rootCmd.Flags().StringVar(&opts.logFile, "log", "", "Write logs to this file")
	rootCmd.Flags().DurationVar(&opts.probe, "probe", connectivity.DefaultInterval, "Server health check interval")

	rootCmd.AddCommand(signupCmd(&opts), loginCmd(&opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// resolve fills unset flags from the environment.
func (o *options) resolve() {
	if o.server == "" {
		o.server = os.Getenv("KICKER_SERVER")
	}
	if o.server == "" {
		o.server = defaultServer
	}
	if o.token == "" {
		o.token = os.Getenv("KICKER_TOKEN")
	}
}

func browse(ctx context.Context, opts options) error {
	if opts.token == "" {
		return errors.New("player token required (use --token, KICKER_TOKEN or kicker login)")
	}
	mode, err := navigation.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	reuse, err := pages.ParseReusePolicy(opts.reuse)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))

	client := apiclient.New(opts.server, apiclient.WithToken(opts.token))
	region := tui.NewRegion()
	app, err := kickerapp.New(client, region, kickerapp.Config{
		Mode:    mode,
		Start:   opts.open,
		Reuse:   reuse,
		OnError: region.ReportError,
	})
	if err != nil {
		return err
	}
	defer app.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go connectivity.NewProber(client, app.Watcher(), opts.probe).Run(ctx)

	slog.Info("kicker client started", "server", opts.server, "mode", mode, "reuse", reuse)
	err = tui.Run(ctx, app, region)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
