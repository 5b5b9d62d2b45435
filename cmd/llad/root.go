package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lla-project/llad/cmd/llad/interactive"
	"github.com/lla-project/llad/pkg/config"
	"github.com/lla-project/llad/pkg/daemon"
	"github.com/lla-project/llad/pkg/log"
	"github.com/lla-project/llad/pkg/metrics"
)

type rootOptions struct {
	configPath    string
	logLevel      string
	statePath     string
	stateBackend  string
	metricsListen string
	eventLog      string
	interactive   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "llad",
		Short:         "llad is a lighting daemon moving DMX frames between devices",
		Long:          `llad binds the ports of lighting devices to universes and keeps every port of a universe in sync.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts.interactive)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.statePath, "state", "", "State file (file backend) or directory (badger backend)")
	flags.StringVar(&opts.stateBackend, "state-backend", config.BackendFile, "State backend: file, badger")
	flags.StringVar(&opts.metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address")
	flags.StringVar(&opts.eventLog, "event-log", "", "Append CBOR events to this file")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Start the interactive console")

	cmd.AddCommand(newEventsCmd())
	return cmd
}

// loadConfig reads the configuration file, if any, and applies the flags
// given on the command line on top of it.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("state") {
		cfg.State.Path = opts.statePath
	}
	if flags.Changed("state-backend") {
		cfg.State.Backend = opts.stateBackend
	}
	if flags.Changed("metrics-listen") {
		cfg.Metrics.Listen = opts.metricsListen
	}
	if flags.Changed("event-log") {
		cfg.EventLog = opts.eventLog
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, cfg *config.Config, withConsole bool) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(cfg)

	var eventLoggers []log.Logger
	if cfg.EventLog != "" {
		fileLogger, err := log.NewFileLogger(cfg.EventLog)
		if err != nil {
			return err
		}
		defer fileLogger.Close()
		eventLoggers = append(eventLoggers, fileLogger)
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		eventLoggers = append(eventLoggers, log.NewSlogAdapter(logger))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d, err := daemon.New(cfg,
		daemon.WithLogger(logger),
		daemon.WithEventLogger(log.NewMultiLogger(eventLoggers...)),
		daemon.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		return err
	}
	if err := d.Init(ctx); err != nil {
		return err
	}

	if cfg.Metrics.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if withConsole {
		console, err := interactive.New(d)
		if err != nil {
			d.Terminate()
			_ = d.Run(ctx)
			return err
		}
		go console.Run(ctx, cancel)
	}

	return d.Run(ctx)
}

func metricsMux(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	return mux
}
