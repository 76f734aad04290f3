// Package main provides the entry point for the clickbot Discord bot.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clickbot-dev/clickbot/pkg/bot"
	"github.com/clickbot-dev/clickbot/pkg/config"
	"github.com/clickbot-dev/clickbot/pkg/executor"
	"github.com/clickbot-dev/clickbot/pkg/query"
	"github.com/clickbot-dev/clickbot/pkg/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clickbot",
		Short:         "Discord bot that runs bounded SQL queries against ClickHouse",
		Long:          "clickbot exposes a /query slash command. Submitted SQL is parsed, bounded to a row ceiling and a fixed output format, then forwarded to the ClickHouse HTTP interface.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	flags := cmd.Flags()
	flags.String("url", "", "ClickHouse HTTP base URL")
	flags.String("user", "", "ClickHouse user")
	flags.String("password", "", "ClickHouse password")
	flags.String("token", "", "Discord bot token")
	flags.Int("max-rows", 0, "Hard ceiling on returned rows")
	flags.String("format", "", "Output format forced onto every query")
	flags.String("dialect", "", "SQL dialect (clickhouse or generic)")
	flags.Duration("timeout", 0, "Per-query timeout")
	flags.String("metrics-listen", "", "Listen address for /health and /metrics")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	return cmd
}

// applyFlags copies explicitly set flags over the environment-derived
// configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL, _ = flags.GetString("url")
	}
	if flags.Changed("user") {
		cfg.User, _ = flags.GetString("user")
	}
	if flags.Changed("password") {
		cfg.Password, _ = flags.GetString("password")
	}
	if flags.Changed("token") {
		cfg.Token, _ = flags.GetString("token")
	}
	if flags.Changed("max-rows") {
		cfg.MaxRows, _ = flags.GetInt("max-rows")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("dialect") {
		cfg.Dialect, _ = flags.GetString("dialect")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("metrics-listen") {
		cfg.MetricsListen, _ = flags.GetString("metrics-listen")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Replies land in chat code blocks; ANSI sequences would show up raw.
	pterm.DisableStyling()

	dialect, err := query.ParseDialect(cfg.Dialect)
	if err != nil {
		return err
	}
	parser, err := query.NewParser(dialect)
	if err != nil {
		return err
	}
	rewriter, err := query.NewRewriter(parser, query.Policy{MaxRows: cfg.MaxRows, Format: cfg.Format})
	if err != nil {
		return err
	}

	endpoint, err := cfg.Endpoint()
	if err != nil {
		return err
	}
	exec := executor.New(endpoint, cfg.Timeout, logger)

	b, err := bot.New(cfg.Token, rewriter, exec, render.Render, cfg.Timeout, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	admin := newAdminServer(cfg.MetricsListen)
	go func() {
		logger.Info("admin server listening", zap.String("addr", cfg.MetricsListen))
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("admin server stopped", zap.Error(err))
		}
	}()

	if err := b.Start(); err != nil {
		return err
	}
	logger.Info("clickbot started",
		zap.Int("max_rows", cfg.MaxRows),
		zap.String("format", cfg.Format),
		zap.String("dialect", cfg.Dialect))

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = admin.Shutdown(shutdownCtx)
	return b.Close()
}

func newAdminServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(lvl)
	return logCfg.Build()
}
