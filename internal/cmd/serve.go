package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/certwatch-app/certcheck/internal/metrics"
	"github.com/certwatch-app/certcheck/internal/server"
	"github.com/certwatch-app/certcheck/internal/version"
)

var serveBind string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve certificate checks over HTTP",
	Long: `Start an HTTP service answering GET /<domain> with the JSON result of
a check. Several domains may be given separated by commas, and the grace
period can be overridden with ?grace=N.

Example:
  certcheck serve
  certcheck serve --bind 0.0.0.0:9292
  curl http://127.0.0.1:9292/example.com,example.org?grace=30`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveBind, "bind", "", "listen address (default: 127.0.0.1:9292)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("bind") {
		cfg.Server.Bind = serveBind
	}

	if validationErr := cfg.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	//nolint:errcheck // best effort flush
	defer logger.Sync()

	c, err := newChecker(cfg, cfg.CheckerOptions(true), logger)
	if err != nil {
		return err
	}

	metrics.AgentInfo.WithLabelValues(version.GetVersion(), "serve").Set(1)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting certcheck server",
		zap.String("version", version.GetVersion()),
		zap.String("bind", cfg.Server.Bind),
		zap.Int("grace", cfg.Check.Grace),
	)

	srv := server.New(cfg.Server.Bind, c, logger.Named("server"))
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
