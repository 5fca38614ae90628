package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/certwatch-app/certcheck/internal/agent"
	"github.com/certwatch-app/certcheck/internal/config"
	"github.com/certwatch-app/certcheck/internal/discovery"
	"github.com/certwatch-app/certcheck/internal/metrics"
	"github.com/certwatch-app/certcheck/internal/notify"
)

var pushOnce bool

var pushCmd = &cobra.Command{
	Use:     "push",
	Aliases: []string{"start"},
	Short:   "Check domains on a schedule and push the results to Pushover",
	Long: `Run the push job: check every configured domain on the configured
schedule and send one Pushover notification per result.

Domains, schedule and credentials can also be given with the environment
variables DOMAIN_NAMES, CRON, PUSHOVER_TOKEN and PUSHOVER_USER.

Example:
  certcheck push -c /path/to/certcheck.yaml
  DOMAIN_NAMES=example.com,example.org CRON="0 0 8 * * *" certcheck push`,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().BoolVar(&pushOnce, "once", false, "run the checks once and exit")
}

func runPush(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if validationErr := cfg.ValidatePush(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	//nolint:errcheck // best effort flush
	defer logger.Sync()

	c, err := newChecker(cfg, cfg.CheckerOptions(false), logger)
	if err != nil {
		return err
	}

	var sources []agent.DomainSource
	if cfg.Push.Discovery.CertManager {
		src, srcErr := discovery.NewInClusterSource(cfg.Push.Discovery.Namespaces, logger.Named("discovery"))
		if srcErr != nil {
			return fmt.Errorf("failed to set up cert-manager discovery: %w", srcErr)
		}
		sources = append(sources, src)
	}

	n := notify.New(cfg.Push.Pushover, logger.Named("pushover"))
	a := agent.New(cfg, c, n, logger.Named("agent"), sources...)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if pushOnce {
		summary, runErr := a.RunOnce(ctx)
		if runErr != nil {
			return runErr
		}
		if len(summary.Errors) > 0 {
			return fmt.Errorf("%d domain(s) could not be checked", len(summary.Errors))
		}
		return nil
	}

	stopMetrics := startMetricsServer(cfg, logger)
	defer stopMetrics()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("agent error: %w", err)
	}

	logger.Info("agent stopped gracefully")
	return nil
}

// startMetricsServer serves /metrics and /healthz on push.metrics_port.
// A port of 0 disables it.
func startMetricsServer(cfg *config.Config, logger *zap.Logger) func() {
	if cfg.Push.MetricsPort == 0 {
		return func() {}
	}

	srv := metrics.NewServer(fmt.Sprintf(":%d", cfg.Push.MetricsPort))
	go func() {
		logger.Info("metrics server listening", zap.Int("port", cfg.Push.MetricsPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		//nolint:errcheck // best effort on shutdown
		srv.Shutdown(ctx)
	}
}
