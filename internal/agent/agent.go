// Package agent runs scheduled certificate checks and pushes the results as
// notifications.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/zapr"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/certwatch-app/certcheck/internal/checker"
	"github.com/certwatch-app/certcheck/internal/config"
	"github.com/certwatch-app/certcheck/internal/metrics"
	"github.com/certwatch-app/certcheck/internal/notify"
	"github.com/certwatch-app/certcheck/internal/result"
	"github.com/certwatch-app/certcheck/internal/schedule"
	"github.com/certwatch-app/certcheck/internal/version"
)

// ErrNoDomains is returned by RunOnce when there is nothing to check
var ErrNoDomains = errors.New("no domains to check")

// BatchChecker checks a list of domains
type BatchChecker interface {
	CheckMany(ctx context.Context, domains []string) ([]checker.Outcome, error)
}

// Notifier delivers messages
type Notifier interface {
	SendAll(ctx context.Context, msgs []notify.Message) error
}

// DomainSource supplies additional domains at the start of every run
type DomainSource interface {
	Domains(ctx context.Context) ([]string, error)
}

// Summary describes one run
type Summary struct {
	Results  []result.CheckResult
	Errors   []error
	Notified int
	Worst    result.State
}

// Agent orchestrates scheduled checks and notifications
type Agent struct {
	config   *config.Config
	checker  BatchChecker
	notifier Notifier
	logger   *zap.Logger
	sources  []DomainSource
}

// New creates a new Agent
func New(cfg *config.Config, c BatchChecker, n Notifier, logger *zap.Logger, sources ...DomainSource) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		config:   cfg,
		checker:  c,
		notifier: n,
		logger:   logger,
		sources:  sources,
	}
}

// Run starts the agent main loop. With push.interval set the agent checks
// immediately and then on every tick; otherwise it follows push.schedule.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("agent starting",
		zap.String("version", version.GetVersion()),
		zap.Int("domains", len(a.config.Push.Domains)),
		zap.Int("sources", len(a.sources)),
		zap.String("schedule", a.config.Push.Schedule),
		zap.Duration("interval", a.config.Push.Interval),
	)

	metrics.AgentInfo.WithLabelValues(version.GetVersion(), "push").Set(1)

	if a.config.Push.Interval > 0 {
		return a.runInterval(ctx, a.config.Push.Interval)
	}

	sched, err := schedule.Parse(a.config.Push.Schedule)
	if err != nil {
		return err
	}
	return a.runSchedule(ctx, sched)
}

func (a *Agent) runInterval(ctx context.Context, interval time.Duration) error {
	a.runLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("agent stopping")
			return ctx.Err()

		case <-ticker.C:
			a.logger.Debug("interval triggered")
			a.runLogged(ctx)
		}
	}
}

func (a *Agent) runSchedule(ctx context.Context, sched cron.Schedule) error {
	cronLogger := zapr.NewLogger(a.logger.Named("cron"))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	c.Schedule(sched, cron.FuncJob(func() {
		a.logger.Debug("schedule triggered")
		a.runLogged(ctx)
	}))

	a.logger.Info("next run scheduled", zap.Time("at", sched.Next(time.Now())))
	c.Start()

	<-ctx.Done()
	a.logger.Info("agent stopping")

	// Wait for a running check to finish
	<-c.Stop().Done()
	return ctx.Err()
}

func (a *Agent) runLogged(ctx context.Context) {
	if _, err := a.RunOnce(ctx); err != nil {
		a.logger.Error("run failed", zap.Error(err))
	}
}

// RunOnce checks every domain once and sends one message per result.
// Per-domain failures and failed deliveries are logged and reported in the
// Summary; only a failure of the whole batch is returned as an error.
func (a *Agent) RunOnce(ctx context.Context) (Summary, error) {
	start := time.Now()

	domains := a.domains(ctx)
	if len(domains) == 0 {
		metrics.PushRunsTotal.WithLabelValues("skipped").Inc()
		return Summary{}, ErrNoDomains
	}
	metrics.DomainsWatched.Set(float64(len(domains)))

	a.logger.Info("starting certificate check", zap.Int("domains", len(domains)))

	outcomes, err := a.checker.CheckMany(ctx, domains)
	if err != nil {
		metrics.PushRunsTotal.WithLabelValues("failed").Inc()
		return Summary{}, fmt.Errorf("check failed: %w", err)
	}

	results, errs := checker.Split(outcomes)
	for _, err := range errs {
		a.logger.Warn("domain check failed", zap.Error(err))
	}

	msgs := make([]notify.Message, 0, len(results))
	states := make([]result.State, 0, len(results))
	for _, r := range results {
		states = append(states, r.State)
		if a.config.Push.OnlyFailing && r.State == result.StateOK {
			continue
		}
		msgs = append(msgs, notify.MessageFor(r))
	}

	sendErr := a.notifier.SendAll(ctx, msgs)
	if sendErr != nil {
		a.logger.Warn("some notifications failed", zap.Error(sendErr))
	}

	status := "success"
	if len(errs) > 0 || sendErr != nil {
		status = "partial"
	}
	metrics.PushRunsTotal.WithLabelValues(status).Inc()

	summary := Summary{
		Results:  results,
		Errors:   errs,
		Notified: len(msgs),
		Worst:    result.Worst(states...),
	}

	a.logger.Info("run complete",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("checked", len(results)),
		zap.Int("failed", len(errs)),
		zap.Int("notified", len(msgs)),
		zap.String("worst", summary.Worst.String()),
	)

	return summary, nil
}

// domains merges configured and discovered domains, configured first.
// A failing source is logged and skipped.
func (a *Agent) domains(ctx context.Context) []string {
	seen := make(map[string]bool, len(a.config.Push.Domains))
	domains := make([]string, 0, len(a.config.Push.Domains))
	for _, d := range a.config.Push.Domains {
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}

	var discovered []string
	for _, src := range a.sources {
		found, err := src.Domains(ctx)
		if err != nil {
			a.logger.Warn("domain discovery failed", zap.Error(err))
			continue
		}
		for _, d := range found {
			if !seen[d] {
				seen[d] = true
				discovered = append(discovered, d)
			}
		}
	}
	sort.Strings(discovered)

	return append(domains, discovered...)
}
