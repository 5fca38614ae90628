// Package checker retrieves the TLS certificate served by a host and
// classifies it against a grace period, one domain at a time or as a
// bounded concurrent batch.
package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/certwatch-app/certcheck/internal/metrics"
	"github.com/certwatch-app/certcheck/internal/result"
)

// Defaults for Options
const (
	DefaultGrace       = 7
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 10
	MaxConcurrency     = 100
)

// Fetcher returns the DER-encoded peer certificate chain of a host, leaf
// first. Connection failures must be reported as *ConnectError.
type Fetcher interface {
	Fetch(ctx context.Context, domain string) ([][]byte, error)
}

// Options controls how checks are run.
// Fields are ordered for optimal memory alignment
type Options struct {
	Timeout     time.Duration
	Grace       int
	Concurrency int
	Elapsed     bool
	FailFast    bool
	// DomainMetrics exports per-domain expiry gauges. Enable it only for a
	// bounded domain list.
	DomainMetrics bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Grace:       DefaultGrace,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
}

// Validate checks the options for consistency
func (o Options) Validate() error {
	if o.Grace < 0 {
		return fmt.Errorf("grace period must be >= 0, got %d", o.Grace)
	}
	if o.Concurrency < 1 || o.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d, got %d", MaxConcurrency, o.Concurrency)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", o.Timeout)
	}
	return nil
}

// Outcome is the per-domain entry of a batch: either a Result or, when the
// check could not produce one, Err.
type Outcome struct {
	Err    error
	Domain string
	Result result.CheckResult
}

// OK reports whether the outcome carries a result
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Split separates the results of a batch from its hard errors, keeping the
// input order of both.
func Split(outcomes []Outcome) ([]result.CheckResult, []error) {
	results := make([]result.CheckResult, 0, len(outcomes))
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
			continue
		}
		results = append(results, o.Result)
	}
	return results, errs
}

// Checker runs certificate checks with a fixed set of options
type Checker struct {
	fetcher Fetcher
	logger  *zap.Logger
	now     func() time.Time
	opts    Options
}

// New creates a Checker fetching certificates with fetcher
func New(fetcher Fetcher, opts Options, logger *zap.Logger) (*Checker, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Checker{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
		opts:    opts,
	}, nil
}

// WithGrace returns a Checker sharing the same fetcher but classifying with
// a different grace period.
func (c *Checker) WithGrace(days int) (*Checker, error) {
	if days < 0 {
		return nil, fmt.Errorf("grace period must be >= 0, got %d", days)
	}
	clone := *c
	clone.opts.Grace = days
	return &clone, nil
}

// WithDomainMetrics returns a Checker sharing the same fetcher with
// per-domain expiry gauges switched on or off.
func (c *Checker) WithDomainMetrics(on bool) *Checker {
	clone := *c
	clone.opts.DomainMetrics = on
	return &clone
}

// Grace returns the grace period in days
func (c *Checker) Grace() int {
	return c.opts.Grace
}

// Check validates and checks a single domain
func (c *Checker) Check(ctx context.Context, domain string) (result.CheckResult, error) {
	if err := ValidateDomain(domain); err != nil {
		return result.CheckResult{}, err
	}
	return c.check(ctx, domain)
}

// CheckMany checks every domain concurrently and returns one Outcome per
// domain, in input order. All domains are validated before any connection
// is attempted; an invalid name fails the whole batch.
//
// By default a hard error for one domain is kept in its Outcome. With
// FailFast the first hard error cancels the remaining checks and is returned.
func (c *Checker) CheckMany(ctx context.Context, domains []string) ([]Outcome, error) {
	if err := ValidateDomains(domains); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}()

	outcomes := make([]Outcome, len(domains))
	sem := semaphore.NewWeighted(int64(c.opts.Concurrency))

	var g *errgroup.Group
	gctx := ctx
	if c.opts.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}

	for i, domain := range domains {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				outcomes[i] = Outcome{Domain: domain, Err: c.hardError(domain, err)}
				if c.opts.FailFast {
					return outcomes[i].Err
				}
				return nil
			}
			defer sem.Release(1)

			r, err := c.check(gctx, domain)
			outcomes[i] = Outcome{Domain: domain, Result: r, Err: err}
			if err != nil && c.opts.FailFast {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("Batch completed",
		zap.Int("domains", len(domains)),
		zap.Duration("duration", time.Since(start)))

	return outcomes, nil
}

// check runs one domain through fetch, parse and classify. Connection
// failures and unreadable certificates become results; only a canceled
// context or an unexpected fetcher error is returned as an error.
func (c *Checker) check(ctx context.Context, domain string) (result.CheckResult, error) {
	start := time.Now()
	checkedAt := c.now()

	if err := ctx.Err(); err != nil {
		return result.CheckResult{}, c.hardError(domain, err)
	}

	fctx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	chain, err := c.fetcher.Fetch(fctx, domain)

	var r result.CheckResult
	switch {
	case err != nil:
		var connErr *ConnectError
		if !errors.As(err, &connErr) {
			return result.CheckResult{}, c.hardError(domain, err)
		}
		// The caller gave up; the host is not to blame
		if ctx.Err() != nil {
			return result.CheckResult{}, c.hardError(domain, ctx.Err())
		}
		c.logger.Debug("Connection failed",
			zap.String("domain", domain),
			zap.String("op", connErr.Op),
			zap.Error(connErr.Err))
		r = result.NewExpired(domain, checkedAt)

	case len(chain) == 0:
		c.logger.Debug("No peer certificate", zap.String("domain", domain))
		r = result.NewUnknown(domain, checkedAt)

	default:
		validity, perr := ParseValidity(chain[0])
		if perr != nil {
			c.logger.Debug("Unreadable certificate",
				zap.String("domain", domain),
				zap.Error(perr))
			r = result.NewUnknown(domain, checkedAt)
			break
		}
		r = result.NewClassified(domain, checkedAt, validity.NotAfter, c.opts.Grace)
	}

	elapsed := time.Since(start)
	if c.opts.Elapsed {
		r = r.WithElapsed(elapsed)
	}
	metrics.ObserveCheck(r, elapsed, c.opts.DomainMetrics)

	c.logger.Debug("Checked certificate",
		zap.String("domain", domain),
		zap.String("state", r.State.String()),
		zap.Int64("days", r.Days))

	return r, nil
}

func (c *Checker) hardError(domain string, err error) error {
	metrics.CheckErrorsTotal.Inc()
	return &DomainError{Domain: domain, Err: err}
}
