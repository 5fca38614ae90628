package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/certwatch-app/certcheck/internal/checker"
	"github.com/certwatch-app/certcheck/internal/result"
	"github.com/certwatch-app/certcheck/internal/ui"
)

var (
	checkGrace int
	checkJSON  bool
)

var checkCmd = &cobra.Command{
	Use:   "check <domain>...",
	Short: "Check the certificates of one or more domains",
	Long: `Connect to each domain on port 443 and report the state of the
certificate it serves. A certificate expiring within the grace period is
reported as a warning.

Example:
  certcheck check example.com
  certcheck check example.com example.org --grace 30
  certcheck check example.com --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntVar(&checkGrace, "grace", checker.DefaultGrace,
		"days before expiry at which a certificate is reported as a warning")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print results as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("grace") {
		cfg.Check.Grace = checkGrace
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcomes, err := c.CheckMany(ctx, args)
	if err != nil {
		return err
	}

	return printOutcomes(cmd.OutOrStdout(), cmd.ErrOrStderr(), outcomes, checkJSON)
}

// printOutcomes writes the results to w and the hard errors to errW. It
// returns the combined hard errors so the command exits non-zero.
func printOutcomes(w, errW io.Writer, outcomes []checker.Outcome, asJSON bool) error {
	results, errs := checker.Split(outcomes)

	if asJSON {
		if err := writeJSON(w, results, len(outcomes) == 1); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			fmt.Fprintln(w, ui.RenderResult(r))
		}
	}

	for _, err := range errs {
		fmt.Fprintln(errW, ui.RenderError(err.Error()))
	}

	return multierr.Combine(errs...)
}

func writeJSON(w io.Writer, results []result.CheckResult, single bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if single {
		if len(results) == 0 {
			return nil
		}
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}
