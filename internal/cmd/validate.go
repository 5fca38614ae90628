package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/certwatch-app/certcheck/internal/ui"
)

var validatePush bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the certcheck configuration file without running any check.
With --push the settings of the push job are validated as well.

Example:
  certcheck validate -c /path/to/certcheck.yaml
  certcheck validate --push`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validatePush, "push", false, "also validate the push job settings")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	validateFn := cfg.Validate
	if validatePush {
		validateFn = cfg.ValidatePush
	}
	if err := validateFn(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, ui.RenderSuccess("Configuration is valid!"))
	fmt.Fprintf(w, "  Grace period: %d days\n", cfg.Check.Grace)
	fmt.Fprintf(w, "  Timeout: %s\n", cfg.Check.Timeout)
	fmt.Fprintf(w, "  Concurrency: %d\n", cfg.Check.Concurrency)
	fmt.Fprintf(w, "  Server bind: %s\n", cfg.Server.Bind)

	if validatePush {
		fmt.Fprintf(w, "  Push domains: %s\n", strings.Join(cfg.Push.Domains, ", "))
		if cfg.Push.Interval > 0 {
			fmt.Fprintf(w, "  Push interval: %s\n", cfg.Push.Interval)
		} else {
			fmt.Fprintf(w, "  Push schedule: %s\n", cfg.Push.Schedule)
		}
		fmt.Fprintf(w, "  cert-manager discovery: %v\n", cfg.Push.Discovery.CertManager)
	}

	return nil
}
