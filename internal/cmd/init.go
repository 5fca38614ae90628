package cmd

import (
	"github.com/spf13/cobra"

	"github.com/certwatch-app/certcheck/internal/cmd/initcmd"
)

var (
	initOutputPath     string
	initNonInteractive bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new certcheck configuration",
	Long: `Interactively create a new certcheck configuration file.

The wizard will guide you through setting up:
  • Check settings (grace period, timeout, log level)
  • The HTTP service listen address
  • Push notifications (schedule, Pushover credentials, domains)

Examples:
  # Interactive mode (default)
  certcheck init

  # Specify output path
  certcheck init -o /etc/certcheck/certcheck.yaml

  # Non-interactive mode (for CI/scripting)
  DOMAIN_NAMES=example.com PUSHOVER_TOKEN=xxx PUSHOVER_USER=yyy certcheck init --non-interactive

Environment variables for non-interactive mode:
  CW_CHECK_GRACE     (optional) Grace period in days (default: 7)
  CW_CHECK_TIMEOUT   (optional) Check timeout (default: 10s)
  CW_LOG_LEVEL       (optional) Log level (default: info)
  CW_SERVER_BIND     (optional) HTTP listen address (default: 127.0.0.1:9292)
  DOMAIN_NAMES       (optional) Comma-separated domains to push, enables push
  CRON               (optional) Push schedule (default: 0 */5 * * * *)
  PUSHOVER_TOKEN     (required with domains) Pushover application token
  PUSHOVER_USER      (required with domains) Pushover user key`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", "./certcheck.yaml",
		"Output path for the configuration file")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false,
		"Run in non-interactive mode using environment variables")
}

func runInit(_ *cobra.Command, _ []string) error {
	if initNonInteractive {
		return initcmd.RunNonInteractive(initOutputPath)
	}

	wizard := initcmd.NewWizard()
	wizard.SetOutputPath(initOutputPath)
	return wizard.Run()
}
