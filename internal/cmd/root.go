// Package cmd provides the certcheck CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/certwatch-app/certcheck/internal/checker"
	"github.com/certwatch-app/certcheck/internal/config"
	"github.com/certwatch-app/certcheck/internal/logging"
	"github.com/certwatch-app/certcheck/internal/version"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "certcheck",
	Short: "certcheck - TLS certificate expiry checker",
	Long: `certcheck connects to HTTPS hosts, reads the certificate they serve
and reports whether it is valid, about to expire or expired.

Check domains once:
  certcheck check example.com example.org

Serve checks over HTTP:
  certcheck serve --bind 127.0.0.1:9292

Push results to Pushover on a schedule:
  certcheck push -c /path/to/certcheck.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./certcheck.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level ("+strings.Join(logging.Levels, ", ")+")")

	// Bind flags to viper
	//nolint:errcheck // error is ignored because the flag is guaranteed to exist
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	//nolint:errcheck // error is ignored because the flag is guaranteed to exist
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/certcheck")
		viper.SetConfigType("yaml")
		viper.SetConfigName("certcheck")
	}

	// Read environment variables with CW_ prefix, e.g. CW_CHECK_GRACE
	viper.SetEnvPrefix("CW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Failed to read config file:", err)
	}
}

// loadConfig loads the configuration and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if verbose && logLevel == "" {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// newLogger builds the process logger from the configured level
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// newChecker wires the trust anchors, the TLS connector and the checker
func newChecker(cfg *config.Config, opts checker.Options, logger *zap.Logger) (*checker.Checker, error) {
	trust, err := checker.LoadTrustAnchors(cfg.Check.CAFile)
	if err != nil {
		return nil, err
	}

	conn := checker.NewConnector(trust, cfg.ConnectorOptions())

	c, err := checker.New(conn, opts, logger.Named("checker"))
	if err != nil {
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}
	return c, nil
}

// GetVersion returns the version information
func GetVersion() string {
	return version.GetVersion()
}
