// Package config handles configuration loading and validation for certcheck.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/certwatch-app/certcheck/internal/checker"
	"github.com/certwatch-app/certcheck/internal/logging"
	"github.com/certwatch-app/certcheck/internal/schedule"
)

// Defaults
const (
	DefaultBind             = "127.0.0.1:9292"
	DefaultPushoverEndpoint = "https://api.pushover.net/1/messages.json"
	DefaultMetricsPort      = 9402
)

// Config represents the complete certcheck configuration
type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Push     PushConfig   `mapstructure:"push"`
	Server   ServerConfig `mapstructure:"server"`
	Check    CheckConfig  `mapstructure:"check"`
}

// CheckConfig controls how certificates are checked
// Fields are ordered for optimal memory alignment
type CheckConfig struct {
	CAFile             string        `mapstructure:"ca_file"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Grace              int           `mapstructure:"grace"`
	Concurrency        int           `mapstructure:"concurrency"`
	Port               int           `mapstructure:"port"`
	Elapsed            bool          `mapstructure:"elapsed"`
	FailFast           bool          `mapstructure:"fail_fast"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

// ServerConfig contains HTTP service settings
type ServerConfig struct {
	Bind    string `mapstructure:"bind"`
	Elapsed bool   `mapstructure:"elapsed"`
}

// PushConfig contains scheduled notification settings
// Fields are ordered for optimal memory alignment
type PushConfig struct {
	Schedule    string          `mapstructure:"schedule"`
	Domains     []string        `mapstructure:"domains"`
	Pushover    PushoverConfig  `mapstructure:"pushover"`
	Discovery   DiscoveryConfig `mapstructure:"discovery"`
	Interval    time.Duration   `mapstructure:"interval"`
	MetricsPort int             `mapstructure:"metrics_port"`
	OnlyFailing bool            `mapstructure:"only_failing"`
}

// PushoverConfig contains Pushover API credentials
type PushoverConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"`
	User     string        `mapstructure:"user"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DiscoveryConfig controls discovery of domains from cert-manager Certificates
type DiscoveryConfig struct {
	Namespaces  []string `mapstructure:"namespaces"` // Empty watches all namespaces
	CertManager bool     `mapstructure:"certmanager"`
}

// Load reads configuration from viper
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	bindCompatEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Push.Domains = normalizeDomains(cfg.Push.Domains)

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// Check defaults
	v.SetDefault("check.grace", checker.DefaultGrace)
	v.SetDefault("check.timeout", checker.DefaultTimeout.String())
	v.SetDefault("check.concurrency", checker.DefaultConcurrency)
	v.SetDefault("check.port", checker.DefaultPort)
	v.SetDefault("check.elapsed", false)
	v.SetDefault("check.fail_fast", false)
	v.SetDefault("check.ca_file", "")
	v.SetDefault("check.insecure_skip_verify", false)

	// Server defaults
	v.SetDefault("server.bind", DefaultBind)
	v.SetDefault("server.elapsed", true)

	// Push defaults
	v.SetDefault("push.domains", []string{})
	v.SetDefault("push.schedule", schedule.DefaultExpression)
	v.SetDefault("push.interval", "0s")
	v.SetDefault("push.only_failing", false)
	v.SetDefault("push.metrics_port", DefaultMetricsPort)
	v.SetDefault("push.pushover.endpoint", DefaultPushoverEndpoint)
	v.SetDefault("push.pushover.token", "")
	v.SetDefault("push.pushover.user", "")
	v.SetDefault("push.pushover.timeout", "10s")
	v.SetDefault("push.discovery.certmanager", false)
	v.SetDefault("push.discovery.namespaces", []string{})
}

// bindCompatEnv accepts the environment variable names used by the
// standalone push tool alongside the CW_ prefixed ones.
func bindCompatEnv(v *viper.Viper) {
	//nolint:errcheck // BindEnv only fails without a key
	v.BindEnv("push.domains", "CW_PUSH_DOMAINS", "DOMAIN_NAMES")
	//nolint:errcheck // BindEnv only fails without a key
	v.BindEnv("push.schedule", "CW_PUSH_SCHEDULE", "CRON")
	//nolint:errcheck // BindEnv only fails without a key
	v.BindEnv("push.pushover.token", "CW_PUSH_PUSHOVER_TOKEN", "PUSHOVER_TOKEN")
	//nolint:errcheck // BindEnv only fails without a key
	v.BindEnv("push.pushover.user", "CW_PUSH_PUSHOVER_USER", "PUSHOVER_USER")
}

// normalizeDomains lowercases names and drops a trailing dot the same way
// cert-manager discovery does, so both sources de-duplicate against each other.
func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	seen := make(map[string]bool, len(domains))
	for _, d := range domains {
		// DOMAIN_NAMES may arrive as a single comma-separated value
		for _, part := range checker.SplitDomains(d) {
			part = strings.ToLower(strings.TrimSuffix(part, "."))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the settings shared by every command
func (c *Config) Validate() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}

	if err := c.validateCheck(); err != nil {
		return fmt.Errorf("check: %w", err)
	}

	if err := c.validateServer(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	return nil
}

// ValidatePush validates the settings needed by the push job
func (c *Config) ValidatePush() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if err := c.validatePush(); err != nil {
		return fmt.Errorf("push: %w", err)
	}

	return nil
}

func (c *Config) validateLogLevel() error {
	for _, l := range logging.Levels {
		if c.LogLevel == l {
			return nil
		}
	}
	return fmt.Errorf("log_level must be one of: %s", strings.Join(logging.Levels, ", "))
}

func (c *Config) validateCheck() error {
	if c.Check.Grace < 0 {
		return fmt.Errorf("grace must be >= 0")
	}

	if c.Check.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second")
	}

	if c.Check.Concurrency < 1 || c.Check.Concurrency > checker.MaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", checker.MaxConcurrency)
	}

	if c.Check.Port < 1 || c.Check.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	return nil
}

func (c *Config) validateServer() error {
	host, port, err := net.SplitHostPort(c.Server.Bind)
	if err != nil {
		return fmt.Errorf("bind must be host:port: %w", err)
	}

	if host != "" && net.ParseIP(host) == nil && host != "localhost" {
		return fmt.Errorf("bind host must be an IP address or localhost")
	}

	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("bind port must be between 0 and 65535")
	}

	return nil
}

func (c *Config) validatePush() error {
	if c.Push.Interval < 0 {
		return fmt.Errorf("interval must not be negative")
	}

	if c.Push.Interval > 0 && c.Push.Interval < time.Second {
		return fmt.Errorf("interval must be at least 1 second")
	}

	if c.Push.Interval == 0 {
		if _, err := schedule.Parse(c.Push.Schedule); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
	}

	if len(c.Push.Domains) == 0 && !c.Push.Discovery.CertManager {
		return fmt.Errorf("at least one domain is required unless discovery.certmanager is enabled")
	}

	seen := make(map[string]bool)
	for i, d := range c.Push.Domains {
		if err := checker.ValidateDomain(d); err != nil {
			return fmt.Errorf("domains[%d]: %w", i, err)
		}
		if seen[d] {
			return fmt.Errorf("domains[%d]: duplicate domain '%s'", i, d)
		}
		seen[d] = true
	}

	if c.Push.MetricsPort < 0 || c.Push.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port must be between 0 and 65535")
	}

	return c.validatePushover()
}

func (c *Config) validatePushover() error {
	p := c.Push.Pushover

	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return fmt.Errorf("pushover: invalid endpoint URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("pushover: endpoint must use http or https scheme")
	}

	if p.Token == "" {
		return fmt.Errorf("pushover: token is required")
	}

	if p.User == "" {
		return fmt.Errorf("pushover: user is required")
	}

	if p.Timeout < time.Second {
		return fmt.Errorf("pushover: timeout must be at least 1 second")
	}

	return nil
}

// CheckerOptions returns the batch options. forServer also honours
// server.elapsed and turns off per-domain gauges, since HTTP callers choose
// the domains.
func (c *Config) CheckerOptions(forServer bool) checker.Options {
	return checker.Options{
		Grace:         c.Check.Grace,
		Timeout:       c.Check.Timeout,
		Concurrency:   c.Check.Concurrency,
		Elapsed:       c.Check.Elapsed || (forServer && c.Server.Elapsed),
		FailFast:      c.Check.FailFast,
		DomainMetrics: !forServer,
	}
}

// ConnectorOptions returns the TLS connector options
func (c *Config) ConnectorOptions() checker.ConnectorOptions {
	return checker.ConnectorOptions{
		Port:               c.Check.Port,
		Timeout:            c.Check.Timeout,
		InsecureSkipVerify: c.Check.InsecureSkipVerify,
	}
}
