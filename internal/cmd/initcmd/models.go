// Package initcmd provides the interactive init command wizard.
package initcmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/certwatch-app/certcheck/internal/checker"
	"github.com/certwatch-app/certcheck/internal/config"
	"github.com/certwatch-app/certcheck/internal/schedule"
)

// WizardState holds all collected input during the wizard.
type WizardState struct {
	// Output configuration
	ConfigPath    string
	OverwriteFile bool

	// Check configuration
	Grace    string
	Timeout  string
	LogLevel string

	// Server configuration
	Bind string

	// Push configuration
	EnablePush    bool
	Schedule      string
	PushoverToken string
	PushoverUser  string
	OnlyFailing   bool

	// Domains to push
	Domains       []string
	CurrentDomain string
	AddAnother    bool
}

// NewWizardState creates a new WizardState with sensible defaults.
func NewWizardState() *WizardState {
	return &WizardState{
		ConfigPath: "./certcheck.yaml",
		Grace:      strconv.Itoa(checker.DefaultGrace),
		Timeout:    checker.DefaultTimeout.String(),
		LogLevel:   "info",
		Bind:       config.DefaultBind,
		Schedule:   schedule.DefaultExpression,
		Domains:    make([]string, 0),
	}
}

// ToConfig converts the wizard state to a config.Config struct.
func (s *WizardState) ToConfig() (*config.Config, error) {
	grace, err := strconv.Atoi(strings.TrimSpace(s.Grace))
	if err != nil {
		return nil, fmt.Errorf("invalid grace period: %w", err)
	}

	timeout, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}

	cfg := &config.Config{
		LogLevel: s.LogLevel,
		Check: config.CheckConfig{
			Grace:       grace,
			Timeout:     timeout,
			Concurrency: checker.DefaultConcurrency,
			Port:        checker.DefaultPort,
		},
		Server: config.ServerConfig{
			Bind:    s.Bind,
			Elapsed: true,
		},
		Push: config.PushConfig{
			Schedule:    schedule.DefaultExpression,
			MetricsPort: config.DefaultMetricsPort,
			Pushover: config.PushoverConfig{
				Endpoint: config.DefaultPushoverEndpoint,
				Timeout:  10 * time.Second,
			},
		},
	}

	if s.EnablePush {
		cfg.Push.Domains = append([]string(nil), s.Domains...)
		cfg.Push.Schedule = s.Schedule
		cfg.Push.OnlyFailing = s.OnlyFailing
		cfg.Push.Pushover.Token = strings.TrimSpace(s.PushoverToken)
		cfg.Push.Pushover.User = strings.TrimSpace(s.PushoverUser)
	}

	return cfg, nil
}

// Validate validates the generated configuration, including the push
// section when push notifications were enabled.
func (s *WizardState) Validate(cfg *config.Config) error {
	if s.EnablePush {
		return cfg.ValidatePush()
	}
	return cfg.Validate()
}

// parseDomains parses comma-separated domains into a slice.
func parseDomains(domainsStr string) []string {
	if strings.TrimSpace(domainsStr) == "" {
		return nil
	}

	parts := strings.Split(domainsStr, ",")
	domains := make([]string, 0, len(parts))
	for _, p := range parts {
		d := strings.TrimSpace(p)
		if d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

// ResetCurrentDomain resets the current domain input for the next entry.
func (s *WizardState) ResetCurrentDomain() {
	s.CurrentDomain = ""
	s.AddAnother = false
}

// SaveCurrentDomain saves the current domain to the list.
func (s *WizardState) SaveCurrentDomain() {
	d := strings.TrimSpace(s.CurrentDomain)
	if d == "" {
		return
	}
	for _, existing := range s.Domains {
		if existing == d {
			return
		}
	}
	s.Domains = append(s.Domains, d)
}
