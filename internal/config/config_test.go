package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.Check.Grace != 7 {
		t.Errorf("Check.Grace = %v, want 7", cfg.Check.Grace)
	}
	if cfg.Check.Timeout != 10*time.Second {
		t.Errorf("Check.Timeout = %v, want 10s", cfg.Check.Timeout)
	}
	if cfg.Check.Concurrency != 10 {
		t.Errorf("Check.Concurrency = %v, want 10", cfg.Check.Concurrency)
	}
	if cfg.Check.Port != 443 {
		t.Errorf("Check.Port = %v, want 443", cfg.Check.Port)
	}
	if cfg.Check.FailFast {
		t.Error("Check.FailFast = true, want false")
	}
	if cfg.Server.Bind != "127.0.0.1:9292" {
		t.Errorf("Server.Bind = %v, want 127.0.0.1:9292", cfg.Server.Bind)
	}
	if !cfg.Server.Elapsed {
		t.Error("Server.Elapsed = false, want true")
	}
	if cfg.Push.Schedule != "0 */5 * * * *" {
		t.Errorf("Push.Schedule = %v, want 0 */5 * * * *", cfg.Push.Schedule)
	}
	if cfg.Push.Pushover.Endpoint != DefaultPushoverEndpoint {
		t.Errorf("Push.Pushover.Endpoint = %v, want %v", cfg.Push.Pushover.Endpoint, DefaultPushoverEndpoint)
	}
	if cfg.Push.Pushover.Timeout != 10*time.Second {
		t.Errorf("Push.Pushover.Timeout = %v, want 10s", cfg.Push.Pushover.Timeout)
	}
	if cfg.Push.MetricsPort != 9402 {
		t.Errorf("Push.MetricsPort = %v, want 9402", cfg.Push.MetricsPort)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want defaults to be valid", err)
	}
}

func TestLoad_CompatEnv(t *testing.T) {
	t.Setenv("DOMAIN_NAMES", "example.com, example.org")
	t.Setenv("CRON", "0 */5 * * * * *")
	t.Setenv("PUSHOVER_TOKEN", "app-token")
	t.Setenv("PUSHOVER_USER", "user-key")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Push.Domains) != 2 || cfg.Push.Domains[0] != "example.com" || cfg.Push.Domains[1] != "example.org" {
		t.Errorf("Push.Domains = %v, want [example.com example.org]", cfg.Push.Domains)
	}
	if cfg.Push.Schedule != "0 */5 * * * * *" {
		t.Errorf("Push.Schedule = %v, want 0 */5 * * * * *", cfg.Push.Schedule)
	}
	if cfg.Push.Pushover.Token != "app-token" {
		t.Errorf("Push.Pushover.Token = %v, want app-token", cfg.Push.Pushover.Token)
	}
	if cfg.Push.Pushover.User != "user-key" {
		t.Errorf("Push.Pushover.User = %v, want user-key", cfg.Push.Pushover.User)
	}

	if err := cfg.ValidatePush(); err != nil {
		t.Errorf("ValidatePush() error = %v", err)
	}
}

func TestLoad_NormalizesDomains(t *testing.T) {
	v := viper.New()
	v.Set("push.domains", []string{"Example.COM.", "example.com", "Example.org"})

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"example.com", "example.org"}
	if len(cfg.Push.Domains) != len(want) {
		t.Fatalf("Push.Domains = %v, want %v", cfg.Push.Domains, want)
	}
	for i := range want {
		if cfg.Push.Domains[i] != want[i] {
			t.Errorf("Push.Domains[%d] = %q, want %q", i, cfg.Push.Domains[i], want[i])
		}
	}
}

func TestLoad_FileValues(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
log_level: debug
check:
  grace: 14
  timeout: 5s
  fail_fast: true
server:
  bind: 0.0.0.0:8080
push:
  domains:
    - example.com
  interval: 1h
  only_failing: true
`))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.Check.Grace != 14 {
		t.Errorf("Check.Grace = %v, want 14", cfg.Check.Grace)
	}
	if cfg.Check.Timeout != 5*time.Second {
		t.Errorf("Check.Timeout = %v, want 5s", cfg.Check.Timeout)
	}
	if !cfg.Check.FailFast {
		t.Error("Check.FailFast = false, want true")
	}
	if cfg.Push.Interval != time.Hour {
		t.Errorf("Push.Interval = %v, want 1h", cfg.Push.Interval)
	}
	if !cfg.Push.OnlyFailing {
		t.Error("Push.OnlyFailing = false, want true")
	}

	opts := cfg.CheckerOptions(false)
	if opts.Grace != 14 || !opts.FailFast || opts.Elapsed {
		t.Errorf("CheckerOptions(false) = %+v", opts)
	}
	if !cfg.CheckerOptions(true).Elapsed {
		t.Error("CheckerOptions(true).Elapsed = false, want true")
	}
	if !opts.DomainMetrics {
		t.Error("CheckerOptions(false).DomainMetrics = false, want true")
	}
	if cfg.CheckerOptions(true).DomainMetrics {
		t.Error("CheckerOptions(true).DomainMetrics = true, want false")
	}
}

func validConfig() *Config {
	return &Config{
		LogLevel: "info",
		Check: CheckConfig{
			Grace:       7,
			Timeout:     10 * time.Second,
			Concurrency: 10,
			Port:        443,
		},
		Server: ServerConfig{Bind: DefaultBind, Elapsed: true},
		Push: PushConfig{
			Domains:     []string{"example.com"},
			Schedule:    "0 */5 * * * *",
			MetricsPort: DefaultMetricsPort,
			Pushover: PushoverConfig{
				Endpoint: DefaultPushoverEndpoint,
				Token:    "token",
				User:     "user",
				Timeout:  10 * time.Second,
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "trace" }, wantErr: "log_level"},
		{name: "negative grace", modify: func(c *Config) { c.Check.Grace = -1 }, wantErr: "check: grace"},
		{name: "zero grace", modify: func(c *Config) { c.Check.Grace = 0 }},
		{name: "short timeout", modify: func(c *Config) { c.Check.Timeout = 500 * time.Millisecond }, wantErr: "check: timeout"},
		{name: "zero concurrency", modify: func(c *Config) { c.Check.Concurrency = 0 }, wantErr: "check: concurrency"},
		{name: "high concurrency", modify: func(c *Config) { c.Check.Concurrency = 101 }, wantErr: "check: concurrency"},
		{name: "bad port", modify: func(c *Config) { c.Check.Port = 70000 }, wantErr: "check: port"},
		{name: "bind without port", modify: func(c *Config) { c.Server.Bind = "127.0.0.1" }, wantErr: "server: bind"},
		{name: "bind hostname", modify: func(c *Config) { c.Server.Bind = "example.com:9292" }, wantErr: "server: bind host"},
		{name: "bind all interfaces", modify: func(c *Config) { c.Server.Bind = ":9292" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePush(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "seven field schedule", modify: func(c *Config) { c.Push.Schedule = "0 */5 * * * * *" }},
		{name: "bad schedule", modify: func(c *Config) { c.Push.Schedule = "whenever" }, wantErr: "push: schedule"},
		{name: "interval overrides schedule", modify: func(c *Config) {
			c.Push.Schedule = "whenever"
			c.Push.Interval = time.Minute
		}},
		{name: "short interval", modify: func(c *Config) { c.Push.Interval = time.Millisecond }, wantErr: "push: interval"},
		{name: "no domains", modify: func(c *Config) { c.Push.Domains = nil }, wantErr: "push: at least one domain"},
		{name: "discovery only", modify: func(c *Config) {
			c.Push.Domains = nil
			c.Push.Discovery.CertManager = true
		}},
		{name: "invalid domain", modify: func(c *Config) { c.Push.Domains = []string{"https://example.com"} }, wantErr: "push: domains[0]"},
		{name: "duplicate domain", modify: func(c *Config) { c.Push.Domains = []string{"example.com", "example.com"} }, wantErr: "duplicate"},
		{name: "missing token", modify: func(c *Config) { c.Push.Pushover.Token = "" }, wantErr: "pushover: token"},
		{name: "missing user", modify: func(c *Config) { c.Push.Pushover.User = "" }, wantErr: "pushover: user"},
		{name: "bad endpoint", modify: func(c *Config) { c.Push.Pushover.Endpoint = "ftp://api.example.com" }, wantErr: "pushover: endpoint"},
		{name: "bad metrics port", modify: func(c *Config) { c.Push.MetricsPort = -1 }, wantErr: "metrics_port"},
		{name: "shared section invalid", modify: func(c *Config) { c.LogLevel = "" }, wantErr: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.ValidatePush()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidatePush() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePush() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
