package initcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/certwatch-app/certcheck/internal/config"
)

// fileConfig mirrors config.Config with yaml tags and durations as strings
// so the written file reads the way a person would write it.
type fileConfig struct {
	LogLevel string     `yaml:"log_level"`
	Check    fileCheck  `yaml:"check"`
	Server   fileServer `yaml:"server"`
	Push     *filePush  `yaml:"push,omitempty"`
}

type fileCheck struct {
	Timeout     string `yaml:"timeout"`
	CAFile      string `yaml:"ca_file,omitempty"`
	Grace       int    `yaml:"grace"`
	Concurrency int    `yaml:"concurrency"`
	Port        int    `yaml:"port"`
}

type fileServer struct {
	Bind    string `yaml:"bind"`
	Elapsed bool   `yaml:"elapsed"`
}

type filePush struct {
	Schedule    string       `yaml:"schedule"`
	Domains     []string     `yaml:"domains"`
	Pushover    filePushover `yaml:"pushover"`
	MetricsPort int          `yaml:"metrics_port"`
	OnlyFailing bool         `yaml:"only_failing"`
}

type filePushover struct {
	Token string `yaml:"token"`
	User  string `yaml:"user"`
}

func toFileConfig(cfg *config.Config) fileConfig {
	fc := fileConfig{
		LogLevel: cfg.LogLevel,
		Check: fileCheck{
			Timeout:     cfg.Check.Timeout.String(),
			CAFile:      cfg.Check.CAFile,
			Grace:       cfg.Check.Grace,
			Concurrency: cfg.Check.Concurrency,
			Port:        cfg.Check.Port,
		},
		Server: fileServer{
			Bind:    cfg.Server.Bind,
			Elapsed: cfg.Server.Elapsed,
		},
	}

	if len(cfg.Push.Domains) > 0 {
		fc.Push = &filePush{
			Schedule:    cfg.Push.Schedule,
			Domains:     cfg.Push.Domains,
			MetricsPort: cfg.Push.MetricsPort,
			OnlyFailing: cfg.Push.OnlyFailing,
			Pushover: filePushover{
				Token: cfg.Push.Pushover.Token,
				User:  cfg.Push.Pushover.User,
			},
		}
	}

	return fc
}

// WriteConfig writes the configuration as YAML, creating the parent
// directory when needed. The file holds credentials so it is not world
// readable.
func WriteConfig(cfg *config.Config, path string) error {
	data, err := yaml.Marshal(toFileConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	header := []byte("# certcheck configuration\n# Generated by 'certcheck init'\n\n")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// FileExists reports whether a file exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
