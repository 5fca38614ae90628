package initcmd

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/certwatch-app/certcheck/internal/checker"
	"github.com/certwatch-app/certcheck/internal/schedule"
)

// ValidateConfigPath validates the output file path.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}

	// Check if directory exists or can be created
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				// Created during write
				return nil
			}
			return fmt.Errorf("cannot access directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("'%s' is not a directory", dir)
		}
	}

	return nil
}

// ValidateGrace validates the grace period in days.
func ValidateGrace(graceStr string) error {
	grace, err := strconv.Atoi(strings.TrimSpace(graceStr))
	if err != nil {
		return fmt.Errorf("grace period must be a whole number of days")
	}

	if grace < 0 {
		return fmt.Errorf("grace period must not be negative")
	}

	if grace > 3650 {
		return fmt.Errorf("grace period must be at most 3650 days")
	}

	return nil
}

// ValidateTimeout validates a check timeout such as "10s".
func ValidateTimeout(timeoutStr string) error {
	d, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return fmt.Errorf("timeout must be a duration such as 10s")
	}

	if d < time.Second {
		return fmt.Errorf("timeout must be at least 1 second")
	}

	return nil
}

// ValidateBind validates the HTTP listen address.
func ValidateBind(bind string) error {
	if bind == "" {
		return fmt.Errorf("bind address is required")
	}

	host, port, err := net.SplitHostPort(bind)
	if err != nil {
		return fmt.Errorf("bind address must be host:port (e.g., 127.0.0.1:9292)")
	}

	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return fmt.Errorf("bind host must be an IP address or localhost")
	}

	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}

	return nil
}

// ValidateDomain validates a domain to monitor.
func ValidateDomain(domain string) error {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return fmt.Errorf("domain is required")
	}

	if strings.Contains(domain, "://") {
		return fmt.Errorf("domain should not include protocol (use 'example.com' not 'https://example.com')")
	}

	if err := checker.ValidateDomain(domain); err != nil {
		return err
	}

	return nil
}

// ValidateSchedule validates a cron expression with a seconds field.
func ValidateSchedule(expr string) error {
	if _, err := schedule.Parse(expr); err != nil {
		return err
	}
	return nil
}

// ValidatePushoverKey validates a Pushover application token or user key.
// Both are 30 characters, letters and digits only.
func ValidatePushoverKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}

	if len(key) != 30 {
		return fmt.Errorf("key must be 30 characters long")
	}

	for _, c := range key {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return fmt.Errorf("key contains invalid character: '%c'", c)
		}
	}

	return nil
}
