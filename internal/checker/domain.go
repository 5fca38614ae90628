package checker

import (
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const maxDomainLength = 253

// ValidateDomain checks that domain is a bare DNS host name: no scheme, port,
// path or IP literal.
func ValidateDomain(domain string) error {
	if domain == "" {
		return &InvalidDomainError{Domain: domain, Reason: "domain name is required"}
	}

	if len(domain) > maxDomainLength {
		return &InvalidDomainError{Domain: domain, Reason: "domain name must be at most 253 characters"}
	}

	if strings.Contains(domain, "://") {
		return &InvalidDomainError{Domain: domain, Reason: "domain name should not include a scheme"}
	}

	if net.ParseIP(domain) != nil {
		return &InvalidDomainError{Domain: domain, Reason: "IP addresses are not DNS names"}
	}

	if err := validate.Var(domain, "hostname_rfc1123"); err != nil {
		return &InvalidDomainError{Domain: domain, Reason: "not a valid DNS name"}
	}

	return nil
}

// ValidateDomains validates every domain and returns the first failure
func ValidateDomains(domains []string) error {
	for _, d := range domains {
		if err := ValidateDomain(d); err != nil {
			return err
		}
	}
	return nil
}

// SplitDomains splits a comma-separated list, trimming whitespace around
// every entry. Empty entries are kept so that validation reports them.
func SplitDomains(list string) []string {
	parts := strings.Split(list, ",")
	domains := make([]string, 0, len(parts))
	for _, p := range parts {
		domains = append(domains, strings.TrimSpace(p))
	}
	return domains
}
