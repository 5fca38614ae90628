package checker

import "fmt"

// InvalidDomainError is returned before any network activity when a domain
// name is not a syntactically valid DNS name.
type InvalidDomainError struct {
	Domain string
	Reason string
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("invalid domain name %q: %s", e.Domain, e.Reason)
}

// ConnectError describes a failure to establish a TLS session with a host.
// Op is one of "dial", "handshake" or "write".
type ConnectError struct {
	Err    error
	Domain string
	Op     string
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Domain, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a certificate cannot be decoded
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse certificate: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DomainError is a hard failure of one domain's check: no result could be
// produced, e.g. because the batch was canceled.
type DomainError struct {
	Err    error
	Domain string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("check %s: %v", e.Domain, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}
