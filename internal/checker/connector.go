package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultPort is the HTTPS port checked when none is configured
const DefaultPort = 443

// DialFunc opens the raw TCP connection used for the TLS session
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// ConnectorOptions configures a Connector
// Fields are ordered for optimal memory alignment
type ConnectorOptions struct {
	Dial               DialFunc
	Timeout            time.Duration
	Port               int
	InsecureSkipVerify bool
}

// Connector opens a TLS session to a host and returns the peer certificates
type Connector struct {
	base *tls.Config
	dial DialFunc
	port int
}

// NewConnector creates a Connector verifying peers against trust
func NewConnector(trust *TrustAnchors, opts ConnectorOptions) *Connector {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	dial := opts.Dial
	if dial == nil {
		dialer := &net.Dialer{Timeout: opts.Timeout}
		dial = dialer.DialContext
	}

	return &Connector{
		base: &tls.Config{
			RootCAs:            trust.Pool(),
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // opt-in for testing hosts with broken certificates
		},
		dial: dial,
		port: opts.Port,
	}
}

// Fetch performs a TLS handshake with domain, sends a minimal HTTP request
// and returns the DER encoding of the peer certificate chain, leaf first.
// Every failure is returned as a *ConnectError.
func (c *Connector) Fetch(ctx context.Context, domain string) ([][]byte, error) {
	addr := net.JoinHostPort(domain, strconv.Itoa(c.port))

	raw, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectError{Domain: domain, Op: "dial", Err: err}
	}
	defer raw.Close()

	if deadline, ok := ctx.Deadline(); ok {
		//nolint:errcheck // a failed deadline surfaces as a handshake or write error
		raw.SetDeadline(deadline)
	}

	cfg := c.base.Clone()
	cfg.ServerName = domain

	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, &ConnectError{Domain: domain, Op: "handshake", Err: err}
	}

	// Some servers only finish the session once they see a request
	if _, err := io.WriteString(conn, httpRequest(domain)); err != nil {
		return nil, &ConnectError{Domain: domain, Op: "write", Err: err}
	}

	peers := conn.ConnectionState().PeerCertificates
	chain := make([][]byte, 0, len(peers))
	for _, cert := range peers {
		chain = append(chain, cert.Raw)
	}

	return chain, nil
}

func httpRequest(domain string) string {
	return fmt.Sprintf("GET / HTTP/1.1\r\n"+
		"Host: %s\r\n"+
		"Connection: close\r\n"+
		"Accept-Encoding: identity\r\n"+
		"\r\n", domain)
}
