package checker

import (
	"crypto/x509"
	"fmt"
	"os"
)

// TrustAnchors is the immutable set of root certificates used to verify
// peers. One value is built at startup and shared by every connection.
type TrustAnchors struct {
	pool *x509.CertPool
}

// SystemTrustAnchors returns the host's root certificates
func SystemTrustAnchors() (*TrustAnchors, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("failed to load system roots: %w", err)
	}
	return &TrustAnchors{pool: pool}, nil
}

// LoadTrustAnchors returns the system roots, extended with the PEM
// certificates in caFile when caFile is not empty.
func LoadTrustAnchors(caFile string) (*TrustAnchors, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("failed to load system roots: %w", err)
	}

	if caFile == "" {
		return &TrustAnchors{pool: pool}, nil
	}

	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in %s", caFile)
	}

	return &TrustAnchors{pool: pool}, nil
}

// TrustAnchorsFromPEM returns anchors containing only the PEM certificates given
func TrustAnchorsFromPEM(data []byte) (*TrustAnchors, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in PEM data")
	}
	return &TrustAnchors{pool: pool}, nil
}

// NewTrustAnchors wraps an existing pool. The caller must not modify the
// pool afterwards.
func NewTrustAnchors(pool *x509.CertPool) *TrustAnchors {
	return &TrustAnchors{pool: pool}
}

// Pool returns the underlying certificate pool
func (t *TrustAnchors) Pool() *x509.CertPool {
	return t.pool
}
