package checker

import (
	"crypto/x509"
	"errors"
	"time"

	"github.com/certwatch-app/certcheck/internal/result"
)

// ParseValidity decodes a DER certificate and returns its validity window,
// normalized to whole-second UTC.
func ParseValidity(der []byte) (result.Validity, error) {
	if len(der) == 0 {
		return result.Validity{}, &ParseError{Err: errors.New("empty certificate")}
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return result.Validity{}, &ParseError{Err: err}
	}

	return result.Validity{
		NotBefore: cert.NotBefore.UTC().Truncate(time.Second),
		NotAfter:  cert.NotAfter.UTC().Truncate(time.Second),
	}, nil
}
