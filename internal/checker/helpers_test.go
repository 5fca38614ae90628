package checker

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const testDomain = "example.com"

type testCA struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
	pem  []byte
}

func newTestCA(t *testing.T) *testCA {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "certcheck test CA"},
		NotBefore:             time.Now().Add(-24 * time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}

	return &testCA{
		cert: cert,
		key:  key,
		pem:  pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}
}

// issue signs a leaf certificate for testDomain valid until notAfter
func (ca *testCA) issue(t *testing.T, notAfter time.Time) tls.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	notBefore := notAfter.Add(-90 * 24 * time.Hour)
	if notAfter.After(time.Now()) {
		notBefore = time.Now().Add(-time.Hour)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: testDomain},
		DNSNames:     []string{testDomain},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der, ca.cert.Raw},
		PrivateKey:  key,
	}
}

func (ca *testCA) trust(t *testing.T) *TrustAnchors {
	t.Helper()
	anchors, err := TrustAnchorsFromPEM(ca.pem)
	if err != nil {
		t.Fatalf("TrustAnchorsFromPEM() error = %v", err)
	}
	return anchors
}

// leafDER returns the DER of a self-signed certificate expiring at notAfter
func leafDER(t *testing.T, notAfter time.Time) []byte {
	t.Helper()
	ca := newTestCA(t)
	return ca.issue(t, notAfter).Certificate[0]
}

// startTLSServer serves cert on a local listener and returns its address
func startTLSServer(t *testing.T, cert tls.Certificate) string {
	t.Helper()

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{cert}}
	srv.Config.ErrorLog = log.New(io.Discard, "", 0)
	srv.StartTLS()
	t.Cleanup(srv.Close)

	return srv.Listener.Addr().String()
}

// dialTo ignores the requested address and connects to addr instead
func dialTo(addr string) DialFunc {
	return func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}
}

// fakeFetcher serves canned chains and errors with optional per-domain delays
type fakeFetcher struct {
	chains   map[string][][]byte
	errs     map[string]error
	delays   map[string]time.Duration
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, domain string) ([][]byte, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxSeen.Load()
		if n <= peak || f.maxSeen.CompareAndSwap(peak, n) {
			break
		}
	}

	if d := f.delays[domain]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, &ConnectError{Domain: domain, Op: "dial", Err: ctx.Err()}
		}
	}

	if err, ok := f.errs[domain]; ok {
		return nil, err
	}
	if chain, ok := f.chains[domain]; ok {
		return chain, nil
	}
	return nil, &ConnectError{Domain: domain, Op: "dial", Err: io.EOF}
}
