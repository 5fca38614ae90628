package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/certwatch-app/certcheck/internal/result"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	switch {
	case pb.Counter != nil:
		return pb.Counter.GetValue()
	case pb.Gauge != nil:
		return pb.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric %v", pb.String())
	return 0
}

func count(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	n := 0
	for range ch {
		n++
	}
	return n
}

func TestObserveCheck(t *testing.T) {
	checkedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := result.NewClassified("metrics.example.com", checkedAt, checkedAt.Add(40*24*time.Hour), 7)

	before := value(t, ChecksTotal.WithLabelValues("OK"))
	ObserveCheck(r, 50*time.Millisecond, true)

	if got := value(t, ChecksTotal.WithLabelValues("OK")); got != before+1 {
		t.Errorf("checks_total{state=OK} = %v, want %v", got, before+1)
	}
	if got := value(t, CertificateDaysUntilExpiry.WithLabelValues("metrics.example.com")); got != 40 {
		t.Errorf("certificate_days_until_expiry = %v, want 40", got)
	}

	// A later failure drops the stale per-domain gauges
	ObserveCheck(result.NewExpired("metrics.example.com", checkedAt), time.Millisecond, true)
	if n := count(CertificateDaysUntilExpiry); n != 0 {
		t.Errorf("certificate_days_until_expiry series = %d, want 0", n)
	}
}

func TestObserveCheck_WithoutDomainGauges(t *testing.T) {
	checkedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := result.NewClassified("unlabeled.example.com", checkedAt, checkedAt.Add(40*24*time.Hour), 7)

	before := value(t, ChecksTotal.WithLabelValues("OK"))
	series := count(CertificateDaysUntilExpiry)

	ObserveCheck(r, time.Millisecond, false)

	if got := value(t, ChecksTotal.WithLabelValues("OK")); got != before+1 {
		t.Errorf("checks_total{state=OK} = %v, want %v", got, before+1)
	}
	if n := count(CertificateDaysUntilExpiry); n != series {
		t.Errorf("certificate_days_until_expiry series = %d, want %d", n, series)
	}
	if n := count(CertificateExpirySeconds); n != series {
		t.Errorf("certificate_expiry_seconds series = %d, want %d", n, series)
	}
}

func TestNewServer(t *testing.T) {
	srv := httptest.NewServer(NewServer(":0").Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "certcheck_check_errors_total") {
		t.Error("GET /metrics does not expose certcheck_check_errors_total")
	}
}
