package metrics

import (
	"time"

	"github.com/certwatch-app/certcheck/internal/result"
)

// ObserveCheck records a completed check. The per-domain expiry gauges are
// only touched when perDomain is set, since their label set is unbounded for
// caller-chosen domains.
func ObserveCheck(r result.CheckResult, elapsed time.Duration, perDomain bool) {
	ChecksTotal.WithLabelValues(r.State.String()).Inc()
	CheckDuration.Observe(elapsed.Seconds())

	if !perDomain {
		return
	}

	if !r.HasNotAfter() {
		CertificateDaysUntilExpiry.DeleteLabelValues(r.DomainName)
		CertificateExpirySeconds.DeleteLabelValues(r.DomainName)
		return
	}
	CertificateDaysUntilExpiry.WithLabelValues(r.DomainName).Set(float64(r.Days))
	CertificateExpirySeconds.WithLabelValues(r.DomainName).Set(float64(r.NotAfter.Unix()))
}
