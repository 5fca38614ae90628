package result

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Validity is the validity window of a certificate, UTC and whole seconds
type Validity struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// CheckResult is the outcome of checking one domain.
// Values are built by the constructors below and passed by value; a zero
// NotAfter means no certificate could be read.
// Fields are ordered for optimal memory alignment
type CheckResult struct {
	CheckedAt  time.Time
	NotAfter   time.Time
	DomainName string
	Days       int64
	Elapsed    time.Duration
	State      State
}

// NewClassified builds the result for a certificate whose validity could be
// read, classifying it against the grace period.
func NewClassified(domain string, checkedAt, notAfter time.Time, graceDays int) CheckResult {
	checkedAt = normalize(checkedAt)
	notAfter = normalize(notAfter)
	state, days := Classify(notAfter, checkedAt, graceDays)
	return CheckResult{
		DomainName: domain,
		State:      state,
		CheckedAt:  checkedAt,
		Days:       days,
		NotAfter:   notAfter,
	}
}

// NewExpired builds the result for a host whose TLS session could not be
// established. No validity data is available so NotAfter stays zero.
func NewExpired(domain string, checkedAt time.Time) CheckResult {
	return CheckResult{
		DomainName: domain,
		State:      StateExpired,
		CheckedAt:  normalize(checkedAt),
	}
}

// NewUnknown builds the result for a host that completed the handshake but
// did not yield a usable certificate.
func NewUnknown(domain string, checkedAt time.Time) CheckResult {
	return CheckResult{
		DomainName: domain,
		State:      StateUnknown,
		CheckedAt:  normalize(checkedAt),
	}
}

// WithElapsed returns a copy of r carrying the time spent on the check
func (r CheckResult) WithElapsed(d time.Duration) CheckResult {
	r.Elapsed = d
	return r
}

// HasNotAfter reports whether the result carries certificate validity data
func (r CheckResult) HasNotAfter() bool {
	return !r.NotAfter.IsZero()
}

// Sentence describes the result in plain English, e.g.
// "certificate of example.com expires in 512 days (2027-03-11T10:00:00Z)".
func (r CheckResult) Sentence() string {
	subject := "certificate of " + r.DomainName

	switch r.State {
	case StateOK:
		return fmt.Sprintf("%s expires in %s days (%s)", subject, humanize.Comma(r.Days), r.expiredAt())
	case StateWarning:
		return fmt.Sprintf("%s will expire in %s days (%s)", subject, humanize.Comma(r.Days), r.expiredAt())
	case StateExpired:
		if r.HasNotAfter() {
			return fmt.Sprintf("%s is expired (%s)", subject, r.expiredAt())
		}
		return subject + " is expired"
	case StateUnknown:
		return subject + " could not be determined"
	}
	return subject + " could not be determined"
}

// String renders the result the way the CLI prints it: "[v] certificate of ..."
func (r CheckResult) String() string {
	var b strings.Builder
	b.WriteString(r.State.Icon(false))
	b.WriteByte(' ')
	b.WriteString(r.Sentence())
	return b.String()
}

func (r CheckResult) expiredAt() string {
	return formatTime(r.NotAfter)
}

func normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Second)
}
