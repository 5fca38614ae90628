package result

import "time"

const secondsPerDay = 24 * 60 * 60

// Classify evaluates a certificate expiring at notAfter, checked at
// checkedAt, against a grace period in days.
//
// The remaining day count is the whole-second difference divided by 86400,
// truncated toward zero, so 1.9 days is 1 and -1.9 days is -1. A certificate
// whose not-after is at or before the check time is always expired, even when
// the truncated day count is still zero.
func Classify(notAfter, checkedAt time.Time, graceDays int) (State, int64) {
	diff := notAfter.Unix() - checkedAt.Unix()
	days := diff / secondsPerDay

	switch {
	case diff <= 0:
		return StateExpired, days
	case days <= int64(graceDays):
		return StateWarning, days
	default:
		return StateOK, days
	}
}
