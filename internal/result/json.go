package result

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSON is the wire representation of a CheckResult
type JSON struct {
	State      string `json:"state"`
	CheckedAt  string `json:"checked_at"`
	DomainName string `json:"domain_name"`
	ExpiredAt  string `json:"expired_at"`
	Days       int64  `json:"days"`
	Elapsed    int64  `json:"elapsed"`
}

// ToJSON converts the result to its wire representation
func (r CheckResult) ToJSON() JSON {
	return JSON{
		State:      r.State.String(),
		CheckedAt:  formatTime(r.CheckedAt),
		Days:       r.Days,
		DomainName: r.DomainName,
		ExpiredAt:  formatTime(r.NotAfter),
		Elapsed:    r.Elapsed.Milliseconds(),
	}
}

// MarshalJSON encodes the result using the wire representation
func (r CheckResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToJSON())
}

// UnmarshalJSON decodes a wire document into r
func (r *CheckResult) UnmarshalJSON(data []byte) error {
	var doc JSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := FromJSON(doc)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// FromJSON converts a wire document back into a CheckResult
func FromJSON(doc JSON) (CheckResult, error) {
	state, err := ParseState(doc.State)
	if err != nil {
		return CheckResult{}, err
	}

	checkedAt, err := parseTime(doc.CheckedAt)
	if err != nil {
		return CheckResult{}, fmt.Errorf("checked_at: %w", err)
	}

	notAfter, err := parseTime(doc.ExpiredAt)
	if err != nil {
		return CheckResult{}, fmt.Errorf("expired_at: %w", err)
	}

	return CheckResult{
		DomainName: doc.DomainName,
		State:      state,
		CheckedAt:  checkedAt,
		Days:       doc.Days,
		NotAfter:   notAfter,
		Elapsed:    time.Duration(doc.Elapsed) * time.Millisecond,
	}, nil
}

// Unset timestamps are written as the Unix epoch and read back as zero.
func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Unix(0, 0)
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Unix() == 0 {
		return time.Time{}, nil
	}
	return t.UTC(), nil
}
