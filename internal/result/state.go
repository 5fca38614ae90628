// Package result defines the outcome of a certificate check and the
// evaluator that classifies a certificate against a grace period.
package result

import "fmt"

// State is the classification of a single certificate check
type State int

// The zero value is StateUnknown so an unset State never reads as healthy.
const (
	StateUnknown State = iota
	StateOK
	StateWarning
	StateExpired
)

// String returns the wire name of the state, as used in JSON documents
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "Unknown"
	case StateOK:
		return "OK"
	case StateWarning:
		return "WARNING"
	case StateExpired:
		return "EXPIRED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState is the inverse of String
func ParseState(s string) (State, error) {
	switch s {
	case "Unknown":
		return StateUnknown, nil
	case "OK":
		return StateOK, nil
	case "WARNING":
		return StateWarning, nil
	case "EXPIRED":
		return StateExpired, nil
	}
	return StateUnknown, fmt.Errorf("unknown state %q", s)
}

// Severity ranks states for aggregation: a higher value needs more attention.
// Expired outranks everything; Unknown outranks Warning because nothing about
// the certificate could be established.
func (s State) Severity() int {
	switch s {
	case StateOK:
		return 0
	case StateWarning:
		return 1
	case StateUnknown:
		return 2
	case StateExpired:
		return 3
	}
	return 2
}

// Icon returns the marker shown in front of a sentence. Emoji icons are used
// for push notifications, plain markers for terminals and logs.
func (s State) Icon(emoji bool) string {
	switch s {
	case StateOK:
		if emoji {
			return "✅"
		}
		return "[v]"
	case StateWarning:
		if emoji {
			return "⚠️"
		}
		return "[!]"
	case StateExpired:
		if emoji {
			return "❌"
		}
		return "[x]"
	case StateUnknown:
		if emoji {
			return "❓"
		}
		return "[?]"
	}
	return "[?]"
}

// Worst returns the most severe state of the given states, StateOK when empty
func Worst(states ...State) State {
	worst := StateOK
	for _, s := range states {
		if s.Severity() > worst.Severity() {
			worst = s
		}
	}
	return worst
}
