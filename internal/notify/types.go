// Package notify delivers check results as push notifications through the
// Pushover messages API.
package notify

import (
	"fmt"

	"github.com/certwatch-app/certcheck/internal/result"
)

// Message is a single push notification
type Message struct {
	Title string
	Body  string
	// Domain is used for logging only
	Domain string
}

// MessageFor formats a check result as a notification:
// title "HTTP Certificate Check - <domain>", body "<icon> <sentence>".
func MessageFor(r result.CheckResult) Message {
	return Message{
		Title:  "HTTP Certificate Check - " + r.DomainName,
		Body:   r.State.Icon(true) + " " + r.Sentence(),
		Domain: r.DomainName,
	}
}

// apiResponse is the body returned by the Pushover API
type apiResponse struct {
	Request string   `json:"request"`
	Errors  []string `json:"errors,omitempty"`
	Status  int      `json:"status"`
}

// DeliveryError reports a message the API did not accept
type DeliveryError struct {
	Domain string
	Reason string
	Status int
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("deliver %s: status %d: %s", e.Domain, e.Status, e.Reason)
	}
	return fmt.Sprintf("deliver %s: %s", e.Domain, e.Reason)
}
