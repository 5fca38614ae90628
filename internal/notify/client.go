package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/certwatch-app/certcheck/internal/config"
	"github.com/certwatch-app/certcheck/internal/metrics"
	"github.com/certwatch-app/certcheck/internal/version"
)

// Client posts messages to the Pushover API
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	endpoint   string
	token      string
	user       string
}

// New creates a Pushover client from the push configuration
func New(cfg config.PushoverConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		user:     cfg.User,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Send delivers one message
func (c *Client) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("token", c.token)
	form.Set("user", c.user)
	form.Set("title", msg.Title)
	form.Set("message", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.UserAgent())

	c.logger.Debug("sending notification",
		zap.String("domain", msg.Domain),
		zap.String("title", msg.Title),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("received response",
		zap.String("domain", msg.Domain),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(respBody)),
	)

	var apiResp apiResponse
	// The body is only used for error details; a 2xx without one is accepted
	unmarshalErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode >= 400 {
		reason := strings.TrimSpace(string(respBody))
		if unmarshalErr == nil && len(apiResp.Errors) > 0 {
			reason = strings.Join(apiResp.Errors, "; ")
		}
		return &DeliveryError{Domain: msg.Domain, Status: resp.StatusCode, Reason: reason}
	}

	if unmarshalErr == nil && apiResp.Status != 1 && len(apiResp.Errors) > 0 {
		return &DeliveryError{Domain: msg.Domain, Reason: strings.Join(apiResp.Errors, "; ")}
	}

	return nil
}

// SendAll delivers every message concurrently. A failed delivery does not
// stop the others; all failures are returned combined.
func (c *Client) SendAll(ctx context.Context, msgs []Message) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)

	for _, msg := range msgs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := c.Send(ctx, msg); err != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				c.logger.Warn("notification failed",
					zap.String("domain", msg.Domain),
					zap.Error(err),
				)
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return
			}
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		}()
	}

	wg.Wait()
	return errs
}
