package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/certwatch-app/certcheck/internal/checker"
	"github.com/certwatch-app/certcheck/internal/config"
	"github.com/certwatch-app/certcheck/internal/notify"
	"github.com/certwatch-app/certcheck/internal/result"
)

var checkedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// stubChecker classifies by domain name without touching the network
type stubChecker struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *stubChecker) CheckMany(_ context.Context, domains []string) ([]checker.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, domains)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	outcomes := make([]checker.Outcome, len(domains))
	for i, d := range domains {
		switch d {
		case "expired.example.com":
			outcomes[i] = checker.Outcome{Domain: d, Result: result.NewExpired(d, checkedAt)}
		case "broken.example.com":
			outcomes[i] = checker.Outcome{Domain: d, Err: &checker.DomainError{Domain: d, Err: errors.New("boom")}}
		default:
			outcomes[i] = checker.Outcome{Domain: d, Result: result.NewClassified(d, checkedAt, checkedAt.Add(90*24*time.Hour), 7)}
		}
	}
	return outcomes, nil
}

func (s *stubChecker) runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *stubNotifier) SendAll(_ context.Context, msgs []notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msgs...)
	return n.err
}

type stubSource struct {
	domains []string
	err     error
}

func (s stubSource) Domains(context.Context) ([]string, error) {
	return s.domains, s.err
}

func testConfig(domains ...string) *config.Config {
	return &config.Config{
		Push: config.PushConfig{
			Domains:  domains,
			Schedule: "0 */5 * * * *",
		},
	}
}

func TestRunOnce(t *testing.T) {
	c := &stubChecker{}
	n := &stubNotifier{}
	a := New(testConfig("example.com", "expired.example.com", "broken.example.com"), c, n, zap.NewNop())

	summary, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if len(summary.Results) != 2 {
		t.Errorf("len(Results) = %d, want 2", len(summary.Results))
	}
	if len(summary.Errors) != 1 {
		t.Errorf("len(Errors) = %d, want 1", len(summary.Errors))
	}
	if summary.Worst != result.StateExpired {
		t.Errorf("Worst = %v, want EXPIRED", summary.Worst)
	}
	if summary.Notified != 2 || len(n.sent) != 2 {
		t.Fatalf("notified %d (sent %d), want 2", summary.Notified, len(n.sent))
	}

	if n.sent[0].Title != "HTTP Certificate Check - example.com" {
		t.Errorf("sent[0].Title = %q", n.sent[0].Title)
	}
	if n.sent[1].Body != "❌ certificate of expired.example.com is expired" {
		t.Errorf("sent[1].Body = %q", n.sent[1].Body)
	}
}

func TestRunOnce_OnlyFailing(t *testing.T) {
	cfg := testConfig("example.com", "expired.example.com")
	cfg.Push.OnlyFailing = true
	n := &stubNotifier{}

	summary, err := New(cfg, &stubChecker{}, n, nil).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if summary.Notified != 1 || len(n.sent) != 1 {
		t.Fatalf("notified %d, want 1", summary.Notified)
	}
	if n.sent[0].Domain != "expired.example.com" {
		t.Errorf("sent[0].Domain = %q, want expired.example.com", n.sent[0].Domain)
	}
}

func TestRunOnce_DeliveryFailureIsNotFatal(t *testing.T) {
	n := &stubNotifier{err: errors.New("pushover down")}

	summary, err := New(testConfig("example.com"), &stubChecker{}, n, nil).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v, want nil", err)
	}
	if len(summary.Results) != 1 {
		t.Errorf("len(Results) = %d, want 1", len(summary.Results))
	}
}

func TestRunOnce_BatchError(t *testing.T) {
	c := &stubChecker{err: &checker.InvalidDomainError{Domain: "bad", Reason: "nope"}}
	n := &stubNotifier{}

	_, err := New(testConfig("example.com"), c, n, nil).RunOnce(context.Background())
	var invalid *checker.InvalidDomainError
	if !errors.As(err, &invalid) {
		t.Fatalf("RunOnce() error = %v, want *InvalidDomainError", err)
	}
	if len(n.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(n.sent))
	}
}

func TestRunOnce_NoDomains(t *testing.T) {
	c := &stubChecker{}
	_, err := New(testConfig(), c, &stubNotifier{}, nil).RunOnce(context.Background())
	if !errors.Is(err, ErrNoDomains) {
		t.Errorf("RunOnce() error = %v, want ErrNoDomains", err)
	}
	if c.runs() != 0 {
		t.Errorf("CheckMany called %d times, want 0", c.runs())
	}
}

func TestRunOnce_MergesSources(t *testing.T) {
	c := &stubChecker{}
	a := New(testConfig("example.com", "b.example.com"), c, &stubNotifier{}, nil,
		stubSource{domains: []string{"z.example.com", "example.com", "a.example.com"}},
		stubSource{err: errors.New("cluster unreachable")},
	)

	if _, err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	want := []string{"example.com", "b.example.com", "a.example.com", "z.example.com"}
	got := c.calls[0]
	if len(got) != len(want) {
		t.Fatalf("checked %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("checked[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRun_Interval(t *testing.T) {
	cfg := testConfig("example.com")
	cfg.Push.Interval = 20 * time.Millisecond
	c := &stubChecker{}

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	err := New(cfg, c, &stubNotifier{}, nil).Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	// one immediate run plus several ticks
	if c.runs() < 3 {
		t.Errorf("runs = %d, want at least 3", c.runs())
	}
}

func TestRun_Schedule(t *testing.T) {
	cfg := testConfig("example.com")
	cfg.Push.Schedule = "@every 1s"
	c := &stubChecker{}

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	err := New(cfg, c, &stubNotifier{}, nil).Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	// no immediate run in schedule mode; the first tick is at most 1s away
	if c.runs() < 1 {
		t.Errorf("runs = %d, want at least 1", c.runs())
	}
}

func TestRun_InvalidSchedule(t *testing.T) {
	cfg := testConfig("example.com")
	cfg.Push.Schedule = "whenever"

	if err := New(cfg, &stubChecker{}, &stubNotifier{}, nil).Run(context.Background()); err == nil {
		t.Error("Run() error = nil, want error")
	}
}
