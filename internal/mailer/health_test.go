package mailer

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubTransport implements Transport with a configurable HealthCheck.
type stubTransport struct {
	err   error
	calls int
}

func (p *stubTransport) Send(context.Context, *Composed) (*Result, error) { return nil, nil }
func (p *stubTransport) Name() string                                     { return "stub" }
func (p *stubTransport) HealthCheck(context.Context) error {
	p.calls++
	return p.err
}

func TestHealthChecker_InitiallyHealthy(t *testing.T) {
	hc := NewHealthChecker(&stubTransport{})
	if !hc.IsHealthy() {
		t.Error("expected transport to be healthy before the first check")
	}
}

func TestHealthChecker_UnhealthyAfterThreshold(t *testing.T) {
	p := &stubTransport{err: errors.New("dial tcp: connection refused")}
	hc := NewHealthChecker(p)

	for i := 1; i < unhealthyThreshold; i++ {
		hc.check()
		if !hc.IsHealthy() {
			t.Fatalf("unhealthy after %d failures, threshold is %d", i, unhealthyThreshold)
		}
	}
	hc.check()
	if hc.IsHealthy() {
		t.Error("expected unhealthy after reaching the threshold")
	}

	st := hc.Status()
	if st.ConsecutiveFailures != unhealthyThreshold {
		t.Errorf("ConsecutiveFailures = %d", st.ConsecutiveFailures)
	}
	if st.LastError != "dial tcp: connection refused" {
		t.Errorf("LastError = %q", st.LastError)
	}
	if st.LastCheck.IsZero() {
		t.Error("expected LastCheck to be set")
	}
}

func TestHealthChecker_RecoversOnSuccess(t *testing.T) {
	p := &stubTransport{err: errors.New("down")}
	hc := NewHealthChecker(p)
	for i := 0; i < unhealthyThreshold; i++ {
		hc.check()
	}

	p.err = nil
	hc.check()

	st := hc.Status()
	if !st.Healthy || st.ConsecutiveFailures != 0 || st.LastError != "" {
		t.Errorf("expected full recovery, got %+v", st)
	}
}

func TestHealthChecker_StartStop(t *testing.T) {
	p := &stubTransport{}
	hc := NewHealthChecker(p)
	hc.checkInterval = time.Hour

	hc.Start()
	deadline := time.Now().Add(2 * time.Second)
	for hc.Status().LastCheck.IsZero() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hc.Stop()

	if hc.Status().LastCheck.IsZero() {
		t.Error("expected an initial check after Start")
	}
}
