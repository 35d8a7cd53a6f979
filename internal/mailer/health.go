package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/annedfinds/storefront-notify/internal/metrics"
)

const (
	defaultCheckInterval = 60 * time.Second
	defaultCheckTimeout  = 15 * time.Second
	unhealthyThreshold   = 3
)

// HealthStatus is the last observed health of the transport.
type HealthStatus struct {
	Healthy             bool
	LastCheck           time.Time
	ConsecutiveFailures int
	LastError           string
}

// HealthChecker probes the transport in the background so readiness checks
// never open an SMTP session themselves.
type HealthChecker struct {
	mu            sync.RWMutex
	transport     Transport
	status        HealthStatus
	checkInterval time.Duration
	checkTimeout  time.Duration
	stopCh        chan struct{}
	stopped       chan struct{}
}

// NewHealthChecker creates a checker for t. The transport is assumed healthy
// until unhealthyThreshold consecutive probes fail.
func NewHealthChecker(t Transport) *HealthChecker {
	return &HealthChecker{
		transport:     t,
		status:        HealthStatus{Healthy: true},
		checkInterval: defaultCheckInterval,
		checkTimeout:  defaultCheckTimeout,
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
}

// Start begins the background probe loop.
func (hc *HealthChecker) Start() {
	go hc.run()
}

// Stop terminates the probe loop and waits for it to exit.
func (hc *HealthChecker) Stop() {
	close(hc.stopCh)
	<-hc.stopped
}

// IsHealthy reports the cached health of the transport.
func (hc *HealthChecker) IsHealthy() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status.Healthy
}

// Status returns a snapshot of the cached status.
func (hc *HealthChecker) Status() HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

func (hc *HealthChecker) run() {
	defer close(hc.stopped)

	hc.check()

	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-hc.stopCh:
			return
		case <-ticker.C:
			hc.check()
		}
	}
}

func (hc *HealthChecker) check() {
	ctx, cancel := context.WithTimeout(context.Background(), hc.checkTimeout)
	defer cancel()

	err := hc.transport.HealthCheck(ctx)

	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.status.LastCheck = time.Now()
	if err != nil {
		hc.status.ConsecutiveFailures++
		hc.status.LastError = err.Error()
		if hc.status.ConsecutiveFailures >= unhealthyThreshold {
			hc.status.Healthy = false
		}
	} else {
		hc.status.ConsecutiveFailures = 0
		hc.status.Healthy = true
		hc.status.LastError = ""
	}

	if hc.status.Healthy {
		metrics.TransportHealthy.Set(1)
	} else {
		metrics.TransportHealthy.Set(0)
	}
}
