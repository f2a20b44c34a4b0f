// Package health polls the backend health endpoint on a fixed interval and
// keeps the latest outcome for display.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// State is the poller's view of the backend.
type State string

const (
	// StateChecking is the initial state, before the first probe completes.
	StateChecking State = "checking"
	// StateHealthy means the most recent probe succeeded.
	StateHealthy State = "healthy"
	// StateError means the most recent probe failed.
	StateError State = "error"
)

// DefaultInterval is how often the backend is probed.
const DefaultInterval = 30 * time.Second

// Status is a snapshot of the poller. LastError holds the message from the
// most recent failed probe and is cleared only by a subsequent success.
type Status struct {
	State     State                `json:"state"`
	LastError string               `json:"lastError,omitempty"`
	Report    *models.HealthReport `json:"report,omitempty"`
	CheckedAt time.Time            `json:"checkedAt"`
}

// Prober fetches one health report from the backend.
type Prober interface {
	Health(ctx context.Context) (*models.HealthReport, error)
}

type Poller struct {
	client   Prober
	interval time.Duration
	logger   *logrus.Logger

	mu     sync.RWMutex
	status Status

	stopCh chan struct{}
}

func NewPoller(client Prober, interval time.Duration, logger *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client:   client,
		interval: interval,
		logger:   logger,
		status:   Status{State: StateChecking},
		stopCh:   make(chan struct{}),
	}
}

// Start probes once immediately, then on every interval tick until the
// context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) Stop() {
	close(p.stopCh)
}

func (p *Poller) run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check probes the backend once and returns the updated status. Manual
// retries call this directly without waiting for the next tick.
func (p *Poller) Check(ctx context.Context) Status {
	report, err := p.client.Health(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.CheckedAt = time.Now().UTC()
	if err != nil {
		p.status.State = StateError
		p.status.LastError = err.Error()
		p.logger.WithError(err).Warn("Backend health check failed")
		return p.status
	}

	p.status.State = StateHealthy
	p.status.LastError = ""
	p.status.Report = report
	return p.status
}

// Status returns the current snapshot.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
