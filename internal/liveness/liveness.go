// Package liveness drives the gateway's lifecycle FSM (spec.md §4.6):
// register, hold the GatewayStatus cell, run periodic registry health
// probes, and react to probe failure or credential revocation without
// losing in-flight request handling, which lives entirely outside this
// package and only ever reads the StatusCell.
package liveness

import (
	"context"
	"errors"
	"sync"
	"time"

	"ecomm/api-gateway/internal/logging"
	"ecomm/api-gateway/internal/registryclient"
	"ecomm/api-gateway/internal/retry"
)

// FailStrategy selects what happens after the health-probe retry budget
// (3 attempts) is exhausted while still failing.
type FailStrategy string

const (
	TryAgain FailStrategy = "try-again"
	Shutdown FailStrategy = "shutdown"
)

// probeRetryBudget is the fixed number of in-place probe retries spec.md
// §4.6 names before falling back to the configured FailStrategy.
const probeRetryBudget = 3

// Options configures a Controller. New replaces a non-positive
// HealthCheckInterval, ProbeTimeout or MaxReregisterRetries and an empty
// HealthCheckFailStrategy with spec.md §6's documented defaults; Port and
// HealthChecksEnabled are used exactly as given.
type Options struct {
	Port                    int
	HealthChecksEnabled     bool
	HealthCheckInterval     time.Duration
	HealthCheckFailStrategy FailStrategy
	ProbeTimeout            time.Duration
	MaxReregisterRetries    int
}

func (o Options) withDefaults() Options {
	if o.HealthCheckInterval <= 0 {
		o.HealthCheckInterval = 10 * time.Second
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 5 * time.Second
	}
	if o.HealthCheckFailStrategy == "" {
		o.HealthCheckFailStrategy = TryAgain
	}
	if o.MaxReregisterRetries <= 0 {
		o.MaxReregisterRetries = 3
	}
	return o
}

// Controller owns the StatusCell and the single scheduled probe timer.
type Controller struct {
	registry registryclient.Client
	retry    *retry.Policy
	log      *logging.Logger
	status   *StatusCell
	opts     Options

	// onTerminate is invoked exactly once, after SHUTTING_DOWN is
	// latched, per spec.md §4.6's invariant ordering.
	onTerminate   func()
	terminateOnce sync.Once

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc

	statsMu                       sync.Mutex
	lastProbeAt                   time.Time
	lastProbeOutcome              string
	consecutiveProbeFailures      int
	consecutiveReregisterFailures int
}

// Snapshot is a point-in-time read of the controller's state, for the
// admin status surface. It never affects proxying.
type Snapshot struct {
	Status                        Status
	LastProbeAt                   time.Time
	LastProbeOutcome              string
	ConsecutiveProbeFailures      int
	ConsecutiveReregisterFailures int
}

// Snapshot returns the controller's current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return Snapshot{
		Status:                        c.status.Get(),
		LastProbeAt:                   c.lastProbeAt,
		LastProbeOutcome:              c.lastProbeOutcome,
		ConsecutiveProbeFailures:      c.consecutiveProbeFailures,
		ConsecutiveReregisterFailures: c.consecutiveReregisterFailures,
	}
}

func (c *Controller) recordProbe(outcome probeOutcome) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.lastProbeAt = time.Now()
	switch outcome {
	case probeUp:
		c.lastProbeOutcome = "UP"
		c.consecutiveProbeFailures = 0
	case probeRevoked:
		c.lastProbeOutcome = "REVOKED"
		c.consecutiveProbeFailures = 0
	case probeDown:
		c.lastProbeOutcome = "DOWN"
		c.consecutiveProbeFailures++
	}
}

func (c *Controller) recordReregisterAttempt(ok bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if ok {
		c.consecutiveReregisterFailures = 0
		return
	}
	c.consecutiveReregisterFailures++
}

// ForceReregister drives the controller into REREGISTERING immediately,
// the operator escape hatch for a registry-side credential rotation
// (spec.md §4.6's 401 path, triggered manually instead of by a probe).
// Runs the subroutine on its own goroutine since it blocks on backoff.
func (c *Controller) ForceReregister() {
	c.status.Set(StatusReregistering)
	go c.reregister()
}

// New builds a Controller in STARTING state. status must be the same
// cell ProxyEngine consults on its hot path.
func New(reg registryclient.Client, policy *retry.Policy, log *logging.Logger, status *StatusCell, opts Options, onTerminate func()) *Controller {
	return &Controller{
		registry:    reg,
		retry:       policy,
		log:         log,
		status:      status,
		opts:        opts.withDefaults(),
		onTerminate: onTerminate,
	}
}

// Start performs the initial registration and, on success, transitions
// to ACTIVE and schedules the first probe. It retries on recoverable
// registry-unreachable errors until ctx is cancelled; a missing
// registration key is fatal and returned immediately (the caller is
// expected to abort the process, per spec.md §7).
func (c *Controller) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	attempt := 0
	for {
		_, err := c.registry.Register(runCtx, c.opts.Port)
		if err == nil {
			c.status.Set(StatusActive)
			c.log.Infof("registered with registry, status=ACTIVE")
			if c.opts.HealthChecksEnabled {
				c.scheduleProbe(c.opts.HealthCheckInterval)
			}
			return nil
		}
		if errors.Is(err, registryclient.ErrMissingRegistrationKey) {
			return err
		}
		attempt++
		c.log.Warnf("registration attempt %d failed: %v", attempt, err)
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}
		c.retry.Sleep(runCtx, attempt)
	}
}

// Stop cancels any pending probe timer so the process can exit promptly
// (spec.md §4.6's shutdown invariant). Safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) scheduleProbe(after time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return // Not started, or Stop already ran; never schedule past shutdown.
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(after, c.runProbeCycle)
}

// runProbeCycle is the timer callback: one probe, then however many
// in-place retries or state transitions spec.md §4.6 calls for.
func (c *Controller) runProbeCycle() {
	if c.status.Get() == StatusShuttingDown {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.ProbeTimeout)
	defer cancel()

	outcome := c.probeOnce(ctx)
	c.recordProbe(outcome)
	switch outcome {
	case probeUp:
		c.status.Set(StatusActive)
		c.scheduleProbe(c.opts.HealthCheckInterval)
	case probeRevoked:
		c.status.Set(StatusReregistering)
		c.reregister()
	case probeDown:
		c.handleProbeFailure()
	}
}

type probeOutcome int

const (
	probeUp probeOutcome = iota
	probeDown
	probeRevoked
)

func (c *Controller) probeOnce(ctx context.Context) probeOutcome {
	hs, err := c.registry.Health(ctx)
	if err != nil {
		if errors.Is(err, registryclient.ErrCredentialRevoked) {
			return probeRevoked
		}
		return probeDown
	}
	if hs.Up() {
		return probeUp
	}
	return probeDown
}

// handleProbeFailure implements the HEALTH_CHECK_FAIL branch: up to
// probeRetryBudget in-place retries with RetryPolicy delays, then a
// FailStrategy-driven transition.
func (c *Controller) handleProbeFailure() {
	c.status.Set(StatusHealthCheckFail)
	for attempt := 1; attempt <= probeRetryBudget; attempt++ {
		c.retry.Sleep(context.Background(), attempt)
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.ProbeTimeout)
		outcome := c.probeOnce(ctx)
		cancel()
		c.recordProbe(outcome)
		switch outcome {
		case probeUp:
			c.status.Set(StatusActive)
			c.scheduleProbe(c.opts.HealthCheckInterval)
			return
		case probeRevoked:
			c.status.Set(StatusReregistering)
			c.reregister()
			return
		case probeDown:
			continue
		}
	}
	if c.opts.HealthCheckFailStrategy == Shutdown {
		c.log.Errorf("health checks exhausted retry budget, shutting down")
		c.latchShutdown()
		return
	}
	c.log.Warnf("health checks still failing after %d retries, staying in HEALTH_CHECK_FAIL", probeRetryBudget)
	c.scheduleProbe(c.opts.HealthCheckInterval)
}

// reregister retries Register up to MaxReregisterRetries times with
// strictly-incrementing exponential backoff (spec.md §9 flags the
// source's non-incrementing counter as a bug; this counter always
// advances).
func (c *Controller) reregister() {
	for attempt := 1; attempt <= c.opts.MaxReregisterRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.ProbeTimeout)
		_, err := c.registry.Register(ctx, c.opts.Port)
		cancel()
		c.recordReregisterAttempt(err == nil)
		if err == nil {
			c.status.Set(StatusActive)
			c.log.Infof("re-registration succeeded, status=ACTIVE")
			if c.opts.HealthChecksEnabled {
				c.scheduleProbe(c.opts.HealthCheckInterval)
			}
			return
		}
		c.log.Warnf("re-registration attempt %d/%d failed: %v", attempt, c.opts.MaxReregisterRetries, err)
		if attempt < c.opts.MaxReregisterRetries {
			c.retry.Sleep(context.Background(), attempt)
		}
	}
	c.log.Errorf("re-registration exhausted after %d attempts, shutting down", c.opts.MaxReregisterRetries)
	c.latchShutdown()
}

// latchShutdown sets SHUTTING_DOWN before invoking onTerminate, per
// spec.md §4.6's ordering invariant.
func (c *Controller) latchShutdown() {
	c.status.Set(StatusShuttingDown)
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	if c.onTerminate != nil {
		c.terminateOnce.Do(c.onTerminate)
	}
}
