package websearch

import (
	"sync"
	"time"
)

// Limiter defaults
const (
	DefaultFailureThreshold = 3
	DefaultCooldown         = 60 * time.Second
)

// LimiterConfig tunes the circuit breaker shared by all providers.
type LimiterConfig struct {
	FailureThreshold int           // Consecutive failures before the circuit opens
	Cooldown         time.Duration // How long an open circuit stays open
	Clock            func() time.Time
}

func (c *LimiterConfig) applyDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// providerState is the per-provider bookkeeping. Each entry carries its own
// mutex so one provider's gate never blocks another's.
type providerState struct {
	mu          sync.Mutex
	lastAttempt time.Time
	failures    int
	openUntil   time.Time
	probing     bool // Half-open probe in flight
	lastErr     error
}

// Limiter implements the per-provider request-interval gate and circuit
// breaker. TryAcquire, RecordSuccess and RecordFailure for one provider are
// individually atomic; the orchestrator is the only caller.
type Limiter struct {
	cfg LimiterConfig

	mu     sync.RWMutex
	states map[string]*providerState
}

// NewLimiter creates a Limiter with the given configuration.
func NewLimiter(cfg LimiterConfig) *Limiter {
	cfg.applyDefaults()
	return &Limiter{cfg: cfg, states: make(map[string]*providerState)}
}

func (l *Limiter) state(providerID string) *providerState {
	l.mu.RLock()
	st, ok := l.states[providerID]
	l.mu.RUnlock()
	if ok {
		return st
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok = l.states[providerID]; ok {
		return st
	}
	st = &providerState{}
	l.states[providerID] = st
	return st
}

// TryAcquire reports whether a request to the provider may proceed now. On
// success it records the attempt time atomically. It returns false while
// the circuit is open, while a half-open probe is in flight, or when less
// than minInterval has elapsed since the last attempt.
func (l *Limiter) TryAcquire(providerID string, minInterval time.Duration) bool {
	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := l.cfg.Clock()

	if !st.openUntil.IsZero() {
		if now.Before(st.openUntil) {
			return false
		}
		// Cooldown elapsed: allow exactly one probe.
		if st.probing {
			return false
		}
		st.probing = true
		st.lastAttempt = now
		return true
	}

	if !st.lastAttempt.IsZero() && now.Sub(st.lastAttempt) < minInterval {
		return false
	}

	st.lastAttempt = now
	return true
}

// RecordSuccess resets the failure counter and closes the circuit.
func (l *Limiter) RecordSuccess(providerID string) {
	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.failures = 0
	st.openUntil = time.Time{}
	st.probing = false
	st.lastErr = nil
}

// RecordFailure increments the consecutive-failure counter and opens the
// circuit once the threshold is reached. A failed half-open probe reopens
// the circuit for another cooldown window.
func (l *Limiter) RecordFailure(providerID string, err error) {
	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := l.cfg.Clock()
	st.lastErr = err

	if st.probing {
		st.probing = false
		st.openUntil = now.Add(l.cfg.Cooldown)
		return
	}

	st.failures++
	if st.failures >= l.cfg.FailureThreshold {
		st.openUntil = now.Add(l.cfg.Cooldown)
	}
}

// ProviderHealth is a read-only snapshot of one provider's circuit state.
type ProviderHealth struct {
	Available bool
	Failures  int
	LastError error
}

// Health returns the current circuit snapshot for a provider.
func (l *Limiter) Health(providerID string) ProviderHealth {
	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := l.cfg.Clock()
	return ProviderHealth{
		Available: st.openUntil.IsZero() || !now.Before(st.openUntil),
		Failures:  st.failures,
		LastError: st.lastErr,
	}
}
