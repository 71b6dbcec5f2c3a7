// Package health implements the per-backend circuit breaker and weight
// decay/recovery the router consults before and after every upstream call.
package health

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// State is the circuit breaker's state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// Config tunes the breaker.
type Config struct {
	FailThreshold int
	OpenDuration  time.Duration
	RecoveryStep  int // percentage points added to weight_factor per success
}

// DefaultConfig is the breaker's standard tuning: trip after 3 consecutive
// failures, stay open 30s, recover 10 percentage points per success.
var DefaultConfig = Config{FailThreshold: 3, OpenDuration: 30 * time.Second, RecoveryStep: 10}

// Tracker holds one backend's circuit breaker and weight factor. Counters
// and the weight factor are lock-free atomics; only the Open/HalfOpen
// transition and its deadline are guarded by a mutex, since they must be
// read-modify-written together.
type Tracker struct {
	cfg Config

	weightFactor       atomic.Int64 // percent, [1,100]
	consecutiveFailures atomic.Int64
	activeCount         atomic.Int64

	mu        sync.Mutex
	state     State
	openUntil time.Time
}

// NewTracker returns a Tracker at full weight and Closed state.
func NewTracker(cfg Config) *Tracker {
	if cfg.FailThreshold <= 0 {
		cfg.FailThreshold = DefaultConfig.FailThreshold
	}
	if cfg.OpenDuration <= 0 {
		cfg.OpenDuration = DefaultConfig.OpenDuration
	}
	if cfg.RecoveryStep <= 0 {
		cfg.RecoveryStep = DefaultConfig.RecoveryStep
	}
	t := &Tracker{cfg: cfg, state: Closed}
	t.weightFactor.Store(100)
	return t
}

// Permit reports whether this backend may currently receive traffic. An
// Open breaker past its deadline transitions to HalfOpen as a side effect
// and returns true for the probe request.
func (t *Tracker) Permit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case Closed, HalfOpen:
		return true
	case Open:
		if !time.Now().Before(t.openUntil) {
			t.state = HalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

// Start records the beginning of one in-flight call.
func (t *Tracker) Start() { t.activeCount.Add(1) }

// End records the outcome of one call that Start was called for, applying
// the weight decay/recovery and breaker state transition.
func (t *Tracker) End(success bool) {
	t.activeCount.Add(-1)

	if success {
		t.recover()
		return
	}
	t.decay()
}

func (t *Tracker) recover() {
	for {
		cur := t.weightFactor.Load()
		next := cur + int64(t.cfg.RecoveryStep)
		if next > 100 {
			next = 100
		}
		if t.weightFactor.CompareAndSwap(cur, next) {
			break
		}
	}
	t.consecutiveFailures.Store(0)

	t.mu.Lock()
	if t.state == HalfOpen {
		t.state = Closed
	}
	t.openUntil = time.Time{}
	t.mu.Unlock()
}

func (t *Tracker) decay() {
	for {
		cur := t.weightFactor.Load()
		next := cur / 2
		if next < 1 {
			next = 1
		}
		if t.weightFactor.CompareAndSwap(cur, next) {
			break
		}
	}
	failures := t.consecutiveFailures.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == HalfOpen {
		t.state = Open
		t.openUntil = time.Now().Add(t.cfg.OpenDuration)
		return
	}
	if failures >= int64(t.cfg.FailThreshold) {
		t.state = Open
		t.openUntil = time.Now().Add(t.cfg.OpenDuration)
	}
}

// EffectiveWeight returns base*weight_factor/100, floored to 1 when base > 0:
// a nonzero base weight is never driven all the way to zero by decay alone.
func (t *Tracker) EffectiveWeight(base uint) uint {
	if base == 0 {
		return 0
	}
	w := uint(int64(base) * t.weightFactor.Load() / 100)
	if w < 1 {
		w = 1
	}
	return w
}

// ActiveCount returns the current in-flight call count for this backend.
func (t *Tracker) ActiveCount() int64 { return t.activeCount.Load() }
