package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackerStartsClosedAtFullWeight(t *testing.T) {
	tr := NewTracker(DefaultConfig)
	assert.True(t, tr.Permit())
	assert.Equal(t, uint(10), tr.EffectiveWeight(10))
}

func TestDecayHalvesWeightAndFloorsAtOne(t *testing.T) {
	tr := NewTracker(DefaultConfig)
	tr.End(false) // 100 -> 50
	assert.Equal(t, uint(5), tr.EffectiveWeight(10))

	tr.End(false) // 50 -> 25
	tr.End(false) // 25 -> 12
	tr.End(false) // 12 -> 6
	tr.End(false) // 6 -> 3
	tr.End(false) // 3 -> 1
	tr.End(false) // 1 -> 1 (floor)
	assert.Equal(t, uint(1), tr.EffectiveWeight(100))
}

func TestZeroBaseWeightStaysZero(t *testing.T) {
	tr := NewTracker(DefaultConfig)
	assert.Equal(t, uint(0), tr.EffectiveWeight(0))
	tr.End(false)
	assert.Equal(t, uint(0), tr.EffectiveWeight(0))
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cfg := Config{FailThreshold: 3, OpenDuration: 50 * time.Millisecond, RecoveryStep: 10}
	tr := NewTracker(cfg)

	require.True(t, tr.Permit())
	tr.End(false)
	require.True(t, tr.Permit())
	tr.End(false)
	require.True(t, tr.Permit()) // third failure trips the breaker
	tr.End(false)

	assert.False(t, tr.Permit(), "breaker should be open before its deadline")
}

func TestBreakerHalfOpensAfterDeadlineThenCloses(t *testing.T) {
	cfg := Config{FailThreshold: 1, OpenDuration: 10 * time.Millisecond, RecoveryStep: 10}
	tr := NewTracker(cfg)

	tr.End(false) // trips open on the first failure
	require.False(t, tr.Permit())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, tr.Permit(), "deadline passed: should probe via half-open")

	tr.End(true) // probe succeeds: weight recovers from 50 (post-decay) by +10
	assert.True(t, tr.Permit())
	assert.Equal(t, uint(60), tr.EffectiveWeight(100))
}

func TestRecoverResetsConsecutiveFailures(t *testing.T) {
	cfg := Config{FailThreshold: 2, OpenDuration: time.Second, RecoveryStep: 10}
	tr := NewTracker(cfg)

	tr.End(false) // 1 failure, not yet open
	tr.End(true)  // success resets the counter
	tr.End(false) // 1 failure again, still not open
	assert.True(t, tr.Permit())
}

func TestActiveCountTracksStartEnd(t *testing.T) {
	tr := NewTracker(DefaultConfig)
	tr.Start()
	tr.Start()
	assert.Equal(t, int64(2), tr.ActiveCount())
	tr.End(true)
	assert.Equal(t, int64(1), tr.ActiveCount())
}
