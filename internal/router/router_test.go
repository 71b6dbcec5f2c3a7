package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relaygate/llmgateway/internal/config"
)

func testConfig(strategy string) *config.Config {
	return &config.Config{
		ModelList: []config.ModelEntry{
			{ModelName: "model-a", LLMParams: config.LLMParams{APIType: "openai"}},
			{ModelName: "model-b", LLMParams: config.LLMParams{APIType: "anthropic"}},
		},
		RouterSettings: config.RouterSettings{
			Strategy: strategy,
			ModelGroups: []config.ModelGroupConfig{
				{
					Name: "group-a",
					Models: []config.ModelGroupMember{
						{Name: "model-a", Weight: 1},
						{Name: "model-b", Weight: 1},
						{Name: "model-missing", Weight: 1}, // unselectable member
					},
				},
			},
		},
	}
}

func TestResolveDirectModelBypassesHealth(t *testing.T) {
	r := New(testConfig("round-robin"), zap.NewNop(), nil)
	sel, err := r.Resolve("model-a")
	require.NoError(t, err)
	assert.Equal(t, "model-a", sel.Entry.ModelName)
	// A direct hint carries no tracker; Start/End must be safe no-ops.
	sel.Start()
	sel.End(false)
	sel.End(true)
}

func TestResolveUnknownHintIsModelNotFound(t *testing.T) {
	r := New(testConfig("round-robin"), zap.NewNop(), nil)
	_, err := r.Resolve("nope")
	assert.Error(t, err)
}

func TestResolveGroupRoundRobinAlternates(t *testing.T) {
	r := New(testConfig("round-robin"), zap.NewNop(), nil)

	seen := map[string]int{}
	for i := 0; i < 20; i++ {
		sel, err := r.Resolve("group-a")
		require.NoError(t, err)
		seen[sel.Entry.ModelName]++
	}
	assert.Equal(t, 10, seen["model-a"])
	assert.Equal(t, 10, seen["model-b"])
}

func TestResolveGroupSkipsUnhealthyMembers(t *testing.T) {
	r := New(testConfig("round-robin"), zap.NewNop(), nil)

	key := trackerKey("group-a", "model-a")
	tr := r.trackers[key]
	for i := 0; i < 3; i++ {
		tr.End(false)
	}
	require.False(t, tr.Permit())

	for i := 0; i < 5; i++ {
		sel, err := r.Resolve("group-a")
		require.NoError(t, err)
		assert.Equal(t, "model-b", sel.Entry.ModelName)
	}
}

func TestResolveGroupFallsBackWhenAllUnhealthy(t *testing.T) {
	r := New(testConfig("round-robin"), zap.NewNop(), nil)

	for _, key := range []string{trackerKey("group-a", "model-a"), trackerKey("group-a", "model-b")} {
		tr := r.trackers[key]
		for i := 0; i < 3; i++ {
			tr.End(false)
		}
	}

	sel, err := r.Resolve("group-a")
	require.NoError(t, err)
	assert.Contains(t, []string{"model-a", "model-b"}, sel.Entry.ModelName)
}

func TestLeastConnPrefersFewerActiveCalls(t *testing.T) {
	r := New(testConfig("least-conn"), zap.NewNop(), nil)

	busy := r.trackers[trackerKey("group-a", "model-a")]
	busy.Start()
	busy.Start()
	busy.Start()

	sel, err := r.Resolve("group-a")
	require.NoError(t, err)
	assert.Equal(t, "model-b", sel.Entry.ModelName)
}

func TestNewCarriesForwardHealthStateForPersistedKeys(t *testing.T) {
	cfg := testConfig("round-robin")
	r := New(cfg, zap.NewNop(), nil)

	key := trackerKey("group-a", "model-a")
	tr := r.trackers[key]
	for i := 0; i < 3; i++ {
		tr.End(false)
	}
	require.False(t, tr.Permit(), "breaker should be open after three consecutive failures")

	// Reload with an unrelated field changed; model-a stays in group-a, so
	// its tracker and open breaker must survive, not reset to a fresh one.
	reloaded := *cfg
	reloaded.RouterSettings.Strategy = "least-conn"
	r2 := New(&reloaded, zap.NewNop(), r.Trackers())

	assert.Same(t, tr, r2.trackers[key], "a (group, model) key present before and after reload must keep its tracker")
	assert.False(t, r2.trackers[key].Permit(), "carried-forward tracker must keep its open breaker across reload")
}

func TestNewGivesFreshTrackerToNewKeyOnReload(t *testing.T) {
	cfg := testConfig("round-robin")
	r := New(cfg, zap.NewNop(), nil)

	reloaded := *cfg
	reloaded.RouterSettings.ModelGroups = append([]config.ModelGroupConfig{}, cfg.RouterSettings.ModelGroups...)
	reloaded.RouterSettings.ModelGroups[0].Models = append(
		append([]config.ModelGroupMember{}, cfg.RouterSettings.ModelGroups[0].Models...),
		config.ModelGroupMember{Name: "model-c", Weight: 1},
	)
	r2 := New(&reloaded, zap.NewNop(), r.Trackers())

	tr := r2.trackers[trackerKey("group-a", "model-c")]
	require.NotNil(t, tr)
	assert.True(t, tr.Permit(), "a brand-new key must start Closed, not inherit another key's state")
}

func TestSelfCheckDoesNotPanicOnUnselectableGroup(t *testing.T) {
	cfg := &config.Config{
		RouterSettings: config.RouterSettings{
			ModelGroups: []config.ModelGroupConfig{
				{Name: "empty-group", Models: []config.ModelGroupMember{{Name: "ghost", Weight: 1}}},
			},
		},
	}
	r := New(cfg, zap.NewNop(), nil)
	r.SelfCheck()
}
