// Package router resolves a client-requested model name or group name to a
// concrete backend, load-balancing across a group's members and consulting
// each member's health tracker.
package router

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/relaygate/llmgateway/internal/apperr"
	"github.com/relaygate/llmgateway/internal/config"
	"github.com/relaygate/llmgateway/internal/health"
)

// Router resolves hints to backends. It owns one health.Tracker per
// (group, model) pair — the same model in two groups tracks health
// independently, matching the original breaker keying — plus one RR state
// map per group, guarded by that group's lock.
type Router struct {
	cfg *config.Config
	log *zap.Logger

	modelsByName map[string]config.ModelEntry
	groupsByName map[string]config.ModelGroupConfig
	trackers     map[string]*health.Tracker // trackerKey(group, model) -> tracker

	groupMu    map[string]*sync.Mutex
	groupState map[string]map[string]int64 // group -> member -> current weight
}

func trackerKey(group, model string) string { return group + "\x00" + model }

// New builds a Router from cfg, registering one tracker per (group, model)
// pair. prevTrackers carries forward health state across a config reload: a
// (group, model) key present in prevTrackers keeps its existing tracker
// (weight factor, consecutive failures, breaker state all survive); only
// keys with no entry in prevTrackers get a fresh health.NewTracker. Pass nil
// for a first, non-reload construction.
func New(cfg *config.Config, log *zap.Logger, prevTrackers map[string]*health.Tracker) *Router {
	r := &Router{
		cfg:          cfg,
		log:          log,
		modelsByName: make(map[string]config.ModelEntry, len(cfg.ModelList)),
		groupsByName: make(map[string]config.ModelGroupConfig, len(cfg.RouterSettings.ModelGroups)),
		trackers:     make(map[string]*health.Tracker),
		groupMu:      make(map[string]*sync.Mutex),
		groupState:   make(map[string]map[string]int64),
	}
	for _, m := range cfg.ModelList {
		r.modelsByName[m.ModelName] = m
	}
	for _, g := range cfg.RouterSettings.ModelGroups {
		r.groupsByName[g.Name] = g
		r.groupMu[g.Name] = &sync.Mutex{}
		r.groupState[g.Name] = make(map[string]int64, len(g.Models))
		for _, m := range g.Models {
			key := trackerKey(g.Name, m.Name)
			if tr, ok := prevTrackers[key]; ok {
				r.trackers[key] = tr
				continue
			}
			r.trackers[key] = health.NewTracker(health.DefaultConfig)
		}
	}
	return r
}

// Trackers returns this router's (group, model) -> tracker map, so a
// subsequent reload can carry health state forward via New's prevTrackers
// parameter. Callers must not mutate the returned map.
func (r *Router) Trackers() map[string]*health.Tracker { return r.trackers }

// Selection is one resolved backend plus the bookkeeping hooks start/end
// accounting. Direct model-name hints carry a nil tracker and never
// participate in health accounting.
type Selection struct {
	Entry   config.ModelEntry
	tracker *health.Tracker
}

// Start records the beginning of this call against the backend's health tracker.
func (s *Selection) Start() {
	if s.tracker != nil {
		s.tracker.Start()
	}
}

// End records the outcome of this call.
func (s *Selection) End(success bool) {
	if s.tracker != nil {
		s.tracker.End(success)
	}
}

// Resolve maps hint (a direct model name or a group name) to a Selection.
func (r *Router) Resolve(hint string) (*Selection, error) {
	if entry, ok := r.modelsByName[hint]; ok {
		return &Selection{Entry: entry}, nil
	}
	if group, ok := r.groupsByName[hint]; ok {
		return r.resolveGroup(group)
	}
	return nil, apperr.ModelNotFound(hint)
}

func (r *Router) resolveGroup(group config.ModelGroupConfig) (*Selection, error) {
	type candidate struct {
		member config.ModelGroupMember
		entry  config.ModelEntry
		tr     *health.Tracker
	}

	var all []candidate
	for _, m := range group.Models {
		entry, ok := r.modelsByName[m.Name]
		if !ok {
			continue // member references a model not in model_list: unselectable, not a load error
		}
		all = append(all, candidate{member: m, entry: entry, tr: r.trackers[trackerKey(group.Name, m.Name)]})
	}
	if len(all) == 0 {
		return nil, apperr.ModelNotFound(group.Name)
	}

	permitted := make([]candidate, 0, len(all))
	for _, c := range all {
		if c.tr.Permit() {
			permitted = append(permitted, c)
		}
	}
	pool := permitted
	if len(pool) == 0 {
		pool = all // fall back to the unfiltered set
	}
	if len(pool) == 0 {
		// Last resort: the first model in the global model list.
		if len(r.cfg.ModelList) == 0 {
			return nil, apperr.ModelNotFound(group.Name)
		}
		first := r.cfg.ModelList[0]
		// Outside any group's weighted pool entirely: bypasses health accounting.
		return &Selection{Entry: first}, nil
	}

	switch r.cfg.RouterSettings.Strategy {
	case "least-conn":
		return r.selectLeastConn(pool)
	case "random":
		return r.selectWeightedRandom(pool)
	default:
		return r.selectRoundRobin(group.Name, pool)
	}
}

type poolEntry = struct {
	member config.ModelGroupMember
	entry  config.ModelEntry
	tr     *health.Tracker
}

func (r *Router) selectRoundRobin(groupName string, pool []poolEntry) (*Selection, error) {
	mu := r.groupMu[groupName]
	mu.Lock()
	defer mu.Unlock()

	state := r.groupState[groupName]
	var total uint
	weights := make(map[string]uint, len(pool))
	for _, c := range pool {
		w := c.tr.EffectiveWeight(c.member.Weight)
		weights[c.member.Name] = w
		total += w
	}

	if total == 0 {
		chosen := pool[rand.Intn(len(pool))]
		return &Selection{Entry: chosen.entry, tracker: chosen.tr}, nil
	}

	var best string
	var bestWeight int64
	first := true
	var ties []string
	for _, c := range pool {
		state[c.member.Name] += int64(weights[c.member.Name])
		cur := state[c.member.Name]
		switch {
		case first || cur > bestWeight:
			best, bestWeight, ties, first = c.member.Name, cur, []string{c.member.Name}, false
		case cur == bestWeight:
			ties = append(ties, c.member.Name)
		}
	}
	if len(ties) > 1 {
		best = ties[rand.Intn(len(ties))]
	}
	state[best] -= int64(total)

	for _, c := range pool {
		if c.member.Name == best {
			return &Selection{Entry: c.entry, tracker: c.tr}, nil
		}
	}
	return nil, apperr.ModelNotFound(groupName)
}

func (r *Router) selectLeastConn(pool []poolEntry) (*Selection, error) {
	const epsilon = 0.001
	var best []poolEntry
	bestScore := -1.0
	for _, c := range pool {
		w := float64(c.tr.EffectiveWeight(c.member.Weight))
		if w < epsilon {
			w = epsilon
		}
		score := float64(c.tr.ActiveCount()) / w
		switch {
		case bestScore < 0 || score < bestScore:
			best, bestScore = []poolEntry{c}, score
		case score == bestScore:
			best = append(best, c)
		}
	}
	return r.weightedPick(best)
}

func (r *Router) selectWeightedRandom(pool []poolEntry) (*Selection, error) {
	return r.weightedPick(pool)
}

func (r *Router) weightedPick(pool []poolEntry) (*Selection, error) {
	if len(pool) == 0 {
		return nil, apperr.BadRequest("empty candidate pool")
	}
	var total uint
	for _, c := range pool {
		total += c.tr.EffectiveWeight(c.member.Weight)
	}
	if total == 0 {
		chosen := pool[rand.Intn(len(pool))]
		return &Selection{Entry: chosen.entry, tracker: chosen.tr}, nil
	}
	n := rand.Intn(int(total))
	var acc uint
	for _, c := range pool {
		acc += c.tr.EffectiveWeight(c.member.Weight)
		if uint(n) < acc {
			return &Selection{Entry: c.entry, tracker: c.tr}, nil
		}
	}
	last := pool[len(pool)-1]
	return &Selection{Entry: last.entry, tracker: last.tr}, nil
}

// SelfCheck logs a warning for every configured group that cannot currently
// select any member — either every listed model is missing from model_list,
// or the group is empty. It never returns an error: an unselectable group
// is a startup-time warning, not a load failure.
func (r *Router) SelfCheck() {
	for _, g := range r.cfg.RouterSettings.ModelGroups {
		selectable := 0
		for _, m := range g.Models {
			if _, ok := r.modelsByName[m.Name]; ok {
				selectable++
			}
		}
		if selectable == 0 {
			r.log.Warn("model group has no selectable members", zap.String("group", g.Name))
		}
	}
}
