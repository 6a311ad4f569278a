package matchmaker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/matching"
	"golang.org/x/sync/errgroup"
)

// ComputeStableMatching scores every eligible proposer/receiver pair of the
// population, builds preference lists from the final scores and returns the
// proposer-optimal stable assignment.
//
// The whole population is validated before any scoring. An invalid profile,
// invalid criteria or a repeated ID fails the call with an error wrapping
// core.ErrInvalidProfile or core.ErrInvalidCriteria. Nil entries are ignored.
// Profiles on neither side of the market are listed as unmatched.
func (e *Engine) ComputeStableMatching(ctx context.Context, population []*core.Profile, criteria map[string]*core.PreferenceCriteria) (*core.StableAssignment, error) {
	valid, err := validatePopulation(population, criteria)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	e.monitor.Start(len(population))

	proposers, receivers, excluded := matching.Partition(valid, e.proposing)

	var jobs []pairJob
	for _, p := range proposers {
		for _, r := range receivers {
			d := e.filter.Check(p, criteria[p.ID], r, criteria[r.ID])
			if !d.Eligible {
				e.monitor.Excluded(d)
				continue
			}
			jobs = append(jobs, pairJob{a: p, b: r})
		}
	}

	pairs, err := e.scoreAll(ctx, jobs, criteria)
	if err != nil {
		return nil, err
	}

	scores := matching.Scores{}
	for _, sp := range pairs {
		e.ranker.Apply(sp)
		e.monitor.Scored(sp)
		scores.Set(sp.ProfileA, sp.ProfileB, sp.Final)
		scores.Set(sp.ProfileB, sp.ProfileA, sp.Final)
	}

	proposerIDs, receiverIDs := matching.IDs(proposers), matching.IDs(receivers)
	proposerPrefs := matching.BuildPreferences(proposerIDs, receiverIDs, scores, e.minScore)
	receiverPrefs := matching.BuildPreferences(receiverIDs, proposerIDs, scores, e.minScore)
	e.monitor.PreferencesBuilt(proposerPrefs, receiverPrefs)

	a, err := matching.Solve(proposerPrefs, receiverPrefs)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	for i := range a.Pairs {
		a.Pairs[i].Score, _ = scores.Get(a.Pairs[i].Proposer, a.Pairs[i].Receiver)
	}
	for _, p := range excluded {
		a.Unmatched = append(a.Unmatched, p.ID)
	}
	sort.Strings(a.Unmatched)

	blocking := matching.BlockingPairs(a, proposerPrefs, receiverPrefs)
	if len(blocking) > 0 {
		e.logger.Error("assignment has blocking pairs", "count", len(blocking), "first", blocking[0].String())
	}
	e.monitor.Finish(a, blocking)

	e.logger.Info("stable matching computed",
		"population", len(population),
		"proposers", len(proposers),
		"receivers", len(receivers),
		"scored", len(pairs),
		"matched", len(a.Pairs),
		"proposals", a.Proposals)
	return a, nil
}

// ComputeStableMatchingByCommunity runs an independent stable matching per
// community, in parallel. Profiles with no community form their own group
// under core.CommunityUnspecified. The population is validated as a whole
// first, so an ID repeated across communities is also rejected.
func (e *Engine) ComputeStableMatchingByCommunity(ctx context.Context, population []*core.Profile, criteria map[string]*core.PreferenceCriteria) (map[core.Community]*core.StableAssignment, error) {
	valid, err := validatePopulation(population, criteria)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	groups := make(map[core.Community][]*core.Profile)
	for _, p := range valid {
		groups[p.Community] = append(groups[p.Community], p)
	}

	var mu sync.Mutex
	out := make(map[core.Community]*core.StableAssignment, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for community, members := range groups {
		g.Go(func() error {
			a, err := e.ComputeStableMatching(gctx, members, criteria)
			if err != nil {
				return fmt.Errorf("community %s: %w", community, err)
			}
			mu.Lock()
			out[community] = a
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
