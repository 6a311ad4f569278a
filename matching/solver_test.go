package matching

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/poiesic/matchmaker/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_MutualFirstChoices(t *testing.T) {
	proposers := Preferences{
		"m1": {"f1", "f2", "f3"},
		"m2": {"f2", "f1", "f3"},
		"m3": {"f3", "f2", "f1"},
	}
	receivers := Preferences{
		"f1": {"m1", "m2", "m3"},
		"f2": {"m2", "m3", "m1"},
		"f3": {"m3", "m1", "m2"},
	}

	a, err := Solve(proposers, receivers)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"m1": "f1", "f1": "m1",
		"m2": "f2", "f2": "m2",
		"m3": "f3", "f3": "m3",
	}, a.Partners)
	for id, rank := range a.Ranks {
		assert.Equal(t, 1, rank, id)
	}
	assert.Empty(t, a.Unmatched)
	assert.Equal(t, 3, a.Proposals)
	require.Len(t, a.Pairs, 3)
	assert.Equal(t, "m1", a.Pairs[0].Proposer)
}

func TestSolve_ProposerOptimalClassic(t *testing.T) {
	// Both sides have an opposing cycle; the proposing side gets its first choices.
	proposers := Preferences{"a": {"x", "y"}, "b": {"y", "x"}}
	receivers := Preferences{"x": {"b", "a"}, "y": {"a", "b"}}

	a, err := Solve(proposers, receivers)
	require.NoError(t, err)
	assert.Equal(t, "x", a.Partners["a"])
	assert.Equal(t, "y", a.Partners["b"])
	assert.Equal(t, 2, a.Ranks["x"])

	flipped, err := Solve(receivers, proposers)
	require.NoError(t, err)
	assert.Equal(t, "b", flipped.Partners["x"])
	assert.Equal(t, "a", flipped.Partners["y"])
}

func TestSolve_UnmatchedAndUnacceptable(t *testing.T) {
	proposers := Preferences{
		"m1": {"f1"},
		"m2": {"f1"},
		"m3": {},
	}
	receivers := Preferences{
		"f1": {"m2"}, // m1 is not acceptable to f1
		"f2": {"m1"},
	}

	a, err := Solve(proposers, receivers)
	require.NoError(t, err)
	assert.Equal(t, "f1", a.Partners["m2"])
	assert.Equal(t, []string{"f2", "m1", "m3"}, a.Unmatched)
	assert.LessOrEqual(t, a.Proposals, proposers.Size())
	assert.Empty(t, BlockingPairs(a, proposers, receivers))
}

func TestSolve_RejectsMalformedLists(t *testing.T) {
	tests := []struct {
		name      string
		proposers Preferences
		receivers Preferences
	}{
		{"both sides", Preferences{"a": nil}, Preferences{"a": nil}},
		{"unknown", Preferences{"a": {"z"}}, Preferences{"x": nil}},
		{"duplicate", Preferences{"a": {"x", "x"}}, Preferences{"x": nil}},
		{"receiver unknown", Preferences{"a": {"x"}}, Preferences{"x": {"q"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.proposers, tt.receivers)
			assert.ErrorIs(t, err, ErrInvalidPreferences)
		})
	}
}

func TestSolve_Empty(t *testing.T) {
	a, err := Solve(Preferences{}, Preferences{})
	require.NoError(t, err)
	assert.Empty(t, a.Partners)
	assert.Empty(t, a.Pairs)
	assert.Zero(t, a.Proposals)
}

// randomInstance builds incomplete preference lists from random scores so
// that acceptability is mutual, as BuildPreferences produces in practice.
func randomInstance(rng *rand.Rand, np, nr int) (Preferences, Preferences) {
	var pids, rids []string
	for i := 0; i < np; i++ {
		pids = append(pids, fmt.Sprintf("p%d", i))
	}
	for i := 0; i < nr; i++ {
		rids = append(rids, fmt.Sprintf("r%d", i))
	}
	scores := Scores{}
	for _, p := range pids {
		for _, r := range rids {
			if rng.Float64() < 0.2 {
				continue // ineligible pair
			}
			scores.Set(p, r, float64(rng.IntN(5))/4)
			scores.Set(r, p, float64(rng.IntN(5))/4)
		}
	}
	return BuildPreferences(pids, rids, scores, 0), BuildPreferences(rids, pids, scores, 0)
}

// allStable enumerates every stable matching by brute force.
func allStable(proposers, receivers Preferences) []*core.StableAssignment {
	pids := proposers.ids()
	receiverRank := receivers.ranks()
	var out []*core.StableAssignment
	partners := map[string]string{}

	var walk func(i int)
	walk = func(i int) {
		if i == len(pids) {
			a := &core.StableAssignment{Partners: make(map[string]string, len(partners))}
			for k, v := range partners {
				a.Partners[k] = v
			}
			if len(BlockingPairs(a, proposers, receivers)) == 0 {
				out = append(out, a)
			}
			return
		}
		p := pids[i]
		walk(i + 1) // p unmatched
		for _, r := range proposers[p] {
			if _, taken := partners[r]; taken {
				continue
			}
			if _, ok := receiverRank[r][p]; !ok {
				continue
			}
			partners[p], partners[r] = r, p
			walk(i + 1)
			delete(partners, p)
			delete(partners, r)
		}
	}
	walk(0)
	return out
}

func rankOf(prefs Preferences, owner string, a *core.StableAssignment) int {
	partner, ok := a.Partners[owner]
	if !ok {
		return len(prefs[owner]) + 1
	}
	for i, id := range prefs[owner] {
		if id == partner {
			return i + 1
		}
	}
	return len(prefs[owner]) + 1
}

func TestSolve_RandomInstancesAreStableAndProposerOptimal(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	for iter := 0; iter < 200; iter++ {
		np, nr := 1+rng.IntN(4), 1+rng.IntN(4)
		proposers, receivers := randomInstance(rng, np, nr)

		a, err := Solve(proposers, receivers)
		require.NoError(t, err)

		require.Empty(t, BlockingPairs(a, proposers, receivers), "iteration %d", iter)
		require.LessOrEqual(t, a.Proposals, proposers.Size())
		for id, partner := range a.Partners {
			require.Equal(t, id, a.Partners[partner], "assignment must be symmetric")
		}

		stable := allStable(proposers, receivers)
		require.NotEmpty(t, stable)
		for _, other := range stable {
			for p := range proposers {
				assert.LessOrEqual(t, rankOf(proposers, p, a), rankOf(proposers, p, other),
					"iteration %d: proposer %s does better in another stable matching", iter, p)
			}
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	proposers, receivers := randomInstance(rng, 8, 8)

	first, err := Solve(proposers, receivers)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Solve(proposers, receivers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBlockingPairs_DetectsInstability(t *testing.T) {
	proposers := Preferences{"a": {"x", "y"}, "b": {"x", "y"}}
	receivers := Preferences{"x": {"a", "b"}, "y": {"a", "b"}}
	unstable := &core.StableAssignment{Partners: map[string]string{"a": "y", "y": "a", "b": "x", "x": "b"}}

	got := BlockingPairs(unstable, proposers, receivers)
	require.Len(t, got, 1)
	assert.Equal(t, "a-x", got[0].String())

	lonely := &core.StableAssignment{Partners: map[string]string{}}
	pairs := BlockingPairs(lonely, proposers, receivers)
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].String() < pairs[j].String() })
	assert.Len(t, pairs, 4)
}
