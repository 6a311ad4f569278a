package matchmaker

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/poiesic/matchmaker/constraint"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/matching"
	"github.com/poiesic/matchmaker/ranker"
	"github.com/poiesic/matchmaker/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairSemantic returns a fixed symmetric similarity per pair, or def.
type pairSemantic struct {
	scores map[[2]string]float64
	def    float64
}

func (p *pairSemantic) set(a, b string, v float64) {
	p.scores[[2]string{a, b}] = v
	p.scores[[2]string{b, a}] = v
}

func (p *pairSemantic) Similarity(_ context.Context, a, b *core.Profile, _, _ *core.PreferenceCriteria) (float64, error) {
	if v, ok := p.scores[[2]string{a.ID, b.ID}]; ok {
		return v, nil
	}
	return p.def, nil
}

type fixedDistance float64

func (f fixedDistance) DistanceKm(core.Location, core.Location) float64 { return float64(f) }

func newSemantic(def float64) *pairSemantic {
	return &pairSemantic{scores: map[[2]string]float64{}, def: def}
}

func newTestEngine(t *testing.T, sem *pairSemantic, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(sem, fixedDistance(5), append([]Option{WithPoolSize(4)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func person(id string, g core.Gender, age int) *core.Profile {
	return &core.Profile{
		ID:          id,
		Gender:      g,
		Age:         age,
		Community:   core.CommunityLithuanian,
		Religiosity: core.ReligiosityStrict,
		Education:   core.EducationYeshiva,
		Languages:   []string{"hebrew"},
		Location:    core.Location{Place: "jerusalem"},
	}
}

func openCriteria(profiles ...*core.Profile) map[string]*core.PreferenceCriteria {
	out := make(map[string]*core.PreferenceCriteria, len(profiles))
	for _, p := range profiles {
		out[p.ID] = &core.PreferenceCriteria{ProfileID: p.ID}
	}
	return out
}

type recordingMonitor struct {
	mu       sync.Mutex
	started  int
	excluded []constraint.Decision
	scored   int
	blocking []matching.BlockingPair
	finished int
}

func (m *recordingMonitor) Start(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *recordingMonitor) Excluded(d constraint.Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.excluded = append(m.excluded, d)
}

func (m *recordingMonitor) Scored(*core.ScoredPair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scored++
}

func (m *recordingMonitor) PreferencesBuilt(_, _ matching.Preferences) {}

func (m *recordingMonitor) Finish(_ *core.StableAssignment, blocking []matching.BlockingPair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
	m.blocking = append(m.blocking, blocking...)
}

func TestNewEngine_RequiresDependencies(t *testing.T) {
	_, err := NewEngine(nil, fixedDistance(0))
	assert.ErrorIs(t, err, ErrSemanticScorerRequired)
	_, err = NewEngine(newSemantic(0.5), nil)
	assert.ErrorIs(t, err, ErrResolverRequired)
	_, err = NewEngine(newSemantic(0.5), fixedDistance(0), WithProposingGender(core.GenderUnspecified))
	assert.Error(t, err)
	_, err = NewEngine(newSemantic(0.5), fixedDistance(0), WithMatchMinScore(2))
	assert.Error(t, err)
}

func TestScorePair(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newSemantic(0.8))
	a := person("a", core.GenderMale, 28)
	b := person("b", core.GenderFemale, 26)
	crit := openCriteria(a, b)

	res, err := e.ScorePair(ctx, a, crit["a"], b, crit["b"])
	require.NoError(t, err)
	require.False(t, res.Excluded)
	require.NotNil(t, res.Pair)
	assert.Equal(t, res.Pair.Total, res.Pair.Final)
	assert.InDelta(t, 0.8, res.Pair.Components.Semantic, 1e-12)
	assert.True(t, res.Decision.Eligible)
}

func TestScorePair_MutualFilter(t *testing.T) {
	e := newTestEngine(t, newSemantic(0.8))
	a := person("a", core.GenderMale, 30)
	b := person("b", core.GenderFemale, 20)
	critA := &core.PreferenceCriteria{ProfileID: "a", MustHave: core.MustHave{MinAge: 25}}
	critB := &core.PreferenceCriteria{ProfileID: "b"}

	res, err := e.ScorePair(context.Background(), a, critA, b, critB)
	require.NoError(t, err)
	assert.True(t, res.Excluded)
	assert.Nil(t, res.Pair)
	assert.Equal(t, constraint.PredicateAge, res.Decision.Predicate)
	assert.Equal(t, constraint.SideA, res.Decision.Side)

	// The same constraint excludes the pair when the roles are swapped.
	res, err = e.ScorePair(context.Background(), b, critB, a, critA)
	require.NoError(t, err)
	assert.True(t, res.Excluded)
	assert.Equal(t, constraint.SideB, res.Decision.Side)
}

func TestScorePair_InvalidInput(t *testing.T) {
	e := newTestEngine(t, newSemantic(0.8))
	a := person("a", core.GenderMale, 30)
	b := person("b", core.GenderFemale, 30)
	b.Age = 5

	_, err := e.ScorePair(context.Background(), a, nil, b, nil)
	assert.ErrorIs(t, err, core.ErrInvalidProfile)

	b.Age = 30
	bad := &core.PreferenceCriteria{MustHave: core.MustHave{MinAge: 40, MaxAge: 30}}
	_, err = e.ScorePair(context.Background(), a, bad, b, nil)
	assert.ErrorIs(t, err, core.ErrInvalidCriteria)
}

func TestRankCandidates(t *testing.T) {
	ctx := context.Background()
	sem := newSemantic(0.3)
	sem.set("q", "f1", 0.9)
	sem.set("q", "f2", 0.6)
	e := newTestEngine(t, sem)

	q := person("q", core.GenderMale, 30)
	f1 := person("f1", core.GenderFemale, 29)
	f2 := person("f2", core.GenderFemale, 29)
	f3 := person("f3", core.GenderFemale, 29)
	f4 := person("f4", core.GenderFemale, 29)
	m1 := person("m1", core.GenderMale, 29) // same gender, filtered
	crit := openCriteria(q, f1, f2, f3, f4, m1)

	pool := []*core.Profile{f4, f3, m1, f2, f1, nil}
	all, err := e.RankCandidates(ctx, q, pool, crit, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "f1", all[0].ProfileB)
	assert.Equal(t, "f2", all[1].ProfileB)
	assert.Equal(t, "f3", all[2].ProfileB, "ties broken by id")
	assert.Equal(t, "f4", all[3].ProfileB)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Final, all[i].Final)
	}

	top, err := e.RankCandidates(ctx, q, pool, crit, 1, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "f1", top[0].ProfileB)

	strong, err := e.RankCandidates(ctx, q, pool, crit, 0, all[1].Final)
	require.NoError(t, err)
	assert.Len(t, strong, 2)

	_, err = e.RankCandidates(ctx, nil, pool, crit, 0, 0)
	assert.ErrorIs(t, err, core.ErrInvalidProfile)
}

func TestRankCandidates_InvalidPool(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newSemantic(0.5))
	q := person("q", core.GenderMale, 30)
	f1 := person("f1", core.GenderFemale, 29)
	f2 := person("f2", core.GenderFemale, 29)
	crit := openCriteria(q, f1, f2)

	f2.Age = 5
	_, err := e.RankCandidates(ctx, q, []*core.Profile{f1, f2}, crit, 0, 0)
	assert.ErrorIs(t, err, core.ErrInvalidProfile)
	assert.ErrorIs(t, err, core.ErrAgeOutOfRange)

	f2.Age = 29
	crit["f2"].MustHave.MinAge, crit["f2"].MustHave.MaxAge = 40, 30
	_, err = e.RankCandidates(ctx, q, []*core.Profile{f1, f2}, crit, 0, 0)
	assert.ErrorIs(t, err, core.ErrInvalidCriteria)

	crit["f2"].MustHave.MinAge, crit["f2"].MustHave.MaxAge = 0, 0
	_, err = e.RankCandidates(ctx, q, []*core.Profile{f1, f2, f1}, crit, 0, 0)
	assert.ErrorIs(t, err, core.ErrDuplicateProfile)

	pairs, err := e.RankCandidates(ctx, q, []*core.Profile{f1, f2}, crit, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

func TestRankCandidates_Canceled(t *testing.T) {
	e := newTestEngine(t, newSemantic(0.5))
	q := person("q", core.GenderMale, 30)
	f1 := person("f1", core.GenderFemale, 29)
	crit := openCriteria(q, f1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.RankCandidates(ctx, q, []*core.Profile{f1}, crit, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeStableMatching_MutualFirstChoices(t *testing.T) {
	sem := newSemantic(0.2)
	for i := 1; i <= 3; i++ {
		sem.set(fmt.Sprintf("m%d", i), fmt.Sprintf("f%d", i), 0.95)
	}
	monitor := &recordingMonitor{}
	e := newTestEngine(t, sem, WithMonitor(monitor))

	var population []*core.Profile
	for i := 1; i <= 3; i++ {
		population = append(population,
			person(fmt.Sprintf("m%d", i), core.GenderMale, 30),
			person(fmt.Sprintf("f%d", i), core.GenderFemale, 28))
	}
	crit := openCriteria(population...)

	a, err := e.ComputeStableMatching(context.Background(), population, crit)
	require.NoError(t, err)

	require.Len(t, a.Pairs, 3)
	for i, pair := range a.Pairs {
		assert.Equal(t, fmt.Sprintf("m%d", i+1), pair.Proposer)
		assert.Equal(t, fmt.Sprintf("f%d", i+1), pair.Receiver)
		assert.Equal(t, 1, pair.ProposerRank)
		assert.Equal(t, 1, pair.ReceiverRank)
		assert.Greater(t, pair.Score, 0.0)
	}
	for id, partner := range a.Partners {
		assert.Equal(t, id, a.Partners[partner])
	}
	assert.Empty(t, a.Unmatched)
	assert.Equal(t, 3, a.Proposals)

	assert.Equal(t, 1, monitor.started)
	assert.Equal(t, 9, monitor.scored)
	assert.Empty(t, monitor.blocking)
}

func randomPopulation(rng *rand.Rand, n int, sem *pairSemantic) []*core.Profile {
	var population []*core.Profile
	for i := 0; i < n; i++ {
		population = append(population,
			person(fmt.Sprintf("m%02d", i), core.GenderMale, 25+rng.IntN(10)),
			person(fmt.Sprintf("f%02d", i), core.GenderFemale, 22+rng.IntN(10)))
	}
	for _, a := range population {
		for _, b := range population {
			if a.Gender == core.GenderMale && b.Gender == core.GenderFemale {
				sem.set(a.ID, b.ID, rng.Float64())
			}
		}
	}
	return population
}

func TestComputeStableMatching_RandomPopulationsAreStable(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for iter := 0; iter < 10; iter++ {
		sem := newSemantic(0.5)
		population := randomPopulation(rng, 6, sem)
		crit := openCriteria(population...)
		// Some profiles only accept younger partners, making lists incomplete.
		for _, p := range population[:4] {
			crit[p.ID].MustHave.MaxAge = 28
		}

		monitor := &recordingMonitor{}
		e := newTestEngine(t, sem, WithMonitor(monitor), WithMatchMinScore(0.3))

		first, err := e.ComputeStableMatching(context.Background(), population, crit)
		require.NoError(t, err)
		assert.Empty(t, monitor.blocking, "iteration %d", iter)

		again, err := e.ComputeStableMatching(context.Background(), population, crit)
		require.NoError(t, err)
		assert.Equal(t, first, again, "matching must be deterministic")
	}
}

func TestComputeStableMatching_ProposingSide(t *testing.T) {
	// With women proposing, pairs are reported from their side.
	sem := newSemantic(0.5)
	sem.set("ma", "fx", 0.9)
	sem.set("mb", "fy", 0.9)
	sem.set("ma", "fy", 0.7)
	sem.set("mb", "fx", 0.7)
	population := []*core.Profile{
		person("ma", core.GenderMale, 30), person("mb", core.GenderMale, 30),
		person("fx", core.GenderFemale, 30), person("fy", core.GenderFemale, 30),
	}
	crit := openCriteria(population...)

	e := newTestEngine(t, sem, WithProposingGender(core.GenderFemale))
	a, err := e.ComputeStableMatching(context.Background(), population, crit)
	require.NoError(t, err)
	require.Len(t, a.Pairs, 2)
	assert.Equal(t, "fx", a.Pairs[0].Proposer)
	assert.Equal(t, "ma", a.Pairs[0].Receiver)
}

func TestComputeStableMatching_RejectsInvalidPopulation(t *testing.T) {
	valid := func() ([]*core.Profile, map[string]*core.PreferenceCriteria) {
		population := []*core.Profile{
			person("m1", core.GenderMale, 30),
			person("f1", core.GenderFemale, 30),
			person("x", core.GenderFemale, 30),
		}
		return population, openCriteria(population...)
	}

	tests := []struct {
		name   string
		mutate func([]*core.Profile, map[string]*core.PreferenceCriteria) []*core.Profile
		want   []error
	}{
		{
			name: "age out of range",
			mutate: func(p []*core.Profile, _ map[string]*core.PreferenceCriteria) []*core.Profile {
				p[2].Age = 5
				return p
			},
			want: []error{core.ErrInvalidProfile, core.ErrAgeOutOfRange},
		},
		{
			name: "missing gender",
			mutate: func(p []*core.Profile, _ map[string]*core.PreferenceCriteria) []*core.Profile {
				p[2].Gender = core.GenderUnspecified
				return p
			},
			want: []error{core.ErrInvalidProfile, core.ErrMissingGender},
		},
		{
			name: "inverted criteria",
			mutate: func(p []*core.Profile, c map[string]*core.PreferenceCriteria) []*core.Profile {
				c["x"].MustHave.MinAge, c["x"].MustHave.MaxAge = 40, 30
				return p
			},
			want: []error{core.ErrInvalidCriteria},
		},
		{
			name: "duplicate id",
			mutate: func(p []*core.Profile, _ map[string]*core.PreferenceCriteria) []*core.Profile {
				return append(p, person("m1", core.GenderMale, 40))
			},
			want: []error{core.ErrInvalidProfile, core.ErrDuplicateProfile},
		},
		{
			name: "every failure reported",
			mutate: func(p []*core.Profile, c map[string]*core.PreferenceCriteria) []*core.Profile {
				p[0].Age = 5
				c["x"].MustHave.MinAge, c["x"].MustHave.MaxAge = 40, 30
				return p
			},
			want: []error{core.ErrAgeOutOfRange, core.ErrInvalidCriteria},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := &recordingMonitor{}
			e := newTestEngine(t, newSemantic(0.8), WithMonitor(monitor))
			population, crit := valid()
			population = tt.mutate(population, crit)

			a, err := e.ComputeStableMatching(context.Background(), population, crit)
			require.Error(t, err)
			assert.Nil(t, a)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
			assert.Zero(t, monitor.started, "nothing is scored for a rejected population")

			_, err = e.ComputeStableMatchingByCommunity(context.Background(), population, crit)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestComputeStableMatchingByCommunity_DuplicateAcrossCommunities(t *testing.T) {
	m1 := person("m1", core.GenderMale, 30)
	f1 := person("f1", core.GenderFemale, 28)
	other := person("m1", core.GenderMale, 31)
	other.Community = core.CommunitySephardic
	population := []*core.Profile{m1, f1, other}

	e := newTestEngine(t, newSemantic(0.6))
	_, err := e.ComputeStableMatchingByCommunity(context.Background(), population, openCriteria(m1, f1))
	assert.ErrorIs(t, err, core.ErrDuplicateProfile)
}

func TestScorePair_MissingCriteriaExcluded(t *testing.T) {
	e := newTestEngine(t, newSemantic(0.8))
	a := person("a", core.GenderMale, 30)
	b := person("b", core.GenderFemale, 30)

	res, err := e.ScorePair(context.Background(), a, nil, b, nil)
	require.NoError(t, err)
	assert.True(t, res.Excluded)
	assert.Equal(t, constraint.PredicateCriteria, res.Decision.Predicate)
}

func TestComputeStableMatchingByCommunity(t *testing.T) {
	sem := newSemantic(0.6)
	m1 := person("m1", core.GenderMale, 30)
	f1 := person("f1", core.GenderFemale, 28)
	m2 := person("m2", core.GenderMale, 30)
	f2 := person("f2", core.GenderFemale, 28)
	m2.Community, f2.Community = core.CommunitySephardic, core.CommunitySephardic
	population := []*core.Profile{m1, f1, m2, f2}
	crit := openCriteria(population...)

	e := newTestEngine(t, sem)
	out, err := e.ComputeStableMatchingByCommunity(context.Background(), population, crit)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "f1", out[core.CommunityLithuanian].Partners["m1"])
	assert.Equal(t, "f2", out[core.CommunitySephardic].Partners["m2"])
}

func TestRecordFeedbackAndTrain(t *testing.T) {
	ctx := context.Background()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	rng := rand.New(rand.NewPCG(3, 4))
	sem := newSemantic(0.5)
	e := newTestEngine(t, sem,
		WithFeedbackStore(stores.Feedback()),
		WithModelStore(stores.Models()),
		WithRankerMode(ranker.ModeBlend))

	_, err = e.Train(ctx)
	assert.ErrorIs(t, err, ranker.ErrInsufficientTrainingData)
	assert.Nil(t, e.Ranker().Model())

	outcomes := []core.FeedbackOutcome{
		core.OutcomeRejected, core.OutcomeProposalSent, core.OutcomeContactMade,
		core.OutcomeMeetingScheduled, core.OutcomeMatched,
	}
	for i := 0; i < 30; i++ {
		a := person(fmt.Sprintf("m%d", i%3), core.GenderMale, 30)
		b := person(fmt.Sprintf("f%d", i), core.GenderFemale, 22+rng.IntN(12))
		level := rng.IntN(len(outcomes))
		sem.set(a.ID, b.ID, float64(level)/4)
		crit := openCriteria(a, b)

		res, err := e.ScorePair(ctx, a, crit[a.ID], b, crit[b.ID])
		require.NoError(t, err)
		require.False(t, res.Excluded)

		ev, err := e.RecordFeedback(ctx, res.Pair, outcomes[level], "synthetic")
		require.NoError(t, err)
		assert.NotEmpty(t, ev.ID)
		assert.Len(t, ev.Features, len(ranker.Schema))
	}

	model, err := e.Train(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), model.Version)
	assert.Same(t, model, e.Ranker().Model())

	// A restarted engine picks up the stored model.
	restarted := newTestEngine(t, sem, WithModelStore(stores.Models()))
	require.NoError(t, restarted.LoadModel(ctx))
	require.NotNil(t, restarted.Ranker().Model())
	assert.Equal(t, uint64(1), restarted.Ranker().Model().Version)
}

func TestFeedbackUnavailable(t *testing.T) {
	e := newTestEngine(t, newSemantic(0.5))
	_, err := e.RecordFeedback(context.Background(), &core.ScoredPair{}, core.OutcomeMatched, "")
	assert.ErrorIs(t, err, ErrFeedbackUnavailable)
	_, err = e.Train(context.Background())
	assert.ErrorIs(t, err, ErrFeedbackUnavailable)
	assert.ErrorIs(t, e.LoadModel(context.Background()), ErrTrainingUnavailable)
}
