package constraint

import (
	"math"
	"testing"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter(t *testing.T) *Filter {
	t.Helper()
	g, err := geo.NewGazetteer()
	require.NoError(t, err)
	f, err := NewFilter(g)
	require.NoError(t, err)
	return f
}

func man(id string, age int) *core.Profile {
	return &core.Profile{
		ID: id, Gender: core.GenderMale, Age: age,
		MaritalStatus: core.MaritalSingle,
		Community:     core.CommunityLithuanian,
		Religiosity:   core.ReligiosityStrict,
		Languages:     []string{"Hebrew", "English"},
		Location:      core.Location{Place: "bnei brak"},
	}
}

func woman(id string, age int) *core.Profile {
	p := man(id, age)
	p.Gender = core.GenderFemale
	p.Location = core.Location{Place: "ramat gan"}
	return p
}

func open(id string) *core.PreferenceCriteria {
	return &core.PreferenceCriteria{ProfileID: id}
}

func TestNewFilter_RequiresResolver(t *testing.T) {
	_, err := NewFilter(nil)
	assert.ErrorIs(t, err, ErrResolverRequired)
}

func TestCheck_MutualAgeConstraint(t *testing.T) {
	f := newTestFilter(t)
	a := man("a", 30)
	b := woman("b", 20)
	critA := &core.PreferenceCriteria{ProfileID: "a", MustHave: core.MustHave{MinAge: 25}}

	ab := f.Check(a, critA, b, open("b"))
	assert.False(t, ab.Eligible)
	assert.Equal(t, PredicateAge, ab.Predicate)
	assert.Equal(t, SideA, ab.Side)

	// same pair seen from b's side is excluded as well
	ba := f.Check(b, open("b"), a, critA)
	assert.False(t, ba.Eligible)
	assert.Equal(t, PredicateAge, ba.Predicate)
	assert.Equal(t, SideB, ba.Side)
}

func TestCheck_Predicates(t *testing.T) {
	yes := true
	tests := []struct {
		name      string
		mutateB   func(p *core.Profile)
		mustHave  core.MustHave
		eligible  bool
		predicate string
	}{
		{name: "no constraints", eligible: true},
		{name: "age inside window", mustHave: core.MustHave{MinAge: 20, MaxAge: 30}, eligible: true},
		{name: "age above max", mustHave: core.MustHave{MaxAge: 24}, predicate: PredicateAge},
		{name: "age unknown fails closed", mutateB: func(p *core.Profile) { p.Age = 0 },
			mustHave: core.MustHave{MinAge: 20}, predicate: PredicateAge},
		{name: "distance within limit", mustHave: core.MustHave{MaxDistanceKm: 10}, eligible: true},
		{name: "distance beyond limit", mutateB: func(p *core.Profile) { p.Location.Place = "haifa" },
			mustHave: core.MustHave{MaxDistanceKm: 10}, predicate: PredicateDistance},
		{name: "unknown place fails closed", mutateB: func(p *core.Profile) { p.Location.Place = "atlantis" },
			mustHave: core.MustHave{MaxDistanceKm: 500}, predicate: PredicateDistance},
		{name: "unknown place without distance constraint", mutateB: func(p *core.Profile) { p.Location.Place = "atlantis" },
			eligible: true},
		{name: "community accepted", mustHave: core.MustHave{
			RequiredCommunities: []core.Community{core.CommunityHasidic, core.CommunityLithuanian}}, eligible: true},
		{name: "community rejected", mustHave: core.MustHave{
			RequiredCommunities: []core.Community{core.CommunityHasidic}}, predicate: PredicateCommunity},
		{name: "unspecified community fails closed", mutateB: func(p *core.Profile) { p.Community = core.CommunityUnspecified },
			mustHave: core.MustHave{RequiredCommunities: []core.Community{core.CommunityLithuanian}}, predicate: PredicateCommunity},
		{name: "religiosity rejected", mustHave: core.MustHave{
			RequiredReligiosity: []core.ReligiosityLevel{core.ReligiosityVeryStrict}}, predicate: PredicateReligiosity},
		{name: "language match ignores case", mustHave: core.MustHave{RequiredLanguages: []string{"english"}}, eligible: true},
		{name: "language missing", mustHave: core.MustHave{RequiredLanguages: []string{"yiddish"}}, predicate: PredicateLanguage},
		{name: "no languages fails closed", mutateB: func(p *core.Profile) { p.Languages = nil },
			mustHave: core.MustHave{RequiredLanguages: []string{"hebrew"}}, predicate: PredicateLanguage},
		{name: "marital rejected", mutateB: func(p *core.Profile) { p.MaritalStatus = core.MaritalDivorced },
			mustHave: core.MustHave{AcceptedMaritalStatuses: []core.MaritalStatus{core.MaritalSingle}}, predicate: PredicateMarital},
		{name: "smoking required but absent", mustHave: core.MustHave{Smoking: &yes}, predicate: PredicateSmoking},
	}

	f := newTestFilter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := man("a", 30)
			b := woman("b", 26)
			if tt.mutateB != nil {
				tt.mutateB(b)
			}
			critA := &core.PreferenceCriteria{ProfileID: "a", MustHave: tt.mustHave}

			d := f.Check(a, critA, b, open("b"))
			assert.Equal(t, tt.eligible, d.Eligible, d.Reason)
			assert.Equal(t, tt.predicate, d.Predicate)
			if !tt.eligible {
				assert.Equal(t, SideA, d.Side)
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

// nanResolver reports NaN for every distance.
type nanResolver struct{}

func (nanResolver) DistanceKm(core.Location, core.Location) float64 { return math.NaN() }

func TestCheck_NaNDistanceFailsClosed(t *testing.T) {
	f, err := NewFilter(nanResolver{})
	require.NoError(t, err)
	critA := &core.PreferenceCriteria{ProfileID: "a", MustHave: core.MustHave{MaxDistanceKm: 50}}

	d := f.Check(man("a", 30), critA, woman("b", 28), open("b"))
	assert.False(t, d.Eligible)
	assert.Equal(t, PredicateDistance, d.Predicate)
	assert.Equal(t, SideA, d.Side)

	// without a distance constraint the distance is never consulted
	d = f.Check(man("a", 30), open("a"), woman("b", 28), open("b"))
	assert.True(t, d.Eligible)
}

func TestCheck_DomainEligibility(t *testing.T) {
	f := newTestFilter(t)

	self := f.Check(man("a", 30), open("a"), man("a", 30), open("a"))
	assert.Equal(t, PredicateSelf, self.Predicate)

	same := f.Check(man("a", 30), open("a"), man("b", 30), open("b"))
	assert.Equal(t, PredicateGender, same.Predicate)

	missing := f.Check(man("a", 30), open("a"), woman("b", 30), nil)
	assert.Equal(t, PredicateCriteria, missing.Predicate)
	assert.Equal(t, SideB, missing.Side)

	nilProfile := f.Check(nil, nil, woman("b", 30), open("b"))
	assert.False(t, nilProfile.Eligible)
}

func TestEligible(t *testing.T) {
	f := newTestFilter(t)
	query := man("q", 30)
	pool := []*core.Profile{woman("w1", 22), woman("w2", 28), man("m1", 30), query, woman("w3", 40)}
	criteria := map[string]*core.PreferenceCriteria{
		"q":  {ProfileID: "q", MustHave: core.MustHave{MinAge: 25, MaxAge: 35}},
		"w1": open("w1"),
		"w2": open("w2"),
		"m1": open("m1"),
		"w3": open("w3"),
	}

	eligible, excluded := f.Eligible(query, criteria, pool)
	require.Len(t, eligible, 1)
	assert.Equal(t, "w2", eligible[0].ID)
	assert.Len(t, excluded, 4)

	predicates := map[string]string{}
	for _, d := range excluded {
		predicates[d.ProfileB] = d.Predicate
	}
	assert.Equal(t, PredicateAge, predicates["w1"])
	assert.Equal(t, PredicateGender, predicates["m1"])
	assert.Equal(t, PredicateSelf, predicates["q"])
	assert.Equal(t, PredicateAge, predicates["w3"])
}
