// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package constraint

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/geo"
)

// ErrResolverRequired is returned when a Filter is created without a geo.Resolver.
var ErrResolverRequired = errors.New("distance resolver is required")

// Predicate names reported in a Decision.
const (
	PredicateNone        = ""
	PredicateProfile     = "profile"
	PredicateSelf        = "self"
	PredicateGender      = "gender"
	PredicateCriteria    = "criteria"
	PredicateAge         = "age"
	PredicateDistance    = "distance"
	PredicateCommunity   = "community"
	PredicateReligiosity = "religiosity"
	PredicateLanguage    = "language"
	PredicateMarital     = "marital_status"
	PredicateSmoking     = "smoking"
)

// Side identifies whose criteria rejected a pair.
type Side string

const (
	SideNone Side = ""
	SideA    Side = "a"
	SideB    Side = "b"
	SideBoth Side = "both"
)

// Decision is the audited outcome of checking one pair.
type Decision struct {
	ProfileA  string
	ProfileB  string
	Eligible  bool
	Predicate string
	Side      Side
	Reason    string
}

// Filter evaluates must-have constraints in both directions.
// It holds no mutable state and is safe for concurrent use.
type Filter struct {
	resolver geo.Resolver
	logger   *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter) error

// WithLogger sets the logger for the filter.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) error {
		f.logger = logger
		return nil
	}
}

// NewFilter creates a constraint filter that resolves distances with resolver.
func NewFilter(resolver geo.Resolver, opts ...Option) (*Filter, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	f := &Filter{resolver: resolver}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.logger = f.logger.With("component", "constraint-filter")
	return f, nil
}

// Check decides whether a and b may be paired. critA holds a's must-haves
// (tested against b) and critB holds b's must-haves (tested against a).
// A nil criteria fails closed.
func (f *Filter) Check(a *core.Profile, critA *core.PreferenceCriteria, b *core.Profile, critB *core.PreferenceCriteria) Decision {
	if a == nil || b == nil {
		return Decision{Predicate: PredicateProfile, Side: SideBoth, Reason: "profile missing"}
	}
	d := Decision{ProfileA: a.ID, ProfileB: b.ID}

	if a.ID == b.ID {
		return d.reject(PredicateSelf, SideBoth, "a profile cannot be paired with itself")
	}
	if a.Gender == core.GenderUnspecified || b.Gender != a.Gender.Opposite() {
		return d.reject(PredicateGender, SideBoth, fmt.Sprintf("genders %s and %s are not complementary", a.Gender, b.Gender))
	}

	dist := lazyDistance{resolver: f.resolver, a: a.Location, b: b.Location}

	if pred, reason := f.direction(critA, b, &dist); pred != PredicateNone {
		return d.reject(pred, SideA, reason)
	}
	if pred, reason := f.direction(critB, a, &dist); pred != PredicateNone {
		return d.reject(pred, SideB, reason)
	}

	d.Eligible = true
	return d
}

// Eligible returns the members of pool that are mutually eligible with query,
// in pool order, and the decisions for every excluded candidate.
// criteria maps profile ids to their preference criteria.
func (f *Filter) Eligible(query *core.Profile, criteria map[string]*core.PreferenceCriteria, pool []*core.Profile) ([]*core.Profile, []Decision) {
	var (
		eligible []*core.Profile
		excluded []Decision
	)
	if query == nil {
		return nil, nil
	}
	critQ := criteria[query.ID]
	for _, candidate := range pool {
		if candidate == nil {
			continue
		}
		d := f.Check(query, critQ, candidate, criteria[candidate.ID])
		if d.Eligible {
			eligible = append(eligible, candidate)
			continue
		}
		excluded = append(excluded, d)
	}

	f.logger.Debug("filtered candidates",
		"profile", query.ID,
		"pool", len(pool),
		"eligible", len(eligible))
	return eligible, excluded
}

// direction tests one side's must-haves against the counterpart profile.
func (f *Filter) direction(c *core.PreferenceCriteria, other *core.Profile, dist *lazyDistance) (string, string) {
	if c == nil {
		return PredicateCriteria, "preference criteria missing"
	}
	m := c.MustHave

	if m.MinAge > 0 || m.MaxAge > 0 {
		if other.Age <= 0 {
			return PredicateAge, "age unknown"
		}
		if m.MinAge > 0 && other.Age < m.MinAge {
			return PredicateAge, fmt.Sprintf("age %d below minimum %d", other.Age, m.MinAge)
		}
		if m.MaxAge > 0 && other.Age > m.MaxAge {
			return PredicateAge, fmt.Sprintf("age %d above maximum %d", other.Age, m.MaxAge)
		}
	}

	if m.MaxDistanceKm > 0 {
		km := dist.get()
		if km < 0 || math.IsNaN(km) {
			return PredicateDistance, "distance unknown"
		}
		if km > m.MaxDistanceKm {
			return PredicateDistance, fmt.Sprintf("distance %.1f km exceeds %.1f km", km, m.MaxDistanceKm)
		}
	}

	if len(m.RequiredCommunities) > 0 && !slices.Contains(m.RequiredCommunities, other.Community) {
		return PredicateCommunity, fmt.Sprintf("community %s not accepted", other.Community)
	}

	if len(m.RequiredReligiosity) > 0 && !slices.Contains(m.RequiredReligiosity, other.Religiosity) {
		return PredicateReligiosity, fmt.Sprintf("religiosity %s not accepted", other.Religiosity)
	}

	if len(m.RequiredLanguages) > 0 && !sharesLanguage(m.RequiredLanguages, other.Languages) {
		return PredicateLanguage, "no required language spoken"
	}

	if len(m.AcceptedMaritalStatuses) > 0 && !slices.Contains(m.AcceptedMaritalStatuses, other.MaritalStatus) {
		return PredicateMarital, fmt.Sprintf("marital status %s not accepted", other.MaritalStatus)
	}

	if m.Smoking != nil && *m.Smoking != other.Smoking {
		return PredicateSmoking, "smoking preference not met"
	}

	return PredicateNone, ""
}

func (d Decision) reject(predicate string, side Side, reason string) Decision {
	d.Eligible = false
	d.Predicate = predicate
	d.Side = side
	d.Reason = reason
	return d
}

func sharesLanguage(required, spoken []string) bool {
	have := core.LanguageSet(spoken)
	for l := range core.LanguageSet(required) {
		if _, ok := have[l]; ok {
			return true
		}
	}
	return false
}

// lazyDistance resolves the pair distance at most once per Check.
type lazyDistance struct {
	resolver geo.Resolver
	a, b     core.Location
	done     bool
	km       float64
}

func (l *lazyDistance) get() float64 {
	if !l.done {
		l.km = l.resolver.DistanceKm(l.a, l.b)
		l.done = true
	}
	return l.km
}
