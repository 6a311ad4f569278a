package matching

import (
	"math"
	"sort"
)

// Preferences maps a participant id to its ordered list of acceptable
// counterparts, most preferred first.
type Preferences map[string][]string

// Scores holds directional scores: Scores[a][b] is how much a wants b.
// Only eligible pairs are present.
type Scores map[string]map[string]float64

// Set records a directional score, allocating the inner map as needed.
func (s Scores) Set(owner, candidate string, score float64) {
	inner, ok := s[owner]
	if !ok {
		inner = make(map[string]float64)
		s[owner] = inner
	}
	inner[candidate] = score
}

// Get returns the directional score and whether the pair is eligible.
func (s Scores) Get(owner, candidate string) (float64, bool) {
	v, ok := s[owner][candidate]
	return v, ok
}

// BuildPreferences ranks, for every owner, the candidates it has a score for.
// Candidates are sorted by descending score with ties broken by id.
// Self-pairs, non-finite scores, candidates outside the given set and scores
// below minScore are dropped. Every owner gets an entry, possibly empty.
func BuildPreferences(owners, candidates []string, scores Scores, minScore float64) Preferences {
	allowed := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		allowed[c] = struct{}{}
	}

	prefs := make(Preferences, len(owners))
	for _, owner := range owners {
		type entry struct {
			id    string
			score float64
		}
		var list []entry
		for id, score := range scores[owner] {
			if id == owner || math.IsNaN(score) || math.IsInf(score, 0) || score < minScore {
				continue
			}
			if _, ok := allowed[id]; !ok {
				continue
			}
			list = append(list, entry{id, score})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].score != list[j].score {
				return list[i].score > list[j].score
			}
			return list[i].id < list[j].id
		})
		ids := make([]string, len(list))
		for i, e := range list {
			ids[i] = e.id
		}
		prefs[owner] = ids
	}
	return prefs
}

// Size returns the total length of all lists.
func (p Preferences) Size() int {
	n := 0
	for _, l := range p {
		n += len(l)
	}
	return n
}

// ids returns the participants in sorted order.
func (p Preferences) ids() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ranks indexes each list: ranks[owner][candidate] is the 0-based position.
func (p Preferences) ranks() map[string]map[string]int {
	out := make(map[string]map[string]int, len(p))
	for owner, list := range p {
		r := make(map[string]int, len(list))
		for i, id := range list {
			r[id] = i
		}
		out[owner] = r
	}
	return out
}
