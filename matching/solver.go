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


package matching

import (
	"errors"
	"fmt"
	"sort"

	"github.com/poiesic/matchmaker/core"
)

var (
	// ErrInvalidPreferences is returned when preference lists are malformed.
	ErrInvalidPreferences = errors.New("invalid preference lists")
)

// Solve runs deferred acceptance with proposers offering to receivers.
//
// Free proposers are served from a FIFO queue seeded in sorted id order. Each
// offers to its best counterpart not yet tried. A receiver holds the best
// acceptable offer seen so far and rejects the rest; an offer from a proposer
// missing from the receiver's own list is always rejected. A proposer that
// exhausts its list stays unmatched. Every list entry is offered at most once,
// so the number of proposals never exceeds proposers.Size().
func Solve(proposers, receivers Preferences) (*core.StableAssignment, error) {
	if err := validate(proposers, receivers); err != nil {
		return nil, err
	}

	receiverRank := receivers.ranks()
	next := make(map[string]int, len(proposers))
	held := make(map[string]string, len(receivers)) // receiver -> proposer
	queue := proposers.ids()
	proposals := 0
	bound := proposers.Size()

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		list := proposers[p]

		for next[p] < len(list) {
			r := list[next[p]]
			next[p]++
			proposals++
			if proposals > bound {
				panic(fmt.Sprintf("matching: %d proposals exceed list total %d", proposals, bound))
			}

			rank, acceptable := receiverRank[r][p]
			if !acceptable {
				continue
			}
			current, holding := held[r]
			if !holding {
				held[r] = p
				break
			}
			if rank < receiverRank[r][current] {
				held[r] = p
				queue = append(queue, current)
				break
			}
		}
	}

	return assemble(proposers, receivers, held, proposals), nil
}

func assemble(proposers, receivers Preferences, held map[string]string, proposals int) *core.StableAssignment {
	proposerRank := proposers.ranks()
	receiverRank := receivers.ranks()

	a := &core.StableAssignment{
		Partners:  make(map[string]string, 2*len(held)),
		Ranks:     make(map[string]int, 2*len(held)),
		Proposals: proposals,
	}
	for r, p := range held {
		a.Partners[p] = r
		a.Partners[r] = p
		a.Ranks[p] = proposerRank[p][r] + 1
		a.Ranks[r] = receiverRank[r][p] + 1
		a.Pairs = append(a.Pairs, core.AssignedPair{
			Proposer:     p,
			Receiver:     r,
			ProposerRank: a.Ranks[p],
			ReceiverRank: a.Ranks[r],
		})
	}
	sort.Slice(a.Pairs, func(i, j int) bool { return a.Pairs[i].Proposer < a.Pairs[j].Proposer })

	for _, prefs := range []Preferences{proposers, receivers} {
		for id := range prefs {
			if _, ok := a.Partners[id]; !ok {
				a.Unmatched = append(a.Unmatched, id)
			}
		}
	}
	sort.Strings(a.Unmatched)
	return a
}

// validate rejects lists that would let a participant appear on both sides,
// reference itself, name a counterpart that is not on the other side, or
// repeat an entry.
func validate(proposers, receivers Preferences) error {
	for id := range proposers {
		if _, ok := receivers[id]; ok {
			return fmt.Errorf("%w: %s is on both sides", ErrInvalidPreferences, id)
		}
	}
	check := func(side string, prefs, other Preferences) error {
		for owner, list := range prefs {
			seen := make(map[string]struct{}, len(list))
			for _, id := range list {
				if id == owner {
					return fmt.Errorf("%w: %s lists itself", ErrInvalidPreferences, owner)
				}
				if _, ok := other[id]; !ok {
					return fmt.Errorf("%w: %s %s lists unknown %s", ErrInvalidPreferences, side, owner, id)
				}
				if _, dup := seen[id]; dup {
					return fmt.Errorf("%w: %s %s lists %s twice", ErrInvalidPreferences, side, owner, id)
				}
				seen[id] = struct{}{}
			}
		}
		return nil
	}
	if err := check("proposer", proposers, receivers); err != nil {
		return err
	}
	return check("receiver", receivers, proposers)
}
