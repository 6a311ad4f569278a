package matching

import (
	"fmt"
	"sort"

	"github.com/poiesic/matchmaker/core"
)

// BlockingPair is a proposer and receiver who are not matched to each other
// but each prefer the other to their current situation.
type BlockingPair struct {
	Proposer string
	Receiver string
}

func (b BlockingPair) String() string {
	return fmt.Sprintf("%s-%s", b.Proposer, b.Receiver)
}

// BlockingPairs lists every blocking pair of an assignment. A pair only
// blocks when each side lists the other; being unmatched is worse than any
// acceptable partner. The result is sorted by proposer then receiver.
func BlockingPairs(a *core.StableAssignment, proposers, receivers Preferences) []BlockingPair {
	receiverRank := receivers.ranks()
	var out []BlockingPair
	for p, list := range proposers {
		partner, matched := a.Partners[p]
		for _, r := range list {
			if matched && r == partner {
				break // everything after is worse for p
			}
			rankP, acceptable := receiverRank[r][p]
			if !acceptable {
				continue
			}
			current, taken := a.Partners[r]
			if !taken || rankP < receiverRank[r][current] {
				out = append(out, BlockingPair{Proposer: p, Receiver: r})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Proposer != out[j].Proposer {
			return out[i].Proposer < out[j].Proposer
		}
		return out[i].Receiver < out[j].Receiver
	})
	return out
}
