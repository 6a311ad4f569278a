package matchmaker

import (
	"github.com/poiesic/matchmaker/constraint"
	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/matching"
)

// MatchMonitor provides hooks to observe a matching run.
// Hooks are called from the goroutine running the operation, never from
// scoring workers. Runs split by community call the hooks concurrently.
type MatchMonitor interface {
	Start(population int)
	Excluded(d constraint.Decision)
	Scored(sp *core.ScoredPair)
	PreferencesBuilt(proposers, receivers matching.Preferences)
	Finish(a *core.StableAssignment, blocking []matching.BlockingPair)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ int)                                                {}
func (n *noopMonitor) Excluded(_ constraint.Decision)                             {}
func (n *noopMonitor) Scored(_ *core.ScoredPair)                                  {}
func (n *noopMonitor) PreferencesBuilt(_, _ matching.Preferences)                 {}
func (n *noopMonitor) Finish(_ *core.StableAssignment, _ []matching.BlockingPair) {}
