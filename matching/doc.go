// Package matching turns pairwise scores into a stable one-to-one assignment.
//
// BuildPreferences ranks each participant's eligible counterparts. Solve runs
// deferred acceptance (Gale–Shapley) with one side proposing and produces the
// proposer-optimal stable assignment. BlockingPairs audits any assignment
// against the preference lists it was computed from.
//
// All solver state is local to one Solve call, so independent runs may
// proceed in parallel.
package matching
