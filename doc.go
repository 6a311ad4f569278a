// Package matchmaker is a hybrid matchmaking engine.
//
// An Engine filters pairs on hard constraints, scores eligible pairs with a
// weighted composite of semantic, religious, age, geographic and auxiliary
// compatibility, optionally re-scores them with a model learned from
// recorded outcomes, and turns population-wide scores into a stable
// one-to-one assignment.
//
// Database wires an Engine to BadgerDB persistence and an OpenAI-compatible
// embedding provider:
//
//	db, err := matchmaker.NewDatabase("/var/lib/matchmaker")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	ranked, err := db.Engine().RankCandidates(ctx, query, pool, criteria, 10, 0)
package matchmaker
