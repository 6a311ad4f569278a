// Package ranker learns a re-scoring model from recorded feedback and serves
// it alongside the static composite formula.
//
// The served model sits behind an atomic pointer. Readers never block, and a
// retrain replaces the pointer only after the new model has been fitted,
// validated and saved. A failed or skipped training run leaves the current
// model in place.
package ranker
