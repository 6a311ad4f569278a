// Package scoring combines per-factor compatibility scores into the weighted
// composite used to rank and match profiles, and explains each result.
//
//	total = 0.55·semantic + 0.20·religious + 0.10·age + 0.10·geo + 0.05·auxiliary
//
// Every factor lies in [0, 1] and the weights sum to 1, so the total does too.
package scoring
