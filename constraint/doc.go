// Package constraint applies hard must-have constraints to candidate pairs.
//
// A pair is eligible only if each side's must-haves are satisfied by the
// other side. Every predicate fails closed: if a constraint is active and the
// attribute it tests is missing or unresolvable, the pair is excluded.
// Ineligibility is reported as a Decision naming the failing predicate and
// the side whose criteria rejected the pair, never as an error.
package constraint
