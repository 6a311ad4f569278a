// Package geo resolves the distance between two profile locations.
//
// Locations are either explicit coordinates or symbolic place names looked
// up in a Gazetteer. Distances are great-circle kilometres. When either side
// cannot be resolved the Resolver returns Unknown, and callers must treat the
// distance as missing rather than as zero.
package geo
