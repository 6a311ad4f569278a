package matching

import "github.com/poiesic/matchmaker/core"

// Partition splits a population by gender. Profiles of the proposing gender
// come first, those of the opposite gender second; profiles with an
// unspecified gender cannot take part and are returned separately. Input
// order is preserved.
func Partition(profiles []*core.Profile, proposing core.Gender) (proposers, receivers, excluded []*core.Profile) {
	receiving := proposing.Opposite()
	for _, p := range profiles {
		switch {
		case p == nil:
			continue
		case proposing != core.GenderUnspecified && p.Gender == proposing:
			proposers = append(proposers, p)
		case receiving != core.GenderUnspecified && p.Gender == receiving:
			receivers = append(receivers, p)
		default:
			excluded = append(excluded, p)
		}
	}
	return proposers, receivers, excluded
}

// IDs returns the ids of profiles in order.
func IDs(profiles []*core.Profile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}
