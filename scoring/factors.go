package scoring

import (
	"math"

	"github.com/poiesic/matchmaker/core"
)

// Composite weights.
const (
	WeightSemantic  = 0.55
	WeightReligious = 0.20
	WeightAge       = 0.10
	WeightGeo       = 0.10
	WeightAuxiliary = 0.05
)

// Factor names used in explanations and feature schemas.
const (
	FactorSemantic  = "semantic"
	FactorReligious = "religious"
	FactorAge       = "age"
	FactorGeo       = "geo"
	FactorAuxiliary = "auxiliary"
)

const (
	// AgeNormalization is the age gap, in years, at which age compatibility reaches 0.
	AgeNormalization = 15.0
	// MaxRelevantDistanceKm is the distance at which geo compatibility reaches 0.
	MaxRelevantDistanceKm = 50.0

	// neutral is used when an attribute needed by a factor is unspecified.
	neutral = 0.5

	communityShare   = 0.6
	religiosityShare = 0.4

	educationMismatch = 0.7
	smokingMismatch   = 0.3
)

// Pairwise community compatibility, indexed in core.Communities order.
var communityMatrix = [5][5]float64{
	// lithuanian, hasidic, sephardic, modern_orthodox, national_religious
	{1.0, 0.6, 0.7, 0.4, 0.5},
	{0.6, 1.0, 0.5, 0.3, 0.4},
	{0.7, 0.5, 1.0, 0.6, 0.7},
	{0.4, 0.3, 0.6, 1.0, 0.8},
	{0.5, 0.4, 0.7, 0.8, 1.0},
}

// Pairwise religiosity compatibility, indexed in core.ReligiosityLevels order.
var religiosityMatrix = [4][4]float64{
	// very_strict, strict, moderate, flexible
	{1.0, 0.8, 0.4, 0.2},
	{0.8, 1.0, 0.7, 0.4},
	{0.4, 0.7, 1.0, 0.8},
	{0.2, 0.4, 0.8, 1.0},
}

// CommunityCompatibility scores two communities. Unspecified yields 0.5.
func CommunityCompatibility(a, b core.Community) float64 {
	i, ok := communityIndex(a)
	if !ok {
		return neutral
	}
	j, ok := communityIndex(b)
	if !ok {
		return neutral
	}
	return communityMatrix[i][j]
}

// ReligiosityCompatibility scores two religiosity levels. Unspecified yields 0.5.
func ReligiosityCompatibility(a, b core.ReligiosityLevel) float64 {
	i, ok := religiosityIndex(a)
	if !ok {
		return neutral
	}
	j, ok := religiosityIndex(b)
	if !ok {
		return neutral
	}
	return religiosityMatrix[i][j]
}

// ReligiousCompatibility blends community and religiosity compatibility.
func ReligiousCompatibility(a, b *core.Profile) float64 {
	return communityShare*CommunityCompatibility(a.Community, b.Community) +
		religiosityShare*ReligiosityCompatibility(a.Religiosity, b.Religiosity)
}

// AgeCompatibility decays linearly with the age gap. Unknown ages yield 0.5.
func AgeCompatibility(ageA, ageB int) float64 {
	if ageA <= 0 || ageB <= 0 {
		return neutral
	}
	gap := math.Abs(float64(ageA - ageB))
	return math.Max(0, 1-gap/AgeNormalization)
}

// GeoCompatibility decays linearly with distance. An unknown (negative)
// distance yields 0.
func GeoCompatibility(km float64) float64 {
	if km < 0 || math.IsNaN(km) {
		return 0
	}
	return math.Max(0, 1-km/MaxRelevantDistanceKm)
}

// AuxiliaryFactors computes the education, language and smoking sub-scores.
func AuxiliaryFactors(a *core.Profile, critA *core.PreferenceCriteria, b *core.Profile, critB *core.PreferenceCriteria) core.AuxiliaryDetail {
	return core.AuxiliaryDetail{
		Education: (educationFit(critA, b.Education, a.Education) + educationFit(critB, a.Education, b.Education)) / 2,
		Language:  LanguageOverlap(a.Languages, b.Languages),
		Smoking:   smokingFit(a.Smoking, b.Smoking),
	}
}

// Auxiliary is the mean of the auxiliary sub-scores.
func Auxiliary(d core.AuxiliaryDetail) float64 {
	return (d.Education + d.Language + d.Smoking) / 3
}

// LanguageOverlap is |A∩B| / min(|A|, |B|), or 0 when either side is empty.
func LanguageOverlap(a, b []string) float64 {
	setA, setB := core.LanguageSet(a), core.LanguageSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	common := 0
	for l := range setA {
		if _, ok := setB[l]; ok {
			common++
		}
	}
	return float64(common) / float64(min(len(setA), len(setB)))
}

// educationFit scores the counterpart's education from the owner's side.
func educationFit(owner *core.PreferenceCriteria, theirs, mine core.EducationLevel) float64 {
	if theirs != core.EducationUnspecified && theirs == mine {
		return 1
	}
	if owner != nil && theirs != core.EducationUnspecified {
		for _, pe := range owner.NiceToHave.PreferredEducation {
			if pe == theirs {
				return 1
			}
		}
	}
	return educationMismatch
}

func smokingFit(a, b bool) float64 {
	if a == b {
		return 1
	}
	return smokingMismatch
}

func communityIndex(c core.Community) (int, bool) {
	switch c {
	case core.CommunityLithuanian:
		return 0, true
	case core.CommunityHasidic:
		return 1, true
	case core.CommunitySephardic:
		return 2, true
	case core.CommunityModernOrthodox:
		return 3, true
	case core.CommunityNationalReligious:
		return 4, true
	case core.CommunityUnspecified:
		return 0, false
	}
	return 0, false
}

func religiosityIndex(r core.ReligiosityLevel) (int, bool) {
	switch r {
	case core.ReligiosityVeryStrict:
		return 0, true
	case core.ReligiosityStrict:
		return 1, true
	case core.ReligiosityModerate:
		return 2, true
	case core.ReligiosityFlexible:
		return 3, true
	case core.ReligiosityUnspecified:
		return 0, false
	}
	return 0, false
}
