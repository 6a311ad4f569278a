package population

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/poiesic/matchmaker/core"
	"github.com/poiesic/matchmaker/geo"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateConfig controls synthetic population generation.
type GenerateConfig struct {
	// Size is the number of profiles, split evenly between genders.
	Size int

	// Seed makes generation reproducible.
	Seed uint64

	// MeanAge and AgeStdDev shape the age distribution. Ages are clamped
	// to [core.MinAge, core.MaxAge].
	MeanAge   float64
	AgeStdDev float64

	// CriteriaRate is the fraction of profiles that carry criteria.
	CriteriaRate float64
}

// DefaultGenerateConfig returns a config for a small demo population.
func DefaultGenerateConfig() *GenerateConfig {
	return &GenerateConfig{
		Size:         40,
		Seed:         1,
		MeanAge:      25,
		AgeStdDev:    3.5,
		CriteriaRate: 1,
	}
}

var communityWeights = []float64{0.35, 0.25, 0.2, 0.1, 0.1}

var religiosityWeights = []float64{0.15, 0.4, 0.3, 0.15}

var (
	interests = []string{
		"learns Gemara every morning before work",
		"teaches in a girls' seminary",
		"works as a software engineer and learns in the evenings",
		"volunteers with a chesed organization on Fridays",
		"loves hiking in the Galilee on bein hazmanim",
		"is finishing a degree in nursing",
		"runs a small bakery with family",
		"plays guitar at kumzitz gatherings",
		"studies accounting at a Haredi college program",
		"spends summers as a camp counselor",
		"enjoys cooking for large Shabbat meals",
		"reads history and Jewish philosophy",
	}
	traits = []string{
		"calm and patient",
		"warm and outgoing",
		"serious about learning",
		"curious and open minded",
		"organized and responsible",
		"cheerful with a good sense of humor",
		"quiet and thoughtful",
		"energetic and family oriented",
	}
	wishes = []string{
		"someone kind who values Torah learning",
		"a partner who wants a warm and open home",
		"someone with good middos and a sense of humor",
		"a partner who is growing in Yiddishkeit",
		"someone responsible who supports my studies",
		"a partner who loves hosting guests",
		"someone calm who communicates openly",
		"a partner who shares my love of learning and nature",
	}
	languages = []string{"hebrew", "english", "yiddish", "french", "russian", "spanish"}
)

// Generate builds a reproducible synthetic population.
func Generate(cfg *GenerateConfig) (File, error) {
	if cfg == nil {
		cfg = DefaultGenerateConfig()
	}
	if cfg.Size <= 0 {
		return File{}, fmt.Errorf("population size must be positive, got %d", cfg.Size)
	}
	if cfg.CriteriaRate < 0 || cfg.CriteriaRate > 1 {
		return File{}, fmt.Errorf("criteria rate must be in [0,1], got %v", cfg.CriteriaRate)
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	ages := distuv.Normal{Mu: cfg.MeanAge, Sigma: cfg.AgeStdDev, Src: src}
	community := distuv.NewCategorical(communityWeights, src)
	religiosity := distuv.NewCategorical(religiosityWeights, src)

	pick := func(values []string) string { return values[rng.IntN(len(values))] }

	var doc File
	for i := 0; i < cfg.Size; i++ {
		gender, prefix := core.GenderMale, "m"
		if i%2 == 1 {
			gender, prefix = core.GenderFemale, "f"
		}
		age := int(math.Round(ages.Rand()))
		age = max(core.MinAge, min(core.MaxAge, age))

		p := &core.Profile{
			ID:          fmt.Sprintf("%s%03d", prefix, i/2+1),
			Gender:      gender,
			Age:         age,
			Community:   core.Communities[int(community.Rand())],
			Religiosity: core.ReligiosityLevels[int(religiosity.Rand())],
			Education:   core.EducationLevel(1 + rng.IntN(int(core.EducationAdvancedDegree))),
			Smoking:     rng.Float64() < 0.1,
			Languages:   []string{"hebrew"},
			Location:    core.Location{Place: geo.DefaultPlaces[rng.IntN(len(geo.DefaultPlaces))].Name},
			Description: fmt.Sprintf("Is %s and %s.", pick(traits), pick(interests)),
		}
		if p.Age > 24 && rng.Float64() < 0.15 {
			p.MaritalStatus = core.MaritalDivorced
		} else {
			p.MaritalStatus = core.MaritalSingle
		}
		if second := pick(languages); second != "hebrew" {
			p.Languages = append(p.Languages, second)
		}

		var c *core.PreferenceCriteria
		if rng.Float64() < cfg.CriteriaRate {
			c = generateCriteria(rng, p, pick(wishes))
		}
		doc.Profiles = append(doc.Profiles, EncodeProfile(p, c))
	}
	return doc, nil
}

func generateCriteria(rng *rand.Rand, p *core.Profile, wish string) *core.PreferenceCriteria {
	c := &core.PreferenceCriteria{
		ProfileID: p.ID,
		FreeText:  "Looking for " + wish + ".",
	}
	// Men tend to look younger, women older.
	lo, hi := p.Age-5, p.Age+2
	if p.Gender == core.GenderFemale {
		lo, hi = p.Age-2, p.Age+6
	}
	c.MustHave.MinAge = max(core.MinAge, lo)
	c.MustHave.MaxAge = min(core.MaxAge, hi)

	if rng.Float64() < 0.5 {
		c.MustHave.MaxDistanceKm = float64(50 + 25*rng.IntN(6))
	}
	if rng.Float64() < 0.4 {
		c.MustHave.RequiredCommunities = []core.Community{p.Community}
	}
	if !p.Smoking && rng.Float64() < 0.6 {
		no := false
		c.MustHave.Smoking = &no
	}
	if rng.Float64() < 0.5 {
		c.NiceToHave.PreferredEducation = []core.EducationLevel{p.Education}
	}
	if len(p.Languages) > 1 {
		c.NiceToHave.PreferredLanguages = p.Languages[1:]
	}
	return c
}
