// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package population

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/matchmaker/core"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyPopulation is returned when a population document has no content.
	ErrEmptyPopulation = errors.New("population file is empty")

	// ErrProfileNotFound is returned when an id is not part of the population.
	ErrProfileNotFound = errors.New("profile not found in population")

	// ErrPartialCoordinates is returned when only one of lat and lon is set.
	ErrPartialCoordinates = errors.New("location needs both lat and lon")
)

// File is the YAML document describing a population.
type File struct {
	Profiles []ProfileDoc `yaml:"profiles"`
}

type ProfileDoc struct {
	ID            string       `yaml:"id"`
	Gender        string       `yaml:"gender"`
	Age           int          `yaml:"age"`
	MaritalStatus string       `yaml:"marital_status,omitempty"`
	Community     string       `yaml:"community,omitempty"`
	Religiosity   string       `yaml:"religiosity,omitempty"`
	Education     string       `yaml:"education,omitempty"`
	Smoking       bool         `yaml:"smoking,omitempty"`
	Languages     []string     `yaml:"languages,omitempty"`
	Location      LocationDoc  `yaml:"location,omitempty"`
	Description   string       `yaml:"description,omitempty"`
	Criteria      *CriteriaDoc `yaml:"criteria,omitempty"`
}

type LocationDoc struct {
	Place string   `yaml:"place,omitempty"`
	Lat   *float64 `yaml:"lat,omitempty"`
	Lon   *float64 `yaml:"lon,omitempty"`
}

type CriteriaDoc struct {
	MinAge             int      `yaml:"min_age,omitempty"`
	MaxAge             int      `yaml:"max_age,omitempty"`
	MaxDistanceKm      float64  `yaml:"max_distance_km,omitempty"`
	Communities        []string `yaml:"communities,omitempty"`
	Religiosity        []string `yaml:"religiosity,omitempty"`
	Languages          []string `yaml:"languages,omitempty"`
	MaritalStatuses    []string `yaml:"marital_statuses,omitempty"`
	Smoking            *bool    `yaml:"smoking,omitempty"`
	PreferredEducation []string `yaml:"preferred_education,omitempty"`
	PreferredLanguages []string `yaml:"preferred_languages,omitempty"`
	FreeText           string   `yaml:"free_text,omitempty"`
}

// Population is a decoded population file. Criteria holds entries only for
// profiles whose document carried a criteria section.
type Population struct {
	Profiles []*core.Profile
	Criteria map[string]*core.PreferenceCriteria
	byID     map[string]*core.Profile
}

// Profile returns the profile with the given id.
func (p *Population) Profile(id string) (*core.Profile, error) {
	profile, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, id)
	}
	return profile, nil
}

// Load reads and decodes the population file at path.
func Load(path string) (*Population, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open population file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a population document. Enum values are parsed with the core
// Parse functions; profile ids must be unique.
func Decode(r io.Reader) (*Population, error) {
	var doc File
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPopulation
		}
		return nil, fmt.Errorf("failed to parse population file: %w", err)
	}

	pop := &Population{
		Criteria: make(map[string]*core.PreferenceCriteria, len(doc.Profiles)),
		byID:     make(map[string]*core.Profile, len(doc.Profiles)),
	}
	for i, pd := range doc.Profiles {
		profile, criteria, err := pd.Decode()
		if err != nil {
			return nil, fmt.Errorf("profile %d (%s): %w", i, pd.ID, err)
		}
		if _, dup := pop.byID[profile.ID]; dup {
			return nil, fmt.Errorf("profile %d: duplicate id %q", i, profile.ID)
		}
		pop.Profiles = append(pop.Profiles, profile)
		pop.byID[profile.ID] = profile
		if criteria != nil {
			pop.Criteria[profile.ID] = criteria
		}
	}
	return pop, nil
}

// Decode converts the document into a profile and, when present, its criteria.
func (pd ProfileDoc) Decode() (*core.Profile, *core.PreferenceCriteria, error) {
	p := &core.Profile{
		ID:          pd.ID,
		Age:         pd.Age,
		Smoking:     pd.Smoking,
		Languages:   pd.Languages,
		Description: pd.Description,
		Location:    core.Location{Place: pd.Location.Place},
	}
	if (pd.Location.Lat == nil) != (pd.Location.Lon == nil) {
		return nil, nil, ErrPartialCoordinates
	}
	if pd.Location.Lat != nil {
		p.Location.Lat, p.Location.Lon = *pd.Location.Lat, *pd.Location.Lon
		p.Location.HasCoordinates = true
	}

	var err error
	if p.Gender, err = core.ParseGender(pd.Gender); err != nil {
		return nil, nil, err
	}
	if p.MaritalStatus, err = core.ParseMaritalStatus(pd.MaritalStatus); err != nil {
		return nil, nil, err
	}
	if p.Community, err = core.ParseCommunity(pd.Community); err != nil {
		return nil, nil, err
	}
	if p.Religiosity, err = core.ParseReligiosityLevel(pd.Religiosity); err != nil {
		return nil, nil, err
	}
	if p.Education, err = core.ParseEducationLevel(pd.Education); err != nil {
		return nil, nil, err
	}
	if pd.Criteria == nil {
		return p, nil, nil
	}

	cd := pd.Criteria
	c := &core.PreferenceCriteria{
		ProfileID: pd.ID,
		MustHave: core.MustHave{
			MinAge:            cd.MinAge,
			MaxAge:            cd.MaxAge,
			MaxDistanceKm:     cd.MaxDistanceKm,
			RequiredLanguages: cd.Languages,
			Smoking:           cd.Smoking,
		},
		NiceToHave: core.NiceToHave{PreferredLanguages: cd.PreferredLanguages},
		FreeText:   cd.FreeText,
	}
	if c.MustHave.RequiredCommunities, err = parseAll(cd.Communities, core.ParseCommunity); err != nil {
		return nil, nil, err
	}
	if c.MustHave.RequiredReligiosity, err = parseAll(cd.Religiosity, core.ParseReligiosityLevel); err != nil {
		return nil, nil, err
	}
	if c.MustHave.AcceptedMaritalStatuses, err = parseAll(cd.MaritalStatuses, core.ParseMaritalStatus); err != nil {
		return nil, nil, err
	}
	if c.NiceToHave.PreferredEducation, err = parseAll(cd.PreferredEducation, core.ParseEducationLevel); err != nil {
		return nil, nil, err
	}
	return p, c, nil
}

func parseAll[T any](values []string, parse func(string) (T, error)) ([]T, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		parsed, err := parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

// EncodeProfile is the inverse of ProfileDoc.Decode.
func EncodeProfile(p *core.Profile, c *core.PreferenceCriteria) ProfileDoc {
	pd := ProfileDoc{
		ID:          p.ID,
		Gender:      p.Gender.String(),
		Age:         p.Age,
		Smoking:     p.Smoking,
		Languages:   p.Languages,
		Description: p.Description,
		Location:    LocationDoc{Place: p.Location.Place},
	}
	if p.MaritalStatus != core.MaritalUnspecified {
		pd.MaritalStatus = p.MaritalStatus.String()
	}
	if p.Community != core.CommunityUnspecified {
		pd.Community = p.Community.String()
	}
	if p.Religiosity != core.ReligiosityUnspecified {
		pd.Religiosity = p.Religiosity.String()
	}
	if p.Education != core.EducationUnspecified {
		pd.Education = p.Education.String()
	}
	if p.Location.HasCoordinates {
		lat, lon := p.Location.Lat, p.Location.Lon
		pd.Location.Lat, pd.Location.Lon = &lat, &lon
	}
	if c == nil {
		return pd
	}
	pd.Criteria = &CriteriaDoc{
		MinAge:             c.MustHave.MinAge,
		MaxAge:             c.MustHave.MaxAge,
		MaxDistanceKm:      c.MustHave.MaxDistanceKm,
		Communities:        names(c.MustHave.RequiredCommunities),
		Religiosity:        names(c.MustHave.RequiredReligiosity),
		Languages:          c.MustHave.RequiredLanguages,
		MaritalStatuses:    names(c.MustHave.AcceptedMaritalStatuses),
		Smoking:            c.MustHave.Smoking,
		PreferredEducation: names(c.NiceToHave.PreferredEducation),
		PreferredLanguages: c.NiceToHave.PreferredLanguages,
		FreeText:           c.FreeText,
	}
	return pd
}

func names[T fmt.Stringer](values []T) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

// Write encodes doc as YAML with two-space indentation.
func Write(w io.Writer, doc File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
