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


package core

import (
	"fmt"
	"math"
)

const (
	// MinAge is the youngest age a profile may declare.
	MinAge = 18
	// MaxAge is the oldest age a profile may declare.
	MaxAge = 120
)

// ValidateProfile validates a Profile according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Gender must be specified
//   - Age must be within MinAge..MaxAge
//   - Enum fields must hold declared values (unspecified is allowed)
//
// NOT validated (missing values are handled by the constraint filter, which fails closed):
//   - Community, Religiosity, Education, MaritalStatus being unspecified
//   - Location, Languages, Description
func ValidateProfile(p *Profile) error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyID)
	}
	if p.Gender == GenderUnspecified {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.ID, ErrMissingGender)
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return fmt.Errorf("%w: %s: %w: %d", ErrInvalidProfile, p.ID, ErrAgeOutOfRange, p.Age)
	}
	if err := validateEnums(p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.ID, err)
	}
	if p.Location.HasCoordinates && (math.Abs(p.Location.Lat) > 90 || math.Abs(p.Location.Lon) > 180) {
		return fmt.Errorf("%w: %s: coordinates out of range", ErrInvalidProfile, p.ID)
	}
	return nil
}

// ValidateCriteria validates PreferenceCriteria according to domain rules.
//
// Validation rules:
//   - MinAge and MaxAge, when set, must be within MinAge..MaxAge
//   - MaxAge must not be below MinAge
//   - MaxDistanceKm must not be negative
//   - required enum values must be declared and specified
func ValidateCriteria(c *PreferenceCriteria) error {
	if c == nil {
		return fmt.Errorf("%w: criteria is nil", ErrInvalidCriteria)
	}
	m := c.MustHave
	if m.MinAge != 0 && (m.MinAge < MinAge || m.MinAge > MaxAge) {
		return fmt.Errorf("%w: min age: %w: %d", ErrInvalidCriteria, ErrAgeOutOfRange, m.MinAge)
	}
	if m.MaxAge != 0 && (m.MaxAge < MinAge || m.MaxAge > MaxAge) {
		return fmt.Errorf("%w: max age: %w: %d", ErrInvalidCriteria, ErrAgeOutOfRange, m.MaxAge)
	}
	if m.MinAge != 0 && m.MaxAge != 0 && m.MaxAge < m.MinAge {
		return fmt.Errorf("%w: %w", ErrInvalidCriteria, ErrAgeRangeInverted)
	}
	if m.MaxDistanceKm < 0 || math.IsNaN(m.MaxDistanceKm) {
		return fmt.Errorf("%w: %w", ErrInvalidCriteria, ErrNegativeDistance)
	}
	for _, rc := range m.RequiredCommunities {
		if !validCommunity(rc) || rc == CommunityUnspecified {
			return fmt.Errorf("%w: required community: %w: %d", ErrInvalidCriteria, ErrInvalidEnum, rc)
		}
	}
	for _, rr := range m.RequiredReligiosity {
		if !validReligiosity(rr) || rr == ReligiosityUnspecified {
			return fmt.Errorf("%w: required religiosity: %w: %d", ErrInvalidCriteria, ErrInvalidEnum, rr)
		}
	}
	for _, ms := range m.AcceptedMaritalStatuses {
		if !validMarital(ms) || ms == MaritalUnspecified {
			return fmt.Errorf("%w: accepted marital status: %w: %d", ErrInvalidCriteria, ErrInvalidEnum, ms)
		}
	}
	for _, pe := range c.NiceToHave.PreferredEducation {
		if !validEducation(pe) || pe == EducationUnspecified {
			return fmt.Errorf("%w: preferred education: %w: %d", ErrInvalidCriteria, ErrInvalidEnum, pe)
		}
	}
	return nil
}

// ValidatePair validates a profile together with the criteria it owns.
func ValidatePair(p *Profile, c *PreferenceCriteria) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	if err := ValidateCriteria(c); err != nil {
		return err
	}
	if c.ProfileID != "" && c.ProfileID != p.ID {
		return fmt.Errorf("%w: %w: %s != %s", ErrInvalidCriteria, ErrProfileMismatch, c.ProfileID, p.ID)
	}
	return nil
}

// ValidateFeedback validates a FeedbackEvent before it is appended.
func ValidateFeedback(e *FeedbackEvent) error {
	if e == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidFeedback)
	}
	if e.ProfileA == "" || e.ProfileB == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFeedback, ErrEmptyID)
	}
	if e.ProfileA == e.ProfileB {
		return fmt.Errorf("%w: self pair %s", ErrInvalidFeedback, e.ProfileA)
	}
	if e.Outcome < OutcomeRejected || e.Outcome > OutcomeMatched {
		return fmt.Errorf("%w: %w: outcome %d", ErrInvalidFeedback, ErrInvalidEnum, e.Outcome)
	}
	for _, f := range e.Features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite feature", ErrInvalidFeedback)
		}
	}
	return nil
}

func validateEnums(p *Profile) error {
	if !validMarital(p.MaritalStatus) {
		return fmt.Errorf("%w: marital status %d", ErrInvalidEnum, p.MaritalStatus)
	}
	if !validCommunity(p.Community) {
		return fmt.Errorf("%w: community %d", ErrInvalidEnum, p.Community)
	}
	if !validReligiosity(p.Religiosity) {
		return fmt.Errorf("%w: religiosity %d", ErrInvalidEnum, p.Religiosity)
	}
	if !validEducation(p.Education) {
		return fmt.Errorf("%w: education %d", ErrInvalidEnum, p.Education)
	}
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		return fmt.Errorf("%w: gender %d", ErrInvalidEnum, p.Gender)
	}
	return nil
}

func validMarital(m MaritalStatus) bool {
	return m >= MaritalUnspecified && m <= MaritalWidowed
}

func validCommunity(c Community) bool {
	return c >= CommunityUnspecified && c <= CommunityNationalReligious
}

func validReligiosity(r ReligiosityLevel) bool {
	return r >= ReligiosityUnspecified && r <= ReligiosityFlexible
}

func validEducation(e EducationLevel) bool {
	return e >= EducationUnspecified && e <= EducationAdvancedDegree
}
