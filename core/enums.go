package core

import (
	"fmt"
	"strings"
)

// Gender partitions the population for matching.
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderUnspecified:
		return "unspecified"
	}
	return fmt.Sprintf("gender(%d)", int(g))
}

// Opposite returns the other gender, or GenderUnspecified.
func (g Gender) Opposite() Gender {
	switch g {
	case GenderMale:
		return GenderFemale
	case GenderFemale:
		return GenderMale
	case GenderUnspecified:
		return GenderUnspecified
	}
	return GenderUnspecified
}

// ParseGender accepts "male"/"m" and "female"/"f".
func ParseGender(s string) (Gender, error) {
	switch normalizeEnum(s) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	case "":
		return GenderUnspecified, nil
	}
	return GenderUnspecified, fmt.Errorf("%w: gender %q", ErrUnknownValue, s)
}

// MaritalStatus of a profile.
type MaritalStatus int

const (
	MaritalUnspecified MaritalStatus = iota
	MaritalSingle
	MaritalDivorced
	MaritalWidowed
)

func (m MaritalStatus) String() string {
	switch m {
	case MaritalSingle:
		return "single"
	case MaritalDivorced:
		return "divorced"
	case MaritalWidowed:
		return "widowed"
	case MaritalUnspecified:
		return "unspecified"
	}
	return fmt.Sprintf("marital(%d)", int(m))
}

// ParseMaritalStatus parses a canonical marital status name.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	switch normalizeEnum(s) {
	case "single":
		return MaritalSingle, nil
	case "divorced":
		return MaritalDivorced, nil
	case "widowed":
		return MaritalWidowed, nil
	case "":
		return MaritalUnspecified, nil
	}
	return MaritalUnspecified, fmt.Errorf("%w: marital status %q", ErrUnknownValue, s)
}

// Community is the religious community a profile belongs to.
type Community int

const (
	CommunityUnspecified Community = iota
	CommunityLithuanian
	CommunityHasidic
	CommunitySephardic
	CommunityModernOrthodox
	CommunityNationalReligious
)

// Communities lists every specified community in declaration order.
var Communities = []Community{
	CommunityLithuanian,
	CommunityHasidic,
	CommunitySephardic,
	CommunityModernOrthodox,
	CommunityNationalReligious,
}

func (c Community) String() string {
	switch c {
	case CommunityLithuanian:
		return "lithuanian"
	case CommunityHasidic:
		return "hasidic"
	case CommunitySephardic:
		return "sephardic"
	case CommunityModernOrthodox:
		return "modern_orthodox"
	case CommunityNationalReligious:
		return "national_religious"
	case CommunityUnspecified:
		return "unspecified"
	}
	return fmt.Sprintf("community(%d)", int(c))
}

// ParseCommunity parses a canonical community name.
func ParseCommunity(s string) (Community, error) {
	switch normalizeEnum(s) {
	case "lithuanian":
		return CommunityLithuanian, nil
	case "hasidic":
		return CommunityHasidic, nil
	case "sephardic":
		return CommunitySephardic, nil
	case "modern_orthodox":
		return CommunityModernOrthodox, nil
	case "national_religious":
		return CommunityNationalReligious, nil
	case "":
		return CommunityUnspecified, nil
	}
	return CommunityUnspecified, fmt.Errorf("%w: community %q", ErrUnknownValue, s)
}

// ReligiosityLevel is ordered from strictest to most flexible.
type ReligiosityLevel int

const (
	ReligiosityUnspecified ReligiosityLevel = iota
	ReligiosityVeryStrict
	ReligiosityStrict
	ReligiosityModerate
	ReligiosityFlexible
)

// ReligiosityLevels lists every specified level from strictest to most flexible.
var ReligiosityLevels = []ReligiosityLevel{
	ReligiosityVeryStrict,
	ReligiosityStrict,
	ReligiosityModerate,
	ReligiosityFlexible,
}

func (r ReligiosityLevel) String() string {
	switch r {
	case ReligiosityVeryStrict:
		return "very_strict"
	case ReligiosityStrict:
		return "strict"
	case ReligiosityModerate:
		return "moderate"
	case ReligiosityFlexible:
		return "flexible"
	case ReligiosityUnspecified:
		return "unspecified"
	}
	return fmt.Sprintf("religiosity(%d)", int(r))
}

// ParseReligiosityLevel parses a canonical religiosity name.
func ParseReligiosityLevel(s string) (ReligiosityLevel, error) {
	switch normalizeEnum(s) {
	case "very_strict":
		return ReligiosityVeryStrict, nil
	case "strict":
		return ReligiosityStrict, nil
	case "moderate":
		return ReligiosityModerate, nil
	case "flexible":
		return ReligiosityFlexible, nil
	case "":
		return ReligiosityUnspecified, nil
	}
	return ReligiosityUnspecified, fmt.Errorf("%w: religiosity %q", ErrUnknownValue, s)
}

// EducationLevel of a profile.
type EducationLevel int

const (
	EducationUnspecified EducationLevel = iota
	EducationHighSchool
	EducationSeminary
	EducationYeshiva
	EducationCollege
	EducationUniversity
	EducationAdvancedDegree
)

func (e EducationLevel) String() string {
	switch e {
	case EducationHighSchool:
		return "high_school"
	case EducationSeminary:
		return "seminary"
	case EducationYeshiva:
		return "yeshiva"
	case EducationCollege:
		return "college"
	case EducationUniversity:
		return "university"
	case EducationAdvancedDegree:
		return "advanced_degree"
	case EducationUnspecified:
		return "unspecified"
	}
	return fmt.Sprintf("education(%d)", int(e))
}

// ParseEducationLevel parses a canonical education name.
func ParseEducationLevel(s string) (EducationLevel, error) {
	switch normalizeEnum(s) {
	case "high_school":
		return EducationHighSchool, nil
	case "seminary":
		return EducationSeminary, nil
	case "yeshiva":
		return EducationYeshiva, nil
	case "college":
		return EducationCollege, nil
	case "university":
		return EducationUniversity, nil
	case "advanced_degree":
		return EducationAdvancedDegree, nil
	case "":
		return EducationUnspecified, nil
	}
	return EducationUnspecified, fmt.Errorf("%w: education %q", ErrUnknownValue, s)
}

// Label returns the fixed ordinal training label for an outcome.
func (o FeedbackOutcome) Label() float64 {
	switch o {
	case OutcomeMatched:
		return 5
	case OutcomeMeetingScheduled:
		return 4
	case OutcomeContactMade:
		return 3
	case OutcomeProposalSent:
		return 2
	case OutcomeRejected:
		return 0
	}
	return 0
}

func (o FeedbackOutcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeMeetingScheduled:
		return "meeting_scheduled"
	case OutcomeContactMade:
		return "contact_made"
	case OutcomeProposalSent:
		return "proposal_sent"
	case OutcomeRejected:
		return "rejected"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ParseFeedbackOutcome parses a canonical outcome name.
func ParseFeedbackOutcome(s string) (FeedbackOutcome, error) {
	switch normalizeEnum(s) {
	case "matched":
		return OutcomeMatched, nil
	case "meeting_scheduled":
		return OutcomeMeetingScheduled, nil
	case "contact_made":
		return OutcomeContactMade, nil
	case "proposal_sent":
		return OutcomeProposalSent, nil
	case "rejected":
		return OutcomeRejected, nil
	}
	return 0, fmt.Errorf("%w: outcome %q", ErrUnknownValue, s)
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
