package core

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash returns a stable BLAKE2b digest of text, hex encoded.
// It is used to detect when a cached embedding no longer matches its source text.
func ContentHash(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Location is where a profile lives. Place is a symbolic name resolved by a
// geo.Resolver; explicit coordinates take precedence when HasCoordinates is set.
type Location struct {
	Place          string
	Lat            float64
	Lon            float64
	HasCoordinates bool
}

// IsZero reports whether the location carries no information at all.
func (l Location) IsZero() bool {
	return l.Place == "" && !l.HasCoordinates
}

// Profile is a matchmaking participant.
// A profile is treated as immutable for the duration of a single scoring or matching run.
type Profile struct {
	ID            string
	Gender        Gender
	Age           int
	MaritalStatus MaritalStatus
	Community     Community
	Religiosity   ReligiosityLevel
	Education     EducationLevel
	Smoking       bool
	Languages     []string
	Location      Location
	Description   string
	UpdatedAt     time.Time
}

// MustHave holds hard constraints. Zero values mean "no constraint".
type MustHave struct {
	MinAge                  int
	MaxAge                  int
	MaxDistanceKm           float64
	RequiredCommunities     []Community
	RequiredReligiosity     []ReligiosityLevel
	RequiredLanguages       []string
	AcceptedMaritalStatuses []MaritalStatus
	Smoking                 *bool // nil = don't care
}

// NiceToHave holds soft preferences. They raise the auxiliary score but never exclude.
type NiceToHave struct {
	PreferredEducation []EducationLevel
	PreferredLanguages []string
}

// PreferenceCriteria is owned 1:1 by a Profile.
type PreferenceCriteria struct {
	ProfileID  string
	MustHave   MustHave
	NiceToHave NiceToHave
	FreeText   string // embedded and compared against the counterpart's description
}

// Components are the five compatibility scores that feed the composite total.
type Components struct {
	Semantic  float64
	Religious float64
	Age       float64
	Geo       float64
	Auxiliary float64
}

// AuxiliaryDetail holds the raw sub-scores averaged into Components.Auxiliary.
type AuxiliaryDetail struct {
	Education float64
	Language  float64
	Smoking   float64
}

// Contribution is one line of a score explanation.
type Contribution struct {
	Factor       string
	Value        float64
	Weight       float64
	Contribution float64
}

// ScoredPair is the scoring result for an ordered pair of profiles.
type ScoredPair struct {
	ProfileA    string
	ProfileB    string
	Components  Components
	Auxiliary   AuxiliaryDetail
	AgeGap      int
	DistanceKm  float64 // negative when the distance could not be resolved
	Total       float64 // static weighted composite in [0,1]
	Final       float64 // score used for ranking (Total, learned, or blended)
	Explanation []Contribution
	Summary     string
}

// FeedbackOutcome is the observed result of a proposed or realized pair.
type FeedbackOutcome int

const (
	OutcomeRejected FeedbackOutcome = iota + 1
	OutcomeProposalSent
	OutcomeContactMade
	OutcomeMeetingScheduled
	OutcomeMatched
)

// FeedbackEvent records an outcome for a pair. Events are append-only.
type FeedbackEvent struct {
	ID         string
	ProfileA   string
	ProfileB   string
	Outcome    FeedbackOutcome
	Features   []float64 // pair feature vector at the time of the event
	Reason     string
	RecordedAt time.Time
}

// TrainingExample is derived from a FeedbackEvent for a single training run.
type TrainingExample struct {
	ProfileA string
	Features []float64
	Label    float64
}

// RankerModel is a learned linear scoring artifact. It is read-only once served.
type RankerModel struct {
	Version      uint64
	Schema       []string
	Weights      []float64
	Bias         float64
	ExampleCount int
	TrainingRMSE float64
	NDCG         float64
	TrainedAt    time.Time
}

// AssignedPair is one matched couple in a StableAssignment.
type AssignedPair struct {
	Proposer     string
	Receiver     string
	Score        float64
	ProposerRank int // 1-based rank of Receiver in Proposer's list
	ReceiverRank int // 1-based rank of Proposer in Receiver's list
}

// StableAssignment is the output of one solver run.
type StableAssignment struct {
	Partners  map[string]string // symmetric: a->b implies b->a
	Ranks     map[string]int    // rank of each participant's partner in its own list
	Pairs     []AssignedPair    // ordered by proposer id
	Unmatched []string          // sorted
	Proposals int
}

// PartnerOf returns the partner of id, if any.
func (s *StableAssignment) PartnerOf(id string) (string, bool) {
	p, ok := s.Partners[id]
	return p, ok
}

// LanguageSet returns the case-folded set of languages.
func LanguageSet(langs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}
