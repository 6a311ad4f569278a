package core

import (
	"testing"
	"time"
)

func TestContentHash(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{name: "same text", a: "loves learning", b: "loves learning", same: true},
		{name: "empty text", a: "", b: "", same: true},
		{name: "different text", a: "loves learning", b: "loves hiking", same: false},
		{name: "whitespace matters", a: "a b", b: "a  b", same: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentHash(tt.a) == ContentHash(tt.b)
			if got != tt.same {
				t.Errorf("ContentHash equality = %v, want %v", got, tt.same)
			}
			if len(ContentHash(tt.a)) != 32 {
				t.Errorf("ContentHash length = %d, want 32", len(ContentHash(tt.a)))
			}
		})
	}
}

func TestFeedbackOutcomeLabels(t *testing.T) {
	want := map[FeedbackOutcome]float64{
		OutcomeMatched:          5,
		OutcomeMeetingScheduled: 4,
		OutcomeContactMade:      3,
		OutcomeProposalSent:     2,
		OutcomeRejected:         0,
	}
	for outcome, label := range want {
		if got := outcome.Label(); got != label {
			t.Errorf("%s.Label() = %v, want %v", outcome, got, label)
		}
		parsed, err := ParseFeedbackOutcome(outcome.String())
		if err != nil || parsed != outcome {
			t.Errorf("ParseFeedbackOutcome(%q) = %v, %v", outcome.String(), parsed, err)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if c, err := ParseCommunity("Modern-Orthodox"); err != nil || c != CommunityModernOrthodox {
		t.Errorf("ParseCommunity = %v, %v", c, err)
	}
	if r, err := ParseReligiosityLevel("very strict"); err != nil || r != ReligiosityVeryStrict {
		t.Errorf("ParseReligiosityLevel = %v, %v", r, err)
	}
	if g, err := ParseGender("F"); err != nil || g != GenderFemale {
		t.Errorf("ParseGender = %v, %v", g, err)
	}
	if _, err := ParseEducationLevel("kindergarten"); err == nil {
		t.Error("ParseEducationLevel accepted an unknown value")
	}
	for _, c := range Communities {
		parsed, err := ParseCommunity(c.String())
		if err != nil || parsed != c {
			t.Errorf("community %s does not round trip", c)
		}
	}
	if GenderMale.Opposite() != GenderFemale || GenderUnspecified.Opposite() != GenderUnspecified {
		t.Error("Opposite() mismatch")
	}
}

func TestFeedbackEventCodec(t *testing.T) {
	event := FeedbackEvent{
		ID:         "evt-1",
		ProfileA:   "m1",
		ProfileB:   "f1",
		Outcome:    OutcomeMeetingScheduled,
		Features:   []float64{0.8, 1, 0.867, 0.9, 0.7, 1, 0.5, 1},
		Reason:     "met twice",
		RecordedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	buf := make([]byte, FeedbackEventMUS.Size(event))
	n := FeedbackEventMUS.Marshal(event, buf)
	if n != len(buf) {
		t.Fatalf("Marshal wrote %d bytes, Size reported %d", n, len(buf))
	}

	got, read, err := FeedbackEventMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if read != n {
		t.Errorf("Unmarshal read %d bytes, want %d", read, n)
	}
	if got.ID != event.ID || got.Outcome != event.Outcome || got.Reason != event.Reason {
		t.Errorf("Unmarshal() = %+v, want %+v", got, event)
	}
	if !got.RecordedAt.Equal(event.RecordedAt) {
		t.Errorf("RecordedAt = %v, want %v", got.RecordedAt, event.RecordedAt)
	}
	if len(got.Features) != len(event.Features) || got.Features[2] != event.Features[2] {
		t.Errorf("Features = %v, want %v", got.Features, event.Features)
	}
}

func TestRankerModelCodec_ZeroTimeAndTruncation(t *testing.T) {
	model := RankerModel{
		Version: 7,
		Schema:  []string{"semantic", "religious"},
		Weights: []float64{0.3, -0.1},
		Bias:    1.25,
	}

	buf := make([]byte, RankerModelMUS.Size(model))
	RankerModelMUS.Marshal(model, buf)

	got, _, err := RankerModelMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Version != 7 || got.Bias != 1.25 || len(got.Schema) != 2 || got.Schema[1] != "religious" {
		t.Errorf("Unmarshal() = %+v", got)
	}
	if !got.TrainedAt.IsZero() {
		t.Errorf("TrainedAt = %v, want zero", got.TrainedAt)
	}

	if _, _, err := RankerModelMUS.Unmarshal(buf[:len(buf)/2]); err == nil {
		t.Error("Unmarshal() of truncated data should fail")
	}
}
