package warmup

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 50)
	tracker.Start()

	tracker.Increment(20)
	assert.Empty(t, buf.String(), "below the interval")

	tracker.Increment(30)
	assert.Contains(t, buf.String(), "50/100")
	assert.Contains(t, buf.String(), "50.0%")
}

func TestProgressTracker_FinishAndCap(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 100)
	tracker.Start()
	tracker.Increment(25)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "10/10")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "\n")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)
	tracker.Increment(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 0)
	tracker.Start()
	tracker.Finish()
	assert.Contains(t, buf.String(), "0/0")
}
