package backfill

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reporting(t *testing.T) {
	out := &bytes.Buffer{}
	tracker := NewProgressTracker(out, 10, 5)
	tracker.Start()

	tracker.Increment(3)
	assert.Empty(t, out.String(), "below report interval")

	tracker.Increment(2)
	assert.Contains(t, out.String(), "5/10")

	tracker.Finish()
	assert.Contains(t, out.String(), "10/10")
	assert.Contains(t, out.String(), "100.0%")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	out := &bytes.Buffer{}
	tracker := NewProgressTracker(out, 3, 1)
	tracker.Start()

	tracker.Increment(10)
	assert.Contains(t, out.String(), "3/3")
	assert.Equal(t, 1, strings.Count(out.String(), "\r"))
}

func TestProgressTracker_NoopBeforeStart(t *testing.T) {
	out := &bytes.Buffer{}
	tracker := NewProgressTracker(out, 3, 1)

	tracker.Increment(1)
	tracker.Finish()
	assert.Empty(t, out.String())
	assert.Zero(t, tracker.Elapsed())
}
