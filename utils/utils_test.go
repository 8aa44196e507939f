package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	tr := Tracker[string]{}
	tr.Reset("CRUISE")

	assert.False(t, tr.Update("CRUISE", 1))
	assert.True(t, tr.Update("AVOID_LEFT", 2))
	assert.Equal(t, "CRUISE", tr.LastValue)
	assert.Equal(t, "AVOID_LEFT", tr.Value)
	assert.Equal(t, 2, tr.UpdatedCycle)
	assert.Equal(t, 1, tr.Changes)
}

func TestUpdateTrackerHz(t *testing.T) {
	u := UpdateTracker{}
	u.Init(4)
	start := u.Time
	for i := 1; i <= 4; i++ {
		u.UpdateAt(start.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	assert.InDelta(t, 10, u.Hz(), 1e-6)
}
