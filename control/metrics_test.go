package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pfeifer.dev/avsim/decision"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
)

func TestCollisionEventsCountContactStarts(t *testing.T) {
	mt := Metrics{}
	for i, hits := range []int{0, 1, 1, 2, 0, 0, 1, 1} {
		mt.record(TickRecord{Time: float64(i+1) * 0.1}, decision.Snapshot{}, hits, 0)
	}
	assert.Equal(t, 6, mt.Collisions)
	assert.Equal(t, 2, mt.CollisionEvents)
	require.NotNil(t, mt.FirstCollisionTime)
	assert.InDelta(t, 0.2, *mt.FirstCollisionTime, 1e-12)

	summary := mt.Summary("dense", "aggressive", 0.1)
	assert.Equal(t, 2, summary.CollisionEvents)
	assert.Equal(t, "2", summary.Row()[len(SummaryHeader)-1])
}

func TestStuckVehicleIsOneCollisionEvent(t *testing.T) {
	config := newConfig(t, "aggressive", "empty")
	config.Layout.Obstacles = []obstacles.Obstacle{
		{Position: m.Vector{X: 10.8, Y: 10}, Radius: 0.5, Kind: obstacles.STATIC},
	}
	s := newSession(t, config)
	s.Run(3, nil)

	// three ticks are far too short to drive clear of the obstacle
	assert.Equal(t, 3, s.Metrics().Collisions)
	assert.Equal(t, 1, s.Metrics().CollisionEvents)
	assert.Equal(t, 1, s.Summary().CollisionEvents)
}
