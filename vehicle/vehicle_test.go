package vehicle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
)

var world = m.NewBox(20, 20)

func newVehicle(x, y, heading float64) *Vehicle {
	return New(DefaultConfig(), world, 2.0, m.Vector{X: x, Y: y}, heading)
}

func TestAccelerateClamps(t *testing.T) {
	v := newVehicle(10, 10, 0)
	v.Accelerate(5)
	assert.Equal(t, 2.0, v.Speed)
	v.Accelerate(-10)
	assert.Equal(t, -1.0, v.Speed)
}

func TestTurnWraps(t *testing.T) {
	v := newVehicle(10, 10, 0)
	v.Turn(-1, 0.1)
	assert.InDelta(t, 2*math.Pi-0.2, v.Heading, 1e-12)
	v.Turn(1, 0.2)
	assert.InDelta(t, 0.2, v.Heading, 1e-12)
}

func TestBrakeStops(t *testing.T) {
	v := newVehicle(10, 10, 0)
	v.Accelerate(1)
	v.Brake()
	assert.Equal(t, 0.0, v.Speed)
}

func TestUpdateMovesAlongHeading(t *testing.T) {
	v := newVehicle(10, 10, math.Pi/2)
	v.Speed = 1
	d := v.Update(0.1)
	assert.InDelta(t, 0.099, d, 1e-9)
	assert.InDelta(t, 10, v.Position.X, 1e-9)
	assert.InDelta(t, 10.099, v.Position.Y, 1e-9)
	assert.InDelta(t, 0.99, v.Speed, 1e-12)
}

func TestUpdateBouncesOffVerticalWall(t *testing.T) {
	v := newVehicle(19.45, 10, 0)
	v.Speed = 2
	v.Update(0.1)
	assert.Equal(t, 19.5, v.Position.X)
	assert.InDelta(t, math.Pi, v.Heading, 1e-12)
	assert.InDelta(t, 0.99, v.Speed, 1e-12)
}

func TestUpdateBouncesOffHorizontalWall(t *testing.T) {
	v := newVehicle(10, 0.55, 3*math.Pi/2)
	v.Speed = 2
	v.Update(0.1)
	assert.Equal(t, 0.5, v.Position.Y)
	assert.InDelta(t, math.Pi/2, v.Heading, 1e-12)
}

func TestCheckCollisionsCountsEachObstacleOncePerTick(t *testing.T) {
	field, err := obstacles.NewField(world, []obstacles.Obstacle{
		{Position: m.Vector{X: 10.8, Y: 10}, Radius: 0.5},
		{Position: m.Vector{X: 9.2, Y: 10}, Radius: 0.5},
		{Position: m.Vector{X: 15, Y: 15}, Radius: 0.5},
	})
	require.NoError(t, err)

	v := newVehicle(10, 10, 0)
	assert.Equal(t, 2, v.CheckCollisions(field))
	assert.Equal(t, 2, v.Collisions)
	assert.Equal(t, 2, v.CheckCollisions(field))
	assert.Equal(t, 4, v.Collisions)
}
