package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pfeifer.dev/avsim/decision"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
	"pfeifer.dev/avsim/scenario"
)

func newConfig(t *testing.T, mode, scenarioName string) Config {
	t.Helper()
	config, err := NewConfig(mode, scenarioName, 3)
	require.NoError(t, err)
	return config
}

func newSession(t *testing.T, config Config) *Session {
	t.Helper()
	s, err := NewSession(config)
	require.NoError(t, err)
	return s
}

func TestCautiousCorridorHasNoCollisions(t *testing.T) {
	s := newSession(t, newConfig(t, "cautious", "corridor"))
	s.Run(600, nil)

	summary := s.Summary()
	assert.Equal(t, 600, summary.TotalCycles)
	assert.Equal(t, 0, summary.TotalCollisions)
	assert.Nil(t, summary.TimeToFirstCollision)
	assert.InDelta(t, 60.0, summary.TotalTime, 1e-9)
	assert.Greater(t, summary.TotalDistance, 0.0)
}

func TestRunsAreDeterministic(t *testing.T) {
	for _, name := range []string{"corridor", "dense", "traffic"} {
		t.Run(name, func(t *testing.T) {
			config := newConfig(t, "normal", name)
			config.Sensors.NoiseEnabled = false
			config.Sensors.FilterEnabled = false

			a := Record(newSession(t, config), 300)
			b := Record(newSession(t, config), 300)
			assert.Equal(t, a.Records, b.Records)
			assert.Equal(t, a.Summary, b.Summary)
		})
	}
}

func TestNoisyRunsAreSeeded(t *testing.T) {
	config := newConfig(t, "normal", "random")
	config.Sensors.NoiseEnabled = true

	a := Record(newSession(t, config), 200)
	b := Record(newSession(t, config), 200)
	assert.Equal(t, a.Records, b.Records)
}

func TestEmptyArenaCruises(t *testing.T) {
	s := newSession(t, newConfig(t, "normal", "empty"))
	var last TickRecord
	s.Run(20, func(rec TickRecord) { last = rec })

	assert.Equal(t, decision.CRUISE, last.State)
	assert.Equal(t, 19, last.Cycle)
	assert.InDelta(t, 2.0, last.Time, 1e-12)
	assert.Greater(t, last.Speed, 0.0)
	assert.LessOrEqual(t, last.Speed, 3.5)
	assert.Equal(t, 0, s.Metrics().Transitions)
}

func TestHeadOnObstacleBrakes(t *testing.T) {
	config := newConfig(t, "normal", "empty")
	for y := 6; y <= 14; y++ {
		config.Layout.Obstacles = append(config.Layout.Obstacles, obstacles.Obstacle{
			Position: m.Vector{X: 16, Y: float64(y)},
			Radius:   0.6,
			Kind:     obstacles.STATIC,
		})
	}
	s := newSession(t, config)

	braked := false
	s.Run(100, func(rec TickRecord) {
		if rec.State == decision.EMERGENCY_BRAKE {
			braked = true
		}
	})
	assert.True(t, braked)
	assert.Positive(t, s.Metrics().EmergencyBrakes)
	assert.Positive(t, s.Metrics().Transitions)
}

func TestCollisionIsRecorded(t *testing.T) {
	config := newConfig(t, "aggressive", "empty")
	config.Layout.Obstacles = []obstacles.Obstacle{
		{Position: m.Vector{X: 10.8, Y: 10}, Radius: 0.5, Kind: obstacles.STATIC},
	}
	s := newSession(t, config)
	rec := s.Tick()

	assert.True(t, rec.Collision)
	assert.Equal(t, 1, rec.Collisions)
	require.NotNil(t, s.Metrics().FirstCollisionTime)
	assert.InDelta(t, 0.1, *s.Metrics().FirstCollisionTime, 1e-12)
}

func TestResetRejectsUnknownMode(t *testing.T) {
	_, err := NewConfig("reckless", "corridor", 1)
	assert.ErrorIs(t, err, decision.ErrUnknownMode)

	_, err = NewConfig("normal", "maze", 1)
	assert.ErrorIs(t, err, scenario.ErrUnknownScenario)
}

func TestResetKeepsStateOnInvalidConfig(t *testing.T) {
	s := newSession(t, newConfig(t, "normal", "corridor"))
	s.Run(5, nil)

	bad := s.Config()
	bad.Mode.HysteresisCycles = 0
	assert.ErrorIs(t, s.Reset(bad), decision.ErrInvalidMode)
	assert.Equal(t, 5, s.Cycle())
	assert.Equal(t, "normal", s.Config().Mode.Name)
}

func TestResetClearsMetrics(t *testing.T) {
	s := newSession(t, newConfig(t, "normal", "dense"))
	s.Run(50, nil)
	require.Equal(t, 50, s.Metrics().Cycles)

	next := newConfig(t, "cautious", "intersection")
	require.NoError(t, s.Reset(next))
	assert.Equal(t, 0, s.Cycle())
	assert.Equal(t, Metrics{}, s.Metrics())
	assert.Equal(t, "cautious", s.Summary().Mode)
	assert.Equal(t, "intersection", s.Summary().Scenario)
	assert.Equal(t, scenario.DefaultStart(next.World).Position, s.Vehicle().Position)
}

func TestSpeedStaysWithinLimits(t *testing.T) {
	for _, mode := range decision.PresetNames {
		s := newSession(t, newConfig(t, mode, "dense"))
		config := s.Config()
		limit := config.Mode.MaxSpeed
		s.Run(400, func(rec TickRecord) {
			assert.LessOrEqual(t, rec.Speed, limit)
			assert.GreaterOrEqual(t, rec.Speed, -limit/2)
			assert.True(t, config.World.CircleInside(rec.Position, config.Vehicle.Radius-1e-9))
		})
	}
}
