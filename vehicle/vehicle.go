package vehicle

import (
	"github.com/pkg/errors"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
)

type Config struct {
	Radius       float64 `json:"radius"`       // meters
	Acceleration float64 `json:"acceleration"` // m/s^2 at full throttle
	TurnRate     float64 `json:"turn_rate"`    // rad/s at full steering
	Friction     float64 `json:"friction"`     // fraction of speed lost per update
	Restitution  float64 `json:"restitution"`  // speed kept after a wall bounce
}

func DefaultConfig() Config {
	return Config{
		Radius:       0.5,
		Acceleration: 2.0,
		TurnRate:     2.0,
		Friction:     0.01,
		Restitution:  0.5,
	}
}

func (c Config) Validate() error {
	if !(c.Radius > 0) {
		return errors.New("vehicle radius must be positive")
	}
	if c.Friction < 0 || c.Friction >= 1 {
		return errors.Errorf("vehicle friction %v must be in [0, 1)", c.Friction)
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		return errors.Errorf("vehicle restitution %v must be in [0, 1]", c.Restitution)
	}
	return nil
}

type State struct {
	Position   m.Vector `json:"position"`
	Heading    float64  `json:"heading"`
	Speed      float64  `json:"speed"`
	Collisions int      `json:"collisions"`
}

type Vehicle struct {
	State
	config   Config
	maxSpeed float64
	world    m.Box
}

func New(config Config, world m.Box, maxSpeed float64, position m.Vector, heading float64) *Vehicle {
	return &Vehicle{
		State: State{
			Position: position,
			Heading:  m.WrapAngle(heading),
		},
		config:   config,
		maxSpeed: maxSpeed,
		world:    world,
	}
}

func (v *Vehicle) Config() Config {
	return v.config
}

func (v *Vehicle) MaxSpeed() float64 {
	return v.maxSpeed
}

func (v *Vehicle) Circle() m.Circle {
	return m.Circle{Center: v.Position, Radius: v.config.Radius}
}

// Accelerate adds delta to the speed. Reverse is capped at half the forward limit.
func (v *Vehicle) Accelerate(delta float64) {
	v.Speed = m.Clamp(v.Speed+delta, -v.maxSpeed/2, v.maxSpeed)
}

// Turn rotates the heading; positive direction is counter-clockwise.
func (v *Vehicle) Turn(direction, dt float64) {
	v.Heading = m.WrapAngle(v.Heading + direction*v.config.TurnRate*dt)
}

func (v *Vehicle) Brake() {
	v.Speed = 0
}

// Update applies friction, integrates the position, and bounces off the walls.
// It returns the distance travelled.
func (v *Vehicle) Update(dt float64) float64 {
	v.Speed *= 1 - v.config.Friction
	before := v.Position
	v.Position = v.Position.Add(m.Unit(v.Heading).Scale(v.Speed * dt))
	v.handleBoundaries()
	return before.DistanceTo(v.Position)
}

func (v *Vehicle) handleBoundaries() {
	r := v.config.Radius
	w := v.world
	if v.Position.X-r < w.Min.X {
		v.Position.X = w.Min.X + r
		v.bounce(m.ReflectVertical)
	} else if v.Position.X+r > w.Max.X {
		v.Position.X = w.Max.X - r
		v.bounce(m.ReflectVertical)
	}
	if v.Position.Y-r < w.Min.Y {
		v.Position.Y = w.Min.Y + r
		v.bounce(m.ReflectHorizontal)
	} else if v.Position.Y+r > w.Max.Y {
		v.Position.Y = w.Max.Y - r
		v.bounce(m.ReflectHorizontal)
	}
}

// bounce mirrors the heading, which flips the wall-normal velocity component,
// and keeps a fraction of the speed.
func (v *Vehicle) bounce(reflect func(float64) float64) {
	v.Heading = reflect(v.Heading)
	v.Speed *= v.config.Restitution
}

// CheckCollisions counts one collision per overlapping obstacle for this tick
// and returns how many were found.
func (v *Vehicle) CheckCollisions(field *obstacles.Field) int {
	hits := len(field.Overlapping(v.Circle()))
	v.Collisions += hits
	return hits
}
