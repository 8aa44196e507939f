package obstacles

import (
	"github.com/pkg/errors"
	m "pfeifer.dev/avsim/math"
)

// Field owns the obstacles of one simulation. The count never changes after
// construction; only positions and velocities are mutated by Advance.
type Field struct {
	world     m.Box
	obstacles []Obstacle
	circles   []m.Circle
}

func NewField(world m.Box, obstacles []Obstacle) (*Field, error) {
	f := &Field{
		world:     world,
		obstacles: make([]Obstacle, len(obstacles)),
		circles:   make([]m.Circle, len(obstacles)),
	}
	for i, o := range obstacles {
		if err := o.Validate(); err != nil {
			return nil, errors.Wrapf(err, "obstacle %d", i)
		}
		if o.Kind == LINEAR && o.Anchor == (m.Vector{}) {
			o.Anchor = o.Position
		}
		f.obstacles[i] = o
	}
	f.syncCircles()
	return f, nil
}

func (f *Field) syncCircles() {
	for i := range f.obstacles {
		f.circles[i] = f.obstacles[i].Circle()
	}
}

// Advance moves every moving obstacle by one step of dt seconds.
func (f *Field) Advance(dt float64) {
	for i := range f.obstacles {
		f.obstacles[i].advance(dt, f.world)
	}
	f.syncCircles()
}

// Circles exposes the current obstacle geometry. The slice is owned by the
// field and is overwritten on the next Advance.
func (f *Field) Circles() []m.Circle {
	return f.circles
}

// Obstacles returns a copy of the current obstacle state.
func (f *Field) Obstacles() []Obstacle {
	out := make([]Obstacle, len(f.obstacles))
	copy(out, f.obstacles)
	return out
}

func (f *Field) Len() int {
	return len(f.obstacles)
}

func (f *Field) World() m.Box {
	return f.world
}

// Overlapping returns the indices of obstacles overlapping the circle.
func (f *Field) Overlapping(c m.Circle) []int {
	var hits []int
	for i, oc := range f.circles {
		if c.Overlaps(oc) {
			hits = append(hits, i)
		}
	}
	return hits
}
