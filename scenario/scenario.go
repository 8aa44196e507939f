package scenario

import (
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Layouts are authored for a 20 x 20 arena and scaled to the actual one.
const REFERENCE_SIZE = 20.0

// START_CLEARANCE is the free space kept around the start pose when obstacles
// are placed at random.
const START_CLEARANCE = 1.5

const MAX_PLACEMENT_TRIES = 1000

type Pose struct {
	Position m.Vector `json:"position"`
	Heading  float64  `json:"heading"`
}

// Layout is everything needed to seed an obstacle field and place the vehicle.
type Layout struct {
	Name      string               `json:"name"`
	Start     Pose                 `json:"start"`
	Obstacles []obstacles.Obstacle `json:"obstacles"`
}

type builder func(b *layoutBuilder)

var builders = map[string]builder{
	"corridor":     buildCorridor,
	"random":       buildRandom,
	"intersection": buildIntersection,
	"dense":        buildDense,
	"traffic":      buildTraffic,
	"empty":        func(b *layoutBuilder) {},
}

// Names lists the built in scenarios.
var Names = []string{"corridor", "random", "intersection", "dense", "traffic", "empty"}

// MatrixNames are the scenarios exercised by the test matrix.
var MatrixNames = []string{"corridor", "random", "intersection", "dense"}

func Known(name string) bool {
	_, ok := builders[name]
	return ok
}

// DefaultStart puts the vehicle in the middle of the arena facing +x.
func DefaultStart(world m.Box) Pose {
	return Pose{Position: world.Center()}
}

type layoutBuilder struct {
	world  m.Box
	rng    *rand.Rand
	clear  m.Circle
	scaleX float64
	scaleY float64
	placed []obstacles.Obstacle
}

// at converts reference arena coordinates to world coordinates.
func (b *layoutBuilder) at(x, y float64) m.Vector {
	return m.Vector{
		X: b.world.Min.X + x*b.scaleX,
		Y: b.world.Min.Y + y*b.scaleY,
	}
}

func (b *layoutBuilder) add(o obstacles.Obstacle) {
	b.placed = append(b.placed, o)
}

func (b *layoutBuilder) static(x, y, radius float64) {
	b.add(obstacles.Obstacle{Position: b.at(x, y), Radius: radius, Kind: obstacles.STATIC})
}

// scatter places count static obstacles uniformly in [lo, hi] of the reference
// arena with radii in [rMin, rMax], skipping spots that crowd the start.
func (b *layoutBuilder) scatter(count int, lo, hi, rMin, rMax float64) {
	for range count {
		for try := 0; try < MAX_PLACEMENT_TRIES; try++ {
			pos := b.at(lo+b.rng.Float64()*(hi-lo), lo+b.rng.Float64()*(hi-lo))
			radius := rMin + b.rng.Float64()*(rMax-rMin)
			if b.clear.Overlaps(m.Circle{Center: pos, Radius: radius}) {
				continue
			}
			b.add(obstacles.Obstacle{Position: pos, Radius: radius, Kind: obstacles.STATIC})
			break
		}
	}
}

func buildCorridor(b *layoutBuilder) {
	for i := range 5 {
		x := 5 + float64(i)*2
		b.static(x, 5, 0.8)
		b.static(x, 15, 0.8)
	}
}

func buildIntersection(b *layoutBuilder) {
	for y := 5; y <= 15; y += 2 {
		b.static(8, float64(y), 0.7)
		b.static(12, float64(y), 0.7)
	}
	for x := 5; x <= 15; x += 2 {
		b.static(float64(x), 8, 0.7)
		b.static(float64(x), 12, 0.7)
	}
}

func buildDense(b *layoutBuilder) {
	b.scatter(20, 3, 17, 0.3, 0.8)
}

func buildRandom(b *layoutBuilder) {
	b.scatter(8, 3, 17, 0.4, 1.0)
}

// buildTraffic mixes parked obstacles with patrolling and bouncing ones.
func buildTraffic(b *layoutBuilder) {
	b.static(4, 4, 0.8)
	b.static(16, 16, 0.8)
	b.add(obstacles.Obstacle{
		Position: b.at(15, 6),
		Radius:   0.6,
		Kind:     obstacles.LINEAR,
		Velocity: m.Vector{Y: 1.0},
		Span:     3 * b.scaleY,
	})
	b.add(obstacles.Obstacle{
		Position: b.at(5, 14),
		Radius:   0.6,
		Kind:     obstacles.LINEAR,
		Velocity: m.Vector{X: 1.2},
		Span:     3 * b.scaleX,
	})
	b.add(obstacles.Obstacle{
		Position: b.at(3, 17),
		Radius:   0.5,
		Kind:     obstacles.BOUNCE,
		Velocity: m.Vector{X: 1.5, Y: -0.7},
	})
	b.add(obstacles.Obstacle{
		Position: b.at(17, 3),
		Radius:   0.5,
		Kind:     obstacles.BOUNCE,
		Velocity: m.Vector{X: -0.9, Y: 1.3},
	})
}

// Build creates a named layout for world. Random placement is drawn from
// seed so the same seed always yields the same layout. vehicleRadius sizes
// the clearing kept around the start pose.
func Build(name string, world m.Box, seed uint64, vehicleRadius float64) (Layout, error) {
	build, ok := builders[name]
	if !ok {
		return Layout{}, errors.Wrapf(ErrUnknownScenario, "%q", name)
	}
	start := DefaultStart(world)
	b := &layoutBuilder{
		world:  world,
		rng:    rand.New(rand.NewPCG(seed, uint64(len(name)))),
		clear:  m.Circle{Center: start.Position, Radius: vehicleRadius + START_CLEARANCE},
		scaleX: world.Width() / REFERENCE_SIZE,
		scaleY: world.Height() / REFERENCE_SIZE,
	}
	build(b)
	return Layout{
		Name:      name,
		Start:     start,
		Obstacles: slices.Clone(b.placed),
	}, nil
}

// Field builds the obstacle field for the layout.
func (l Layout) Field(world m.Box) (*obstacles.Field, error) {
	field, err := obstacles.NewField(world, l.Obstacles)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid layout %s", l.Name)
	}
	return field, nil
}
