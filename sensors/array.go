package sensors

import (
	"encoding/json"
	"math/rand/v2"

	"github.com/pkg/errors"
	m "pfeifer.dev/avsim/math"
)

type Name int

const (
	FL Name = iota
	FR
	BL
	BR
	COUNT
)

var names = [COUNT]string{"FL", "FR", "BL", "BR"}

// Mounting offsets from the vehicle heading, counter-clockwise positive.
var offsets = [COUNT]float64{
	45 * m.TO_RADIANS,
	-45 * m.TO_RADIANS,
	135 * m.TO_RADIANS,
	-135 * m.TO_RADIANS,
}

func (n Name) String() string {
	if n >= 0 && n < COUNT {
		return names[n]
	}
	return "unknown"
}

func (n Name) Offset() float64 {
	return offsets[n]
}

func All() [COUNT]Name {
	return [COUNT]Name{FL, FR, BL, BR}
}

type Config struct {
	MaxRange      float64 `json:"max_range"`
	NoiseEnabled  bool    `json:"noise_enabled"`
	NoiseStdDev   float64 `json:"noise_std_dev"`
	FilterEnabled bool    `json:"filter_enabled"`
	FilterWindow  int     `json:"filter_window"`
}

func DefaultConfig() Config {
	return Config{
		MaxRange:      10,
		NoiseEnabled:  false,
		NoiseStdDev:   0.3,
		FilterEnabled: true,
		FilterWindow:  5,
	}
}

func (c Config) Validate() error {
	if !(c.MaxRange > 0) {
		return errors.Errorf("sensor max range %v must be positive", c.MaxRange)
	}
	if c.NoiseStdDev < 0 {
		return errors.Errorf("sensor noise std dev %v must not be negative", c.NoiseStdDev)
	}
	if c.FilterWindow < 1 {
		return errors.Errorf("sensor filter window %d must be at least 1", c.FilterWindow)
	}
	return nil
}

type Reading struct {
	Raw      float64 `json:"raw"`
	Filtered float64 `json:"filtered"`
	Angle    float64 `json:"angle"` // mounting offset, radians
}

type Snapshot [COUNT]Reading

func (s Snapshot) Filtered() [COUNT]float64 {
	var out [COUNT]float64
	for i, r := range s {
		out[i] = r.Filtered
	}
	return out
}

func (s Snapshot) Raw() [COUNT]float64 {
	var out [COUNT]float64
	for i, r := range s {
		out[i] = r.Raw
	}
	return out
}

func (s Snapshot) ByName() map[string]Reading {
	out := make(map[string]Reading, COUNT)
	for i, r := range s {
		out[Name(i).String()] = r
	}
	return out
}

// MarshalJSON encodes the snapshot keyed by sensor name.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ByName())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	byName := map[string]Reading{}
	if err := json.Unmarshal(data, &byName); err != nil {
		return errors.Wrap(err, "could not decode sensor snapshot")
	}
	for i := range s {
		s[i] = byName[Name(i).String()]
	}
	return nil
}

// Ray describes one sensor beam for rendering.
type Ray struct {
	Name     string   `json:"name"`
	Start    m.Vector `json:"start"`
	End      m.Vector `json:"end"`
	Distance float64  `json:"distance"`
	Angle    float64  `json:"angle"` // world frame, radians
}

// Array casts the four proximity rays and keeps one filter history per sensor.
type Array struct {
	config  Config
	radius  float64
	rng     *rand.Rand
	history [COUNT]m.MovingAverage
	last    Snapshot
}

// New creates a sensor array for a vehicle of the given radius. seed drives
// the noise generator so runs with the same seed see the same noise.
func New(config Config, vehicleRadius float64, seed uint64) (*Array, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	a := &Array{
		config: config,
		radius: vehicleRadius,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for i := range a.history {
		a.history[i].Init(config.FilterWindow)
	}
	a.Reset()
	return a, nil
}

func (a *Array) Config() Config {
	return a.config
}

// Reset clears every filter history.
func (a *Array) Reset() {
	for i := range a.history {
		a.history[i].Reset()
		a.last[i] = Reading{Raw: a.config.MaxRange, Filtered: a.config.MaxRange, Angle: offsets[i]}
	}
}

func (a *Array) ray(n Name, position m.Vector, heading float64) m.Ray {
	dir := m.Unit(heading + offsets[n])
	return m.Ray{
		Origin:    position.Add(dir.Scale(a.radius)),
		Direction: dir,
	}
}

// Raycast returns the noiseless distances without touching the filters.
func (a *Array) Raycast(position m.Vector, heading float64, circles []m.Circle) [COUNT]float64 {
	var out [COUNT]float64
	for _, n := range All() {
		out[n] = a.ray(n, position, heading).Cast(circles, a.config.MaxRange)
	}
	return out
}

// Update runs one sensing cycle: raycast, optional noise, optional filter.
func (a *Array) Update(position m.Vector, heading float64, circles []m.Circle) Snapshot {
	distances := a.Raycast(position, heading, circles)
	for _, n := range All() {
		raw := distances[n]
		if a.config.NoiseEnabled && a.config.NoiseStdDev > 0 {
			raw += a.rng.NormFloat64() * a.config.NoiseStdDev
		}
		raw = m.Clamp(raw, 0, a.config.MaxRange)

		filtered := raw
		if a.config.FilterEnabled {
			filtered = m.Clamp(a.history[n].Update(raw), 0, a.config.MaxRange)
		}
		a.last[n] = Reading{Raw: raw, Filtered: filtered, Angle: offsets[n]}
	}
	return a.last
}

func (a *Array) Last() Snapshot {
	return a.last
}

// Rays returns the beams of the last reading for visualisation.
func (a *Array) Rays(position m.Vector, heading float64) []Ray {
	rays := make([]Ray, 0, COUNT)
	for _, n := range All() {
		r := a.ray(n, position, heading)
		d := a.last[n].Filtered
		rays = append(rays, Ray{
			Name:     n.String(),
			Start:    r.Origin,
			End:      r.Origin.Add(r.Direction.Scale(d)),
			Distance: d,
			Angle:    m.WrapAngle(heading + offsets[n]),
		})
	}
	return rays
}

// SetNoiseEnabled toggles noise injection. Filter histories are kept.
func (a *Array) SetNoiseEnabled(enabled bool) {
	a.config.NoiseEnabled = enabled
}

// SetFilterEnabled toggles smoothing. Filter histories are kept.
func (a *Array) SetFilterEnabled(enabled bool) {
	a.config.FilterEnabled = enabled
}
