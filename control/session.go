package control

import (
	"log/slog"

	"github.com/pkg/errors"
	"pfeifer.dev/avsim/decision"
	"pfeifer.dev/avsim/obstacles"
	"pfeifer.dev/avsim/sensors"
	"pfeifer.dev/avsim/utils"
	"pfeifer.dev/avsim/vehicle"
)

// Session owns one independent set of simulation components. It is not safe
// for concurrent use; Runner serialises access to it.
type Session struct {
	config  Config
	field   *obstacles.Field
	vehicle *vehicle.Vehicle
	sensors *sensors.Array
	engine  *decision.Engine
	metrics Metrics
	cycle   int
	state   utils.Tracker[decision.State]
	last    TickRecord
}

func NewSession(config Config) (*Session, error) {
	s := &Session{}
	if err := s.Reset(config); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rebuilds every component from config. On error the session keeps its
// previous configuration and state.
func (s *Session) Reset(config Config) error {
	if err := config.Validate(); err != nil {
		return errors.Wrap(err, "invalid session config")
	}
	field, err := config.Layout.Field(config.World)
	if err != nil {
		return err
	}
	array, err := sensors.New(config.Sensors, config.Vehicle.Radius, config.Seed)
	if err != nil {
		return err
	}
	engine, err := decision.NewEngine(config.Mode)
	if err != nil {
		return err
	}

	start := config.Layout.Start
	s.config = config
	s.field = field
	s.sensors = array
	s.engine = engine
	s.vehicle = vehicle.New(config.Vehicle, config.World, config.Mode.MaxSpeed, start.Position, start.Heading)
	s.metrics = Metrics{}
	s.cycle = 0
	s.state.Reset(decision.CRUISE)
	s.last = TickRecord{
		Cycle:    -1,
		State:    decision.CRUISE,
		Position: s.vehicle.Position,
		Heading:  s.vehicle.Heading,
		Sensors:  s.sensors.Last(),
		TTC:      engine.Last().TTC,
		Command:  engine.Last().Command,
	}

	slog.Debug("session reset", "mode", config.Mode.Name, "scenario", config.Layout.Name, "obstacles", field.Len(), "seed", config.Seed)
	return nil
}

// Restart resets the session with its current configuration.
func (s *Session) Restart() {
	utils.Check(s.Reset(s.config))
}

// Tick advances the simulation by one fixed step: move obstacles, sense,
// decide, act, then check collisions and record.
func (s *Session) Tick() TickRecord {
	dt := s.config.DT
	v := s.vehicle

	s.field.Advance(dt)

	reading := s.sensors.Update(v.Position, v.Heading, s.field.Circles())
	dec := s.engine.Step(reading.Filtered(), v.Speed)

	s.apply(dec.Command, dt)
	travelled := v.Update(dt)
	hits := v.CheckCollisions(s.field)

	rec := TickRecord{
		Cycle:      s.cycle,
		Time:       float64(s.cycle+1) * dt,
		State:      dec.State,
		Position:   v.Position,
		Heading:    v.Heading,
		Speed:      v.Speed,
		Sensors:    reading,
		Hazard:     dec.Hazard,
		TTC:        dec.TTC,
		Command:    dec.Command,
		Collision:  hits > 0,
		Collisions: v.Collisions,
	}
	s.metrics.record(rec, dec, hits, travelled)

	if s.state.Update(dec.State, s.cycle) {
		slog.Debug("decision state changed", "from", s.state.LastValue, "to", dec.State, "rule", dec.Rule, "cycle", s.cycle)
	}
	if hits > 0 {
		slog.Debug("collision", "cycle", s.cycle, "obstacles", hits, "total", v.Collisions)
	}

	s.cycle++
	s.last = rec
	return rec
}

// apply turns a command into vehicle actuation. Positive steering turns
// right, which is a negative heading change.
func (s *Session) apply(cmd decision.Command, dt float64) {
	v := s.vehicle
	if cmd.Brake > 0 {
		v.Brake()
	} else {
		v.Accelerate(cmd.Throttle * s.config.Vehicle.Acceleration * dt)
	}
	if cmd.Steering != 0 {
		v.Turn(-cmd.Steering, dt)
	}
}

// Run ticks the session n times, handing every record to fn when it is set.
func (s *Session) Run(n int, fn func(TickRecord)) {
	for range n {
		rec := s.Tick()
		if fn != nil {
			fn(rec)
		}
	}
}

func (s *Session) Config() Config {
	return s.config
}

func (s *Session) Cycle() int {
	return s.cycle
}

func (s *Session) Last() TickRecord {
	return s.last
}

func (s *Session) Metrics() Metrics {
	return s.metrics
}

func (s *Session) Summary() Summary {
	return s.metrics.Summary(s.config.Layout.Name, s.config.Mode.Name, s.config.DT)
}

func (s *Session) Vehicle() vehicle.State {
	return s.vehicle.State
}

func (s *Session) Decision() decision.Snapshot {
	return s.engine.Last()
}

func (s *Session) Obstacles() []obstacles.Obstacle {
	return s.field.Obstacles()
}

func (s *Session) Rays() []sensors.Ray {
	return s.sensors.Rays(s.vehicle.Position, s.vehicle.Heading)
}
