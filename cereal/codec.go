package cereal

import (
	m "math"
	"time"

	"capnproto.org/go/capnp/v3"
	"github.com/pkg/errors"
	"pfeifer.dev/avsim/control"
	"pfeifer.dev/avsim/decision"
	vec "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/sensors"
)

var start = time.Now()

// GetTime is the monotonic nanosecond clock stamped on outgoing messages.
func GetTime() uint64 {
	return uint64(time.Since(start).Nanoseconds())
}

// SetRecord copies a tick record into the capnp struct.
func (s Tick) SetRecord(rec control.TickRecord) {
	s.SetCycle(int64(rec.Cycle))
	s.SetTime(rec.Time)
	s.SetPosX(rec.Position.X)
	s.SetPosY(rec.Position.Y)
	s.SetHeading(rec.Heading)
	s.SetSpeed(rec.Speed)
	for i, r := range rec.Sensors {
		s.SetRaw(i, r.Raw)
		s.SetFiltered(i, r.Filtered)
	}
	s.SetHazard(rec.Hazard)
	s.SetTTC(float64(rec.TTC))
	s.SetThrottle(rec.Command.Throttle)
	s.SetSteering(rec.Command.Steering)
	s.SetBrake(rec.Command.Brake)
	s.SetCollisions(uint32(rec.Collisions))
	s.SetState(uint16(rec.State))
	s.SetCollision(rec.Collision)
}

// Record rebuilds the tick record. Sensor mounting angles are fixed and are
// restored rather than transmitted.
func (s Tick) Record() (control.TickRecord, error) {
	state := decision.State(s.State())
	if state >= decision.STATE_COUNT {
		return control.TickRecord{}, errors.Errorf("invalid decision state %d", s.State())
	}
	rec := control.TickRecord{
		Cycle:    int(s.Cycle()),
		Time:     s.Time(),
		State:    state,
		Position: vec.Vector{X: s.PosX(), Y: s.PosY()},
		Heading:  s.Heading(),
		Speed:    s.Speed(),
		Hazard:   s.Hazard(),
		TTC:      decision.TTC(s.TTC()),
		Command: decision.Command{
			Throttle: s.Throttle(),
			Steering: s.Steering(),
			Brake:    s.Brake(),
		},
		Collision:  s.Collision(),
		Collisions: int(s.Collisions()),
	}
	for _, n := range sensors.All() {
		rec.Sensors[n] = sensors.Reading{
			Raw:      s.Raw(int(n)),
			Filtered: s.Filtered(int(n)),
			Angle:    n.Offset(),
		}
	}
	return rec, nil
}

// NewTickMessage builds a single segment message holding rec.
func NewTickMessage(rec control.TickRecord) (*capnp.Message, error) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return nil, errors.Wrap(err, "could not create message")
	}
	tick, err := NewRootTick(seg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create tick")
	}
	tick.SetLogMonoTime(GetTime())
	tick.SetRecord(rec)
	return msg, nil
}

func Encode(rec control.TickRecord) ([]byte, error) {
	msg, err := NewTickMessage(rec)
	if err != nil {
		return nil, err
	}
	b, err := msg.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal tick")
	}
	return b, nil
}

// EncodePacked is Encode with capnp packing.
func EncodePacked(rec control.TickRecord) ([]byte, error) {
	msg, err := NewTickMessage(rec)
	if err != nil {
		return nil, err
	}
	b, err := msg.MarshalPacked()
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal tick")
	}
	return b, nil
}

func decodeMessage(msg *capnp.Message) (control.TickRecord, error) {
	// allow us to read as much as we want
	msg.ResetReadLimit(m.MaxUint64)

	tick, err := ReadRootTick(msg)
	if err != nil {
		return control.TickRecord{}, errors.Wrap(err, "could not read tick")
	}
	return tick.Record()
}

func Decode(data []byte) (control.TickRecord, error) {
	msg, err := capnp.Unmarshal(data)
	if err != nil {
		return control.TickRecord{}, errors.Wrap(err, "could not unmarshal tick")
	}
	return decodeMessage(msg)
}

func DecodePacked(data []byte) (control.TickRecord, error) {
	msg, err := capnp.UnmarshalPacked(data)
	if err != nil {
		return control.TickRecord{}, errors.Wrap(err, "could not unmarshal tick")
	}
	return decodeMessage(msg)
}
