package cereal

import (
	m "math"

	"capnproto.org/go/capnp/v3"
)

// Tick is a flat Cap'n Proto struct carrying one tick record. It has no
// pointer section so every field is a fixed data offset.
type Tick capnp.Struct

const (
	tickCycle       = 0
	tickTime        = 8
	tickPosX        = 16
	tickPosY        = 24
	tickHeading     = 32
	tickSpeed       = 40
	tickRaw         = 48 // four float64
	tickFiltered    = 80 // four float64
	tickHazard      = 112
	tickTTC         = 120
	tickThrottle    = 128
	tickSteering    = 136
	tickBrake       = 144
	tickCollisions  = 152
	tickState       = 156
	tickCollision   = 158 * 8 // bit offset
	tickLogMonoTime = 160

	TickDataSize = 168
)

var tickSize = capnp.ObjectSize{DataSize: TickDataSize, PointerCount: 0}

func NewRootTick(s *capnp.Segment) (Tick, error) {
	st, err := capnp.NewRootStruct(s, tickSize)
	return Tick(st), err
}

func ReadRootTick(msg *capnp.Message) (Tick, error) {
	root, err := msg.Root()
	return Tick(root.Struct()), err
}

func (s Tick) float(off capnp.DataOffset) float64 {
	return m.Float64frombits(capnp.Struct(s).Uint64(off))
}

func (s Tick) setFloat(off capnp.DataOffset, v float64) {
	capnp.Struct(s).SetUint64(off, m.Float64bits(v))
}

func (s Tick) LogMonoTime() uint64 {
	return capnp.Struct(s).Uint64(tickLogMonoTime)
}

func (s Tick) SetLogMonoTime(v uint64) {
	capnp.Struct(s).SetUint64(tickLogMonoTime, v)
}

func (s Tick) Cycle() int64 {
	return int64(capnp.Struct(s).Uint64(tickCycle))
}

func (s Tick) SetCycle(v int64) {
	capnp.Struct(s).SetUint64(tickCycle, uint64(v))
}

func (s Tick) Time() float64 {
	return s.float(tickTime)
}

func (s Tick) SetTime(v float64) {
	s.setFloat(tickTime, v)
}

func (s Tick) PosX() float64 {
	return s.float(tickPosX)
}

func (s Tick) SetPosX(v float64) {
	s.setFloat(tickPosX, v)
}

func (s Tick) PosY() float64 {
	return s.float(tickPosY)
}

func (s Tick) SetPosY(v float64) {
	s.setFloat(tickPosY, v)
}

func (s Tick) Heading() float64 {
	return s.float(tickHeading)
}

func (s Tick) SetHeading(v float64) {
	s.setFloat(tickHeading, v)
}

func (s Tick) Speed() float64 {
	return s.float(tickSpeed)
}

func (s Tick) SetSpeed(v float64) {
	s.setFloat(tickSpeed, v)
}

func (s Tick) Raw(i int) float64 {
	return s.float(capnp.DataOffset(tickRaw + 8*i))
}

func (s Tick) SetRaw(i int, v float64) {
	s.setFloat(capnp.DataOffset(tickRaw+8*i), v)
}

func (s Tick) Filtered(i int) float64 {
	return s.float(capnp.DataOffset(tickFiltered + 8*i))
}

func (s Tick) SetFiltered(i int, v float64) {
	s.setFloat(capnp.DataOffset(tickFiltered+8*i), v)
}

func (s Tick) Hazard() float64 {
	return s.float(tickHazard)
}

func (s Tick) SetHazard(v float64) {
	s.setFloat(tickHazard, v)
}

func (s Tick) TTC() float64 {
	return s.float(tickTTC)
}

func (s Tick) SetTTC(v float64) {
	s.setFloat(tickTTC, v)
}

func (s Tick) Throttle() float64 {
	return s.float(tickThrottle)
}

func (s Tick) SetThrottle(v float64) {
	s.setFloat(tickThrottle, v)
}

func (s Tick) Steering() float64 {
	return s.float(tickSteering)
}

func (s Tick) SetSteering(v float64) {
	s.setFloat(tickSteering, v)
}

func (s Tick) Brake() float64 {
	return s.float(tickBrake)
}

func (s Tick) SetBrake(v float64) {
	s.setFloat(tickBrake, v)
}

func (s Tick) Collisions() uint32 {
	return capnp.Struct(s).Uint32(tickCollisions)
}

func (s Tick) SetCollisions(v uint32) {
	capnp.Struct(s).SetUint32(tickCollisions, v)
}

func (s Tick) State() uint16 {
	return capnp.Struct(s).Uint16(tickState)
}

func (s Tick) SetState(v uint16) {
	capnp.Struct(s).SetUint16(tickState, v)
}

func (s Tick) Collision() bool {
	return capnp.Struct(s).Bit(tickCollision)
}

func (s Tick) SetCollision(v bool) {
	capnp.Struct(s).SetBit(tickCollision, v)
}
