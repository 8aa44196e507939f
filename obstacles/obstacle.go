package obstacles

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	m "pfeifer.dev/avsim/math"
)

type Kind int

const (
	STATIC Kind = iota
	LINEAR      // patrols back and forth along its velocity within Span of Anchor
	BOUNCE      // reflects off arena walls
)

var kindNames = [...]string{"static", "linear", "bounce"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && k >= 0 {
		return kindNames[k]
	}
	return "unknown"
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return STATIC, errors.Errorf("unknown obstacle kind %q", s)
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "obstacle kind must be a string")
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type Obstacle struct {
	Position m.Vector `json:"position"`
	Radius   float64  `json:"radius"`
	Kind     Kind     `json:"kind"`
	Velocity m.Vector `json:"velocity,omitzero"`
	Anchor   m.Vector `json:"anchor,omitzero"`
	Span     float64  `json:"span,omitempty"`
}

func (o *Obstacle) Circle() m.Circle {
	return m.Circle{Center: o.Position, Radius: o.Radius}
}

func (o *Obstacle) Moving() bool {
	return o.Kind != STATIC && o.Velocity.LengthSq() > 0
}

func (o *Obstacle) Validate() error {
	if !(o.Radius > 0) {
		return errors.Errorf("obstacle at (%.2f, %.2f) has non-positive radius %v", o.Position.X, o.Position.Y, o.Radius)
	}
	if o.Kind == LINEAR && o.Span < 0 {
		return errors.Errorf("linear obstacle at (%.2f, %.2f) has negative span", o.Position.X, o.Position.Y)
	}
	return nil
}

// advance moves the obstacle one step inside world.
func (o *Obstacle) advance(dt float64, world m.Box) {
	if !o.Moving() {
		return
	}
	o.Position = o.Position.Add(o.Velocity.Scale(dt))

	if o.Kind == LINEAR && o.Span > 0 {
		offset := o.Position.Subtract(o.Anchor)
		if offset.Length() > o.Span && offset.Dot(o.Velocity) > 0 {
			o.Position = o.Anchor.Add(offset.Scale(o.Span / offset.Length()))
			o.Velocity = o.Velocity.Scale(-1)
		}
	}

	// both kinds stay in the arena; bounce reflects per axis, linear reverses
	hitX, hitY := false, false
	if o.Position.X-o.Radius < world.Min.X {
		o.Position.X = world.Min.X + o.Radius
		hitX = true
	} else if o.Position.X+o.Radius > world.Max.X {
		o.Position.X = world.Max.X - o.Radius
		hitX = true
	}
	if o.Position.Y-o.Radius < world.Min.Y {
		o.Position.Y = world.Min.Y + o.Radius
		hitY = true
	} else if o.Position.Y+o.Radius > world.Max.Y {
		o.Position.Y = world.Max.Y - o.Radius
		hitY = true
	}
	if !hitX && !hitY {
		return
	}
	switch o.Kind {
	case BOUNCE:
		if hitX {
			o.Velocity.X = -o.Velocity.X
		}
		if hitY {
			o.Velocity.Y = -o.Velocity.Y
		}
	case LINEAR:
		o.Velocity = o.Velocity.Scale(-1)
	}
}
