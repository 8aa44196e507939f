package decision

import (
	"encoding/json"
	m "math"

	"github.com/pkg/errors"
)

// Hazard maps a distance onto [0, 1] using the danger and warning thresholds.
func Hazard(d, danger, warning float64) float64 {
	if d <= danger {
		return 1.0
	}
	if d > warning {
		return 0.0
	}
	return (warning - d) / (warning - danger)
}

// MIN_TTC_SPEED is the speed below which time to collision is infinite.
const MIN_TTC_SPEED = 0.01

// TTC is a time to collision in seconds. Infinity means no collision is
// predicted and encodes as null.
type TTC float64

func (t TTC) Finite() bool {
	return !m.IsInf(float64(t), 0) && !m.IsNaN(float64(t))
}

func (t TTC) MarshalJSON() ([]byte, error) {
	if !t.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(t))
}

func (t *TTC) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = TTC(m.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "could not decode ttc")
	}
	*t = TTC(v)
	return nil
}

// TimeToCollision divides the front distance by forward speed. Stopped or
// reversing vehicles never collide ahead.
func TimeToCollision(front, speed float64) TTC {
	if speed < MIN_TTC_SPEED {
		return TTC(m.Inf(1))
	}
	return TTC(front / speed)
}
