package decision

import (
	m "math"

	"github.com/pkg/errors"
	"pfeifer.dev/avsim/sensors"
)

const (
	// TTC_MIN_SPEED is the forward speed required before predictive braking
	// can fire.
	TTC_MIN_SPEED = 0.5
	// STOPPED_SPEED is the speed magnitude treated as standing still.
	STOPPED_SPEED = 0.1
	// BRAKE_RELEASE_FACTOR scales the danger threshold the front must exceed
	// to leave EMERGENCY_BRAKE.
	BRAKE_RELEASE_FACTOR = 1.5
)

type Distances [sensors.COUNT]float64

func (d Distances) Front() float64 {
	return m.Min(d[sensors.FL], d[sensors.FR])
}

func (d Distances) Back() float64 {
	return m.Min(d[sensors.BL], d[sensors.BR])
}

type Snapshot struct {
	State           State   `json:"state"`
	Desired         State   `json:"desired"`
	Rule            Rule    `json:"rule"`
	Candidate       State   `json:"candidate"`
	Hold            int     `json:"hold"`
	Hazard          float64 `json:"hazard"`
	MaxHazard       float64 `json:"max_hazard"`
	TTC             TTC     `json:"ttc"`
	Command         Command `json:"command"`
	Transitioned    bool    `json:"transitioned"`
	TTCIntervention bool    `json:"ttc_intervention"`
}

type Engine struct {
	mode      Mode
	committed State
	candidate State
	hold      int
	last      Snapshot
}

func NewEngine(mode Mode) (*Engine, error) {
	if err := mode.Validate(); err != nil {
		return nil, errors.Wrap(err, "could not create decision engine")
	}
	e := &Engine{mode: mode}
	e.Reset()
	return e, nil
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) State() State {
	return e.committed
}

func (e *Engine) Last() Snapshot {
	return e.last
}

// Reset returns the engine to CRUISE with an empty candidate.
func (e *Engine) Reset() {
	e.committed = CRUISE
	e.candidate = CRUISE
	e.hold = 0
	e.last = Snapshot{
		State:     CRUISE,
		Desired:   CRUISE,
		Candidate: CRUISE,
		TTC:       TTC(m.Inf(1)),
		Command:   CRUISE.Command(),
	}
}

// Hazards scores every sensor. The reported hazard averages the front pair.
func (e *Engine) Hazards(d Distances) (front float64, peak float64) {
	for i, dist := range d {
		h := Hazard(dist, e.mode.DangerThreshold, e.mode.WarningThreshold)
		if h > peak {
			peak = h
		}
		if sensors.Name(i) == sensors.FL || sensors.Name(i) == sensors.FR {
			front += h / 2
		}
	}
	return front, peak
}

// Desire evaluates the ordered transition rules against the committed state.
// The first rule that matches wins.
func Desire(current State, d Distances, speed float64, mode Mode) (State, Rule) {
	danger := mode.DangerThreshold
	front := d.Front()
	fl := d[sensors.FL]
	fr := d[sensors.FR]

	ttc := TimeToCollision(front, speed)
	switch {
	case speed > TTC_MIN_SPEED && ttc.Finite() && float64(ttc) < mode.TTCThreshold:
		return EMERGENCY_BRAKE, RULE_TTC
	// a stopped vehicle that is still boxed in backs out instead of braking again
	case current == EMERGENCY_BRAKE && m.Abs(speed) < STOPPED_SPEED && front <= danger:
		return REVERSING, RULE_START_REVERSE
	case fl <= danger && fr <= danger:
		return EMERGENCY_BRAKE, RULE_FRONT_BLOCKED
	case fl <= danger:
		return AVOID_RIGHT, RULE_LEFT_BLOCKED
	case fr <= danger:
		return AVOID_LEFT, RULE_RIGHT_BLOCKED
	case current == REVERSING && d.Back() <= danger:
		return EMERGENCY_BRAKE, RULE_BACK_BLOCKED
	case current == REVERSING:
		return CRUISE, RULE_BACK_CLEAR
	case current == EMERGENCY_BRAKE && front > danger*BRAKE_RELEASE_FACTOR:
		return CRUISE, RULE_BRAKE_CLEAR
	case (current == AVOID_LEFT || current == AVOID_RIGHT) && front > mode.WarningThreshold:
		return CRUISE, RULE_AVOID_CLEAR
	}
	return current, RULE_HOLD
}

// Step runs one decision tick: desire, debounce, then emit the command of the
// committed state.
func (e *Engine) Step(d Distances, speed float64) Snapshot {
	desired, rule := Desire(e.committed, d, speed, e.mode)

	if desired == e.candidate {
		e.hold++
	} else {
		e.candidate = desired
		e.hold = 1
	}

	transitioned := false
	intervention := false
	if e.hold >= e.mode.HysteresisCycles && e.candidate != e.committed {
		e.committed = e.candidate
		transitioned = true
		intervention = e.committed == EMERGENCY_BRAKE && rule == RULE_TTC
	}

	hazard, maxHazard := e.Hazards(d)
	e.last = Snapshot{
		State:           e.committed,
		Desired:         desired,
		Rule:            rule,
		Candidate:       e.candidate,
		Hold:            e.hold,
		Hazard:          hazard,
		MaxHazard:       maxHazard,
		TTC:             TimeToCollision(d.Front(), speed),
		Command:         e.committed.Command(),
		Transitioned:    transitioned,
		TTCIntervention: intervention,
	}
	return e.last
}
