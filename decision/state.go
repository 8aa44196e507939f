package decision

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type State uint8

const (
	CRUISE State = iota
	AVOID_LEFT
	AVOID_RIGHT
	EMERGENCY_BRAKE
	REVERSING
	STATE_COUNT
)

var stateNames = [STATE_COUNT]string{
	"CRUISE",
	"AVOID_LEFT",
	"AVOID_RIGHT",
	"EMERGENCY_BRAKE",
	"REVERSING",
}

func (s State) String() string {
	if s >= STATE_COUNT {
		return "UNKNOWN"
	}
	return stateNames[s]
}

func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return CRUISE, errors.Errorf("unknown decision state %q", name)
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return errors.Wrap(err, "could not decode decision state")
	}
	parsed, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Command is the fixed control output for a committed state. Positive
// steering turns right.
type Command struct {
	Throttle float64 `json:"throttle"`
	Steering float64 `json:"steering"`
	Brake    float64 `json:"brake"`
}

var commands = [STATE_COUNT]Command{
	CRUISE:          {Throttle: 1.0},
	AVOID_LEFT:      {Throttle: 0.6, Steering: -0.5},
	AVOID_RIGHT:     {Throttle: 0.6, Steering: 0.5},
	EMERGENCY_BRAKE: {Brake: 1.0},
	REVERSING:       {Throttle: -0.3},
}

func (s State) Command() Command {
	if s >= STATE_COUNT {
		return commands[EMERGENCY_BRAKE]
	}
	return commands[s]
}

// Rule identifies which desired-state rule fired on a tick.
type Rule uint8

const (
	RULE_NONE Rule = iota
	RULE_TTC
	RULE_FRONT_BLOCKED
	RULE_LEFT_BLOCKED
	RULE_RIGHT_BLOCKED
	RULE_START_REVERSE
	RULE_BACK_BLOCKED
	RULE_BACK_CLEAR
	RULE_BRAKE_CLEAR
	RULE_AVOID_CLEAR
	RULE_HOLD
)

var ruleNames = []string{
	"none",
	"ttc",
	"front_blocked",
	"left_blocked",
	"right_blocked",
	"start_reverse",
	"back_blocked",
	"back_clear",
	"brake_clear",
	"avoid_clear",
	"hold",
}

func (r Rule) String() string {
	if int(r) >= len(ruleNames) {
		return "unknown"
	}
	return ruleNames[r]
}

func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}
