package control

import (
	"pfeifer.dev/avsim/decision"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/sensors"
)

// TickRecord is the telemetry of one control cycle.
type TickRecord struct {
	Cycle      int              `json:"cycle"`
	Time       float64          `json:"time"` // simulated seconds at the end of the tick
	State      decision.State   `json:"state"`
	Position   m.Vector         `json:"position"`
	Heading    float64          `json:"heading"`
	Speed      float64          `json:"speed"`
	Sensors    sensors.Snapshot `json:"sensors"`
	Hazard     float64          `json:"hazard_score"`
	TTC        decision.TTC     `json:"ttc"`
	Command    decision.Command `json:"command"`
	Collision  bool             `json:"collision"`
	Collisions int              `json:"total_collisions"`
}
