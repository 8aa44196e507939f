package control

import (
	"strconv"

	"pfeifer.dev/avsim/decision"
)

// Metrics accumulate over a session until it is reset.
type Metrics struct {
	Collisions         int      `json:"total_collisions"`
	CollisionEvents    int      `json:"collision_events"` // ticks where contact begins
	Transitions        int      `json:"state_transitions"`
	EmergencyBrakes    int      `json:"emergency_brakes"`
	TTCInterventions   int      `json:"ttc_interventions"`
	Cycles             int      `json:"cycles"`
	HazardSum          float64  `json:"hazard_sum"`
	SpeedSum           float64  `json:"speed_sum"`
	Distance           float64  `json:"distance"`
	FirstCollisionTime *float64 `json:"first_collision_time"`

	inCollision bool
}

func (mt *Metrics) record(rec TickRecord, dec decision.Snapshot, hits int, travelled float64) {
	mt.Cycles++
	mt.Collisions += hits
	if hits > 0 && !mt.inCollision {
		mt.CollisionEvents++
	}
	mt.inCollision = hits > 0
	if hits > 0 && mt.FirstCollisionTime == nil {
		t := rec.Time
		mt.FirstCollisionTime = &t
	}
	if dec.Transitioned {
		mt.Transitions++
		if dec.State == decision.EMERGENCY_BRAKE {
			mt.EmergencyBrakes++
		}
	}
	if dec.TTCIntervention {
		mt.TTCInterventions++
	}
	mt.HazardSum += rec.Hazard
	if rec.Speed < 0 {
		mt.SpeedSum -= rec.Speed
	} else {
		mt.SpeedSum += rec.Speed
	}
	mt.Distance += travelled
}

// Summary is the end of run report for one mode and scenario.
type Summary struct {
	Scenario             string   `json:"scenario"`
	Mode                 string   `json:"mode"`
	TotalTime            float64  `json:"total_time"`
	TotalCycles          int      `json:"total_cycles"`
	TotalCollisions      int      `json:"total_collisions"`
	TotalDistance        float64  `json:"total_distance"`
	AvgSpeed             float64  `json:"avg_speed"`
	AvgHazard            float64  `json:"avg_hazard_score"`
	StateTransitions     int      `json:"state_transitions"`
	EmergencyBrakes      int      `json:"emergency_brakes"`
	TTCInterventions     int      `json:"ttc_interventions"`
	TimeToFirstCollision *float64 `json:"time_to_first_collision"`
	CollisionEvents      int      `json:"collision_events"`
}

func (mt Metrics) Summary(scenarioName, modeName string, dt float64) Summary {
	s := Summary{
		Scenario:             scenarioName,
		Mode:                 modeName,
		TotalTime:            float64(mt.Cycles) * dt,
		TotalCycles:          mt.Cycles,
		TotalCollisions:      mt.Collisions,
		TotalDistance:        mt.Distance,
		StateTransitions:     mt.Transitions,
		EmergencyBrakes:      mt.EmergencyBrakes,
		TTCInterventions:     mt.TTCInterventions,
		TimeToFirstCollision: mt.FirstCollisionTime,
		CollisionEvents:      mt.CollisionEvents,
	}
	if mt.Cycles > 0 {
		s.AvgSpeed = mt.SpeedSum / float64(mt.Cycles)
		s.AvgHazard = mt.HazardSum / float64(mt.Cycles)
	}
	return s
}

var SummaryHeader = []string{
	"scenario",
	"mode",
	"total_time",
	"total_cycles",
	"total_collisions",
	"total_distance",
	"avg_speed",
	"avg_hazard_score",
	"state_transitions",
	"emergency_brakes",
	"ttc_interventions",
	"time_to_first_collision",
	"collision_events",
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// Row renders the summary in SummaryHeader order.
func (s Summary) Row() []string {
	firstCollision := ""
	if s.TimeToFirstCollision != nil {
		firstCollision = formatFloat(*s.TimeToFirstCollision)
	}
	return []string{
		s.Scenario,
		s.Mode,
		formatFloat(s.TotalTime),
		strconv.Itoa(s.TotalCycles),
		strconv.Itoa(s.TotalCollisions),
		formatFloat(s.TotalDistance),
		formatFloat(s.AvgSpeed),
		formatFloat(s.AvgHazard),
		strconv.Itoa(s.StateTransitions),
		strconv.Itoa(s.EmergencyBrakes),
		strconv.Itoa(s.TTCInterventions),
		firstCollision,
		strconv.Itoa(s.CollisionEvents),
	}
}
