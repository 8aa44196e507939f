package control

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Telemetry is a full run export: the summary followed by every tick.
type Telemetry struct {
	Mode     string       `json:"mode"`
	Scenario string       `json:"scenario"`
	Seed     uint64       `json:"seed"`
	Summary  Summary      `json:"metrics"`
	Records  []TickRecord `json:"telemetry"`
}

// Record runs n ticks and captures them for export.
func Record(s *Session, n int) Telemetry {
	t := Telemetry{
		Mode:     s.Config().Mode.Name,
		Scenario: s.Config().Layout.Name,
		Seed:     s.Config().Seed,
		Records:  make([]TickRecord, 0, n),
	}
	s.Run(n, func(rec TickRecord) {
		t.Records = append(t.Records, rec)
	})
	t.Summary = s.Summary()
	return t
}

func WriteTelemetry(w io.Writer, t Telemetry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(t); err != nil {
		return errors.Wrap(err, "could not write telemetry")
	}
	return nil
}

func WriteSummariesCSV(w io.Writer, summaries []Summary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(SummaryHeader); err != nil {
		return errors.Wrap(err, "could not write csv header")
	}
	for _, s := range summaries {
		if err := writer.Write(s.Row()); err != nil {
			return errors.Wrap(err, "could not write csv row")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush csv")
}
