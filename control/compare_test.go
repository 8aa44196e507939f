package control

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pfeifer.dev/avsim/decision"
	"pfeifer.dev/avsim/scenario"
)

func presets(t *testing.T) []decision.Mode {
	t.Helper()
	modes := []decision.Mode{}
	for _, name := range decision.PresetNames {
		mode, err := decision.Preset(name)
		require.NoError(t, err)
		modes = append(modes, mode)
	}
	return modes
}

func TestCompareMatchesSequentialRuns(t *testing.T) {
	base := newConfig(t, "normal", "dense")
	modes := presets(t)

	results, err := Compare(context.Background(), base, modes, 150)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, mode := range modes {
		config := base
		config.Mode = mode
		s := newSession(t, config)
		s.Run(150, nil)
		assert.Equal(t, s.Summary(), results[i])
		assert.Equal(t, mode.Name, results[i].Mode)
	}
}

func TestCompareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compare(ctx, newConfig(t, "normal", "dense"), presets(t), 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatrix(t *testing.T) {
	build := func(mode decision.Mode, name string) (Config, error) {
		config, err := NewConfig("normal", name, 5)
		config.Mode = mode
		return config, err
	}
	scenarios := []string{"corridor", "intersection"}
	results, err := Matrix(context.Background(), build, presets(t), scenarios, 30)
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.Equal(t, "corridor", results[0].Scenario)
	assert.Equal(t, "cautious", results[0].Mode)
	assert.Equal(t, "intersection", results[5].Scenario)
	assert.Equal(t, "aggressive", results[5].Mode)

	_, err = Matrix(context.Background(), build, presets(t), []string{"maze"}, 30)
	assert.ErrorIs(t, err, scenario.ErrUnknownScenario)
}

func TestWriteTelemetry(t *testing.T) {
	telemetry := Record(newSession(t, newConfig(t, "normal", "corridor")), 10)
	var buf bytes.Buffer
	require.NoError(t, WriteTelemetry(&buf, telemetry))

	var decoded struct {
		Mode      string           `json:"mode"`
		Metrics   map[string]any   `json:"metrics"`
		Telemetry []map[string]any `json:"telemetry"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "normal", decoded.Mode)
	require.Len(t, decoded.Telemetry, 10)
	assert.Nil(t, decoded.Telemetry[0]["ttc"])
	assert.Equal(t, "CRUISE", decoded.Telemetry[0]["state"])
	assert.Contains(t, decoded.Telemetry[0]["sensors"], "FL")
	assert.Equal(t, 10.0, decoded.Metrics["total_cycles"])
	assert.Nil(t, decoded.Metrics["time_to_first_collision"])
}

func TestWriteSummariesCSV(t *testing.T) {
	first := 1.25
	summaries := []Summary{
		{Scenario: "corridor", Mode: "cautious", TotalCycles: 600, TotalTime: 60},
		{Scenario: "dense", Mode: "aggressive", TotalCycles: 600, TotalCollisions: 2, TimeToFirstCollision: &first},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSummariesCSV(&buf, summaries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, SummaryHeader, rows[0])
	assert.Equal(t, "60.000", rows[1][2])
	assert.Equal(t, "", rows[1][11])
	assert.Equal(t, "1.250", rows[2][11])
}
