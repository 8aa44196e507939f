package cli

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"pfeifer.dev/avsim/cereal"
	"pfeifer.dev/avsim/control"
	"pfeifer.dev/avsim/decision"
	vec "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
	"pfeifer.dev/avsim/params"
	"pfeifer.dev/avsim/settings"
)

func useTempParams(t *testing.T) {
	t.Helper()
	old := params.ParamsPath
	params.ParamsPath = filepath.Join(t.TempDir(), "params", "d")
	t.Cleanup(func() { params.ParamsPath = old })
	params.EnsureParamDirectories()
}

func runWithFlags(t *testing.T, args ...string) (settings.SimSettings, error) {
	t.Helper()
	var s settings.SimSettings
	cmd := &cli.Command{
		Name:  "avsim",
		Flags: simFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var err error
			s, err = loadSettings(cmd)
			return err
		},
	}
	err := cmd.Run(context.Background(), append([]string{"avsim"}, args...))
	return s, err
}

func TestLoadSettingsAppliesFlags(t *testing.T) {
	useTempParams(t)
	s, err := runWithFlags(t, "--mode", "cautious", "--seed", "7", "--noise", "--duration", "12.5", "--scenario", "dense")
	require.NoError(t, err)
	assert.Equal(t, "cautious", s.Mode)
	assert.Equal(t, "dense", s.Scenario)
	assert.Equal(t, uint64(7), s.Seed)
	assert.Equal(t, 12.5, s.DurationS)
	assert.True(t, s.Sensors.NoiseEnabled)
	assert.True(t, s.Sensors.FilterEnabled)
}

func TestLoadSettingsKeepsSavedValues(t *testing.T) {
	useTempParams(t)
	saved := settings.SimSettings{}
	saved.Default()
	require.NoError(t, saved.Apply("scenario", "corridor"))
	require.NoError(t, saved.Save())

	s, err := runWithFlags(t, "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, "corridor", s.Scenario)
	assert.Equal(t, uint64(3), s.Seed)
}

func TestLoadSettingsRejectsUnknownMode(t *testing.T) {
	useTempParams(t)
	_, err := runWithFlags(t, "--mode", "reckless")
	assert.ErrorIs(t, err, decision.ErrUnknownMode)
}

func TestHeadingGlyph(t *testing.T) {
	assert.Equal(t, '→', headingGlyph(0))
	assert.Equal(t, '↑', headingGlyph(math.Pi/2))
	assert.Equal(t, '←', headingGlyph(math.Pi))
	assert.Equal(t, '↓', headingGlyph(-math.Pi/2))
	assert.Equal(t, '→', headingGlyph(2*math.Pi-0.1))
	assert.Equal(t, '↗', headingGlyph(math.Pi/4))
}

func TestRenderArena(t *testing.T) {
	world := vec.NewBox(20, 20)
	obs := []obstacles.Obstacle{
		{Position: vec.Vector{X: 2, Y: 18}, Radius: 1.2, Kind: obstacles.STATIC},
		{Position: vec.Vector{X: 18, Y: 2}, Radius: 1.2, Kind: obstacles.BOUNCE, Velocity: vec.Vector{X: 1}},
	}
	rec := control.TickRecord{Position: vec.Vector{X: 10, Y: 10}, Heading: 0}

	lines := strings.Split(renderArena(world, obs, rec, 20, 10), "\n")
	require.Len(t, lines, 10)
	for _, line := range lines {
		assert.Len(t, []rune(line), 20)
	}
	assert.Equal(t, '#', []rune(lines[0])[1])
	assert.Equal(t, 'o', []rune(lines[9])[17])
	assert.Equal(t, '→', []rune(lines[5])[10])
}

func TestRenderArenaClampsVehicle(t *testing.T) {
	world := vec.NewBox(20, 20)
	rec := control.TickRecord{Position: vec.Vector{X: 20, Y: 0}, Heading: math.Pi}
	lines := strings.Split(renderArena(world, nil, rec, 20, 10), "\n")
	assert.Equal(t, '←', []rune(lines[9])[19])
}

func TestFormatTTC(t *testing.T) {
	assert.Equal(t, "∞", formatTTC(decision.TTC(math.Inf(1))))
	assert.Equal(t, "1.50s", formatTTC(decision.TTC(1.5)))
}

func TestFormatSummaries(t *testing.T) {
	first := 4.2
	out := formatSummaries([]control.Summary{
		{Scenario: "corridor", Mode: "cautious", TotalTime: 60, TotalCollisions: 0},
		{Scenario: "dense", Mode: "aggressive", TotalTime: 60, TotalCollisions: 3, TimeToFirstCollision: &first},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "scenario")
	assert.Contains(t, lines[1], "corridor")
	assert.Contains(t, lines[1], "cautious")
	assert.Contains(t, lines[1], "-")
	assert.Contains(t, lines[2], "aggressive")
	assert.Contains(t, lines[2], "4.2s")
}

func TestPresetModes(t *testing.T) {
	modes := presetModes()
	require.Len(t, modes, len(decision.PresetNames))
	for i, mode := range modes {
		assert.Equal(t, decision.PresetNames[i], mode.Name)
	}
}

func TestCyclesFor(t *testing.T) {
	s := settings.SimSettings{}
	s.Default()
	s.DurationS = 30
	assert.Equal(t, 300, cyclesFor(s))

	// zero cycles would mean an unlimited run
	s.DurationS = 0.04
	assert.Equal(t, 1, cyclesFor(s))
}

func TestListParams(t *testing.T) {
	useTempParams(t)
	s := settings.SimSettings{}
	s.Default()
	require.NoError(t, s.Save())
	require.NoError(t, params.PutParam(params.ParamPath("Blob"), []byte{0, 1, 2}))

	var buf bytes.Buffer
	require.NoError(t, listParams(&buf))
	out := buf.String()
	assert.Contains(t, out, "Blob: <3 bytes>")
	assert.Contains(t, out, params.SIM_SETTINGS+":\n{")
	assert.Contains(t, out, `"mode": "normal"`)
}

func TestWriteTelemetryFormats(t *testing.T) {
	config, err := control.NewConfig("normal", "corridor", 1)
	require.NoError(t, err)
	session, err := control.NewSession(config)
	require.NoError(t, err)
	telemetry := control.Record(session, 5)

	var packed bytes.Buffer
	require.NoError(t, writeTelemetry(&packed, "run.CAPNP", telemetry))
	records, err := cereal.ReadTicks(&packed)
	require.NoError(t, err)
	assert.Equal(t, telemetry.Records, records)

	var js bytes.Buffer
	require.NoError(t, writeTelemetry(&js, "run.json", telemetry))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(js.String()), "{"))
	assert.Contains(t, js.String(), `"telemetry"`)
}
