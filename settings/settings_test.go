package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pfeifer.dev/avsim/decision"
	"pfeifer.dev/avsim/params"
	"pfeifer.dev/avsim/scenario"
)

func useTempParams(t *testing.T) {
	t.Helper()
	old := params.ParamsPath
	params.ParamsPath = filepath.Join(t.TempDir(), "params", "d")
	t.Cleanup(func() { params.ParamsPath = old })
	params.EnsureParamDirectories()
}

func TestDefaults(t *testing.T) {
	s := SimSettings{}
	s.Default()
	assert.Equal(t, "normal", s.Mode)
	assert.Equal(t, "random", s.Scenario)
	assert.False(t, s.Sensors.NoiseEnabled)
	assert.NoError(t, s.Sensors.Validate())
	assert.NoError(t, s.Vehicle.Validate())

	mode, err := s.ResolveMode()
	require.NoError(t, err)
	assert.Equal(t, 3.5, mode.MaxSpeed)
}

func TestLoadWithoutSavedSettings(t *testing.T) {
	useTempParams(t)
	s := SimSettings{}
	assert.False(t, s.Load())
	assert.Equal(t, "normal", s.Mode)
}

func TestSaveLoad(t *testing.T) {
	useTempParams(t)
	s := SimSettings{}
	s.Default()
	require.NoError(t, s.Apply("mode", "aggressive"))
	require.NoError(t, s.Apply("seed", "77"))
	require.NoError(t, s.SetProfile("sunday", decision.Mode{DangerThreshold: 4, WarningThreshold: 6, MaxSpeed: 1, TTCThreshold: 4, HysteresisCycles: 6}))
	require.NoError(t, s.Save())

	loaded := SimSettings{}
	require.True(t, loaded.Load())
	assert.Equal(t, "aggressive", loaded.Mode)
	assert.Equal(t, uint64(77), loaded.Seed)
	assert.Equal(t, "sunday", loaded.Modes["sunday"].Name)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	useTempParams(t)
	require.NoError(t, params.PutParam(params.ParamPath(params.SIM_SETTINGS), []byte(`{"mode":"cautious"}`)))
	s := SimSettings{}
	require.True(t, s.Load())
	assert.Equal(t, "cautious", s.Mode)
	assert.Equal(t, 5, s.Sensors.FilterWindow)
	assert.NotNil(t, s.Modes)
}

func TestApply(t *testing.T) {
	s := SimSettings{}
	s.Default()

	require.NoError(t, s.Apply("sensors.noise_enabled", "true"))
	assert.True(t, s.Sensors.NoiseEnabled)
	require.NoError(t, s.Apply("vehicle.friction", "0.05"))
	assert.Equal(t, 0.05, s.Vehicle.Friction)
	require.NoError(t, s.Apply("scenario", "corridor"))

	v, err := s.Get("scenario")
	require.NoError(t, err)
	assert.Equal(t, "corridor", v)

	assert.ErrorIs(t, s.Apply("scenario", "maze"), scenario.ErrUnknownScenario)
	assert.ErrorIs(t, s.Apply("mode", "reckless"), decision.ErrUnknownMode)
	assert.Error(t, s.Apply("sensors.filter_window", "0"))
	assert.Equal(t, 5, s.Sensors.FilterWindow)
	assert.Error(t, s.Apply("vehicle.friction", "1.5"))
	assert.Equal(t, 0.05, s.Vehicle.Friction)
	assert.Error(t, s.Apply("duration_s", "-1"))
	assert.Error(t, s.Apply("realtime", "maybe"))
	assert.Error(t, s.Apply("colour", "blue"))

	require.NoError(t, s.Apply("defaults", ""))
	assert.Equal(t, "random", s.Scenario)
}

func TestDurationCoversAtLeastOneTick(t *testing.T) {
	s := SimSettings{}
	s.Default()
	assert.Error(t, s.Apply("duration_s", "0.04"))
	assert.Error(t, s.Apply("duration_s", "0"))
	assert.Equal(t, 60.0, s.DurationS)

	require.NoError(t, s.Apply("duration_s", "0.1"))
	assert.Equal(t, TICK_SECONDS, s.DurationS)
}

func TestClearSaved(t *testing.T) {
	useTempParams(t)
	s := SimSettings{}
	s.Default()
	require.NoError(t, s.Apply("scenario", "dense"))
	require.NoError(t, s.Save())

	require.NoError(t, ClearSaved())
	loaded := SimSettings{}
	assert.False(t, loaded.Load())
	assert.Equal(t, "random", loaded.Scenario)

	// nothing saved is not an error
	require.NoError(t, ClearSaved())
}

func TestEveryKeyRoundTrips(t *testing.T) {
	s := SimSettings{}
	s.Default()
	for _, key := range Keys() {
		v, err := s.Get(key)
		require.NoError(t, err, key)
		assert.NoError(t, s.Apply(key, v), key)
	}
}

func TestProfiles(t *testing.T) {
	s := SimSettings{}
	s.Default()
	assert.Error(t, s.SetProfile("normal", decision.Mode{DangerThreshold: 1, WarningThreshold: 2, MaxSpeed: 1, TTCThreshold: 1, HysteresisCycles: 1}))
	assert.ErrorIs(t, s.SetProfile("bad", decision.Mode{DangerThreshold: 2, WarningThreshold: 1, MaxSpeed: 1, TTCThreshold: 1, HysteresisCycles: 1}), decision.ErrInvalidMode)

	require.NoError(t, s.SetProfile("gentle", decision.Mode{DangerThreshold: 2.5, WarningThreshold: 4, MaxSpeed: 1.5, TTCThreshold: 2.5, HysteresisCycles: 4}))
	require.NoError(t, s.Apply("mode", "gentle"))
	assert.Contains(t, s.ModeNames(), "gentle")

	s.RemoveProfile("gentle")
	assert.Equal(t, "normal", s.Mode)
}
