package params

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempParams(t *testing.T) {
	t.Helper()
	old := ParamsPath
	ParamsPath = filepath.Join(t.TempDir(), "params", "d")
	t.Cleanup(func() { ParamsPath = old })
	EnsureParamDirectories()
}

func TestPutGetParam(t *testing.T) {
	useTempParams(t)

	require.NoError(t, PutParam(ParamPath(SIM_SETTINGS), []byte(`{"mode":"normal"}`)))
	data, err := GetParam(ParamPath(SIM_SETTINGS))
	require.NoError(t, err)
	assert.Equal(t, `{"mode":"normal"}`, string(data))

	names, err := GetParams()
	require.NoError(t, err)
	assert.Equal(t, []string{SIM_SETTINGS}, names)
}

func TestPutParamOverwrites(t *testing.T) {
	useTempParams(t)

	require.NoError(t, PutParam(ParamPath(LAST_RUN_SUMMARY), []byte("a")))
	require.NoError(t, PutParam(ParamPath(LAST_RUN_SUMMARY), []byte("b")))
	data, err := GetParam(ParamPath(LAST_RUN_SUMMARY))
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestRemoveParam(t *testing.T) {
	useTempParams(t)

	path := ParamPath(SIM_SETTINGS)
	require.NoError(t, PutParam(path, []byte("x")))
	require.NoError(t, RemoveParam(path))

	exists, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	// removing a missing param is not an error
	require.NoError(t, RemoveParam(path))
}

func TestGetMissingParam(t *testing.T) {
	useTempParams(t)

	_, err := GetParam(ParamPath("Missing"))
	assert.Error(t, err)
}

func TestIsString(t *testing.T) {
	assert.True(t, IsString([]byte("hello\n")))
	assert.False(t, IsString([]byte{0, 1, 2}))
}
