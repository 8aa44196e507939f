package cereal

import (
	"bytes"
	"testing"

	"capnproto.org/go/capnp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pfeifer.dev/avsim/control"
)

func sessionRecords(t *testing.T, n int) []control.TickRecord {
	t.Helper()
	config, err := control.NewConfig("normal", "traffic", 4)
	require.NoError(t, err)
	session, err := control.NewSession(config)
	require.NoError(t, err)
	return control.Record(session, n).Records
}

func TestTickCodecPreservesRecords(t *testing.T) {
	for _, rec := range sessionRecords(t, 80) {
		b, err := Encode(rec)
		require.NoError(t, err)
		decoded, err := Decode(b)
		require.NoError(t, err)
		assert.Equal(t, rec, decoded)

		packed, err := EncodePacked(rec)
		require.NoError(t, err)
		decoded, err = DecodePacked(packed)
		require.NoError(t, err)
		assert.Equal(t, rec, decoded)
	}
}

func TestInfiniteTTCSurvives(t *testing.T) {
	rec := sessionRecords(t, 1)[0]
	require.False(t, rec.TTC.Finite())
	b, err := Encode(rec)
	require.NoError(t, err)
	decoded, err := Decode(b)
	require.NoError(t, err)
	assert.False(t, decoded.TTC.Finite())
}

func TestDecodeRejectsBadState(t *testing.T) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	require.NoError(t, err)
	tick, err := NewRootTick(seg)
	require.NoError(t, err)
	tick.SetState(42)
	b, err := msg.Marshal()
	require.NoError(t, err)

	_, err = Decode(b)
	assert.Error(t, err)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestMonoTimeStamped(t *testing.T) {
	msg, err := NewTickMessage(control.TickRecord{})
	require.NoError(t, err)
	tick, err := ReadRootTick(msg)
	require.NoError(t, err)
	assert.LessOrEqual(t, tick.LogMonoTime(), GetTime())
}

func TestTickStreamRoundTrip(t *testing.T) {
	records := sessionRecords(t, 40)
	var buf bytes.Buffer
	require.NoError(t, WriteTicks(&buf, records))

	decoded, err := ReadTicks(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestReadTicksEmptyStream(t *testing.T) {
	decoded, err := ReadTicks(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestReadTicksTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTicks(&buf, sessionRecords(t, 3)))
	data := buf.Bytes()

	decoded, err := ReadTicks(bytes.NewReader(data[:len(data)-4]))
	assert.Error(t, err)
	assert.Len(t, decoded, 2)
}
