package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberAcceptsDeviceShapes(t *testing.T) {
	cases := map[string]float64{
		`12.5`:    12.5,
		`"220.1"`: 220.1,
		`" 3 "`:   3,
		`""`:      0,
		`null`:    0,
		`true`:    1,
		`false`:   0,
	}
	for raw, want := range cases {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(raw), &n), raw)
		assert.Equal(t, want, float64(n), raw)
	}

	var n Number
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &n))
}

func TestNumberRejectsNonFinite(t *testing.T) {
	for _, raw := range []string{`"NaN"`, `"nan"`, `"Infinity"`, `"-Inf"`, `"+inf"`, `"1e400"`, `1e400`} {
		var n Number
		assert.Error(t, json.Unmarshal([]byte(raw), &n), raw)
	}

	var in TrackerInput
	assert.Error(t, json.Unmarshal([]byte(`{"servoX":"NaN","ldr1":"Infinity"}`), &in))
}

func TestReadingPairInputKeepsMissingHalves(t *testing.T) {
	var in ReadingPairInput
	require.NoError(t, json.Unmarshal([]byte(`{"panel":{"voltage":"220","power":1100}}`), &in))

	pair := in.Pair()
	require.NotNil(t, pair.Panel)
	assert.Nil(t, pair.Beban)
	assert.Equal(t, 220.0, pair.Panel.Voltage)
	assert.Equal(t, 0.0, pair.Panel.Current)
	assert.Equal(t, 1100.0, pair.Panel.Power)
}

func TestTrackerInputDefaultsMissingFields(t *testing.T) {
	var in TrackerInput
	require.NoError(t, json.Unmarshal([]byte(`{"servoX":90,"ldr3":"512"}`), &in))

	assert.Equal(t, TrackerSample{ServoX: 90, LDR3: 512}, in.Sample())

	now := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, TrackerSample{Waktu: "13:04:05"}, DefaultTrackerSample(now))
}

func TestEmptySnapshotMarshalsToEmptyObject(t *testing.T) {
	raw, err := json.Marshal(DashboardSnapshot{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
	assert.True(t, DashboardSnapshot{}.Empty())
}
