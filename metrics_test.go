package fitexport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaceMinPerKm(t *testing.T) {
	tests := []struct {
		name     string
		speedMps float64
		want     float64
		ok       bool
	}{
		{name: "typical easy run", speedMps: 2.5, want: 60.0 / 9.0, ok: true},
		{name: "faster run", speedMps: 3.0, want: 60.0 / 10.8, ok: true},
		{name: "zero speed has no pace", speedMps: 0, ok: false},
		{name: "negative speed has no pace", speedMps: -1.2, ok: false},
		{name: "nan speed has no pace", speedMps: math.NaN(), ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pace, ok := PaceMinPerKm(tc.speedMps)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, pace, 1e-9)
			}
		})
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		minPerKm float64
		want     string
	}{
		{5.5, "5:30"},
		{60.0 / 9.0, "6:40"},
		{60.0 / 10.8, "5:33"},
		{5.9999, "6:00"}, // seconds round up and carry
		{4.0, "4:00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatPace(tc.minPerKm), "pace %v", tc.minPerKm)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "2:05", FormatClock(125))
	assert.Equal(t, "0:59", FormatClock(59.4))
	assert.Equal(t, "50:00", FormatClock(3000))
}

func TestFormatLongDuration(t *testing.T) {
	assert.Equal(t, "50 minutes 0 seconds", FormatLongDuration(3000))
	assert.Equal(t, "2 minutes 5 seconds", FormatLongDuration(125))
}

func TestBandForHeartRate(t *testing.T) {
	tests := []struct {
		avgBPM float64
		want   IntensityBand
	}{
		{119, IntensityLow},
		{120, IntensityModerate},
		{149, IntensityModerate},
		{150, IntensityHigh},
		{172, IntensityHigh},
		{0, IntensityLow},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, BandForHeartRate(tc.avgBPM), "avg_hr %v", tc.avgBPM)
	}
}

func TestSpeedDisplay(t *testing.T) {
	assert.Equal(t, "6:40/km", SpeedDisplay("running", 2.5))
	assert.Equal(t, "6:40/km", SpeedDisplay("Running", 2.5), "sport compare is case-insensitive")
	assert.Equal(t, "9.0 km/h", SpeedDisplay("cycling", 2.5))
	assert.Equal(t, "—", SpeedDisplay("running", 0))
	assert.Equal(t, "—", SpeedDisplay("cycling", 0))
}

func TestRunningCadenceMultiplier(t *testing.T) {
	assert.Equal(t, 2.0, RunningCadenceMultiplier("running"))
	assert.Equal(t, 1.0, RunningCadenceMultiplier("cycling"))
}
