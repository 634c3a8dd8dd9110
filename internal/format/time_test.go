package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testTime is a fixed time for consistent test results
var testTime = time.Date(2024, 1, 23, 15, 4, 5, 0, time.UTC)

func TestDateTime_Defaults(t *testing.T) {
	f := New("", "")

	require.Equal(t, "Jan 23 15:04", f.DateTime(testTime))
	require.Equal(t, "Jan 23 15:04:05", f.Full(testTime))
}

func TestDate_Presets(t *testing.T) {
	tests := []struct {
		format string
		date   string
		short  string
	}{
		{"dd/mm/yyyy", "23/01/2024", "23/01"},
		{"mm/dd/yyyy", "01/23/2024", "01/23"},
		{"yyyy-mm-dd", "2024-01-23", "01-23"},
		{"02 Jan 2006", "23 Jan 2024", "23 Jan"},
		{"2006", "2024", "Jan 23"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f := New(tt.format, "")
			require.Equal(t, tt.date, f.Date(testTime))
			require.Equal(t, tt.short, f.DateShort(testTime))
		})
	}
}

func TestTime_12h(t *testing.T) {
	f := New("yyyy-mm-dd", "12h")

	require.Equal(t, "3:04 PM", f.Time(testTime))
	require.Equal(t, "2024-01-23 3:04:05 PM", f.Full(testTime))
	require.Equal(t, "01-23 3:04 PM", f.DateTimeShort(testTime))
}

func TestTime_UnknownIs24h(t *testing.T) {
	require.Equal(t, "15:04", New("", "military").Time(testTime))
}

func TestAgo(t *testing.T) {
	f := New("", "")

	require.Equal(t, "just now", f.Ago(testTime, testTime.Add(30*time.Second)))
	require.Equal(t, "5m ago", f.Ago(testTime, testTime.Add(5*time.Minute)))
	require.Equal(t, "3h ago", f.Ago(testTime, testTime.Add(3*time.Hour+10*time.Minute)))
	require.Equal(t, "2d ago", f.Ago(testTime, testTime.Add(50*time.Hour)))
	require.Equal(t, "Jan 23", f.Ago(testTime, testTime.Add(30*24*time.Hour)))
}
