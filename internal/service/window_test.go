package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestCombineDateClock(t *testing.T) {
	loc := mustLoadLocation(t, "Asia/Manila")
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	combined, err := CombineDateClock(date, "14:30", loc)
	require.NoError(t, err)
	assert.Equal(t, 14, combined.Hour())
	assert.Equal(t, 30, combined.Minute())
	assert.Equal(t, loc, combined.Location())

	combined, err = CombineDateClock(date, "08:05:30", loc)
	require.NoError(t, err)
	assert.Equal(t, 30, combined.Second())

	_, err = CombineDateClock(date, "25:00", loc)
	assert.Error(t, err)
	_, err = CombineDateClock(date, "nope", loc)
	assert.Error(t, err)
}

func TestCombineDateClockSpringForwardGap(t *testing.T) {
	// 2026-03-08 02:30 does not exist in New York; clocks jump 02:00 -> 03:00.
	loc := mustLoadLocation(t, "America/New_York")
	date := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	_, err := CombineDateClock(date, "02:30", loc)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAmbiguousTimestamp.Code, appErr.Code)

	combined, err := CombineDateClock(date, "03:30", loc)
	require.NoError(t, err)
	assert.Equal(t, 3, combined.Hour())
}

func TestClassifyWindow(t *testing.T) {
	loc := mustLoadLocation(t, "Asia/Manila")
	event := models.Event{
		Date:      time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "11:00",
	}

	cases := []struct {
		name string
		now  time.Time
		want models.EventWindow
	}{
		{"before start", time.Date(2026, 5, 20, 8, 59, 59, 0, loc), models.WindowFuture},
		{"exactly at start", time.Date(2026, 5, 20, 9, 0, 0, 0, loc), models.WindowOngoing},
		{"mid event", time.Date(2026, 5, 20, 10, 15, 0, 0, loc), models.WindowOngoing},
		{"exactly at end", time.Date(2026, 5, 20, 11, 0, 0, 0, loc), models.WindowOngoing},
		{"after end", time.Date(2026, 5, 20, 11, 0, 1, 0, loc), models.WindowPast},
		{"previous day", time.Date(2026, 5, 19, 23, 0, 0, 0, loc), models.WindowFuture},
		{"next day", time.Date(2026, 5, 21, 9, 30, 0, 0, loc), models.WindowPast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window, err := ClassifyWindow(event, tc.now, loc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, window)
		})
	}
}

func TestArrivalOffsetMinutes(t *testing.T) {
	start := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		ts   time.Time
		want int
	}{
		{"ten minutes early", start.Add(-10 * time.Minute), -10},
		{"exactly on start", start, 0},
		{"twelve minutes late", start.Add(12 * time.Minute), 12},
		{"partial minute truncates toward zero", start.Add(90 * time.Second), 1},
		{"partial early minute truncates toward zero", start.Add(-90 * time.Second), -1},
		{"sub-minute late is zero", start.Add(59 * time.Second), 0},
		{"sub-minute early is zero", start.Add(-59 * time.Second), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ArrivalOffsetMinutes(tc.ts, start))
		})
	}
}

func TestClockAfter(t *testing.T) {
	after, err := clockAfter("10:00", "09:30")
	require.NoError(t, err)
	assert.True(t, after)

	after, err = clockAfter("09:30", "09:30")
	require.NoError(t, err)
	assert.False(t, after)

	after, err = clockAfter("09:00:01", "09:00")
	require.NoError(t, err)
	assert.True(t, after)

	_, err = clockAfter("bad", "09:00")
	assert.Error(t, err)
}
