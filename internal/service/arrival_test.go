package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapin-io/attendance-api/internal/models"
)

func TestBucketOffsetBoundaries(t *testing.T) {
	cases := []struct {
		offset int
		want   models.ArrivalBucket
	}{
		{-30, models.ArrivalEarly},
		{-6, models.ArrivalEarly},
		{-5, models.ArrivalEarly},
		{-4, models.ArrivalOnTime},
		{0, models.ArrivalOnTime},
		{10, models.ArrivalOnTime},
		{11, models.ArrivalLate},
		{45, models.ArrivalLate},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BucketOffset(tc.offset), "offset %d", tc.offset)
	}
}

func TestComputeArrivalStats(t *testing.T) {
	stats := ComputeArrivalStats([]int{-10, -2, 0, 12})

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.EarlyCount)
	assert.Equal(t, 2, stats.OnTimeCount)
	assert.Equal(t, 1, stats.LateCount)
	assert.Equal(t, 25, stats.EarlyPct)
	assert.Equal(t, 50, stats.OnTimePct)
	assert.Equal(t, 25, stats.LatePct)
	// median of {-10,-2,0,12} is (-2+0)/2 = -1
	assert.Equal(t, "1 min before start", stats.MedianLabel)
}

func TestComputeArrivalStatsEmpty(t *testing.T) {
	stats := ComputeArrivalStats(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.EarlyPct)
	assert.Equal(t, 0, stats.OnTimePct)
	assert.Equal(t, 0, stats.LatePct)
	assert.Equal(t, "no check-ins yet", stats.MedianLabel)
}

func TestComputeArrivalStatsDoesNotReorderInput(t *testing.T) {
	offsets := []int{12, -10, 0, -2}
	ComputeArrivalStats(offsets)
	assert.Equal(t, []int{12, -10, 0, -2}, offsets)
}

func TestMedianOffsetLabel(t *testing.T) {
	cases := []struct {
		name    string
		offsets []int
		want    string
	}{
		{"odd count after start", []int{-3, 5, 20}, "5 min after start"},
		{"odd count before start", []int{-12, -7, 1}, "7 min before start"},
		{"even count averages middle two", []int{0, 2, 4, 30}, "3 min after start"},
		{"fractional median truncates", []int{0, 3}, "1 min after start"},
		{"fractional negative truncates toward zero", []int{-3, 0}, "1 min before start"},
		{"zero median", []int{-5, 5}, "right at start"},
		{"single right at start", []int{0}, "right at start"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, medianOffsetLabel(tc.offsets))
		})
	}
}

func TestArrivalPercentagesRoundHalfUp(t *testing.T) {
	// 1/8 = 12.5% rounds to 13, 5/8 = 62.5% rounds to 63.
	stats := ComputeArrivalStats([]int{-20, 0, 1, 2, 3, 4, 15, 16})

	assert.Equal(t, 13, stats.EarlyPct)
	assert.Equal(t, 63, stats.OnTimePct)
	assert.Equal(t, 25, stats.LatePct)
	assert.Equal(t, stats.Total, stats.EarlyCount+stats.OnTimeCount+stats.LateCount)
}
