package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/tapin-io/attendance-api/internal/models"
)

// Bucket thresholds in minutes relative to the scheduled start. Lower bound
// inclusive: -5 is still early, 10 is still on time, 11 is late.
const (
	earlyCutoffMinutes  = -5
	onTimeCutoffMinutes = 10
)

// noCheckInsLabel is the median label when an event has no logs yet.
const noCheckInsLabel = "no check-ins yet"

// BucketOffset classifies a single arrival offset.
func BucketOffset(offset int) models.ArrivalBucket {
	switch {
	case offset <= earlyCutoffMinutes:
		return models.ArrivalEarly
	case offset <= onTimeCutoffMinutes:
		return models.ArrivalOnTime
	default:
		return models.ArrivalLate
	}
}

// ComputeArrivalStats buckets the offsets for one event and derives
// percentages and the median offset label. Empty input degrades to zero
// counts and the no-data label.
func ComputeArrivalStats(offsets []int) models.ArrivalStats {
	stats := models.ArrivalStats{MedianLabel: noCheckInsLabel}
	if len(offsets) == 0 {
		return stats
	}

	stats.Total = len(offsets)
	for _, offset := range offsets {
		switch BucketOffset(offset) {
		case models.ArrivalEarly:
			stats.EarlyCount++
		case models.ArrivalOnTime:
			stats.OnTimeCount++
		default:
			stats.LateCount++
		}
	}

	stats.EarlyPct = roundPct(stats.EarlyCount, stats.Total)
	stats.OnTimePct = roundPct(stats.OnTimeCount, stats.Total)
	stats.LatePct = roundPct(stats.LateCount, stats.Total)
	stats.MedianLabel = medianOffsetLabel(offsets)
	return stats
}

// roundPct rounds count*100/total half away from zero; zero total yields 0.
func roundPct(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) * 100 / float64(total)))
}

func medianOffsetLabel(offsets []int) string {
	sorted := make([]int, len(offsets))
	copy(sorted, offsets)
	sort.Ints(sorted)

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = float64(sorted[mid])
	} else {
		median = (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
	}

	minutes := int(median)
	switch {
	case minutes <= -1:
		return fmt.Sprintf("%d min before start", -minutes)
	case minutes >= 1:
		return fmt.Sprintf("%d min after start", minutes)
	default:
		return "right at start"
	}
}
