package service

import "github.com/tapin-io/attendance-api/internal/models"

// Risk policy thresholds. Evaluation order matters: low overall attendance
// dominates recent behaviour, so a chronic student stays chronic even with a
// perfect recent streak.
const (
	chronicRateThreshold   = 70.0
	recentAbsenceThreshold = 2
	recentWindowDays       = 10
)

// ClassifyRisk assigns a tier from attendance over the baseline event set
// and the recent window. Returns the tier, the attendance rate in [0,100]
// and the recent absence count. Zero baselines never divide.
func ClassifyRisk(attended, baselineTotal, attendedRecent, recentTotal int) (models.RiskTier, float64, int) {
	var rate float64
	if baselineTotal > 0 {
		rate = float64(attended) * 100 / float64(baselineTotal)
	}
	recentAbsences := recentTotal - attendedRecent
	if recentAbsences < 0 {
		recentAbsences = 0
	}

	switch {
	case rate < chronicRateThreshold:
		return models.RiskChronic, rate, recentAbsences
	case recentAbsences >= recentAbsenceThreshold:
		return models.RiskAtRisk, rate, recentAbsences
	default:
		return models.RiskGoodStanding, rate, recentAbsences
	}
}
