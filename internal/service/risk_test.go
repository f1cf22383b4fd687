package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapin-io/attendance-api/internal/models"
)

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		name           string
		attended       int
		baselineTotal  int
		attendedRecent int
		recentTotal    int
		wantTier       models.RiskTier
		wantRate       float64
		wantAbsences   int
	}{
		{
			name:     "low rate is chronic",
			attended: 6, baselineTotal: 10, attendedRecent: 3, recentTotal: 3,
			wantTier: models.RiskChronic, wantRate: 60, wantAbsences: 0,
		},
		{
			name:     "chronic even with perfect recent streak",
			attended: 1, baselineTotal: 4, attendedRecent: 2, recentTotal: 2,
			wantTier: models.RiskChronic, wantRate: 25, wantAbsences: 0,
		},
		{
			name:     "good rate but two recent absences is at risk",
			attended: 9, baselineTotal: 10, attendedRecent: 1, recentTotal: 3,
			wantTier: models.RiskAtRisk, wantRate: 90, wantAbsences: 2,
		},
		{
			name:     "good rate and one recent absence is good standing",
			attended: 8, baselineTotal: 10, attendedRecent: 2, recentTotal: 3,
			wantTier: models.RiskGoodStanding, wantRate: 80, wantAbsences: 1,
		},
		{
			name:     "exactly seventy percent is not chronic",
			attended: 7, baselineTotal: 10, attendedRecent: 3, recentTotal: 3,
			wantTier: models.RiskGoodStanding, wantRate: 70, wantAbsences: 0,
		},
		{
			name:     "just under seventy percent is chronic",
			attended: 69, baselineTotal: 100, attendedRecent: 5, recentTotal: 5,
			wantTier: models.RiskChronic, wantRate: 69, wantAbsences: 0,
		},
		{
			name:     "zero baseline never divides and reads as chronic",
			attended: 0, baselineTotal: 0, attendedRecent: 0, recentTotal: 0,
			wantTier: models.RiskChronic, wantRate: 0, wantAbsences: 0,
		},
		{
			name:     "negative absence delta clamps to zero",
			attended: 10, baselineTotal: 10, attendedRecent: 4, recentTotal: 2,
			wantTier: models.RiskGoodStanding, wantRate: 100, wantAbsences: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tier, rate, absences := ClassifyRisk(tc.attended, tc.baselineTotal, tc.attendedRecent, tc.recentTotal)
			assert.Equal(t, tc.wantTier, tier)
			assert.InDelta(t, tc.wantRate, rate, 0.0001)
			assert.Equal(t, tc.wantAbsences, absences)
		})
	}
}
