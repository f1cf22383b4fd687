package models

// RiskTier is a student's attendance risk classification. It is a pure
// function of the current events/attendance snapshot and is never persisted.
type RiskTier string

const (
	RiskChronic      RiskTier = "chronic"
	RiskAtRisk       RiskTier = "at_risk"
	RiskGoodStanding RiskTier = "good_standing"
)

// ArrivalBucket labels a check-in offset relative to the scheduled start.
type ArrivalBucket string

const (
	ArrivalEarly  ArrivalBucket = "early"
	ArrivalOnTime ArrivalBucket = "on_time"
	ArrivalLate   ArrivalBucket = "late"
)

// ArrivalStats aggregates arrival timing for a single event.
type ArrivalStats struct {
	Total       int    `json:"total"`
	EarlyCount  int    `json:"early_count"`
	OnTimeCount int    `json:"on_time_count"`
	LateCount   int    `json:"late_count"`
	EarlyPct    int    `json:"early_pct"`
	OnTimePct   int    `json:"on_time_pct"`
	LatePct     int    `json:"late_pct"`
	MedianLabel string `json:"median_label"`
}

// RiskBreakdown aggregates per-tier counts across an organization's
// students. Percentages are rounded independently and need not sum to 100.
type RiskBreakdown struct {
	TotalStudents int `json:"total_students"`
	ChronicCount  int `json:"chronic_count"`
	AtRiskCount   int `json:"at_risk_count"`
	GoodCount     int `json:"good_count"`
	ChronicPct    int `json:"chronic_pct"`
	AtRiskPct     int `json:"at_risk_pct"`
	GoodPct       int `json:"good_pct"`
}

// StudentRisk annotates a student with the derived classification inputs.
type StudentRisk struct {
	Student
	Tier           RiskTier `json:"risk_tier"`
	AttendanceRate float64  `json:"attendance_rate"`
	AttendedCount  int      `json:"attended_count"`
	RecentAbsences int      `json:"recent_absences"`
}

// ResolutionTier tags which tier of the two-step fallback satisfied a
// student or event set lookup, so sparse organizations are distinguishable
// from scoped data in both payloads and tests.
type ResolutionTier string

const (
	ResolutionScoped         ResolutionTier = "scoped"
	ResolutionGlobalFallback ResolutionTier = "global_fallback"
)
