package dto

import (
	"time"

	"github.com/tapin-io/attendance-api/internal/models"
)

// ActiveEventSummary describes the currently ongoing event, when any.
type ActiveEventSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CheckInEntry is one row of the live check-in feed.
type CheckInEntry struct {
	StudentNo   string    `json:"student_no"`
	StudentName string    `json:"student_name"`
	Timestamp   time.Time `json:"timestamp"`
}

// ArrivalSection reports arrival-timing statistics for the most recent
// event that has logs, tagged with which resolution tier supplied it.
type ArrivalSection struct {
	EventID    string                `json:"event_id,omitempty"`
	EventTitle string                `json:"event_title,omitempty"`
	Source     models.ResolutionTier `json:"source,omitempty"`
	Stats      models.ArrivalStats   `json:"stats"`
}

// RiskSection aggregates risk tiers across the resolved student set.
type RiskSection struct {
	Source    models.ResolutionTier `json:"source,omitempty"`
	Breakdown models.RiskBreakdown  `json:"breakdown"`
}

// StudentRiskEntry annotates one student for the dashboard list.
type StudentRiskEntry struct {
	ID             string          `json:"id"`
	StudentNo      string          `json:"student_no"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Course         string          `json:"course"`
	YearLevel      int             `json:"year_level"`
	Tier           models.RiskTier `json:"risk_tier"`
	AttendanceRate float64         `json:"attendance_rate"`
	AttendedCount  int             `json:"attended_count"`
	RecentAbsences int             `json:"recent_absences"`
}

// DashboardAnalytics is the full composer payload: one consistent snapshot
// recomputed on every request.
type DashboardAnalytics struct {
	ActiveEvent    *ActiveEventSummary   `json:"active_event,omitempty"`
	RecentCheckIns []CheckInEntry        `json:"recent_check_ins"`
	Arrival        ArrivalSection        `json:"arrival"`
	Risk           RiskSection           `json:"risk"`
	Students       []StudentRiskEntry    `json:"students"`
	EventSource    models.ResolutionTier `json:"event_source,omitempty"`
	BaselineEvents int                   `json:"baseline_events"`
	RecentEvents   int                   `json:"recent_events"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// DashboardOverview is the lightweight live tab: the ongoing event and its
// newest check-ins.
type DashboardOverview struct {
	ActiveEvent    *ActiveEventSummary `json:"active_event,omitempty"`
	RecentCheckIns []CheckInEntry      `json:"recent_check_ins"`
}
