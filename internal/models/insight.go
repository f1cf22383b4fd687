package models

import "time"

// InsightType categorises stored AI-generated analyses.
type InsightType string

const (
	InsightPrediction InsightType = "prediction"
	InsightAttendance InsightType = "attendance"
	InsightEngagement InsightType = "engagement"
	InsightAnomaly    InsightType = "anomaly"
)

// AIInsight is an AI-generated note attached to an event. Generation happens
// in an external workflow engine; this service only stores and lists them.
type AIInsight struct {
	ID        string      `db:"id" json:"id"`
	EventID   string      `db:"event_id" json:"event_id"`
	Type      InsightType `db:"insight_type" json:"type"`
	Title     string      `db:"title" json:"title"`
	Content   string      `db:"content" json:"content"`
	Score     *float64    `db:"score" json:"score,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
