package dto

import "github.com/tapin-io/attendance-api/internal/models"

// IngestInsightRequest is the callback payload the workflow engine posts
// after analysing an event.
type IngestInsightRequest struct {
	EventID string             `json:"event_id" validate:"required"`
	Type    models.InsightType `json:"type" validate:"required,oneof=prediction attendance engagement anomaly"`
	Title   string             `json:"title" validate:"required,max=200"`
	Content string             `json:"content" validate:"required"`
	Score   *float64           `json:"score" validate:"omitempty,gte=0,lte=1"`
}

// ListInsightsQuery narrows the insight listing.
type ListInsightsQuery struct {
	EventID string             `form:"event_id"`
	Type    models.InsightType `form:"type"`
	Limit   int                `form:"limit"`
}
