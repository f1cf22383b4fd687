package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tapin-io/attendance-api/internal/models"
)

// InsightRepository stores AI-generated analyses for events.
type InsightRepository struct {
	db *sqlx.DB
}

// NewInsightRepository constructs an InsightRepository.
func NewInsightRepository(db *sqlx.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Create persists an insight delivered by the external workflow engine.
func (r *InsightRepository) Create(ctx context.Context, insight *models.AIInsight) error {
	if insight.ID == "" {
		insight.ID = uuid.NewString()
	}
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO ai_insights (id, event_id, insight_type, title, content, score, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		insight.ID, insight.EventID, insight.Type, insight.Title, insight.Content,
		insight.Score, insight.CreatedAt); err != nil {
		return fmt.Errorf("create insight: %w", err)
	}
	return nil
}

// ListByOrganization returns the newest insights across an organization's
// events, optionally narrowed to one event or one type.
func (r *InsightRepository) ListByOrganization(ctx context.Context, orgID string, eventID string, insightType models.InsightType, limit int) ([]models.AIInsight, error) {
	conditions := []string{"e.organization_id = $1"}
	args := []interface{}{orgID}

	if eventID != "" {
		conditions = append(conditions, fmt.Sprintf("i.event_id = $%d", len(args)+1))
		args = append(args, eventID)
	}
	if insightType != "" {
		conditions = append(conditions, fmt.Sprintf("i.insight_type = $%d", len(args)+1))
		args = append(args, insightType)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT i.id, i.event_id, i.insight_type, i.title, i.content, i.score, i.created_at
        FROM ai_insights i
        JOIN events e ON e.id = i.event_id
        WHERE %s ORDER BY i.created_at DESC LIMIT %d`, strings.Join(conditions, " AND "), limit)

	insights := []models.AIInsight{}
	if err := r.db.SelectContext(ctx, &insights, query, args...); err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	return insights, nil
}
