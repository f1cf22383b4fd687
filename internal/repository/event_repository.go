package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tapin-io/attendance-api/internal/models"
)

// EventRepository manages persistence for scheduled events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = "e.id, e.organization_id, e.title, e.description, e.event_date, e.start_time, e.end_time, e.is_active, e.created_at"

func eventConditions(filter models.EventFilter) ([]string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.OrganizationID != "" {
		conditions = append(conditions, fmt.Sprintf("e.organization_id = $%d", len(args)+1))
		args = append(args, filter.OrganizationID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("e.event_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("e.event_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.ActiveOnly != nil {
		conditions = append(conditions, fmt.Sprintf("e.is_active = $%d", len(args)+1))
		args = append(args, *filter.ActiveOnly)
	}
	if filter.MustHaveLogs {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM attendance_records a WHERE a.event_id = e.id)")
	}
	return conditions, args
}

// List returns events matching the filter, newest first.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	conditions, args := eventConditions(filter)
	query := fmt.Sprintf(`SELECT %s FROM events e WHERE %s ORDER BY e.event_date DESC, e.start_time DESC`,
		eventColumns, strings.Join(conditions, " AND "))

	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListWithLogCounts returns events decorated with their attendance volume,
// newest first.
func (r *EventRepository) ListWithLogCounts(ctx context.Context, filter models.EventFilter) ([]models.EventWithLogCount, error) {
	conditions, args := eventConditions(filter)
	having := ""
	if filter.MustHaveLogs {
		having = "HAVING COUNT(a.id) > 0"
	}
	query := fmt.Sprintf(`SELECT %s, COUNT(a.id) AS log_count
        FROM events e
        LEFT JOIN attendance_records a ON a.event_id = e.id
        WHERE %s
        GROUP BY e.id %s
        ORDER BY e.event_date DESC, e.start_time DESC`,
		eventColumns, strings.Join(conditions, " AND "), having)

	events := []models.EventWithLogCount{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events with log counts: %w", err)
	}
	return events, nil
}

// FindByID fetches a single event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events e WHERE e.id = $1 LIMIT 1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return &event, nil
}

// Create inserts a new event, assigning the identifier when absent.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (id, organization_id, title, description, event_date, start_time, end_time, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		event.ID, event.OrganizationID, event.Title, event.Description,
		event.Date, event.StartTime, event.EndTime, event.Active, event.CreatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	const query = `UPDATE events SET title = $2, description = $3, event_date = $4, start_time = $5, end_time = $6, is_active = $7 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		event.ID, event.Title, event.Description, event.Date, event.StartTime, event.EndTime, event.Active)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetActive toggles whether the event accepts check-ins.
func (r *EventRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE events SET is_active = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set event active: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
