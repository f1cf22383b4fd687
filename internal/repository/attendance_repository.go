package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

// pqUniqueViolation is the Postgres error code for unique constraint hits.
const pqUniqueViolation = "23505"

// AttendanceRepository manages persistence for check-in records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts a check-in record. A second check-in for the same (event,
// student) pair hits the unique constraint and surfaces as a duplicate
// error; the original row is left untouched.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO attendance_records (id, event_id, student_id, ts) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, record.ID, record.EventID, record.StudentID, record.Timestamp); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.ErrDuplicateCheckIn
		}
		return fmt.Errorf("create attendance record: %w", err)
	}
	return nil
}

// List returns raw records matching the filter ordered by timestamp.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.EventID != "" {
		conditions = append(conditions, fmt.Sprintf("a.event_id = $%d", len(args)+1))
		args = append(args, filter.EventID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.OrganizationID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM events e WHERE e.id = a.event_id AND e.organization_id = $%d)", len(args)+1))
		args = append(args, filter.OrganizationID)
	}
	if filter.After != nil {
		conditions = append(conditions, fmt.Sprintf("a.ts > $%d", len(args)+1))
		args = append(args, *filter.After)
	}

	query := fmt.Sprintf(`SELECT a.id, a.event_id, a.student_id, a.ts FROM attendance_records a WHERE %s ORDER BY a.ts`,
		strings.Join(conditions, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	records := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// ListByEvent returns every record for one event in check-in order.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	return r.List(ctx, models.AttendanceFilter{EventID: eventID})
}

// ListForEvents returns every record belonging to the given events in a
// single query. An empty ID set short-circuits without touching the
// database.
func (r *AttendanceRepository) ListForEvents(ctx context.Context, eventIDs []string) ([]models.AttendanceRecord, error) {
	if len(eventIDs) == 0 {
		return []models.AttendanceRecord{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, event_id, student_id, ts FROM attendance_records WHERE event_id IN (?) ORDER BY ts`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("build attendance query: %w", err)
	}
	query = r.db.Rebind(query)

	records := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance for events: %w", err)
	}
	return records, nil
}

// ListDetails returns records joined with their student, newest first, for
// feeds and reports. After restricts to records strictly later than the
// given instant so pollers can resume from their last seen timestamp.
func (r *AttendanceRepository) ListDetails(ctx context.Context, filter models.AttendanceFilter) ([]models.CheckInDetail, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.EventID != "" {
		conditions = append(conditions, fmt.Sprintf("a.event_id = $%d", len(args)+1))
		args = append(args, filter.EventID)
	}
	if filter.OrganizationID != "" {
		conditions = append(conditions, fmt.Sprintf("e.organization_id = $%d", len(args)+1))
		args = append(args, filter.OrganizationID)
	}
	if filter.After != nil {
		conditions = append(conditions, fmt.Sprintf("a.ts > $%d", len(args)+1))
		args = append(args, *filter.After)
	}

	query := fmt.Sprintf(`SELECT a.id, a.event_id, a.student_id, a.ts, s.student_no, s.first_name, s.last_name
        FROM attendance_records a
        JOIN students s ON s.id = a.student_id
        JOIN events e ON e.id = a.event_id
        WHERE %s ORDER BY a.ts DESC`, strings.Join(conditions, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	details := []models.CheckInDetail{}
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list check-in details: %w", err)
	}
	return details, nil
}

// HasRecord reports whether a student already checked in to an event.
func (r *AttendanceRepository) HasRecord(ctx context.Context, eventID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM attendance_records WHERE event_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, eventID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check attendance record: %w", err)
	}
	return true, nil
}
