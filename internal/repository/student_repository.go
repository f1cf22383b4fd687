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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "s.id, s.rfid_uid, s.student_no, s.first_name, s.last_name, s.middle_name, s.email, s.course, s.year_level, s.organization_id, s.user_id, s.account_created, s.account_created_at, s.created_at, s.updated_at"

// List returns students matching the filter ordered by name. An organization
// scope matches both directly linked students and students who have checked
// in to any of the organization's events.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.OrganizationID != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(`(s.organization_id = $%d OR EXISTS (
            SELECT 1 FROM attendance_records a
            JOIN events e ON e.id = a.event_id
            WHERE a.student_id = s.id AND e.organization_id = $%d))`, idx, idx))
		args = append(args, filter.OrganizationID)
	}
	if filter.WithAttendanceOnly {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM attendance_records a WHERE a.student_id = s.id)")
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.first_name) LIKE $%d OR LOWER(s.last_name) LIKE $%d OR LOWER(s.student_no) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := fmt.Sprintf(`SELECT %s FROM students s WHERE %s ORDER BY LOWER(s.last_name), LOWER(s.first_name)`,
		studentColumns, strings.Join(conditions, " AND "))

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.id = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// FindByRFID fetches a student by card UID. Scanner input is normalized to
// upper case before lookup.
func (r *StudentRepository) FindByRFID(ctx context.Context, rfidUID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE UPPER(s.rfid_uid) = UPPER($1) LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, rfidUID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by rfid: %w", err)
	}
	return &student, nil
}

// FindByUserID fetches the student profile behind a login account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.user_id = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user id: %w", err)
	}
	return &student, nil
}

// ListUnprovisioned returns an organization's students without a login
// account yet, oldest roster entries first.
func (r *StudentRepository) ListUnprovisioned(ctx context.Context, orgID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s
        WHERE s.organization_id = $1 AND s.account_created = FALSE
        ORDER BY s.created_at`, studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, orgID); err != nil {
		return nil, fmt.Errorf("list unprovisioned students: %w", err)
	}
	return students, nil
}

// Create inserts a new student, assigning the identifier when absent.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, rfid_uid, student_no, first_name, last_name, middle_name, email, course, year_level, organization_id, user_id, account_created, account_created_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := r.db.ExecContext(ctx, query,
		student.ID, student.RFIDUID, student.StudentNo, student.FirstName, student.LastName,
		student.MiddleName, student.Email, student.Course, student.YearLevel,
		student.OrganizationID, student.UserID, student.AccountCreated, student.AccountCreatedAt,
		student.CreatedAt, student.UpdatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// LinkAccount records the login account created for a student.
func (r *StudentRepository) LinkAccount(ctx context.Context, studentID, userID string, at time.Time) error {
	const query = `UPDATE students SET user_id = $2, account_created = TRUE, account_created_at = $3, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, studentID, userID, at)
	if err != nil {
		return fmt.Errorf("link student account: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
