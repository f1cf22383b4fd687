package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestAttendanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO attendance_records (id, event_id, student_id, ts) VALUES ($1, $2, $3, $4)`)).
		WithArgs(sqlmock.AnyArg(), "event-1", "student-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AttendanceRecord{EventID: "event-1", StudentID: "student-1"}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO attendance_records`)).
		WithArgs(sqlmock.AnyArg(), "event-1", "student-1", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.AttendanceRecord{EventID: "event-1", StudentID: "student-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateCheckIn.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListForEvents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	ts := time.Date(2026, 5, 20, 1, 5, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "event_id", "student_id", "ts"}).
		AddRow("rec-1", "event-1", "student-1", ts).
		AddRow("rec-2", "event-2", "student-2", ts.Add(time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, event_id, student_id, ts FROM attendance_records WHERE event_id IN ($1, $2) ORDER BY ts`)).
		WithArgs("event-1", "event-2").
		WillReturnRows(rows)

	records, err := repo.ListForEvents(context.Background(), []string{"event-1", "event-2"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "student-1", records[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListForEventsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	records, err := repo.ListForEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListDetails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	after := time.Date(2026, 5, 20, 1, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "event_id", "student_id", "ts", "student_no", "first_name", "last_name"}).
		AddRow("rec-1", "event-1", "student-1", after.Add(5*time.Minute), "S-001", "Alice", "Cruz")

	mock.ExpectQuery("SELECT a.id, a.event_id, a.student_id, a.ts, s.student_no, s.first_name, s.last_name").
		WithArgs("event-1", after).
		WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), models.AttendanceFilter{
		EventID: "event-1",
		After:   &after,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "S-001", details[0].StudentNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}
