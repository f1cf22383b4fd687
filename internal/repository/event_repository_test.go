package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapin-io/attendance-api/internal/models"
)

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "organization_id", "title", "description", "event_date", "start_time", "end_time", "is_active", "created_at"})
}

func TestEventRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	date := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	rows := eventRows().
		AddRow("event-1", "org-1", "General Assembly", "", date, "09:00", "11:00", true, date)

	mock.ExpectQuery("SELECT e.id, e.organization_id").
		WithArgs("org-1").
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), models.EventFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "General Assembly", events[0].Title)
	assert.Equal(t, "09:00", events[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListMustHaveLogsAddsExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("EXISTS \\(SELECT 1 FROM attendance_records a WHERE a.event_id = e.id\\)").
		WillReturnRows(eventRows())

	events, err := repo.List(context.Background(), models.EventFilter{MustHaveLogs: true})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListWithLogCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	date := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "organization_id", "title", "description", "event_date", "start_time", "end_time", "is_active", "created_at", "log_count"}).
		AddRow("event-1", "org-1", "Orientation", "", date, "09:00", "10:00", true, date, 42)

	mock.ExpectQuery("COUNT\\(a.id\\) AS log_count").
		WithArgs("org-1").
		WillReturnRows(rows)

	events, err := repo.ListWithLogCounts(context.Background(), models.EventFilter{OrganizationID: "org-1", MustHaveLogs: true})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 42, events[0].LogCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").
		WithArgs(sqlmock.AnyArg(), "org-1", "Tryouts", "open to all", sqlmock.AnyArg(), "14:00", "16:00", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &models.Event{
		OrganizationID: "org-1",
		Title:          "Tryouts",
		Description:    "open to all",
		Date:           time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime:      "14:00",
		EndTime:        "16:00",
		Active:         true,
	}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
