package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type fakeEventRepo struct {
	events map[string]*models.Event
}

func (f *fakeEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var out []models.Event
	for _, event := range f.events {
		if filter.OrganizationID != "" && event.OrganizationID != filter.OrganizationID {
			continue
		}
		out = append(out, *event)
	}
	return out, nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	if f.events == nil {
		f.events = make(map[string]*models.Event)
	}
	if event.ID == "" {
		event.ID = "event-" + event.Title
	}
	stored := *event
	f.events[event.ID] = &stored
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *event
	f.events[event.ID] = &stored
	return nil
}

func (f *fakeEventRepo) SetActive(ctx context.Context, id string, active bool) error {
	event, ok := f.events[id]
	if !ok {
		return sql.ErrNoRows
	}
	event.Active = active
	return nil
}

type fakeEventAttendance struct {
	details []models.CheckInDetail
}

func (f *fakeEventAttendance) ListDetails(ctx context.Context, filter models.AttendanceFilter) ([]models.CheckInDetail, error) {
	return f.details, nil
}

func newEventFixture(t *testing.T) (*EventService, *fakeEventRepo, *fakeEventAttendance) {
	t.Helper()
	repo := &fakeEventRepo{events: make(map[string]*models.Event)}
	attendance := &fakeEventAttendance{}
	svc := NewEventService(EventServiceParams{
		Events:     repo,
		Attendance: attendance,
		Logger:     zap.NewNop(),
		Location:   mustLoadLocation(t, "Asia/Manila"),
	})
	svc.now = func() time.Time { return manilaTS(t, 20, 10, 0) }
	return svc, repo, attendance
}

func TestEventServiceCreate(t *testing.T) {
	svc, repo, _ := newEventFixture(t)

	event, err := svc.Create(context.Background(), "org-1", dto.CreateEventRequest{
		Title:     "General Assembly",
		Date:      "2026-06-01",
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.True(t, event.Active)
	assert.Equal(t, "org-1", event.OrganizationID)
	assert.Contains(t, repo.events, event.ID)
}

func TestEventServiceCreateRejectsEndBeforeStart(t *testing.T) {
	svc, _, _ := newEventFixture(t)

	cases := []struct{ start, end string }{
		{"11:00", "09:00"},
		{"09:00", "09:00"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), "org-1", dto.CreateEventRequest{
			Title:     "Broken",
			Date:      "2026-06-01",
			StartTime: tc.start,
			EndTime:   tc.end,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestEventServiceCreateRequiresOrganization(t *testing.T) {
	svc, _, _ := newEventFixture(t)

	_, err := svc.Create(context.Background(), "", dto.CreateEventRequest{
		Title:     "Orphan",
		Date:      "2026-06-01",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoOrganization.Code, appErrors.FromError(err).Code)
}

func TestEventServiceUpdateOwnershipCheck(t *testing.T) {
	svc, repo, _ := newEventFixture(t)
	event := manilaEvent("ev-1", 20, "09:00", "11:00")
	stored := event
	repo.events["ev-1"] = &stored

	_, err := svc.Update(context.Background(), "org-2", "ev-1", dto.UpdateEventRequest{
		Title:     "Hijacked",
		Date:      "2026-05-20",
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEventServiceListCategorized(t *testing.T) {
	svc, repo, _ := newEventFixture(t)
	for _, event := range []models.Event{
		manilaEvent("act", 20, "09:00", "11:00"),
		manilaEvent("soon", 21, "09:00", "10:00"),
		manilaEvent("later", 25, "09:00", "10:00"),
		manilaEvent("old", 1, "09:00", "10:00"),
	} {
		stored := event
		repo.events[event.ID] = &stored
	}

	result, err := svc.ListCategorized(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, result.Ongoing, 1)
	assert.Equal(t, "act", result.Ongoing[0].ID)
	require.Len(t, result.Future, 2)
	assert.Equal(t, "soon", result.Future[0].ID)
	assert.Equal(t, "later", result.Future[1].ID)
	require.Len(t, result.Past, 1)
	assert.Equal(t, "old", result.Past[0].ID)
}

func TestEventServiceReport(t *testing.T) {
	svc, repo, attendance := newEventFixture(t)
	event := manilaEvent("ev-1", 20, "09:00", "11:00")
	stored := event
	repo.events["ev-1"] = &stored

	// Newest-first, as the repository returns them.
	attendance.details = []models.CheckInDetail{
		{
			AttendanceRecord: models.AttendanceRecord{EventID: "ev-1", StudentID: "bob", Timestamp: manilaTS(t, 20, 9, 12)},
			StudentNo:        "S-002", FirstName: "Bob", LastName: "Santos",
		},
		{
			AttendanceRecord: models.AttendanceRecord{EventID: "ev-1", StudentID: "alice", Timestamp: manilaTS(t, 20, 8, 50)},
			StudentNo:        "S-001", FirstName: "Alice", LastName: "Cruz",
		},
	}

	report, err := svc.Report(context.Background(), "org-1", "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-1", report.Event.ID)
	require.Len(t, report.CheckIns, 2)
	// Scan order: earliest first.
	assert.Equal(t, "S-001", report.CheckIns[0].StudentNo)
	assert.Equal(t, 2, report.Stats.Total)
	assert.Equal(t, 1, report.Stats.EarlyCount)
	assert.Equal(t, 1, report.Stats.LateCount)
}
