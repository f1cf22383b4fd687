package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type fakeDashboardEvents struct {
	org          []models.Event
	global       []models.Event
	orgLogged    []models.EventWithLogCount
	globalLogged []models.EventWithLogCount
}

func (f *fakeDashboardEvents) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	if filter.OrganizationID != "" {
		return f.org, nil
	}
	return f.global, nil
}

func (f *fakeDashboardEvents) ListWithLogCounts(ctx context.Context, filter models.EventFilter) ([]models.EventWithLogCount, error) {
	if filter.OrganizationID != "" {
		return f.orgLogged, nil
	}
	return f.globalLogged, nil
}

type fakeDashboardStudents struct {
	org    []models.Student
	global []models.Student
}

func (f *fakeDashboardStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	if filter.OrganizationID != "" {
		return f.org, nil
	}
	return f.global, nil
}

type fakeDashboardAttendance struct {
	records []models.AttendanceRecord
	details map[string][]models.CheckInDetail
}

func (f *fakeDashboardAttendance) ListForEvents(ctx context.Context, eventIDs []string) ([]models.AttendanceRecord, error) {
	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	var out []models.AttendanceRecord
	for _, rec := range f.records {
		if wanted[rec.EventID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeDashboardAttendance) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range f.records {
		if rec.EventID == eventID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeDashboardAttendance) ListDetails(ctx context.Context, filter models.AttendanceFilter) ([]models.CheckInDetail, error) {
	return f.details[filter.EventID], nil
}

func manilaEvent(id string, day int, start, end string) models.Event {
	return models.Event{
		ID:             id,
		OrganizationID: "org-1",
		Title:          "Event " + id,
		Date:           time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC),
		StartTime:      start,
		EndTime:        end,
		Active:         true,
	}
}

func manilaTS(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	loc := mustLoadLocation(t, "Asia/Manila")
	return time.Date(2026, 5, day, hour, minute, 0, 0, loc)
}

// newDashboardFixture sets up an organization with one future, one ongoing
// and two past events (one inside the trailing window), three students and
// their check-ins, pinned at 2026-05-20 10:00 Manila.
func newDashboardFixture(t *testing.T) (*DashboardService, *fakeDashboardAttendance) {
	t.Helper()
	loc := mustLoadLocation(t, "Asia/Manila")

	events := &fakeDashboardEvents{
		org: []models.Event{
			manilaEvent("fut", 25, "09:00", "11:00"),
			manilaEvent("act", 20, "09:00", "11:00"),
			manilaEvent("rec", 15, "09:00", "10:00"),
			manilaEvent("old", 1, "09:00", "10:00"),
		},
	}
	events.orgLogged = []models.EventWithLogCount{
		{Event: events.org[1], LogCount: 2},
	}

	students := &fakeDashboardStudents{
		org: []models.Student{
			{ID: "alice", StudentNo: "S-001", FirstName: "Alice", LastName: "Cruz"},
			{ID: "bob", StudentNo: "S-002", FirstName: "Bob", LastName: "Santos"},
			{ID: "dana", StudentNo: "S-003", FirstName: "Dana", LastName: "Alonzo"},
		},
	}

	attendance := &fakeDashboardAttendance{
		records: []models.AttendanceRecord{
			{EventID: "act", StudentID: "alice", Timestamp: manilaTS(t, 20, 8, 50)},
			{EventID: "act", StudentID: "dana", Timestamp: manilaTS(t, 20, 9, 5)},
			{EventID: "rec", StudentID: "alice", Timestamp: manilaTS(t, 15, 9, 1)},
			{EventID: "old", StudentID: "alice", Timestamp: manilaTS(t, 1, 9, 0)},
			{EventID: "old", StudentID: "bob", Timestamp: manilaTS(t, 1, 9, 2)},
			{EventID: "old", StudentID: "dana", Timestamp: manilaTS(t, 1, 9, 3)},
		},
		details: map[string][]models.CheckInDetail{
			"act": {
				{
					AttendanceRecord: models.AttendanceRecord{EventID: "act", StudentID: "dana", Timestamp: manilaTS(t, 20, 9, 5)},
					StudentNo:        "S-003", FirstName: "Dana", LastName: "Alonzo",
				},
				{
					AttendanceRecord: models.AttendanceRecord{EventID: "act", StudentID: "alice", Timestamp: manilaTS(t, 20, 8, 50)},
					StudentNo:        "S-001", FirstName: "Alice", LastName: "Cruz",
				},
			},
		},
	}

	svc := NewDashboardService(DashboardServiceParams{
		Events:     events,
		Students:   students,
		Attendance: attendance,
		Logger:     zap.NewNop(),
		Location:   loc,
		Config:     DashboardServiceConfig{RecentCheckInsLimit: 10},
	})
	svc.now = func() time.Time { return manilaTS(t, 20, 10, 0) }
	return svc, attendance
}

func TestDashboardAnalytics(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	payload, err := svc.Analytics(context.Background(), "org-1", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResolutionScoped, payload.EventSource)
	assert.Equal(t, 3, payload.BaselineEvents)
	assert.Equal(t, 2, payload.RecentEvents)

	require.NotNil(t, payload.ActiveEvent)
	assert.Equal(t, "act", payload.ActiveEvent.ID)
	assert.Equal(t, "2026-05-20", payload.ActiveEvent.Date)
	require.Len(t, payload.RecentCheckIns, 2)
	assert.Equal(t, "Dana Alonzo", payload.RecentCheckIns[0].StudentName)

	assert.Equal(t, "act", payload.Arrival.EventID)
	assert.Equal(t, models.ResolutionScoped, payload.Arrival.Source)
	assert.Equal(t, 2, payload.Arrival.Stats.Total)
	assert.Equal(t, 1, payload.Arrival.Stats.EarlyCount)
	assert.Equal(t, 1, payload.Arrival.Stats.OnTimeCount)
	assert.Equal(t, 0, payload.Arrival.Stats.LateCount)
	// offsets {-10, 5}: median -2.5 truncates to -2
	assert.Equal(t, "2 min before start", payload.Arrival.Stats.MedianLabel)

	assert.Equal(t, models.ResolutionScoped, payload.Risk.Source)
	assert.Equal(t, 3, payload.Risk.Breakdown.TotalStudents)
	assert.Equal(t, 2, payload.Risk.Breakdown.ChronicCount)
	assert.Equal(t, 0, payload.Risk.Breakdown.AtRiskCount)
	assert.Equal(t, 1, payload.Risk.Breakdown.GoodCount)
	assert.Equal(t, 67, payload.Risk.Breakdown.ChronicPct)
	assert.Equal(t, 33, payload.Risk.Breakdown.GoodPct)

	require.Len(t, payload.Students, 3)
	assert.Equal(t, "Alonzo", payload.Students[0].LastName)
	assert.Equal(t, "Cruz", payload.Students[1].LastName)
	assert.Equal(t, "Santos", payload.Students[2].LastName)

	alice := payload.Students[1]
	assert.Equal(t, models.RiskGoodStanding, alice.Tier)
	assert.InDelta(t, 100, alice.AttendanceRate, 0.0001)
	assert.Equal(t, 3, alice.AttendedCount)
	assert.Equal(t, 0, alice.RecentAbsences)

	bob := payload.Students[2]
	assert.Equal(t, models.RiskChronic, bob.Tier)
	assert.InDelta(t, 100.0/3, bob.AttendanceRate, 0.0001)
	assert.Equal(t, 2, bob.RecentAbsences)
}

func TestDashboardAnalyticsMissingOrg(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	_, err := svc.Analytics(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoOrganization.Code, appErrors.FromError(err).Code)
}

func TestDashboardAnalyticsSearchFiltersListOnly(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	payload, err := svc.Analytics(context.Background(), "org-1", "santos")
	require.NoError(t, err)

	// Aggregates stay computed over the full student set.
	assert.Equal(t, 3, payload.Risk.Breakdown.TotalStudents)
	require.Len(t, payload.Students, 1)
	assert.Equal(t, "Santos", payload.Students[0].LastName)

	payload, err = svc.Analytics(context.Background(), "org-1", "S-001")
	require.NoError(t, err)
	require.Len(t, payload.Students, 1)
	assert.Equal(t, "S-001", payload.Students[0].StudentNo)
}

func TestDashboardAnalyticsIdempotent(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	first, err := svc.Analytics(context.Background(), "org-1", "")
	require.NoError(t, err)
	second, err := svc.Analytics(context.Background(), "org-1", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDashboardAnalyticsGlobalFallback(t *testing.T) {
	loc := mustLoadLocation(t, "Asia/Manila")
	globalEvent := manilaEvent("g1", 14, "09:00", "10:00")

	events := &fakeDashboardEvents{
		global:       []models.Event{globalEvent},
		globalLogged: []models.EventWithLogCount{{Event: globalEvent, LogCount: 1}},
	}
	students := &fakeDashboardStudents{
		global: []models.Student{{ID: "zed", StudentNo: "S-900", FirstName: "Zed", LastName: "Uy"}},
	}
	attendance := &fakeDashboardAttendance{
		records: []models.AttendanceRecord{
			{EventID: "g1", StudentID: "zed", Timestamp: manilaTS(t, 14, 9, 20)},
		},
	}

	svc := NewDashboardService(DashboardServiceParams{
		Events:     events,
		Students:   students,
		Attendance: attendance,
		Logger:     zap.NewNop(),
		Location:   loc,
	})
	svc.now = func() time.Time { return manilaTS(t, 20, 10, 0) }

	payload, err := svc.Analytics(context.Background(), "org-sparse", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResolutionGlobalFallback, payload.EventSource)
	assert.Equal(t, models.ResolutionGlobalFallback, payload.Risk.Source)
	assert.Equal(t, models.ResolutionGlobalFallback, payload.Arrival.Source)
	assert.Equal(t, 1, payload.BaselineEvents)
	assert.Equal(t, 1, payload.RecentEvents)
	assert.Nil(t, payload.ActiveEvent)

	require.Len(t, payload.Students, 1)
	assert.Equal(t, models.RiskGoodStanding, payload.Students[0].Tier)
	assert.Equal(t, 1, payload.Arrival.Stats.LateCount)
}

func TestDashboardAnalyticsEmptyEverywhere(t *testing.T) {
	loc := mustLoadLocation(t, "Asia/Manila")
	svc := NewDashboardService(DashboardServiceParams{
		Events:     &fakeDashboardEvents{},
		Students:   &fakeDashboardStudents{},
		Attendance: &fakeDashboardAttendance{},
		Logger:     zap.NewNop(),
		Location:   loc,
	})
	svc.now = func() time.Time { return manilaTS(t, 20, 10, 0) }

	payload, err := svc.Analytics(context.Background(), "org-empty", "")
	require.NoError(t, err)

	assert.Empty(t, payload.EventSource)
	assert.Empty(t, payload.Risk.Source)
	assert.Empty(t, payload.Arrival.Source)
	assert.Equal(t, 0, payload.BaselineEvents)
	assert.Equal(t, 0, payload.RecentEvents)
	assert.Equal(t, 0, payload.Risk.Breakdown.TotalStudents)
	assert.Equal(t, 0, payload.Risk.Breakdown.ChronicPct)
	assert.Equal(t, "no check-ins yet", payload.Arrival.Stats.MedianLabel)
	assert.Empty(t, payload.Students)
	assert.Nil(t, payload.ActiveEvent)
	assert.Empty(t, payload.RecentCheckIns)
}

func TestDashboardOverview(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	overview, err := svc.Overview(context.Background(), "org-1")
	require.NoError(t, err)
	require.NotNil(t, overview.ActiveEvent)
	assert.Equal(t, "act", overview.ActiveEvent.ID)
	assert.Len(t, overview.RecentCheckIns, 2)

	_, err = svc.Overview(context.Background(), "")
	assert.Error(t, err)
}

func TestDashboardOverviewNoOngoingEvent(t *testing.T) {
	svc, _ := newDashboardFixture(t)
	// Move the clock past every scheduled window for the day.
	svc.now = func() time.Time { return manilaTS(t, 20, 23, 30) }

	overview, err := svc.Overview(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Nil(t, overview.ActiveEvent)
	assert.Empty(t, overview.RecentCheckIns)
}
