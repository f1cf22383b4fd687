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

type fakeCheckInOrgs struct {
	byToken map[string]*models.Organization
}

func (f *fakeCheckInOrgs) FindByReaderToken(ctx context.Context, token string) (*models.Organization, error) {
	org, ok := f.byToken[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return org, nil
}

type fakeCheckInEvents struct {
	events []models.Event
}

func (f *fakeCheckInEvents) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var out []models.Event
	for _, event := range f.events {
		if filter.OrganizationID != "" && event.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.ActiveOnly != nil && event.Active != *filter.ActiveOnly {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

type fakeCheckInStudents struct {
	byRFID map[string]*models.Student
}

func (f *fakeCheckInStudents) FindByRFID(ctx context.Context, rfidUID string) (*models.Student, error) {
	student, ok := f.byRFID[rfidUID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type fakeCheckInAttendance struct {
	created []models.AttendanceRecord
	seen    map[string]bool
}

func (f *fakeCheckInAttendance) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	key := record.EventID + "/" + record.StudentID
	if f.seen[key] {
		return appErrors.ErrDuplicateCheckIn
	}
	f.seen[key] = true
	f.created = append(f.created, *record)
	return nil
}

func (f *fakeCheckInAttendance) ListDetails(ctx context.Context, filter models.AttendanceFilter) ([]models.CheckInDetail, error) {
	return []models.CheckInDetail{}, nil
}

func newCheckInFixture(t *testing.T) (*AttendanceService, *fakeCheckInAttendance) {
	t.Helper()
	loc := mustLoadLocation(t, "Asia/Manila")

	orgs := &fakeCheckInOrgs{byToken: map[string]*models.Organization{
		"reader-secret": {ID: "org-1", Name: "Robotics Club"},
	}}
	events := &fakeCheckInEvents{events: []models.Event{
		manilaEvent("fut", 25, "09:00", "11:00"),
		manilaEvent("act", 20, "09:00", "11:00"),
		manilaEvent("old", 1, "09:00", "10:00"),
	}}
	students := &fakeCheckInStudents{byRFID: map[string]*models.Student{
		"04AABBCC": {ID: "alice", StudentNo: "S-001", FirstName: "Alice", LastName: "Cruz", RFIDUID: "04AABBCC"},
	}}
	attendance := &fakeCheckInAttendance{}

	svc := NewAttendanceService(AttendanceServiceParams{
		Orgs:       orgs,
		Events:     events,
		Students:   students,
		Attendance: attendance,
		Logger:     zap.NewNop(),
		Location:   loc,
	})
	svc.now = func() time.Time { return manilaTS(t, 20, 9, 12) }
	return svc, attendance
}

func TestAttendanceServiceCheckIn(t *testing.T) {
	svc, attendance := newCheckInFixture(t)

	resp, err := svc.CheckIn(context.Background(), "reader-secret", dto.CheckInRequest{RFIDUID: "04AABBCC"})
	require.NoError(t, err)
	assert.Equal(t, "act", resp.EventID)
	assert.Equal(t, "S-001", resp.StudentNo)
	assert.Equal(t, 12, resp.OffsetMinutes)
	assert.Equal(t, models.ArrivalLate, resp.Bucket)
	require.Len(t, attendance.created, 1)
	assert.Equal(t, "alice", attendance.created[0].StudentID)
}

func TestAttendanceServiceCheckInDuplicate(t *testing.T) {
	svc, attendance := newCheckInFixture(t)

	_, err := svc.CheckIn(context.Background(), "reader-secret", dto.CheckInRequest{RFIDUID: "04AABBCC"})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), "reader-secret", dto.CheckInRequest{RFIDUID: "04AABBCC"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateCheckIn.Code, appErrors.FromError(err).Code)
	// The original record stays untouched.
	require.Len(t, attendance.created, 1)
}

func TestAttendanceServiceCheckInUnknownReader(t *testing.T) {
	svc, _ := newCheckInFixture(t)

	_, err := svc.CheckIn(context.Background(), "bogus", dto.CheckInRequest{RFIDUID: "04AABBCC"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceCheckInUnknownCard(t *testing.T) {
	svc, _ := newCheckInFixture(t)

	_, err := svc.CheckIn(context.Background(), "reader-secret", dto.CheckInRequest{RFIDUID: "FFFFFFFF"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceCheckInNoOngoingEvent(t *testing.T) {
	svc, _ := newCheckInFixture(t)
	svc.now = func() time.Time { return manilaTS(t, 20, 23, 0) }

	_, err := svc.CheckIn(context.Background(), "reader-secret", dto.CheckInRequest{RFIDUID: "04AABBCC"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoOngoingEvent.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceCheckInSkipsInactiveEvents(t *testing.T) {
	svc, _ := newCheckInFixture(t)
	events := svc.events.(*fakeCheckInEvents)
	for i := range events.events {
		events.events[i].Active = false
	}

	_, err := svc.CheckIn(context.Background(), "reader-secret", dto.CheckInRequest{RFIDUID: "04AABBCC"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoOngoingEvent.Code, appErrors.FromError(err).Code)
}
