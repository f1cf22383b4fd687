package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

const (
	portalUpcomingLimit = 5
	portalRecentLimit   = 10
)

type portalStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type portalEventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

type portalAttendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// StudentService serves the student-facing portal.
type StudentService struct {
	students   portalStudentRepository
	events     portalEventRepository
	attendance portalAttendanceRepository
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Students   portalStudentRepository
	Events     portalEventRepository
	Attendance portalAttendanceRepository
	Logger     *zap.Logger
	Location   *time.Location
}

// NewStudentService wires a StudentService.
func NewStudentService(params StudentServiceParams) *StudentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &StudentService{
		students:   params.Students,
		events:     params.Events,
		attendance: params.Attendance,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

// Portal builds the student home payload: the next few upcoming events and
// the latest past ones annotated with whether the student checked in. An
// unlinked student sees the global pool.
func (s *StudentService) Portal(ctx context.Context, studentID string) (*dto.StudentPortal, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no student context")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	filter := models.EventFilter{}
	if student.OrganizationID != nil {
		filter.OrganizationID = *student.OrganizationID
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	records, err := s.attendance.List(ctx, models.AttendanceFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	attended := make(map[string]bool, len(records))
	for _, rec := range records {
		attended[rec.EventID] = true
	}

	now := s.now()
	portal := &dto.StudentPortal{
		Student:  *student,
		Upcoming: []models.Event{},
		Recent:   []dto.PortalEvent{},
	}
	for _, event := range events {
		window, err := ClassifyWindow(event, now, s.loc)
		if err != nil {
			return nil, err
		}
		if window == models.WindowFuture {
			portal.Upcoming = append(portal.Upcoming, event)
			continue
		}
		if len(portal.Recent) < portalRecentLimit {
			portal.Recent = append(portal.Recent, dto.PortalEvent{
				Event:    event,
				Attended: attended[event.ID],
			})
		}
	}

	// Soonest upcoming events first.
	sort.SliceStable(portal.Upcoming, func(i, j int) bool {
		if !portal.Upcoming[i].Date.Equal(portal.Upcoming[j].Date) {
			return portal.Upcoming[i].Date.Before(portal.Upcoming[j].Date)
		}
		return portal.Upcoming[i].StartTime < portal.Upcoming[j].StartTime
	})
	if len(portal.Upcoming) > portalUpcomingLimit {
		portal.Upcoming = portal.Upcoming[:portalUpcomingLimit]
	}
	return portal, nil
}
