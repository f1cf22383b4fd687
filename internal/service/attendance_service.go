package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type checkInOrganizationRepository interface {
	FindByReaderToken(ctx context.Context, token string) (*models.Organization, error)
}

type checkInEventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

type checkInStudentRepository interface {
	FindByRFID(ctx context.Context, rfidUID string) (*models.Student, error)
}

type checkInAttendanceRepository interface {
	Create(ctx context.Context, record *models.AttendanceRecord) error
	ListDetails(ctx context.Context, filter models.AttendanceFilter) ([]models.CheckInDetail, error)
}

// AttendanceService handles RFID check-ins and the live feed. A scan is
// routed through the reader token to its organization's single ongoing
// active event; the server assigns the timestamp exactly once.
type AttendanceService struct {
	orgs       checkInOrganizationRepository
	events     checkInEventRepository
	students   checkInStudentRepository
	attendance checkInAttendanceRepository
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

// AttendanceServiceParams groups constructor dependencies.
type AttendanceServiceParams struct {
	Orgs       checkInOrganizationRepository
	Events     checkInEventRepository
	Students   checkInStudentRepository
	Attendance checkInAttendanceRepository
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
	Location   *time.Location
}

// NewAttendanceService wires an AttendanceService.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		orgs:       params.Orgs,
		events:     params.Events,
		students:   params.Students,
		attendance: params.Attendance,
		metrics:    params.Metrics,
		validator:  validate,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

// CheckIn records a card scan against the reader's ongoing event. A repeat
// scan for the same event is rejected and the original record is untouched.
func (s *AttendanceService) CheckIn(ctx context.Context, readerToken string, req dto.CheckInRequest) (*dto.CheckInResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}
	if readerToken == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing reader token")
	}

	org, err := s.orgs.FindByReaderToken(ctx, readerToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown reader token")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve reader")
	}

	event, err := s.findOngoingEvent(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByRFID(ctx, req.RFIDUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.recordOutcome(false)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "card is not registered to any student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	record := &models.AttendanceRecord{
		EventID:   event.ID,
		StudentID: student.ID,
		Timestamp: s.now().UTC(),
	}
	if err := s.attendance.Create(ctx, record); err != nil {
		s.recordOutcome(false)
		if appErrors.FromError(err).Code == appErrors.ErrDuplicateCheckIn.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store check-in")
	}
	s.recordOutcome(true)

	start, err := CombineDateClock(event.Date, event.StartTime, s.loc)
	if err != nil {
		return nil, err
	}
	offset := ArrivalOffsetMinutes(record.Timestamp.In(s.loc), start)

	s.logger.Info("check-in accepted",
		zap.String("event_id", event.ID),
		zap.String("student_no", student.StudentNo),
		zap.Int("offset_minutes", offset))

	return &dto.CheckInResponse{
		StudentID:     student.ID,
		StudentNo:     student.StudentNo,
		StudentName:   student.FullName(),
		EventID:       event.ID,
		EventTitle:    event.Title,
		Timestamp:     record.Timestamp,
		OffsetMinutes: offset,
		Bucket:        BucketOffset(offset),
	}, nil
}

// Feed returns recent check-ins for an organization, newest first.
func (s *AttendanceService) Feed(ctx context.Context, orgID string, query dto.FeedQuery) ([]models.CheckInDetail, error) {
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}
	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	details, err := s.attendance.ListDetails(ctx, models.AttendanceFilter{
		OrganizationID: orgID,
		EventID:        query.EventID,
		After:          query.After,
		Limit:          limit,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load check-in feed")
	}
	return details, nil
}

// findOngoingEvent picks the organization's ongoing active event. Events
// arrive newest-first, so overlapping schedules resolve to the most recently
// scheduled one.
func (s *AttendanceService) findOngoingEvent(ctx context.Context, orgID string) (*models.Event, error) {
	active := true
	events, err := s.events.List(ctx, models.EventFilter{OrganizationID: orgID, ActiveOnly: &active})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	now := s.now()
	for i := range events {
		window, err := ClassifyWindow(events[i], now, s.loc)
		if err != nil {
			return nil, err
		}
		if window == models.WindowOngoing {
			return &events[i], nil
		}
	}
	return nil, appErrors.ErrNoOngoingEvent
}

func (s *AttendanceService) recordOutcome(accepted bool) {
	if s.metrics != nil {
		s.metrics.RecordCheckIn(accepted)
	}
}
