package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	SetActive(ctx context.Context, id string, active bool) error
}

type eventAttendanceRepository interface {
	ListDetails(ctx context.Context, filter models.AttendanceFilter) ([]models.CheckInDetail, error)
}

// EventService manages event scheduling and the categorized listing.
type EventService struct {
	events     eventRepository
	attendance eventAttendanceRepository
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
	listTTL    time.Duration
}

// EventServiceParams groups constructor dependencies.
type EventServiceParams struct {
	Events     eventRepository
	Attendance eventAttendanceRepository
	Cache      *CacheService
	Validator  *validator.Validate
	Logger     *zap.Logger
	Location   *time.Location
	ListTTL    time.Duration
}

// NewEventService wires an EventService.
func NewEventService(params EventServiceParams) *EventService {
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
	return &EventService{
		events:     params.Events,
		attendance: params.Attendance,
		cache:      params.Cache,
		validator:  validate,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
		listTTL:    params.ListTTL,
	}
}

// Create schedules a new event for the organization. The end clock must be
// strictly after the start clock; both must exist in the organization
// timezone on that date.
func (s *EventService) Create(ctx context.Context, orgID string, req dto.CreateEventRequest) (*models.Event, error) {
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	date, err := s.validateSchedule(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Active:         true,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.invalidateListings(ctx, orgID)
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("org_id", orgID))
	return event, nil
}

// Update rewrites an event the organization owns.
func (s *EventService) Update(ctx context.Context, orgID, eventID string, req dto.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event, err := s.findOwned(ctx, orgID, eventID)
	if err != nil {
		return nil, err
	}
	date, err := s.validateSchedule(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Date = date
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	if req.Active != nil {
		event.Active = *req.Active
	}
	if err := s.events.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.invalidateListings(ctx, orgID)
	return event, nil
}

// SetActive toggles whether an event accepts check-ins.
func (s *EventService) SetActive(ctx context.Context, orgID, eventID string, active bool) error {
	if _, err := s.findOwned(ctx, orgID, eventID); err != nil {
		return err
	}
	if err := s.events.SetActive(ctx, eventID, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle event")
	}
	s.invalidateListings(ctx, orgID)
	return nil
}

// Get fetches one event the organization owns.
func (s *EventService) Get(ctx context.Context, orgID, eventID string) (*models.Event, error) {
	return s.findOwned(ctx, orgID, eventID)
}

// ListCategorized returns the organization's events grouped into ongoing,
// future and past. The grouping shifts as the clock moves, so the cache TTL
// stays short.
func (s *EventService) ListCategorized(ctx context.Context, orgID string) (*dto.CategorizedEvents, error) {
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}

	cacheKey := fmt.Sprintf("events:categorized:%s", orgID)
	if s.cache.Enabled() {
		var cached dto.CategorizedEvents
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	events, err := s.events.List(ctx, models.EventFilter{OrganizationID: orgID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	now := s.now()
	result := &dto.CategorizedEvents{
		Ongoing: []models.Event{},
		Future:  []models.Event{},
		Past:    []models.Event{},
	}
	for _, event := range events {
		window, err := ClassifyWindow(event, now, s.loc)
		if err != nil {
			return nil, err
		}
		switch window {
		case models.WindowOngoing:
			result.Ongoing = append(result.Ongoing, event)
		case models.WindowFuture:
			result.Future = append(result.Future, event)
		default:
			result.Past = append(result.Past, event)
		}
	}
	// Future events read best soonest-first; the repository returns
	// newest-first.
	sort.SliceStable(result.Future, func(i, j int) bool {
		if !result.Future[i].Date.Equal(result.Future[j].Date) {
			return result.Future[i].Date.Before(result.Future[j].Date)
		}
		return result.Future[i].StartTime < result.Future[j].StartTime
	})

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, result, s.listTTL)
	}
	return result, nil
}

// Report assembles the full attendance report for one event: the roster in
// check-in order plus the arrival statistics.
func (s *EventService) Report(ctx context.Context, orgID, eventID string) (*dto.EventReport, error) {
	event, err := s.findOwned(ctx, orgID, eventID)
	if err != nil {
		return nil, err
	}

	details, err := s.attendance.ListDetails(ctx, models.AttendanceFilter{EventID: eventID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load check-ins")
	}
	// ListDetails returns newest-first; the report reads in scan order.
	for i, j := 0, len(details)-1; i < j; i, j = i+1, j-1 {
		details[i], details[j] = details[j], details[i]
	}

	start, err := CombineDateClock(event.Date, event.StartTime, s.loc)
	if err != nil {
		return nil, err
	}
	offsets := make([]int, 0, len(details))
	for _, detail := range details {
		offsets = append(offsets, ArrivalOffsetMinutes(detail.Timestamp.In(s.loc), start))
	}

	return &dto.EventReport{
		Event:    *event,
		Stats:    ComputeArrivalStats(offsets),
		CheckIns: details,
	}, nil
}

func (s *EventService) findOwned(ctx context.Context, orgID, eventID string) (*models.Event, error) {
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.OrganizationID != orgID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "event belongs to another organization")
	}
	return event, nil
}

// validateSchedule parses the date and enforces end strictly after start.
func (s *EventService) validateSchedule(date, startTime, endTime string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event date")
	}
	after, err := clockAfter(endTime, startTime)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event clock")
	}
	if !after {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	// Reject clocks that cannot exist on that date in the org timezone.
	if _, err := CombineDateClock(parsed, startTime, s.loc); err != nil {
		return time.Time{}, err
	}
	if _, err := CombineDateClock(parsed, endTime, s.loc); err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func (s *EventService) invalidateListings(ctx context.Context, orgID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("events:*:%s", orgID)); err != nil {
		s.logger.Warn("failed to invalidate event listings", zap.String("org_id", orgID), zap.Error(err))
	}
}
