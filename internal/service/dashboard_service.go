package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type dashboardEventLister interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	ListWithLogCounts(ctx context.Context, filter models.EventFilter) ([]models.EventWithLogCount, error)
}

type dashboardStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

type dashboardAttendanceLister interface {
	ListForEvents(ctx context.Context, eventIDs []string) ([]models.AttendanceRecord, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error)
	ListDetails(ctx context.Context, filter models.AttendanceFilter) ([]models.CheckInDetail, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	RecentCheckInsLimit int
}

// DashboardService composes the organization dashboard. Every payload is a
// pure read over a single snapshot of events, students and attendance: the
// service fetches each collection at most once per request, derives the
// baseline and recent event sets once, and reuses them for every student.
type DashboardService struct {
	events     dashboardEventLister
	students   dashboardStudentLister
	attendance dashboardAttendanceLister
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Events     dashboardEventLister
	Students   dashboardStudentLister
	Attendance dashboardAttendanceLister
	Logger     *zap.Logger
	Location   *time.Location
	Config     DashboardServiceConfig
}

// NewDashboardService wires a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.RecentCheckInsLimit <= 0 {
		cfg.RecentCheckInsLimit = 50
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		events:     params.Events,
		students:   params.Students,
		attendance: params.Attendance,
		logger:     params.Logger,
		loc:        loc,
		now:        time.Now,
		cfg:        cfg,
	}
}

// dashboardSnapshot holds the per-request working set so the derived event
// partitions are computed once and shared.
type dashboardSnapshot struct {
	now         time.Time
	orgEvents   []models.Event
	eventSource models.ResolutionTier
	baseline    []models.Event
	recent      []models.Event
	students    []models.Student
	studentSrc  models.ResolutionTier
	attended    map[string]int
	attendedRec map[string]int
}

// Analytics builds the full dashboard payload for one organization. The
// search term filters the student list only; every aggregate is computed over
// the unfiltered resolved set.
func (s *DashboardService) Analytics(ctx context.Context, orgID, search string) (*dto.DashboardAnalytics, error) {
	snap, err := s.loadSnapshot(ctx, orgID)
	if err != nil {
		return nil, err
	}

	payload := &dto.DashboardAnalytics{
		RecentCheckIns: []dto.CheckInEntry{},
		EventSource:    snap.eventSource,
		BaselineEvents: len(snap.baseline),
		RecentEvents:   len(snap.recent),
		GeneratedAt:    snap.now,
	}

	active, feed, err := s.activeEventFeed(ctx, snap)
	if err != nil {
		return nil, err
	}
	payload.ActiveEvent = active
	payload.RecentCheckIns = feed

	arrival, err := s.arrivalSection(ctx, orgID, snap)
	if err != nil {
		return nil, err
	}
	payload.Arrival = arrival

	risk, entries := s.riskSection(snap, search)
	payload.Risk = risk
	payload.Students = entries

	return payload, nil
}

// Overview returns the live tab: the ongoing event and its newest check-ins.
func (s *DashboardService) Overview(ctx context.Context, orgID string) (*dto.DashboardOverview, error) {
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}
	now := s.now().In(s.loc)
	orgEvents, err := s.events.List(ctx, models.EventFilter{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	snap := &dashboardSnapshot{now: now, orgEvents: orgEvents}
	active, feed, err := s.activeEventFeed(ctx, snap)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardOverview{ActiveEvent: active, RecentCheckIns: feed}, nil
}

// loadSnapshot fetches events, students and the attendance rows for the
// baseline set, then derives the per-student attended counts. Resolution of
// events and students falls back to the global pool independently when the
// organization has no data of its own, and each side is tagged with the tier
// that satisfied it.
func (s *DashboardService) loadSnapshot(ctx context.Context, orgID string) (*dashboardSnapshot, error) {
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}
	now := s.now().In(s.loc)
	snap := &dashboardSnapshot{now: now}

	orgEvents, err := s.events.List(ctx, models.EventFilter{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	snap.orgEvents = orgEvents

	pool := orgEvents
	snap.eventSource = models.ResolutionScoped
	if len(pool) == 0 {
		pool, err = s.events.List(ctx, models.EventFilter{MustHaveLogs: true})
		if err != nil {
			return nil, err
		}
		snap.eventSource = models.ResolutionGlobalFallback
		if len(pool) == 0 {
			snap.eventSource = ""
		}
	}

	snap.baseline, snap.recent, err = s.partitionEvents(pool, now)
	if err != nil {
		return nil, err
	}

	snap.students, err = s.students.List(ctx, models.StudentFilter{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	snap.studentSrc = models.ResolutionScoped
	if len(snap.students) == 0 {
		snap.students, err = s.students.List(ctx, models.StudentFilter{WithAttendanceOnly: true})
		if err != nil {
			return nil, err
		}
		snap.studentSrc = models.ResolutionGlobalFallback
	}

	baselineIDs := make(map[string]bool, len(snap.baseline))
	ids := make([]string, 0, len(snap.baseline))
	for _, event := range snap.baseline {
		baselineIDs[event.ID] = true
		ids = append(ids, event.ID)
	}
	recentIDs := make(map[string]bool, len(snap.recent))
	for _, event := range snap.recent {
		recentIDs[event.ID] = true
	}

	snap.attended = make(map[string]int, len(snap.students))
	snap.attendedRec = make(map[string]int, len(snap.students))
	if len(ids) > 0 {
		records, err := s.attendance.ListForEvents(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if baselineIDs[rec.EventID] {
				snap.attended[rec.StudentID]++
			}
			if recentIDs[rec.EventID] {
				snap.attendedRec[rec.StudentID]++
			}
		}
	}
	return snap, nil
}

// partitionEvents splits a pool into the non-future baseline and the recent
// subset whose dates fall inside the trailing window ending today.
func (s *DashboardService) partitionEvents(pool []models.Event, now time.Time) (baseline, recent []models.Event, err error) {
	today := dateKey(now)
	windowStart := today.AddDate(0, 0, -(recentWindowDays - 1))
	for _, event := range pool {
		window, err := ClassifyWindow(event, now, s.loc)
		if err != nil {
			return nil, nil, err
		}
		if window == models.WindowFuture {
			continue
		}
		baseline = append(baseline, event)
		key := dateKey(event.Date)
		if !key.Before(windowStart) && !key.After(today) {
			recent = append(recent, event)
		}
	}
	return baseline, recent, nil
}

// activeEventFeed finds the first ongoing organization event and its newest
// check-ins. Events arrive newest-first, so the first ongoing hit is the most
// recently scheduled one.
func (s *DashboardService) activeEventFeed(ctx context.Context, snap *dashboardSnapshot) (*dto.ActiveEventSummary, []dto.CheckInEntry, error) {
	feed := []dto.CheckInEntry{}
	for _, event := range snap.orgEvents {
		window, err := ClassifyWindow(event, snap.now, s.loc)
		if err != nil {
			return nil, nil, err
		}
		if window != models.WindowOngoing || !event.Active {
			continue
		}
		summary := &dto.ActiveEventSummary{
			ID:        event.ID,
			Title:     event.Title,
			Date:      event.Date.Format("2006-01-02"),
			StartTime: event.StartTime,
			EndTime:   event.EndTime,
		}
		details, err := s.attendance.ListDetails(ctx, models.AttendanceFilter{
			EventID: event.ID,
			Limit:   s.cfg.RecentCheckInsLimit,
		})
		if err != nil {
			return nil, nil, err
		}
		for _, detail := range details {
			feed = append(feed, dto.CheckInEntry{
				StudentNo:   detail.StudentNo,
				StudentName: detail.FirstName + " " + detail.LastName,
				Timestamp:   detail.Timestamp,
			})
		}
		return summary, feed, nil
	}
	return nil, feed, nil
}

// arrivalSection computes arrival-timing stats for the most recent event that
// has logs, preferring the organization's own events before falling back to
// the global pool.
func (s *DashboardService) arrivalSection(ctx context.Context, orgID string, snap *dashboardSnapshot) (dto.ArrivalSection, error) {
	section := dto.ArrivalSection{Stats: ComputeArrivalStats(nil)}

	logged, err := s.events.ListWithLogCounts(ctx, models.EventFilter{OrganizationID: orgID, MustHaveLogs: true})
	if err != nil {
		return section, err
	}
	section.Source = models.ResolutionScoped
	if len(logged) == 0 {
		logged, err = s.events.ListWithLogCounts(ctx, models.EventFilter{MustHaveLogs: true})
		if err != nil {
			return section, err
		}
		section.Source = models.ResolutionGlobalFallback
	}
	if len(logged) == 0 {
		section.Source = ""
		return section, nil
	}

	target := logged[0].Event
	start, err := CombineDateClock(target.Date, target.StartTime, s.loc)
	if err != nil {
		return section, err
	}
	records, err := s.attendance.ListByEvent(ctx, target.ID)
	if err != nil {
		return section, err
	}
	offsets := make([]int, 0, len(records))
	for _, rec := range records {
		offsets = append(offsets, ArrivalOffsetMinutes(rec.Timestamp.In(s.loc), start))
	}

	section.EventID = target.ID
	section.EventTitle = target.Title
	section.Stats = ComputeArrivalStats(offsets)
	return section, nil
}

// riskSection classifies every resolved student against the shared baseline
// and recent sets, aggregates the tier breakdown over the full set, and
// returns the (optionally search-filtered) per-student list sorted by name.
func (s *DashboardService) riskSection(snap *dashboardSnapshot, search string) (dto.RiskSection, []dto.StudentRiskEntry) {
	section := dto.RiskSection{Source: snap.studentSrc}
	entries := []dto.StudentRiskEntry{}

	baselineTotal := len(snap.baseline)
	recentTotal := len(snap.recent)
	query := strings.ToLower(strings.TrimSpace(search))

	for _, student := range snap.students {
		tier, rate, absences := ClassifyRisk(
			snap.attended[student.ID], baselineTotal,
			snap.attendedRec[student.ID], recentTotal,
		)
		section.Breakdown.TotalStudents++
		switch tier {
		case models.RiskChronic:
			section.Breakdown.ChronicCount++
		case models.RiskAtRisk:
			section.Breakdown.AtRiskCount++
		default:
			section.Breakdown.GoodCount++
		}
		if query != "" && !matchesStudent(student, query) {
			continue
		}
		entries = append(entries, dto.StudentRiskEntry{
			ID:             student.ID,
			StudentNo:      student.StudentNo,
			FirstName:      student.FirstName,
			LastName:       student.LastName,
			Course:         student.Course,
			YearLevel:      student.YearLevel,
			Tier:           tier,
			AttendanceRate: rate,
			AttendedCount:  snap.attended[student.ID],
			RecentAbsences: absences,
		})
	}

	total := section.Breakdown.TotalStudents
	section.Breakdown.ChronicPct = roundPct(section.Breakdown.ChronicCount, total)
	section.Breakdown.AtRiskPct = roundPct(section.Breakdown.AtRiskCount, total)
	section.Breakdown.GoodPct = roundPct(section.Breakdown.GoodCount, total)
	if total == 0 {
		section.Source = ""
	}

	sort.Slice(entries, func(i, j int) bool {
		li, lj := strings.ToLower(entries[i].LastName), strings.ToLower(entries[j].LastName)
		if li != lj {
			return li < lj
		}
		return strings.ToLower(entries[i].FirstName) < strings.ToLower(entries[j].FirstName)
	})
	return section, entries
}

func matchesStudent(student models.Student, query string) bool {
	return strings.Contains(strings.ToLower(student.FirstName), query) ||
		strings.Contains(strings.ToLower(student.LastName), query) ||
		strings.Contains(strings.ToLower(student.StudentNo), query)
}

// dateKey normalizes a timestamp to its calendar day for date-only
// comparisons across zones.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
