package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

// CombineDateClock builds the instant for an event date plus a wall clock
// ("15:04" or "15:04:05") in the organization timezone. A clock that cannot
// be represented in the zone (DST spring-forward gap) is a data-quality
// error, never silently shifted.
func CombineDateClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	hour, minute, sec, err := parseClock(clock)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid event clock %q", clock))
	}
	combined := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, sec, 0, loc)
	if combined.Hour() != hour || combined.Minute() != minute {
		return time.Time{}, appErrors.Clone(appErrors.ErrAmbiguousTimestamp, fmt.Sprintf("clock %q does not exist on %s in %s", clock, date.Format("2006-01-02"), loc))
	}
	return combined, nil
}

// ClassifyWindow places an event relative to now: ongoing when
// start <= now <= end, future when start > now, past otherwise.
func ClassifyWindow(event models.Event, now time.Time, loc *time.Location) (models.EventWindow, error) {
	start, err := CombineDateClock(event.Date, event.StartTime, loc)
	if err != nil {
		return "", err
	}
	end, err := CombineDateClock(event.Date, event.EndTime, loc)
	if err != nil {
		return "", err
	}
	now = now.In(loc)
	switch {
	case !start.After(now) && !now.After(end):
		return models.WindowOngoing, nil
	case start.After(now):
		return models.WindowFuture, nil
	default:
		return models.WindowPast, nil
	}
}

// ArrivalOffsetMinutes returns whole minutes between a check-in timestamp
// and the scheduled start, truncated toward zero. Negative means the student
// arrived before the start.
func ArrivalOffsetMinutes(ts, start time.Time) int {
	return int(ts.Sub(start) / time.Minute)
}

func parseClock(raw string) (hour, minute, sec int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("clock %q: want HH:MM or HH:MM:SS", raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, 0, fmt.Errorf("clock %q: bad hour", raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, 0, fmt.Errorf("clock %q: bad minute", raw)
	}
	if len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, 0, 0, fmt.Errorf("clock %q: bad second", raw)
		}
	}
	return hour, minute, sec, nil
}

// clockAfter reports whether a is strictly later in the day than b.
func clockAfter(a, b string) (bool, error) {
	ah, am, as, err := parseClock(a)
	if err != nil {
		return false, err
	}
	bh, bm, bs, err := parseClock(b)
	if err != nil {
		return false, err
	}
	return ah*3600+am*60+as > bh*3600+bm*60+bs, nil
}
