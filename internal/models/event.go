package models

import "time"

// EventWindow classifies an event's scheduled interval against a reference
// instant.
type EventWindow string

const (
	WindowOngoing EventWindow = "ongoing"
	WindowFuture  EventWindow = "future"
	WindowPast    EventWindow = "past"
)

// Event is a scheduled occasion students check in to. Date carries the
// calendar day; StartTime and EndTime are wall clocks ("15:04" or
// "15:04:05") interpreted in the organization timezone. End strictly after
// start is enforced at creation.
type Event struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description,omitempty"`
	Date           time.Time `db:"event_date" json:"event_date"`
	StartTime      string    `db:"start_time" json:"start_time"`
	EndTime        string    `db:"end_time" json:"end_time"`
	Active         bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// EventWithLogCount decorates an event with its attendance volume.
type EventWithLogCount struct {
	Event
	LogCount int `db:"log_count" json:"log_count"`
}

// EventFilter encapsulates allowed parameters for listing events.
type EventFilter struct {
	OrganizationID string
	DateFrom       *time.Time
	DateTo         *time.Time
	MustHaveLogs   bool
	ActiveOnly     *bool
}
