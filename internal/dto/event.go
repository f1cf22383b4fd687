package dto

import "github.com/tapin-io/attendance-api/internal/models"

// CreateEventRequest is the payload for scheduling an event. Date uses
// "2006-01-02"; the clocks use "15:04" and are interpreted in the
// organization timezone.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
}

// UpdateEventRequest mirrors CreateEventRequest with an activity toggle.
type UpdateEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Active      *bool  `json:"is_active"`
}

// CategorizedEvents groups an organization's events by their window.
type CategorizedEvents struct {
	Ongoing []models.Event `json:"ongoing"`
	Future  []models.Event `json:"future"`
	Past    []models.Event `json:"past"`
}

// EventReport bundles everything the export surface needs for one event.
type EventReport struct {
	Event    models.Event           `json:"event"`
	Stats    models.ArrivalStats    `json:"stats"`
	CheckIns []models.CheckInDetail `json:"check_ins"`
}
