package dto

import "github.com/tapin-io/attendance-api/internal/models"

// PortalEvent is an event row in the student portal, decorated with the
// student's own attendance where the event already happened.
type PortalEvent struct {
	models.Event
	Attended bool `json:"attended"`
}

// StudentPortal is the student-facing home payload.
type StudentPortal struct {
	Student  models.Student `json:"student"`
	Upcoming []models.Event `json:"upcoming"`
	Recent   []PortalEvent  `json:"recent"`
}
