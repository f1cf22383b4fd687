package dto

import (
	"time"

	"github.com/tapin-io/attendance-api/internal/models"
)

// CheckInRequest is the payload an RFID scanner posts after reading a card.
// The reader token travels in the X-Reader-Token header, not the body.
type CheckInRequest struct {
	RFIDUID string `json:"rfid_uid" validate:"required"`
}

// CheckInResponse confirms an accepted scan with the derived arrival timing.
type CheckInResponse struct {
	StudentID     string               `json:"student_id"`
	StudentNo     string               `json:"student_no"`
	StudentName   string               `json:"student_name"`
	EventID       string               `json:"event_id"`
	EventTitle    string               `json:"event_title"`
	Timestamp     time.Time            `json:"timestamp"`
	OffsetMinutes int                  `json:"offset_minutes"`
	Bucket        models.ArrivalBucket `json:"bucket"`
}

// FeedQuery narrows the live check-in feed. After lets pollers resume from
// the last timestamp they saw.
type FeedQuery struct {
	EventID string     `form:"event_id"`
	After   *time.Time `form:"after" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit   int        `form:"limit"`
}
