package models

import "time"

// AttendanceRecord is one student's check-in for one event. The timestamp is
// server-assigned once and immutable; the (event, student) pair is unique so
// downstream analytics can assume deduplicated input.
type AttendanceRecord struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Timestamp time.Time `db:"ts" json:"timestamp"`
}

// CheckInDetail joins a record with its student for feeds and reports.
type CheckInDetail struct {
	AttendanceRecord
	StudentNo string `db:"student_no" json:"student_no"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// AttendanceFilter encapsulates allowed parameters for listing records.
type AttendanceFilter struct {
	EventID        string
	StudentID      string
	OrganizationID string
	After          *time.Time
	Limit          int
}
