package models

import "time"

// Student represents a learner with an RFID card. The organization link is
// optional: imported rosters may carry students before any org claims them,
// so analytics must tolerate unlinked students.
type Student struct {
	ID             string     `db:"id" json:"id"`
	RFIDUID        string     `db:"rfid_uid" json:"rfid_uid"`
	StudentNo      string     `db:"student_no" json:"student_no"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	MiddleName     string     `db:"middle_name" json:"middle_name,omitempty"`
	Email          string     `db:"email" json:"email"`
	Course         string     `db:"course" json:"course"`
	YearLevel      int        `db:"year_level" json:"year_level"`
	OrganizationID *string    `db:"organization_id" json:"organization_id,omitempty"`
	UserID         *string    `db:"user_id" json:"user_id,omitempty"`
	AccountCreated bool       `db:"account_created" json:"account_created"`
	AccountCreatedAt *time.Time `db:"account_created_at" json:"account_created_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName renders "First Last" for feeds and exports.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed parameters for listing students.
type StudentFilter struct {
	OrganizationID     string
	WithAttendanceOnly bool
	Search             string
}
