package models

import "time"

// Organization represents a student org that hosts events and owns scanners.
type Organization struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Name          string    `db:"name" json:"name"`
	ContactNumber string    `db:"contact_number" json:"contact_number,omitempty"`
	Description   string    `db:"description" json:"description,omitempty"`
	// ReaderToken authenticates physical RFID scanners and routes their
	// scans to this organization's ongoing event.
	ReaderToken *string   `db:"reader_token" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
