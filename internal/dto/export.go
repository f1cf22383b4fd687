package dto

import "time"

// ExportTicket references an archived report export. The download token is
// self-contained; the file becomes fetchable once the archive job has run.
type ExportTicket struct {
	ExportID      string    `json:"export_id"`
	Filename      string    `json:"filename"`
	DownloadToken string    `json:"download_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}
