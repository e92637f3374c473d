package models

import "time"

// Note is a user-owned notebook page. Collaborators are stored as a single
// JSON document on the row and rewritten wholesale; Version guards those
// rewrites (writes are conditional on the version last read).
type Note struct {
	ID            string
	OwnerID       string
	Title         string
	Collaborators Collaborators
	SharingToken  string // empty until a share link has been generated
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
