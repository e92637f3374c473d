package models

import (
	"strings"
	"time"
)

// Permission is the access level a collaborator holds on a note.
// Edit allows entry create/update; entry delete and collaborator
// administration stay with the owner.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// Valid reports whether p is one of the known permission levels.
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// Collaborator is a value object embedded in a note's collaborators list,
// not an independent row. JoinedAt is fixed at invitation time.
type Collaborator struct {
	UserID      string     `json:"user_id"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Permission  Permission `json:"permission"`
	JoinedAt    time.Time  `json:"joined_at"`
}

// Collaborators is a note's collaborator list in invitation order.
type Collaborators []Collaborator

// FindByUserID returns the index of the entry with the given user id, or -1.
func (cs Collaborators) FindByUserID(userID string) int {
	for i, c := range cs {
		if c.UserID == userID {
			return i
		}
	}
	return -1
}

// ContainsEmail reports whether any entry carries the given (non-empty)
// email. Addresses are compared case-insensitively.
func (cs Collaborators) ContainsEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, c := range cs {
		if strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the list.
func (cs Collaborators) Clone() Collaborators {
	if cs == nil {
		return nil
	}
	out := make(Collaborators, len(cs))
	copy(out, cs)
	return out
}
