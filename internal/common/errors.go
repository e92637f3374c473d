// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrWriteConflict means a version-guarded write matched no row because
	// the note changed between the read and the write.
	ErrWriteConflict = errors.New("write conflict")

	// Registry errors.
	ErrDuplicateCollaborator = errors.New("collaborator already present")
	ErrLinkGeneration        = errors.New("share link generation failed")

	// Policy / auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Generic internal failure.
	ErrInternal = errors.New("internal error")
)
