// Package policy is the access-control gate for notes and their entries.
// Every service path calls Authorize before acting on a fetched note, so the
// rules hold server-side regardless of what the client UI checked.
package policy

import (
	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/models"
)

// Action enumerates the operations the policy rules on. Entry actions are
// resolved against the parent note.
type Action int

const (
	// NoteRead covers reading a note and listing/reading its entries.
	NoteRead Action = iota
	// NoteUpdate covers note mutations and entry create/update.
	NoteUpdate
	// NoteDelete covers deleting the note (entries cascade).
	NoteDelete
	// EntryDelete covers deleting a single entry.
	EntryDelete
	// CollaboratorAdmin covers invite/remove/permission-change and share
	// link generation.
	CollaboratorAdmin
)

// Authorize reports whether callerID may perform action on note.
// Returns nil when allowed, common.ErrUnauthorized otherwise.
//
// Rules:
//   - owner: everything
//   - collaborator with edit: NoteRead, NoteUpdate
//   - collaborator with view: NoteRead
//   - anyone else: nothing (share-token reads bypass this path entirely
//     and are validated by the sharing service)
func Authorize(callerID string, note *models.Note, action Action) error {
	if callerID == "" || note == nil {
		return common.ErrUnauthorized
	}

	if callerID == note.OwnerID {
		return nil
	}

	idx := note.Collaborators.FindByUserID(callerID)
	if idx < 0 {
		return common.ErrUnauthorized
	}

	switch action {
	case NoteRead:
		return nil
	case NoteUpdate:
		if note.Collaborators[idx].Permission == models.PermissionEdit {
			return nil
		}
	}

	// NoteDelete, EntryDelete and CollaboratorAdmin never reach
	// collaborators.
	return common.ErrUnauthorized
}
