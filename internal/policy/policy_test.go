package policy

import (
	"testing"
	"time"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/stretchr/testify/assert"
)

func testNote() *models.Note {
	return &models.Note{
		ID:      "n1",
		OwnerID: "alice",
		Collaborators: models.Collaborators{
			{UserID: "bob", Email: "bob@x.com", Permission: models.PermissionEdit, JoinedAt: time.Now()},
			{UserID: "carol", Email: "carol@x.com", Permission: models.PermissionView, JoinedAt: time.Now()},
		},
	}
}

func TestAuthorize_RulesTable(t *testing.T) {
	note := testNote()

	tests := []struct {
		name    string
		caller  string
		action  Action
		allowed bool
	}{
		{"owner read", "alice", NoteRead, true},
		{"owner update", "alice", NoteUpdate, true},
		{"owner delete", "alice", NoteDelete, true},
		{"owner entry delete", "alice", EntryDelete, true},
		{"owner collaborator admin", "alice", CollaboratorAdmin, true},

		{"editor read", "bob", NoteRead, true},
		{"editor update", "bob", NoteUpdate, true},
		{"editor delete denied", "bob", NoteDelete, false},
		{"editor entry delete denied", "bob", EntryDelete, false},
		{"editor collaborator admin denied", "bob", CollaboratorAdmin, false},

		{"viewer read", "carol", NoteRead, true},
		{"viewer update denied", "carol", NoteUpdate, false},
		{"viewer delete denied", "carol", NoteDelete, false},

		{"stranger read denied", "mallory", NoteRead, false},
		{"stranger update denied", "mallory", NoteUpdate, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, note, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, common.ErrUnauthorized)
			}
		})
	}
}

func TestAuthorize_Degenerate(t *testing.T) {
	note := testNote()

	assert.ErrorIs(t, Authorize("", note, NoteRead), common.ErrUnauthorized)
	assert.ErrorIs(t, Authorize("alice", nil, NoteRead), common.ErrUnauthorized)
}
