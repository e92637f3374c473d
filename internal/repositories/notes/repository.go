package notes

import (
	"context"

	"github.com/abdul977/voicenotes/internal/models"
)

// Repository persists notes. Collaborators travel as the note's single JSON
// document; UpdateCollaborators and UpdateSharingToken are conditional on
// the version the caller last read and fail with common.ErrWriteConflict
// when the row moved underneath them.
type Repository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Note, error)
	UpdateTitle(ctx context.Context, id, title string) error
	UpdateCollaborators(ctx context.Context, id string, collaborators models.Collaborators, version int64) error
	UpdateSharingToken(ctx context.Context, id, token string, version int64) error
	Delete(ctx context.Context, id string) error
}
