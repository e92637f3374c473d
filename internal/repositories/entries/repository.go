package entries

import (
	"context"

	"github.com/abdul977/voicenotes/internal/models"
)

// Repository persists note entries. Rows cascade-delete with their note at
// the schema level, so there is no DeleteByNote here.
type Repository interface {
	Create(ctx context.Context, entry *models.NoteEntry) error
	GetByID(ctx context.Context, noteID, id string) (*models.NoteEntry, error)
	ListByNote(ctx context.Context, noteID string) ([]*models.NoteEntry, error)
	Update(ctx context.Context, entry *models.NoteEntry) error
	Delete(ctx context.Context, noteID, id string) error
}
