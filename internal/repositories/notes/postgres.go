// Package notes provides the PostgreSQL-backed repository for note rows,
// including the version-guarded writes over the collaborators document.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/dbx"
	"github.com/abdul977/voicenotes/internal/models"
)

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) error {
	doc, err := json.Marshal(note.Collaborators)
	if err != nil {
		return fmt.Errorf("marshal collaborators: %w", err)
	}

	query := `
		INSERT INTO notes (id, owner_id, title, collaborators)
		VALUES ($1, $2, $3, $4)
		RETURNING version, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query, note.ID, note.OwnerID, note.Title, doc).
		Scan(&note.Version, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `
		SELECT id, owner_id, title, collaborators, COALESCE(sharing_token, ''), version, created_at, updated_at
		FROM notes
		WHERE id = $1
	`
	return scanNote(r.db.QueryRowContext(ctx, query, id))
}

// ListForUser returns notes the user owns plus notes where the user appears
// in the collaborators document, newest first. Membership uses JSONB
// containment so the GIN index applies. The containment argument must hold
// only the user_id key: @> needs the element to be a subset of a stored
// collaborator, so any extra key would make it match nothing.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Note, error) {
	member, err := json.Marshal([]map[string]string{{"user_id": userID}})
	if err != nil {
		return nil, fmt.Errorf("marshal membership filter: %w", err)
	}

	query := `
		SELECT id, owner_id, title, collaborators, COALESCE(sharing_token, ''), version, created_at, updated_at
		FROM notes
		WHERE owner_id = $1 OR collaborators @> $2
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, member)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		note, err := scanNoteRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, id, title string) error {
	query := `
		UPDATE notes SET title = $1, updated_at = now()
		WHERE id = $2
	`
	return execOne(ctx, r.db, query, common.ErrNotFound, title, id)
}

// UpdateCollaborators rewrites the whole collaborators document, bumping the
// version. The write is conditional on the version the caller read; when no
// row matches, the note either changed concurrently or is gone, and
// common.ErrWriteConflict is returned so the caller can re-read and retry.
func (r *PostgresRepository) UpdateCollaborators(ctx context.Context, id string, collaborators models.Collaborators, version int64) error {
	doc, err := json.Marshal(collaborators)
	if err != nil {
		return fmt.Errorf("marshal collaborators: %w", err)
	}

	query := `
		UPDATE notes SET collaborators = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
	`
	return execOne(ctx, r.db, query, common.ErrWriteConflict, doc, id, version)
}

// UpdateSharingToken overwrites the sharing token under the same version
// guard as UpdateCollaborators.
func (r *PostgresRepository) UpdateSharingToken(ctx context.Context, id, token string, version int64) error {
	query := `
		UPDATE notes SET sharing_token = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
	`
	return execOne(ctx, r.db, query, common.ErrWriteConflict, token, id, version)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM notes WHERE id = $1`
	return execOne(ctx, r.db, query, common.ErrNotFound, id)
}

// execOne runs an exec expected to touch exactly one row; zero rows map to
// noRowErr.
func execOne(ctx context.Context, db dbx.DBTX, query string, noRowErr error, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return noRowErr
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row *sql.Row) (*models.Note, error) {
	note, err := scanNoteRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

func scanNoteRow(s rowScanner) (*models.Note, error) {
	var note models.Note
	var doc []byte
	if err := s.Scan(
		&note.ID, &note.OwnerID, &note.Title, &doc, &note.SharingToken,
		&note.Version, &note.CreatedAt, &note.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(doc, &note.Collaborators); err != nil {
		return nil, fmt.Errorf("unmarshal collaborators: %w", err)
	}
	return &note, nil
}
