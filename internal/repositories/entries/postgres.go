// Package entries provides the PostgreSQL-backed repository for note
// entries, the ordered text/audio fragments under a note.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/dbx"
	"github.com/abdul977/voicenotes/internal/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.NoteEntry) error {
	query := `
		INSERT INTO note_entries (id, note_id, content, audio_url, audio_key, entry_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.NoteID, entry.Content, entry.AudioURL, entry.AudioKey, entry.EntryOrder).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, noteID, id string) (*models.NoteEntry, error) {
	query := `
		SELECT id, note_id, content, COALESCE(audio_url, ''), COALESCE(audio_key, ''), entry_order, created_at, updated_at
		FROM note_entries
		WHERE note_id = $1 AND id = $2
	`
	var e models.NoteEntry
	err := r.db.QueryRowContext(ctx, query, noteID, id).Scan(
		&e.ID, &e.NoteID, &e.Content, &e.AudioURL, &e.AudioKey, &e.EntryOrder, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

// ListByNote returns the note's entries in display order. entry_order is not
// unique; ties fall back to insertion order.
func (r *PostgresRepository) ListByNote(ctx context.Context, noteID string) ([]*models.NoteEntry, error) {
	query := `
		SELECT id, note_id, content, COALESCE(audio_url, ''), COALESCE(audio_key, ''), entry_order, created_at, updated_at
		FROM note_entries
		WHERE note_id = $1
		ORDER BY entry_order, created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.NoteEntry
	for rows.Next() {
		var e models.NoteEntry
		if err := rows.Scan(
			&e.ID, &e.NoteID, &e.Content, &e.AudioURL, &e.AudioKey, &e.EntryOrder, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, entry *models.NoteEntry) error {
	query := `
		UPDATE note_entries
		SET content = $1, audio_url = $2, audio_key = $3, entry_order = $4, updated_at = now()
		WHERE note_id = $5 AND id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.Content, entry.AudioURL, entry.AudioKey, entry.EntryOrder, entry.NoteID, entry.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, noteID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM note_entries WHERE note_id = $1 AND id = $2`, noteID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res)
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
