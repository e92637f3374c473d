// Package services contains the business logic sitting between the HTTP
// layer and the repositories. Every operation takes the caller's identity
// explicitly and runs it through the policy checks; nothing here trusts
// the client.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/logging"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/abdul977/voicenotes/internal/policy"
	"github.com/abdul977/voicenotes/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// NoteService owns the note lifecycle.
type NoteService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *NoteService {
	return &NoteService{
		db:     db,
		repos:  repos,
		logger: logger.With("module", "notes"),
	}
}

// Create makes a note owned by the caller, with an empty collaborator list
// and no sharing token.
func (s *NoteService) Create(ctx context.Context, callerID, title string) (*models.Note, error) {
	if callerID == "" {
		return nil, common.ErrUnauthorized
	}

	note := &models.Note{
		ID:            uuid.NewString(),
		OwnerID:       callerID,
		Title:         title,
		Collaborators: models.Collaborators{},
	}
	if err := s.repos.Notes(s.db).Create(ctx, note); err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}
	return note, nil
}

// Get returns a note readable by the caller (owner or any collaborator).
func (s *NoteService) Get(ctx context.Context, callerID, id string) (*models.Note, error) {
	note, err := s.repos.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(callerID, note, policy.NoteRead); err != nil {
		return nil, err
	}
	return note, nil
}

// List returns the caller's notes: owned plus shared with them.
func (s *NoteService) List(ctx context.Context, callerID string) ([]*models.Note, error) {
	if callerID == "" {
		return nil, common.ErrUnauthorized
	}
	return s.repos.Notes(s.db).ListForUser(ctx, callerID)
}

// Rename changes the note title; allowed for the owner and for
// collaborators holding edit permission.
func (s *NoteService) Rename(ctx context.Context, callerID, id, title string) error {
	repo := s.repos.Notes(s.db)

	note, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(callerID, note, policy.NoteUpdate); err != nil {
		return err
	}
	return repo.UpdateTitle(ctx, id, title)
}

// Delete removes the note and, through the schema's cascade, all of its
// entries. Owner only.
func (s *NoteService) Delete(ctx context.Context, callerID, id string) error {
	repo := s.repos.Notes(s.db)

	note, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(callerID, note, policy.NoteDelete); err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "note delete failed", "note_id", id, "error", err.Error())
		return err
	}
	return nil
}
