package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/config"
	"github.com/abdul977/voicenotes/internal/dbx"
	"github.com/abdul977/voicenotes/internal/logging"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/abdul977/voicenotes/internal/policy"
	"github.com/abdul977/voicenotes/internal/repositories/repomanager"
	"github.com/sethvargo/go-retry"
)

// Registry writes are read-modify-write over the whole collaborators
// document. The version guard turns a lost update into ErrWriteConflict;
// the loser re-reads and retries up to this many attempts.
const registryWriteAttempts = 3

const registryRetryBackoff = 10 * time.Millisecond

// SharingService is the collaborator registry and share-token validator.
// Caller identity is always an explicit parameter; owner-only rules are
// enforced through the policy package on every path.
type SharingService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	origin string
	logger logging.Logger
}

// NewSharingService constructs a SharingService. origin is taken from
// cfg.AppOrigin and embedded into generated share URLs.
func NewSharingService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SharingService {
	return &SharingService{
		db:     db,
		repos:  repos,
		origin: strings.TrimRight(cfg.AppOrigin, "/"),
		logger: logger.With("module", "sharing"),
	}
}

// SynthesizeUserID derives a stable collaborator id from an email address,
// used when inviting someone who has no provider identity yet. The same
// address always maps to the same id, so re-invites are caught as
// duplicates by either field.
func SynthesizeUserID(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "email:" + hex.EncodeToString(sum[:8])
}

// Invite appends a collaborator to the note's list.
//
// It fails with common.ErrNotFound when the note is absent,
// common.ErrUnauthorized when caller is not the owner, and
// common.ErrDuplicateCollaborator when an entry with the same user id or
// email already exists (the list is left unchanged). JoinedAt is stamped
// here; a supplied value is ignored.
func (s *SharingService) Invite(ctx context.Context, callerID, noteID string, invite models.Collaborator) error {
	invite.Email = strings.ToLower(strings.TrimSpace(invite.Email))
	if invite.UserID == "" {
		if invite.Email == "" {
			return fmt.Errorf("collaborator needs a user id or an email")
		}
		invite.UserID = SynthesizeUserID(invite.Email)
	}
	if !invite.Permission.Valid() {
		return fmt.Errorf("invalid permission %q", invite.Permission)
	}

	return s.withRetry(ctx, func(ctx context.Context) error {
		repo := s.repos.Notes(s.db)

		note, err := repo.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if err := policy.Authorize(callerID, note, policy.CollaboratorAdmin); err != nil {
			return err
		}

		// The owner is never listed; a shadow entry would make a later
		// remove look like it stripped owner rights.
		if invite.UserID == note.OwnerID ||
			note.Collaborators.FindByUserID(invite.UserID) >= 0 ||
			note.Collaborators.ContainsEmail(invite.Email) {
			return common.ErrDuplicateCollaborator
		}

		invite.JoinedAt = time.Now().UTC()
		updated := append(note.Collaborators.Clone(), invite)

		return repo.UpdateCollaborators(ctx, note.ID, updated, note.Version)
	})
}

// Remove deletes the collaborator with the given user id. Removing an
// absent user succeeds without touching the row.
func (s *SharingService) Remove(ctx context.Context, callerID, noteID, userID string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		repo := s.repos.Notes(s.db)

		note, err := repo.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if err := policy.Authorize(callerID, note, policy.CollaboratorAdmin); err != nil {
			return err
		}

		idx := note.Collaborators.FindByUserID(userID)
		if idx < 0 {
			return nil
		}

		updated := note.Collaborators.Clone()
		updated = append(updated[:idx], updated[idx+1:]...)

		return repo.UpdateCollaborators(ctx, note.ID, updated, note.Version)
	})
}

// UpdatePermission sets the permission of an existing collaborator. An
// absent user is a success no-op; only the matching entry's permission
// changes, ordering and the other fields stay intact.
func (s *SharingService) UpdatePermission(ctx context.Context, callerID, noteID, userID string, perm models.Permission) error {
	if !perm.Valid() {
		return fmt.Errorf("invalid permission %q", perm)
	}

	return s.withRetry(ctx, func(ctx context.Context) error {
		repo := s.repos.Notes(s.db)

		note, err := repo.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if err := policy.Authorize(callerID, note, policy.CollaboratorAdmin); err != nil {
			return err
		}

		idx := note.Collaborators.FindByUserID(userID)
		if idx < 0 {
			return nil
		}

		updated := note.Collaborators.Clone()
		updated[idx].Permission = perm

		return repo.UpdateCollaborators(ctx, note.ID, updated, note.Version)
	})
}

// GenerateShareLink mints a fresh random token, overwrites the note's
// sharing token (revoking previously issued links), and returns the share
// URL: <origin>/share/<note_id>?token=<token>. Underlying write failures
// surface as common.ErrLinkGeneration.
func (s *SharingService) GenerateShareLink(ctx context.Context, callerID, noteID string) (string, error) {
	token, err := newShareToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrLinkGeneration, err)
	}

	err = s.withRetry(ctx, func(ctx context.Context) error {
		repo := s.repos.Notes(s.db)

		note, err := repo.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if err := policy.Authorize(callerID, note, policy.CollaboratorAdmin); err != nil {
			return err
		}

		return repo.UpdateSharingToken(ctx, note.ID, token, note.Version)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrUnauthorized) {
			return "", err
		}
		s.logger.Error(ctx, "share link write failed", "note_id", noteID, "error", err.Error())
		return "", fmt.Errorf("%w: %v", common.ErrLinkGeneration, err)
	}

	return fmt.Sprintf("%s/share/%s?token=%s", s.origin, noteID, token), nil
}

// ValidateShareToken reports whether token matches the note's stored
// sharing token. An absent note or a note without a token validates false.
// The comparison is constant-time.
func (s *SharingService) ValidateShareToken(ctx context.Context, noteID, token string) (bool, error) {
	note, err := s.repos.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return tokenMatches(note, token), nil
}

// tokenMatches is a constant-time comparison against the note's stored
// token; an unset token never matches.
func tokenMatches(note *models.Note, token string) bool {
	if note.SharingToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(note.SharingToken), []byte(token)) == 1
}

// SharedNote is the read path behind share links: it validates the token
// and returns the note with its entries, no authenticated caller required.
// An invalid token (or absent note) yields common.ErrUnauthorized. Note and
// entries are read inside one transaction so the snapshot is consistent.
func (s *SharingService) SharedNote(ctx context.Context, noteID, token string) (*models.Note, []*models.NoteEntry, error) {
	var note *models.Note
	var entries []*models.NoteEntry

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repos.Notes(tx).GetByID(ctx, noteID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrUnauthorized
			}
			return err
		}
		if !tokenMatches(n, token) {
			return common.ErrUnauthorized
		}

		list, err := s.repos.Entries(tx).ListByNote(ctx, noteID)
		if err != nil {
			return err
		}

		note, entries = n, list
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return note, entries, nil
}

// withRetry runs fn, repeating it on ErrWriteConflict with a short constant
// backoff. Each attempt re-reads the note, so duplicate checks always run
// against the latest list.
func (s *SharingService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(registryWriteAttempts-1, retry.NewConstant(registryRetryBackoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, common.ErrWriteConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func newShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
