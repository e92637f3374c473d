package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/config"
	"github.com/abdul977/voicenotes/internal/dbx"
	"github.com/abdul977/voicenotes/internal/logging"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/abdul977/voicenotes/internal/repositories/entries"
	"github.com/abdul977/voicenotes/internal/repositories/notes"
	"github.com/abdul977/voicenotes/internal/repositories/repomanager"
)

// -------- test fakes --------

// fakeNotesRepo keeps notes in memory and mimics the version-guarded write
// semantics of the real repository. conflictsLeft injects spurious
// ErrWriteConflict results before letting a write through.
type fakeNotesRepo struct {
	notes map[string]*models.Note

	conflictsLeft int
	writeErr      error
	writeCalls    int
}

func newFakeNotesRepo(seed ...*models.Note) *fakeNotesRepo {
	r := &fakeNotesRepo{notes: map[string]*models.Note{}}
	for _, n := range seed {
		cp := *n
		cp.Collaborators = n.Collaborators.Clone()
		r.notes[n.ID] = &cp
	}
	return r
}

func (r *fakeNotesRepo) Create(ctx context.Context, note *models.Note) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	now := time.Now()
	note.CreatedAt, note.UpdatedAt = now, now
	cp := *note
	cp.Collaborators = note.Collaborators.Clone()
	r.notes[note.ID] = &cp
	return nil
}

func (r *fakeNotesRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *n
	cp.Collaborators = n.Collaborators.Clone()
	return &cp, nil
}

func (r *fakeNotesRepo) ListForUser(ctx context.Context, userID string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range r.notes {
		if n.OwnerID == userID || n.Collaborators.FindByUserID(userID) >= 0 {
			cp := *n
			cp.Collaborators = n.Collaborators.Clone()
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeNotesRepo) UpdateTitle(ctx context.Context, id, title string) error {
	n, ok := r.notes[id]
	if !ok {
		return common.ErrNotFound
	}
	n.Title = title
	n.UpdatedAt = time.Now()
	return nil
}

func (r *fakeNotesRepo) guardedWrite(id string, version int64, apply func(n *models.Note)) error {
	r.writeCalls++
	if r.writeErr != nil {
		return r.writeErr
	}
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return common.ErrWriteConflict
	}
	n, ok := r.notes[id]
	if !ok || n.Version != version {
		return common.ErrWriteConflict
	}
	apply(n)
	n.Version++
	n.UpdatedAt = time.Now()
	return nil
}

func (r *fakeNotesRepo) UpdateCollaborators(ctx context.Context, id string, collaborators models.Collaborators, version int64) error {
	return r.guardedWrite(id, version, func(n *models.Note) {
		n.Collaborators = collaborators.Clone()
	})
}

func (r *fakeNotesRepo) UpdateSharingToken(ctx context.Context, id, token string, version int64) error {
	return r.guardedWrite(id, version, func(n *models.Note) {
		n.SharingToken = token
	})
}

func (r *fakeNotesRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.notes[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

type fakeEntriesRepo struct {
	entries map[string]*models.NoteEntry
	order   []string

	createErr error
	updateErr error
}

func newFakeEntriesRepo() *fakeEntriesRepo {
	return &fakeEntriesRepo{entries: map[string]*models.NoteEntry{}}
}

func (r *fakeEntriesRepo) Create(ctx context.Context, entry *models.NoteEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	now := time.Now()
	entry.CreatedAt, entry.UpdatedAt = now, now
	cp := *entry
	r.entries[entry.ID] = &cp
	r.order = append(r.order, entry.ID)
	return nil
}

func (r *fakeEntriesRepo) GetByID(ctx context.Context, noteID, id string) (*models.NoteEntry, error) {
	e, ok := r.entries[id]
	if !ok || e.NoteID != noteID {
		return nil, common.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEntriesRepo) ListByNote(ctx context.Context, noteID string) ([]*models.NoteEntry, error) {
	var out []*models.NoteEntry
	for _, id := range r.order {
		e := r.entries[id]
		if e.NoteID == noteID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EntryOrder < out[j].EntryOrder })
	return out, nil
}

func (r *fakeEntriesRepo) Update(ctx context.Context, entry *models.NoteEntry) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	e, ok := r.entries[entry.ID]
	if !ok || e.NoteID != entry.NoteID {
		return common.ErrNotFound
	}
	cp := *entry
	cp.UpdatedAt = time.Now()
	r.entries[entry.ID] = &cp
	return nil
}

func (r *fakeEntriesRepo) Delete(ctx context.Context, noteID, id string) error {
	e, ok := r.entries[id]
	if !ok || e.NoteID != noteID {
		return common.ErrNotFound
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeRepoManager struct {
	n *fakeNotesRepo
	e *fakeEntriesRepo
}

func (m *fakeRepoManager) Notes(db dbx.DBTX) notes.Repository     { return m.n }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository { return m.e }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// -------- helpers --------

// openTestDB provides a throwaway connection for flows that open a real
// transaction around fake repositories.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AppOrigin = "https://notes.example.com"
	return cfg
}

func ownedNote(id, owner string, collabs ...models.Collaborator) *models.Note {
	return &models.Note{
		ID:            id,
		OwnerID:       owner,
		Title:         "test note",
		Collaborators: models.Collaborators(collabs),
	}
}

func newManager(seed ...*models.Note) *fakeRepoManager {
	return &fakeRepoManager{n: newFakeNotesRepo(seed...), e: newFakeEntriesRepo()}
}
