package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul977/voicenotes/internal/auth"
	"github.com/abdul977/voicenotes/internal/common"
	"github.com/abdul977/voicenotes/internal/logging"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/abdul977/voicenotes/internal/services"
)

var testSecret = []byte("test-secret")

// -------- fake services --------

type fakeNotes struct {
	note    *models.Note
	list    []*models.Note
	err     error
	renamed string
	deleted string
}

func (f *fakeNotes) Create(ctx context.Context, callerID, title string) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: "n1", OwnerID: callerID, Title: title, Collaborators: models.Collaborators{}}, nil
}

func (f *fakeNotes) Get(ctx context.Context, callerID, id string) (*models.Note, error) {
	return f.note, f.err
}

func (f *fakeNotes) List(ctx context.Context, callerID string) ([]*models.Note, error) {
	return f.list, f.err
}

func (f *fakeNotes) Rename(ctx context.Context, callerID, id, title string) error {
	f.renamed = id + ":" + title
	return f.err
}

func (f *fakeNotes) Delete(ctx context.Context, callerID, id string) error {
	f.deleted = id
	return f.err
}

type fakeEntries struct {
	entry *models.NoteEntry
	list  []*models.NoteEntry
	err   error

	gotAdd    services.AddEntryInput
	gotUpdate services.UpdateEntryInput
	deleted   string
}

func (f *fakeEntries) Add(ctx context.Context, callerID, noteID string, in services.AddEntryInput) (*models.NoteEntry, error) {
	f.gotAdd = in
	return f.entry, f.err
}

func (f *fakeEntries) Update(ctx context.Context, callerID, noteID, entryID string, in services.UpdateEntryInput) (*models.NoteEntry, error) {
	f.gotUpdate = in
	return f.entry, f.err
}

func (f *fakeEntries) Delete(ctx context.Context, callerID, noteID, entryID string) error {
	f.deleted = noteID + "/" + entryID
	return f.err
}

func (f *fakeEntries) List(ctx context.Context, callerID, noteID string) ([]*models.NoteEntry, error) {
	return f.list, f.err
}

func (f *fakeEntries) Transcribe(ctx context.Context, callerID, noteID, entryID string) (*models.NoteEntry, error) {
	return f.entry, f.err
}

func (f *fakeEntries) PresignAudioUpload(ctx context.Context, callerID string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "audio/key", "https://s3.test/put/audio/key", nil
}

type fakeSharing struct {
	link string
	note *models.Note
	list []*models.NoteEntry
	err  error

	invited     *models.Collaborator
	removed     string
	updatedPerm string
}

func (f *fakeSharing) Invite(ctx context.Context, callerID, noteID string, invite models.Collaborator) error {
	f.invited = &invite
	return f.err
}

func (f *fakeSharing) Remove(ctx context.Context, callerID, noteID, userID string) error {
	f.removed = userID
	return f.err
}

func (f *fakeSharing) UpdatePermission(ctx context.Context, callerID, noteID, userID string, perm models.Permission) error {
	f.updatedPerm = userID + ":" + string(perm)
	return f.err
}

func (f *fakeSharing) GenerateShareLink(ctx context.Context, callerID, noteID string) (string, error) {
	return f.link, f.err
}

func (f *fakeSharing) SharedNote(ctx context.Context, noteID, token string) (*models.Note, []*models.NoteEntry, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.note, f.list, nil
}

// -------- helpers --------

func newTestServer(n *fakeNotes, e *fakeEntries, sh *fakeSharing) *Server {
	if n == nil {
		n = &fakeNotes{}
	}
	if e == nil {
		e = &fakeEntries{}
	}
	if sh == nil {
		sh = &fakeSharing{}
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(n, e, sh, testSecret, logger)
}

func doRequest(t *testing.T, s *Server, method, target, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if caller != "" {
		token, err := auth.MintToken(caller, testSecret, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// -------- tests --------

func TestAuthRequired(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec2 := httptest.NewRecorder()
	s.Router().ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(nil, nil, nil), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateNote(t *testing.T) {
	s := newTestServer(&fakeNotes{}, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/notes", "alice", map[string]string{"title": "groceries"})
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeBody[noteJSON](t, rec)
	assert.Equal(t, "n1", got.ID)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, "groceries", got.Title)
	assert.NotNil(t, got.Collaborators)

	rec = doRequest(t, s, http.MethodPost, "/api/notes", "alice", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNoteHidesToken(t *testing.T) {
	n := &fakeNotes{note: &models.Note{
		ID:           "n1",
		OwnerID:      "alice",
		Title:        "secret plans",
		SharingToken: "supersecret",
	}}
	s := newTestServer(n, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/notes/n1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "supersecret")

	got := decodeBody[noteJSON](t, rec)
	assert.True(t, got.Shared)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{common.ErrNotFound, http.StatusNotFound},
		{common.ErrUnauthorized, http.StatusForbidden},
		{common.ErrWriteConflict, http.StatusConflict},
		{fmt.Errorf("db error: db is down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s := newTestServer(&fakeNotes{err: tt.err}, nil, nil)
			rec := doRequest(t, s, http.MethodGet, "/api/notes/n1", "alice", nil)
			assert.Equal(t, tt.code, rec.Code)

			got := decodeBody[errorResponse](t, rec)
			if tt.code == http.StatusInternalServerError {
				assert.Equal(t, "internal error", got.Error)
			} else {
				assert.Equal(t, tt.err.Error(), got.Error)
			}
		})
	}
}

func TestRenameAndDeleteNote(t *testing.T) {
	n := &fakeNotes{}
	s := newTestServer(n, nil, nil)

	rec := doRequest(t, s, http.MethodPatch, "/api/notes/n1", "alice", map[string]string{"title": "renamed"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "n1:renamed", n.renamed)

	rec = doRequest(t, s, http.MethodDelete, "/api/notes/n1", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "n1", n.deleted)
}

func TestAddEntry(t *testing.T) {
	e := &fakeEntries{entry: &models.NoteEntry{ID: "e1", NoteID: "n1", Content: "hello"}}
	s := newTestServer(nil, e, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/notes/n1/entries", "alice",
		map[string]any{"content": "hello", "entry_order": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, services.AddEntryInput{Content: "hello", EntryOrder: 2}, e.gotAdd)

	got := decodeBody[entryJSON](t, rec)
	assert.Equal(t, "e1", got.ID)

	rec = doRequest(t, s, http.MethodPost, "/api/notes/n1/entries", "alice", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateEntryPartialBody(t *testing.T) {
	e := &fakeEntries{entry: &models.NoteEntry{ID: "e1", NoteID: "n1", Content: "new"}}
	s := newTestServer(nil, e, nil)

	rec := doRequest(t, s, http.MethodPut, "/api/notes/n1/entries/e1", "alice",
		map[string]any{"content": "new"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, e.gotUpdate.Content)
	assert.Equal(t, "new", *e.gotUpdate.Content)
	assert.Nil(t, e.gotUpdate.AudioKey)
	assert.Nil(t, e.gotUpdate.EntryOrder)
}

func TestDeleteEntry(t *testing.T) {
	e := &fakeEntries{}
	s := newTestServer(nil, e, nil)

	rec := doRequest(t, s, http.MethodDelete, "/api/notes/n1/entries/e1", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "n1/e1", e.deleted)
}

func TestTranscribeEntry(t *testing.T) {
	e := &fakeEntries{entry: &models.NoteEntry{ID: "e1", NoteID: "n1", Content: "transcribed text"}}
	s := newTestServer(nil, e, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/notes/n1/entries/e1/transcribe", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[entryJSON](t, rec)
	assert.Equal(t, "transcribed text", got.Content)
}

func TestPresignUpload(t *testing.T) {
	s := newTestServer(nil, &fakeEntries{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/audio/uploads", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[uploadResponse](t, rec)
	assert.Equal(t, "audio/key", got.Key)
	assert.Equal(t, "https://s3.test/put/audio/key", got.UploadURL)
}

func TestAddCollaborator(t *testing.T) {
	sh := &fakeSharing{}
	s := newTestServer(nil, nil, sh)

	rec := doRequest(t, s, http.MethodPost, "/api/notes/n1/collaborators", "alice",
		map[string]string{"user_id": "bob", "email": "bob@example.com", "permission": "edit"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, sh.invited)
	assert.Equal(t, "bob", sh.invited.UserID)
	assert.Equal(t, models.PermissionEdit, sh.invited.Permission)

	t.Run("bad permission", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/notes/n1/collaborators", "alice",
			map[string]string{"user_id": "bob", "permission": "admin"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		s := newTestServer(nil, nil, &fakeSharing{err: common.ErrDuplicateCollaborator})
		rec := doRequest(t, s, http.MethodPost, "/api/notes/n1/collaborators", "alice",
			map[string]string{"user_id": "bob", "permission": "view"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestUpdateAndRemoveCollaborator(t *testing.T) {
	sh := &fakeSharing{}
	s := newTestServer(nil, nil, sh)

	rec := doRequest(t, s, http.MethodPatch, "/api/notes/n1/collaborators/bob", "alice",
		map[string]string{"permission": "edit"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "bob:edit", sh.updatedPerm)

	rec = doRequest(t, s, http.MethodDelete, "/api/notes/n1/collaborators/bob", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "bob", sh.removed)
}

func TestShareNote(t *testing.T) {
	sh := &fakeSharing{link: "https://notes.example.com/share/n1?token=abc"}
	s := newTestServer(nil, nil, sh)

	rec := doRequest(t, s, http.MethodPost, "/api/notes/n1/share", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[shareResponse](t, rec)
	assert.Equal(t, sh.link, got.URL)

	t.Run("generation failure", func(t *testing.T) {
		s := newTestServer(nil, nil, &fakeSharing{err: common.ErrLinkGeneration})
		rec := doRequest(t, s, http.MethodPost, "/api/notes/n1/share", "alice", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestSharedNotePublic(t *testing.T) {
	sh := &fakeSharing{
		note: &models.Note{
			ID:      "n1",
			OwnerID: "alice",
			Title:   "roadtrip",
			Collaborators: models.Collaborators{
				{UserID: "bob", Email: "bob@example.com", Permission: models.PermissionView},
			},
			SharingToken: "abc",
		},
		list: []*models.NoteEntry{{ID: "e1", NoteID: "n1", Content: "day one"}},
	}
	s := newTestServer(nil, nil, sh)

	// No Authorization header; the token in the query is the credential.
	rec := doRequest(t, s, http.MethodGet, "/share/n1?token=abc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[sharedNoteJSON](t, rec)
	assert.Equal(t, "roadtrip", got.Title)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "day one", got.Entries[0].Content)

	// Owner and collaborator details stay private.
	assert.NotContains(t, rec.Body.String(), "alice")
	assert.NotContains(t, rec.Body.String(), "bob@example.com")
	assert.NotContains(t, rec.Body.String(), "abc")

	t.Run("invalid token", func(t *testing.T) {
		s := newTestServer(nil, nil, &fakeSharing{err: common.ErrUnauthorized})
		rec := doRequest(t, s, http.MethodGet, "/share/n1?token=wrong", "", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
