// Package httpapi exposes the note, entry and sharing services over HTTP.
// Everything under /api requires a bearer token; /share/{id} is public and
// guarded by the note's sharing token instead.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abdul977/voicenotes/internal/auth"
	"github.com/abdul977/voicenotes/internal/logging"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/abdul977/voicenotes/internal/services"
)

// NoteService is the slice of the note service the handlers need.
type NoteService interface {
	Create(ctx context.Context, callerID, title string) (*models.Note, error)
	Get(ctx context.Context, callerID, id string) (*models.Note, error)
	List(ctx context.Context, callerID string) ([]*models.Note, error)
	Rename(ctx context.Context, callerID, id, title string) error
	Delete(ctx context.Context, callerID, id string) error
}

// EntryService is the slice of the entry service the handlers need.
type EntryService interface {
	Add(ctx context.Context, callerID, noteID string, in services.AddEntryInput) (*models.NoteEntry, error)
	Update(ctx context.Context, callerID, noteID, entryID string, in services.UpdateEntryInput) (*models.NoteEntry, error)
	Delete(ctx context.Context, callerID, noteID, entryID string) error
	List(ctx context.Context, callerID, noteID string) ([]*models.NoteEntry, error)
	Transcribe(ctx context.Context, callerID, noteID, entryID string) (*models.NoteEntry, error)
	PresignAudioUpload(ctx context.Context, callerID string) (string, string, error)
}

// SharingService is the slice of the sharing service the handlers need.
type SharingService interface {
	Invite(ctx context.Context, callerID, noteID string, invite models.Collaborator) error
	Remove(ctx context.Context, callerID, noteID, userID string) error
	UpdatePermission(ctx context.Context, callerID, noteID, userID string, perm models.Permission) error
	GenerateShareLink(ctx context.Context, callerID, noteID string) (string, error)
	SharedNote(ctx context.Context, noteID, token string) (*models.Note, []*models.NoteEntry, error)
}

type Server struct {
	notes     NoteService
	entries   EntryService
	sharing   SharingService
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(notes NoteService, entries EntryService, sharing SharingService, jwtSecret []byte, logger logging.Logger) *Server {
	return &Server{
		notes:     notes,
		entries:   entries,
		sharing:   sharing,
		jwtSecret: jwtSecret,
		logger:    logger.With("module", "httpapi"),
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/share/{id}", s.sharedNote).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(s.jwtSecret))

	api.HandleFunc("/notes", s.createNote).Methods(http.MethodPost)
	api.HandleFunc("/notes", s.listNotes).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id}", s.getNote).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id}", s.renameNote).Methods(http.MethodPatch)
	api.HandleFunc("/notes/{id}", s.deleteNote).Methods(http.MethodDelete)

	api.HandleFunc("/notes/{id}/entries", s.listEntries).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id}/entries", s.addEntry).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id}/entries/{entryID}", s.updateEntry).Methods(http.MethodPut)
	api.HandleFunc("/notes/{id}/entries/{entryID}", s.deleteEntry).Methods(http.MethodDelete)
	api.HandleFunc("/notes/{id}/entries/{entryID}/transcribe", s.transcribeEntry).Methods(http.MethodPost)

	api.HandleFunc("/notes/{id}/collaborators", s.addCollaborator).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id}/collaborators/{userID}", s.updateCollaborator).Methods(http.MethodPatch)
	api.HandleFunc("/notes/{id}/collaborators/{userID}", s.removeCollaborator).Methods(http.MethodDelete)

	api.HandleFunc("/notes/{id}/share", s.shareNote).Methods(http.MethodPost)
	api.HandleFunc("/audio/uploads", s.presignUpload).Methods(http.MethodPost)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
