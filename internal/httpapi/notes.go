package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abdul977/voicenotes/internal/auth"
	"github.com/abdul977/voicenotes/internal/models"
)

// noteJSON is the authenticated wire shape of a note. The sharing token
// itself is never included; Shared only says a link exists.
type noteJSON struct {
	ID            string               `json:"id"`
	OwnerID       string               `json:"owner_id"`
	Title         string               `json:"title"`
	Collaborators models.Collaborators `json:"collaborators"`
	Shared        bool                 `json:"shared"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func toNoteJSON(n *models.Note) noteJSON {
	collabs := n.Collaborators
	if collabs == nil {
		collabs = models.Collaborators{}
	}
	return noteJSON{
		ID:            n.ID,
		OwnerID:       n.OwnerID,
		Title:         n.Title,
		Collaborators: collabs,
		Shared:        n.SharingToken != "",
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

type noteRequest struct {
	Title string `json:"title"`
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if req.Title == "" {
		badRequest(w, "title is required")
		return
	}

	note, err := s.notes.Create(r.Context(), auth.UserIDFromContext(r.Context()), req.Title)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteJSON(note))
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteJSON(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteJSON(note))
}

func (s *Server) renameNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if req.Title == "" {
		badRequest(w, "title is required")
		return
	}

	err := s.notes.Rename(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], req.Title)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	err := s.notes.Delete(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
