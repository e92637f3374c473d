package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abdul977/voicenotes/internal/auth"
	"github.com/abdul977/voicenotes/internal/models"
)

type collaboratorRequest struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Permission  string `json:"permission"`
}

func (s *Server) addCollaborator(w http.ResponseWriter, r *http.Request) {
	var req collaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if req.UserID == "" && req.Email == "" {
		badRequest(w, "user_id or email is required")
		return
	}
	perm := models.Permission(req.Permission)
	if !perm.Valid() {
		badRequest(w, "permission must be view or edit")
		return
	}

	err := s.sharing.Invite(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], models.Collaborator{
		UserID:      req.UserID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Permission:  perm,
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type permissionRequest struct {
	Permission string `json:"permission"`
}

func (s *Server) updateCollaborator(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	perm := models.Permission(req.Permission)
	if !perm.Valid() {
		badRequest(w, "permission must be view or edit")
		return
	}

	vars := mux.Vars(r)
	err := s.sharing.UpdatePermission(r.Context(), auth.UserIDFromContext(r.Context()), vars["id"], vars["userID"], perm)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeCollaborator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := s.sharing.Remove(r.Context(), auth.UserIDFromContext(r.Context()), vars["id"], vars["userID"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type shareResponse struct {
	URL string `json:"url"`
}

func (s *Server) shareNote(w http.ResponseWriter, r *http.Request) {
	link, err := s.sharing.GenerateShareLink(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{URL: link})
}

// sharedNoteJSON is the public projection behind a share link. It carries
// no owner or collaborator details.
type sharedNoteJSON struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Entries   []entryJSON `json:"entries"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (s *Server) sharedNote(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")

	note, entries, err := s.sharing.SharedNote(r.Context(), noteID, token)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	out := sharedNoteJSON{
		ID:        note.ID,
		Title:     note.Title,
		Entries:   make([]entryJSON, 0, len(entries)),
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, toEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}
