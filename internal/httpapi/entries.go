package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abdul977/voicenotes/internal/auth"
	"github.com/abdul977/voicenotes/internal/models"
	"github.com/abdul977/voicenotes/internal/services"
)

type entryJSON struct {
	ID         string    `json:"id"`
	NoteID     string    `json:"note_id"`
	Content    string    `json:"content"`
	AudioURL   string    `json:"audio_url,omitempty"`
	AudioKey   string    `json:"audio_key,omitempty"`
	EntryOrder int       `json:"entry_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toEntryJSON(e *models.NoteEntry) entryJSON {
	return entryJSON{
		ID:         e.ID,
		NoteID:     e.NoteID,
		Content:    e.Content,
		AudioURL:   e.AudioURL,
		AudioKey:   e.AudioKey,
		EntryOrder: e.EntryOrder,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.List(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type addEntryRequest struct {
	Content    string `json:"content"`
	AudioKey   string `json:"audio_key"`
	EntryOrder int    `json:"entry_order"`
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if req.Content == "" && req.AudioKey == "" {
		badRequest(w, "entry needs content or audio_key")
		return
	}

	entry, err := s.entries.Add(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], services.AddEntryInput{
		Content:    req.Content,
		AudioKey:   req.AudioKey,
		EntryOrder: req.EntryOrder,
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryJSON(entry))
}

type updateEntryRequest struct {
	Content    *string `json:"content"`
	AudioKey   *string `json:"audio_key"`
	EntryOrder *int    `json:"entry_order"`
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	vars := mux.Vars(r)
	entry, err := s.entries.Update(r.Context(), auth.UserIDFromContext(r.Context()), vars["id"], vars["entryID"], services.UpdateEntryInput{
		Content:    req.Content,
		AudioKey:   req.AudioKey,
		EntryOrder: req.EntryOrder,
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(entry))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := s.entries.Delete(r.Context(), auth.UserIDFromContext(r.Context()), vars["id"], vars["entryID"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) transcribeEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entry, err := s.entries.Transcribe(r.Context(), auth.UserIDFromContext(r.Context()), vars["id"], vars["entryID"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(entry))
}

type uploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

func (s *Server) presignUpload(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.entries.PresignAudioUpload(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Key: key, UploadURL: url})
}
