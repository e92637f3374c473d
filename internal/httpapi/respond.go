package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abdul977/voicenotes/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Unknown errors become
// an opaque 500 so internals never leak into responses.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateCollaborator):
		status = http.StatusConflict
	case errors.Is(err, common.ErrWriteConflict):
		status = http.StatusConflict
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrLinkGeneration):
		status = http.StatusBadGateway
	default:
		s.logger.Error(ctx, "request failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: common.ErrInternal.Error()})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
