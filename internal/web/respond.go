// SPDX-License-Identifier: MIT

package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wyniki-tenis/overlayd/internal/log"
	"github.com/wyniki-tenis/overlayd/internal/overlay"
	"github.com/wyniki-tenis/overlayd/internal/store"
)

// conflictMessage is the user-facing duplicate kort_id message.
const conflictMessage = "Kort o podanym ID już istnieje."

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondStoreError maps domain errors onto HTTP statuses: validation 400,
// duplicate kort_id 409, missing row 404, anything else 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *overlay.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Fields})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"errors": map[string]string{"kort_id": conflictMessage},
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	default:
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Msg("storage operation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
