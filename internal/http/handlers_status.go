package httpapi

import (
	"net/http"
	"strconv"
)

// HandleStatus increments the persistent hit counter and returns the new value as plain text
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Msg("Status endpoint called")

	hits, err := h.store.IncrementAndGetHits(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Error updating hits")
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.logger.Info().Int64("hits", hits).Msg("Status hits updated successfully")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strconv.FormatInt(hits, 10)))
}
