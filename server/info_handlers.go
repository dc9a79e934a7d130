package server

import (
	"net/http"

	"vibemesh/logger"

	"github.com/gorilla/mux"
)

// CoverImageHandler handles GET /api/track-characteristics/cover-image/{trackname}
// and returns the track's embedded cover art as {format, data(base64)}.
func (h *APIHandler) CoverImageHandler(w http.ResponseWriter, r *http.Request) {
	trackName := mux.Vars(r)["trackname"]

	trackPath, err := h.lib.TrackPath(trackName)
	if err != nil {
		logger.Error("Track not found for cover image",
			logger.String("track", trackName),
			logger.ErrorField(err))
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "track not found"})
		return
	}

	cover, err := h.tags.ReadCover(trackPath)
	if err != nil {
		logger.Error("Failed to read cover image",
			logger.String("track", trackName),
			logger.ErrorField(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cover)
}

// TrackPathHandler handles GET /api/track-info/track-path/{trackname} and
// returns the local file path of the uploaded track.
func (h *APIHandler) TrackPathHandler(w http.ResponseWriter, r *http.Request) {
	trackName := mux.Vars(r)["trackname"]

	trackPath, err := h.lib.TrackPath(trackName)
	if err != nil {
		logger.Error("Track not found",
			logger.String("track", trackName),
			logger.ErrorField(err))
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "track not found"})
		return
	}
	respondJSON(w, http.StatusOK, trackPath)
}
