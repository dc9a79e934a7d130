package server

import (
	"encoding/json"
	"net/http"

	"vibemesh/logger"
	"vibemesh/model"

	"github.com/gorilla/mux"
)

// AnalyzeTrackHandler handles POST /api/track-analyze/. It runs the
// orchestration for the named track (cache hit or full remote pipeline)
// and returns the normalized record.
func (h *APIHandler) AnalyzeTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackName string `json:"trackname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TrackName == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "trackname is required"})
		return
	}

	record, err := h.svc.GetAnalysis(r.Context(), req.TrackName)
	if err != nil {
		logger.Error("Track analysis failed",
			logger.String("track", req.TrackName),
			logger.ErrorField(err))
		h.setAnalysisStatus(req.TrackName, model.AnalysisStatusFailed)
		respondError(w, err)
		return
	}
	h.setAnalysisStatus(req.TrackName, model.AnalysisStatusCompleted)

	respondJSON(w, http.StatusCreated, record)
}

// GetAnalysisHandler handles GET /api/track-analyze/{trackname}. It only
// reads the cache; it never triggers the remote pipeline.
func (h *APIHandler) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	trackName := mux.Vars(r)["trackname"]

	record, err := h.svc.GetCached(r.Context(), trackName)
	if err != nil {
		logger.Error("Failed to read cached analysis",
			logger.String("track", trackName),
			logger.ErrorField(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}
