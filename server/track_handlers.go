package server

import (
	"fmt"
	"net/http"

	"vibemesh/logger"
	"vibemesh/model"
)

// maxUploadSize caps uploaded audio files at 100MB.
const maxUploadSize = 100 << 20

// ProcessTrackHandler handles POST /api/track-process/. It lands the
// uploaded file in the library, registers it, and answers with the
// analysis record: 200 when a cached record already existed, 201 when this
// request ran the remote pipeline.
func (h *APIHandler) ProcessTrackHandler(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadSize {
		respondJSON(w, http.StatusRequestEntityTooLarge,
			map[string]string{"error": fmt.Sprintf("file too large, maximum is %d MB", maxUploadSize>>20)})
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Error("Failed to parse upload form", logger.ErrorField(err))
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse upload form"})
		return
	}

	file, header, err := r.FormFile("trackFile")
	if err != nil {
		logger.Error("Missing track file in upload", logger.ErrorField(err))
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing trackFile field"})
		return
	}
	defer file.Close()

	trackName, trackPath, err := h.lib.SaveUpload(file, header)
	if err != nil {
		logger.Error("Failed to save upload", logger.ErrorField(err))
		respondError(w, err)
		return
	}

	// Tag metadata is best effort at upload time; the pipeline reads the
	// tags again when it shapes the record.
	metadata, err := h.tags.ReadTags(trackPath)
	if err != nil {
		logger.Warn("Could not read tags from upload",
			logger.String("track", trackName),
			logger.ErrorField(err))
	}

	if err := h.trackRepo.Upsert(&model.Track{
		Name:             trackName,
		OriginalFilename: header.Filename,
		FilePath:         trackPath,
		Artist:           metadata.Artist,
		Album:            metadata.Album,
		Year:             metadata.Year,
		AnalysisStatus:   model.AnalysisStatusPending,
	}); err != nil {
		logger.Warn("Failed to register uploaded track",
			logger.String("track", trackName),
			logger.ErrorField(err))
	}

	cached, err := h.svc.IsCached(r.Context(), trackName)
	if err != nil {
		logger.Error("Failed to check analysis cache",
			logger.String("track", trackName),
			logger.ErrorField(err))
		respondError(w, err)
		return
	}

	record, err := h.svc.GetAnalysis(r.Context(), trackName)
	if err != nil {
		logger.Error("Track analysis failed",
			logger.String("track", trackName),
			logger.ErrorField(err))
		h.setAnalysisStatus(trackName, model.AnalysisStatusFailed)
		respondError(w, err)
		return
	}
	h.setAnalysisStatus(trackName, model.AnalysisStatusCompleted)

	status := http.StatusCreated
	if cached {
		status = http.StatusOK
	}
	respondJSON(w, status, record)
}

// ListTracksHandler handles GET /api/tracks and returns the registry.
func (h *APIHandler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.trackRepo.List()
	if err != nil {
		logger.Error("Failed to list tracks", logger.ErrorField(err))
		respondError(w, err)
		return
	}
	if tracks == nil {
		tracks = []*model.Track{}
	}
	respondJSON(w, http.StatusOK, tracks)
}

// setAnalysisStatus records the analysis outcome in the registry. Registry
// failures are logged, not surfaced; the analysis result is the answer.
func (h *APIHandler) setAnalysisStatus(trackName, status string) {
	if err := h.trackRepo.UpdateAnalysisStatus(trackName, status); err != nil {
		logger.Warn("Failed to update analysis status",
			logger.String("track", trackName),
			logger.String("status", status),
			logger.ErrorField(err))
	}
}
