package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"vibemesh/config"
	"vibemesh/core/analysis"
	"vibemesh/core/library"
	"vibemesh/logger"
	"vibemesh/model"
	"vibemesh/repository"
	"vibemesh/storage"

	"github.com/google/uuid"
)

// AnalysisService is the orchestrator surface the handlers depend on.
type AnalysisService interface {
	GetAnalysis(ctx context.Context, trackName string) (*model.TrackAnalysis, error)
	GetCached(ctx context.Context, trackName string) (*model.TrackAnalysis, error)
	IsCached(ctx context.Context, trackName string) (bool, error)
}

// TagReader extracts tag metadata and cover art from local files.
type TagReader interface {
	ReadTags(path string) (model.TrackMetadata, error)
	ReadCover(path string) (*model.CoverImage, error)
}

// APIHandler holds the collaborators behind the HTTP surface.
type APIHandler struct {
	svc       AnalysisService
	lib       *library.Library
	tags      TagReader
	trackRepo repository.TrackRepository
	cfg       *config.Config
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	svc AnalysisService,
	lib *library.Library,
	tags TagReader,
	trackRepo repository.TrackRepository,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		svc:       svc,
		lib:       lib,
		tags:      tags,
		trackRepo: trackRepo,
		cfg:       cfg,
	}
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// respondError converts a failure into the client-visible error body. The
// handlers are the single point where pipeline errors become HTTP responses.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	if errors.Is(err, analysis.ErrTrackNotFound) || errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// corsMiddleware allows the browser client to call the API cross-origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with an id for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger.Debug("Request received",
			logger.String("requestId", requestID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("remoteAddr", r.RemoteAddr))

		next.ServeHTTP(w, r)
	})
}
