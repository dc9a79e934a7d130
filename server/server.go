package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibemesh/cache"
	"vibemesh/config"
	"vibemesh/core/analysis"
	"vibemesh/core/library"
	"vibemesh/core/metadata"
	"vibemesh/db"
	"vibemesh/logger"
	"vibemesh/repository"
	"vibemesh/storage"

	"github.com/gorilla/mux"
)

// newRouter registers the API routes and middleware.
func newRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestIDMiddleware)

	// The browser posts to these paths with a trailing slash; register both
	// forms so a redirect never swallows a POST body.
	router.HandleFunc("/api/track-process", apiHandler.ProcessTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/track-process/", apiHandler.ProcessTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/track-analyze", apiHandler.AnalyzeTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/track-analyze/", apiHandler.AnalyzeTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/track-analyze/{trackname}", apiHandler.GetAnalysisHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/track-characteristics/cover-image/{trackname}", apiHandler.CoverImageHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/track-info/track-path/{trackname}", apiHandler.TrackPathHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", apiHandler.ListTracksHandler).Methods(http.MethodGet)

	return router
}

// Start wires all collaborators and runs the HTTP server until interrupted.
func Start(cfg *config.Config) {
	store, err := storage.NewAnalysisStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize analysis store", logger.ErrorField(err))
	}

	// The hot cache is optional: without Redis the service still answers
	// from the object store.
	var hot analysis.HotCache
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without hot cache", logger.ErrorField(err))
	} else {
		defer redisClient.Close()
		hot = cache.NewAnalysisCache(redisClient, cfg.AnalysisCacheTTL)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer database.Close()
	if err := db.InitSchema(database); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}

	lib, err := library.New(cfg.UploadDir)
	if err != nil {
		logger.Fatal("Failed to initialize track library", logger.ErrorField(err))
	}

	tags := metadata.NewReader()
	client := analysis.NewClient(cfg)
	svc := analysis.NewService(store, hot, client, tags, lib)
	trackRepo := repository.NewMySQLTrackRepository(database)

	apiHandler := NewAPIHandler(svc, lib, tags, trackRepo, cfg)

	router := newRouter(apiHandler)

	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 5 * time.Minute,
		// Analyze requests block for the whole provider polling window, so
		// no write timeout is set; the poll budget bounds them instead.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
