package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"vibemesh/logger"
	"vibemesh/model"

	"golang.org/x/sync/singleflight"
)

// Store is the object cache holding shaped analysis records.
type Store interface {
	Exists(ctx context.Context, trackName string) (bool, error)
	Write(ctx context.Context, trackName string, data []byte) error
	Read(ctx context.Context, trackName string) ([]byte, error)
}

// HotCache is an optional fast cache consulted before the Store.
type HotCache interface {
	Get(ctx context.Context, trackName string) (*model.TrackAnalysis, error)
	Set(ctx context.Context, trackName string, analysis *model.TrackAnalysis) error
}

// RemoteClient drives the external analysis provider for one track.
type RemoteClient interface {
	Authenticate(ctx context.Context) (string, error)
	UploadInput(ctx context.Context, token, trackName, trackPath string) error
	SubmitJob(ctx context.Context, token, trackName string) (string, error)
	PollUntilTerminal(ctx context.Context, token, jobID string) (JobStatus, error)
	DownloadOutput(ctx context.Context, token, trackName string) (*RawAnalysisDocument, error)
}

// TagReader extracts file-tag metadata from a local audio file.
type TagReader interface {
	ReadTags(path string) (model.TrackMetadata, error)
}

// PathResolver maps a track name to its local file path. A missing upload
// is reported with an error wrapping os.ErrNotExist.
type PathResolver interface {
	TrackPath(trackName string) (string, error)
}

// Service is the track-analysis orchestrator: it answers from cache when a
// record exists and otherwise drives the full remote pipeline, populating
// the cache on success. Concurrent requests for the same track collapse
// into one pipeline run.
type Service struct {
	store    Store
	hot      HotCache
	client   RemoteClient
	tags     TagReader
	resolver PathResolver
	group    singleflight.Group
}

// NewService wires the orchestrator. hot may be nil; the service then runs
// against the object store alone.
func NewService(store Store, hot HotCache, client RemoteClient, tags TagReader, resolver PathResolver) *Service {
	return &Service{
		store:    store,
		hot:      hot,
		client:   client,
		tags:     tags,
		resolver: resolver,
	}
}

// GetAnalysis returns the analysis record for a track, from cache or by
// running the remote pipeline. Callers asking for the same track while a
// run is in flight share its result instead of starting their own.
func (s *Service) GetAnalysis(ctx context.Context, trackName string) (*model.TrackAnalysis, error) {
	v, err, shared := s.group.Do(trackName, func() (interface{}, error) {
		return s.getAnalysis(ctx, trackName)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Joined in-flight analysis", logger.String("track", trackName))
	}
	return v.(*model.TrackAnalysis), nil
}

// GetCached returns the record only if it is already cached; it never
// triggers the remote pipeline.
func (s *Service) GetCached(ctx context.Context, trackName string) (*model.TrackAnalysis, error) {
	if rec := s.hotGet(ctx, trackName); rec != nil {
		return rec, nil
	}
	data, err := s.store.Read(ctx, trackName)
	if err != nil {
		return nil, err
	}
	rec := &model.TrackAnalysis{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode cached analysis for %s: %w", trackName, err)
	}
	s.hotSet(ctx, trackName, rec)
	return rec, nil
}

// IsCached reports whether an analysis record exists for the track.
func (s *Service) IsCached(ctx context.Context, trackName string) (bool, error) {
	return s.store.Exists(ctx, trackName)
}

func (s *Service) getAnalysis(ctx context.Context, trackName string) (*model.TrackAnalysis, error) {
	if rec := s.hotGet(ctx, trackName); rec != nil {
		return rec, nil
	}

	exists, err := s.store.Exists(ctx, trackName)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Info("Analysis cache hit", logger.String("track", trackName))
		data, err := s.store.Read(ctx, trackName)
		if err != nil {
			return nil, err
		}
		rec := &model.TrackAnalysis{}
		if err := json.Unmarshal(data, rec); err != nil {
			return nil, fmt.Errorf("failed to decode cached analysis for %s: %w", trackName, err)
		}
		s.hotSet(ctx, trackName, rec)
		return rec, nil
	}

	logger.Info("Analysis cache miss, running remote pipeline", logger.String("track", trackName))
	return s.runPipeline(ctx, trackName)
}

// runPipeline executes the full remote analysis:
// authenticate, upload, submit, poll, download, shape, cache.
// Nothing is cached unless every stage succeeds.
func (s *Service) runPipeline(ctx context.Context, trackName string) (*model.TrackAnalysis, error) {
	trackPath, err := s.resolver.TrackPath(trackName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no uploaded file for %s: %w", trackName, ErrTrackNotFound)
		}
		return nil, err
	}

	token, err := s.client.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.client.UploadInput(ctx, token, trackName, trackPath); err != nil {
		return nil, err
	}

	jobID, err := s.client.SubmitJob(ctx, token, trackName)
	if err != nil {
		return nil, err
	}

	status, err := s.client.PollUntilTerminal(ctx, token, jobID)
	if err != nil {
		return nil, err
	}
	if status != StatusSuccess {
		return nil, fmt.Errorf("job %s for track %s ended with status %s: %w", jobID, trackName, status, ErrJobFailed)
	}

	doc, err := s.client.DownloadOutput(ctx, token, trackName)
	if err != nil {
		return nil, err
	}

	metadata, err := s.tags.ReadTags(trackPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags for %s: %w", trackName, err)
	}

	rec, err := Shape(doc, trackName, metadata)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis for %s: %w", trackName, err)
	}
	if err := s.store.Write(ctx, trackName, data); err != nil {
		return nil, err
	}
	s.hotSet(ctx, trackName, rec)

	logger.Info("Analysis pipeline completed",
		logger.String("track", trackName),
		logger.String("jobId", jobID))
	return rec, nil
}

func (s *Service) hotGet(ctx context.Context, trackName string) *model.TrackAnalysis {
	if s.hot == nil {
		return nil
	}
	rec, err := s.hot.Get(ctx, trackName)
	if err != nil {
		logger.Warn("Hot cache read failed",
			logger.String("track", trackName),
			logger.ErrorField(err))
		return nil
	}
	return rec
}

func (s *Service) hotSet(ctx context.Context, trackName string, rec *model.TrackAnalysis) {
	if s.hot == nil {
		return
	}
	if err := s.hot.Set(ctx, trackName, rec); err != nil {
		logger.Warn("Hot cache write failed",
			logger.String("track", trackName),
			logger.ErrorField(err))
	}
}
