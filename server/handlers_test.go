package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vibemesh/config"
	"vibemesh/core/library"
	"vibemesh/model"
	"vibemesh/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	record   *model.TrackAnalysis
	err      error
	cached   bool
	getCalls int
}

func (f *fakeService) GetAnalysis(ctx context.Context, trackName string) (*model.TrackAnalysis, error) {
	f.getCalls++
	return f.record, f.err
}

func (f *fakeService) GetCached(ctx context.Context, trackName string) (*model.TrackAnalysis, error) {
	if f.record == nil {
		return nil, fmt.Errorf("analysis for %s: %w", trackName, storage.ErrNotFound)
	}
	return f.record, f.err
}

func (f *fakeService) IsCached(ctx context.Context, trackName string) (bool, error) {
	return f.cached, nil
}

type fakeTagReader struct {
	metadata model.TrackMetadata
	cover    *model.CoverImage
}

func (f *fakeTagReader) ReadTags(path string) (model.TrackMetadata, error) {
	return f.metadata, nil
}

func (f *fakeTagReader) ReadCover(path string) (*model.CoverImage, error) {
	if f.cover == nil {
		return nil, fmt.Errorf("no cover image embedded in %s", path)
	}
	return f.cover, nil
}

type fakeTrackRepo struct {
	tracks   []*model.Track
	statuses map[string]string
}

func newFakeTrackRepo() *fakeTrackRepo {
	return &fakeTrackRepo{statuses: map[string]string{}}
}

func (r *fakeTrackRepo) Upsert(track *model.Track) error {
	r.tracks = append(r.tracks, track)
	return nil
}

func (r *fakeTrackRepo) GetByName(name string) (*model.Track, error) {
	for _, track := range r.tracks {
		if track.Name == name {
			return track, nil
		}
	}
	return nil, nil
}

func (r *fakeTrackRepo) UpdateAnalysisStatus(name, status string) error {
	r.statuses[name] = status
	return nil
}

func (r *fakeTrackRepo) List() ([]*model.Track, error) {
	return r.tracks, nil
}

func testRecord() *model.TrackAnalysis {
	return &model.TrackAnalysis{
		Name:     "mytrack",
		Artist:   "A",
		Album:    "B",
		Year:     "2020",
		Duration: 180,
		Loudness: -8,
		BPM:      120,
		Keys:     []model.KeyReading{{Major: "C", Confidence: 0.9}},
	}
}

type testEnv struct {
	mux  http.Handler
	svc  *fakeService
	repo *fakeTrackRepo
	lib  *library.Library
	dir  string
}

func newTestEnv(t *testing.T, svc *fakeService, tags TagReader) *testEnv {
	t.Helper()
	dir := t.TempDir()
	lib, err := library.New(dir)
	require.NoError(t, err)

	repo := newFakeTrackRepo()
	handler := NewAPIHandler(svc, lib, tags, repo, &config.Config{UploadDir: dir})
	return &testEnv{
		mux:  newRouter(handler),
		svc:  svc,
		repo: repo,
		lib:  lib,
		dir:  dir,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func TestAnalyzeTrackHandler(t *testing.T) {
	env := newTestEnv(t, &fakeService{record: testRecord()}, &fakeTagReader{})

	body := strings.NewReader(`{"trackname": "mytrack"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/track-analyze/", body)
	rr := env.do(req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got model.TrackAnalysis
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, *testRecord(), got)
	assert.Equal(t, model.AnalysisStatusCompleted, env.repo.statuses["mytrack"])
}

func TestAnalyzeTrackHandlerRequiresTrackname(t *testing.T) {
	env := newTestEnv(t, &fakeService{record: testRecord()}, &fakeTagReader{})

	req := httptest.NewRequest(http.MethodPost, "/api/track-analyze/", strings.NewReader(`{}`))
	rr := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, env.svc.getCalls)
}

func TestAnalyzeTrackHandlerPipelineFailure(t *testing.T) {
	env := newTestEnv(t, &fakeService{err: fmt.Errorf("provider exploded")}, &fakeTagReader{})

	body := strings.NewReader(`{"trackname": "mytrack"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/track-analyze/", body)
	rr := env.do(req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "provider exploded")
	assert.Equal(t, model.AnalysisStatusFailed, env.repo.statuses["mytrack"])
}

func TestGetAnalysisHandler(t *testing.T) {
	env := newTestEnv(t, &fakeService{record: testRecord()}, &fakeTagReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/track-analyze/mytrack", nil)
	rr := env.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got model.TrackAnalysis
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "mytrack", got.Name)
}

func TestGetAnalysisHandlerNotFound(t *testing.T) {
	env := newTestEnv(t, &fakeService{}, &fakeTagReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/track-analyze/unknown", nil)
	rr := env.do(req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("trackFile", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/track-process/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestProcessTrackHandlerRunsAnalysis(t *testing.T) {
	env := newTestEnv(t, &fakeService{record: testRecord(), cached: false}, &fakeTagReader{})

	rr := env.do(multipartUpload(t, "my track.mp3", []byte("mp3 bytes")))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, env.svc.getCalls)

	// The upload landed under its normalized name.
	_, err := os.Stat(filepath.Join(env.dir, "mytrack.mp3"))
	assert.NoError(t, err)

	// The track got registered.
	require.Len(t, env.repo.tracks, 1)
	assert.Equal(t, "mytrack", env.repo.tracks[0].Name)
	assert.Equal(t, "my track.mp3", env.repo.tracks[0].OriginalFilename)
}

func TestProcessTrackHandlerCachedTrack(t *testing.T) {
	env := newTestEnv(t, &fakeService{record: testRecord(), cached: true}, &fakeTagReader{})

	rr := env.do(multipartUpload(t, "mytrack.mp3", []byte("mp3 bytes")))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProcessTrackHandlerMissingFile(t *testing.T) {
	env := newTestEnv(t, &fakeService{record: testRecord()}, &fakeTagReader{})

	req := httptest.NewRequest(http.MethodPost, "/api/track-process/", strings.NewReader("not a form"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	rr := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTrackPathHandler(t *testing.T) {
	env := newTestEnv(t, &fakeService{}, &fakeTagReader{})
	path := filepath.Join(env.dir, "mytrack.mp3")
	require.NoError(t, os.WriteFile(path, []byte("mp3"), 0644))

	req := httptest.NewRequest(http.MethodGet, "/api/track-info/track-path/mytrack", nil)
	rr := env.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, path, got)
}

func TestTrackPathHandlerNotFound(t *testing.T) {
	env := newTestEnv(t, &fakeService{}, &fakeTagReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/track-info/track-path/nope", nil)
	rr := env.do(req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCoverImageHandler(t *testing.T) {
	cover := &model.CoverImage{Format: "image/jpeg", Data: "aGVsbG8="}
	env := newTestEnv(t, &fakeService{}, &fakeTagReader{cover: cover})
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "mytrack.mp3"), []byte("mp3"), 0644))

	req := httptest.NewRequest(http.MethodGet, "/api/track-characteristics/cover-image/mytrack", nil)
	rr := env.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got model.CoverImage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, *cover, got)
}

func TestListTracksHandler(t *testing.T) {
	env := newTestEnv(t, &fakeService{}, &fakeTagReader{})
	require.NoError(t, env.repo.Upsert(&model.Track{Name: "mytrack"}))

	req := httptest.NewRequest(http.MethodGet, "/api/tracks", nil)
	rr := env.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []*model.Track
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "mytrack", got[0].Name)
}
