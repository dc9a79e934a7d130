// Package library manages the local uploads directory: it lands uploaded
// audio files under normalized names and resolves track names back to
// paths on disk.
package library

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"vibemesh/logger"
)

// Library is the on-disk collection of uploaded tracks.
type Library struct {
	uploadDir string
}

// New creates a Library rooted at uploadDir, creating it if needed.
func New(uploadDir string) (*Library, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", uploadDir, err)
	}
	return &Library{uploadDir: uploadDir}, nil
}

// NormalizeFilename strips all whitespace from a filename. The result is
// the canonical on-disk name of an upload.
func NormalizeFilename(filename string) string {
	return strings.Join(strings.Fields(filename), "")
}

// TrackNameFromFilename derives the track identifier from an original
// filename: whitespace removed, extension dropped. The same identifier
// addresses the upload, the provider namespace, and the cache key space.
func TrackNameFromFilename(filename string) string {
	normalized := NormalizeFilename(filename)
	return strings.TrimSuffix(normalized, filepath.Ext(normalized))
}

// SaveUpload writes a multipart upload into the library under its
// normalized filename, overwriting any previous upload of the same name.
// It returns the derived track name and the file's path.
func (l *Library) SaveUpload(file multipart.File, header *multipart.FileHeader) (trackName, path string, err error) {
	normalized := NormalizeFilename(header.Filename)
	if normalized == "" {
		return "", "", fmt.Errorf("upload has an empty filename")
	}

	path = filepath.Join(l.uploadDir, normalized)
	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create upload file %s: %w", path, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		return "", "", fmt.Errorf("failed to save upload %s: %w", path, err)
	}

	trackName = strings.TrimSuffix(normalized, filepath.Ext(normalized))
	logger.Info("Saved uploaded track",
		logger.String("track", trackName),
		logger.String("path", path),
		logger.Int64("bytes", written))
	return trackName, path, nil
}

// TrackPath resolves a track name to its file in the uploads directory.
// A missing file is reported with an error wrapping os.ErrNotExist.
func (l *Library) TrackPath(trackName string) (string, error) {
	path := filepath.Join(l.uploadDir, trackName+".mp3")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("track file %s: %w", path, os.ErrNotExist)
		}
		return "", fmt.Errorf("failed to stat track file %s: %w", path, err)
	}
	return path, nil
}
