package repository

import (
	"database/sql"
	"fmt"

	"vibemesh/model"
)

// TrackRepository persists the uploaded-track registry.
type TrackRepository interface {
	Upsert(track *model.Track) error
	GetByName(name string) (*model.Track, error)
	UpdateAnalysisStatus(name, status string) error
	List() ([]*model.Track, error)
}

// MySQLTrackRepository implements TrackRepository on MySQL.
type MySQLTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a track repository backed by the given DB.
func NewMySQLTrackRepository(db *sql.DB) *MySQLTrackRepository {
	return &MySQLTrackRepository{db: db}
}

// Upsert inserts a track row or refreshes it when the name already exists.
// Re-uploading the same file keeps the original row, updated in place.
func (r *MySQLTrackRepository) Upsert(track *model.Track) error {
	query := `
	INSERT INTO tracks (name, original_filename, file_path, artist, album, year, analysis_status)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		original_filename = VALUES(original_filename),
		file_path = VALUES(file_path),
		artist = VALUES(artist),
		album = VALUES(album),
		year = VALUES(year)`

	result, err := r.db.Exec(query,
		track.Name, track.OriginalFilename, track.FilePath,
		track.Artist, track.Album, track.Year, track.AnalysisStatus)
	if err != nil {
		return fmt.Errorf("failed to upsert track %s: %w", track.Name, err)
	}

	if id, err := result.LastInsertId(); err == nil && id > 0 {
		track.ID = id
	}
	return nil
}

// GetByName fetches one track by its normalized name, or nil if absent.
func (r *MySQLTrackRepository) GetByName(name string) (*model.Track, error) {
	query := `
	SELECT id, name, original_filename, file_path, artist, album, year, analysis_status, created_at, updated_at
	FROM tracks WHERE name = ?`

	track := &model.Track{}
	err := r.db.QueryRow(query, name).Scan(
		&track.ID, &track.Name, &track.OriginalFilename, &track.FilePath,
		&track.Artist, &track.Album, &track.Year, &track.AnalysisStatus,
		&track.CreatedAt, &track.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", name, err)
	}
	return track, nil
}

// UpdateAnalysisStatus records the outcome of an analysis run.
func (r *MySQLTrackRepository) UpdateAnalysisStatus(name, status string) error {
	if _, err := r.db.Exec(`UPDATE tracks SET analysis_status = ? WHERE name = ?`, status, name); err != nil {
		return fmt.Errorf("failed to update analysis status for %s: %w", name, err)
	}
	return nil
}

// List returns all registered tracks, newest first.
func (r *MySQLTrackRepository) List() ([]*model.Track, error) {
	query := `
	SELECT id, name, original_filename, file_path, artist, album, year, analysis_status, created_at, updated_at
	FROM tracks ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*model.Track
	for rows.Next() {
		track := &model.Track{}
		if err := rows.Scan(
			&track.ID, &track.Name, &track.OriginalFilename, &track.FilePath,
			&track.Artist, &track.Album, &track.Year, &track.AnalysisStatus,
			&track.CreatedAt, &track.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
