package model

import "time"

// Track analysis status values stored in the registry.
const (
	AnalysisStatusPending   = "pending"
	AnalysisStatusCompleted = "completed"
	AnalysisStatusFailed    = "failed"
)

// Track represents an uploaded audio track in the library registry.
type Track struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"` // Normalized track name, also the cache key
	OriginalFilename string    `json:"originalFilename"`
	FilePath         string    `json:"-"` // Path to the original audio file, not exposed in API directly
	Artist           string    `json:"artist"`
	Album            string    `json:"album"`
	Year             string    `json:"year"`
	AnalysisStatus   string    `json:"analysisStatus"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
