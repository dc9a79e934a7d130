package model

// KeyReading is one detected musical key with its confidence.
type KeyReading struct {
	Major      string  `json:"major"`
	Confidence float64 `json:"confidence"`
}

// GenreReading is one detected genre with its confidence.
type GenreReading struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// InstrumentReading is one detected instrument with its confidence.
type InstrumentReading struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// TrackAnalysis is the normalized analysis record for one track. Once
// written to the object store under its track name it is treated as
// immutable and authoritative.
type TrackAnalysis struct {
	Name          string              `json:"name"`
	Artist        string              `json:"artist,omitempty"`
	Album         string              `json:"album,omitempty"`
	Year          string              `json:"year,omitempty"`
	Duration      float64             `json:"duration"`
	Loudness      float64             `json:"loudness"` // Negative-valued, LUFS-like
	BPM           float64             `json:"bpm"`
	Keys          []KeyReading        `json:"keys"`
	Genres        []GenreReading      `json:"genres"`
	Instrumentals []InstrumentReading `json:"instrumentals"`
}

// TrackMetadata is the subset of file-tag metadata merged into an analysis.
type TrackMetadata struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Year   string `json:"year"`
}

// CoverImage is embedded cover art extracted from a track's tags.
type CoverImage struct {
	Format string `json:"format"` // MIME type, e.g. image/jpeg
	Data   string `json:"data"`   // Base64-encoded image bytes
}
