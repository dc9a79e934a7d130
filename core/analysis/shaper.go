package analysis

import (
	"fmt"

	"vibemesh/model"
)

// Shape transforms a raw provider document plus file-tag metadata into the
// normalized analysis record. Whole-file analysis yields exactly one
// section; a document with none is rejected as malformed. Confidence
// scores are passed through unnormalized.
func Shape(doc *RawAnalysisDocument, trackName string, metadata model.TrackMetadata) (*model.TrackAnalysis, error) {
	sections := doc.ProcessedRegion.Audio.Music.Sections
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: document has no sections", ErrMalformedDocument)
	}
	section := sections[0]

	keys := make([]model.KeyReading, 0, len(section.Key))
	for _, k := range section.Key {
		keys = append(keys, model.KeyReading{Major: k.Label, Confidence: k.Confidence})
	}

	genres := make([]model.GenreReading, 0, len(section.Genre))
	for _, g := range section.Genre {
		genres = append(genres, model.GenreReading{Type: g.Label, Confidence: g.Confidence})
	}

	instrumentals := make([]model.InstrumentReading, 0, len(section.Instrument))
	for _, i := range section.Instrument {
		instrumentals = append(instrumentals, model.InstrumentReading{Type: i.Label, Confidence: i.Confidence})
	}

	return &model.TrackAnalysis{
		Name:          trackName,
		Artist:        metadata.Artist,
		Album:         metadata.Album,
		Year:          metadata.Year,
		Duration:      section.Duration,
		Loudness:      section.Loudness,
		BPM:           section.BPM,
		Keys:          keys,
		Genres:        genres,
		Instrumentals: instrumentals,
	}, nil
}
