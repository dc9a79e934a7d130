package analysis

import (
	"encoding/json"
	"fmt"
)

// LabelConfidence is one provider reading, transported on the wire as a
// two-element array: ["C", 0.9].
type LabelConfidence struct {
	Label      string
	Confidence float64
}

// UnmarshalJSON decodes the provider's [label, confidence] pair form.
func (p *LabelConfidence) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("reading is not an array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("reading has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Label); err != nil {
		return fmt.Errorf("reading label: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Confidence); err != nil {
		return fmt.Errorf("reading confidence: %w", err)
	}
	return nil
}

// MarshalJSON keeps the wire form symmetric with UnmarshalJSON.
func (p LabelConfidence) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.Label, p.Confidence})
}

// Section is one analyzed region of the track. The provider emits exactly
// one for whole-file analysis.
type Section struct {
	Duration   float64           `json:"duration"`
	Loudness   float64           `json:"loudness"`
	BPM        float64           `json:"bpm"`
	Key        []LabelConfidence `json:"key"`
	Genre      []LabelConfidence `json:"genre"`
	Instrument []LabelConfidence `json:"instrument"`
}

// RawAnalysisDocument is the typed subset of the provider's analysis
// output that this system consumes. Unknown fields are ignored.
type RawAnalysisDocument struct {
	ProcessedRegion struct {
		Audio struct {
			Music struct {
				Sections []Section `json:"sections"`
			} `json:"music"`
		} `json:"audio"`
	} `json:"processed_region"`
}

// ParseDocument decodes raw provider JSON, failing with
// ErrMalformedDocument when the payload cannot be decoded.
func ParseDocument(data []byte) (*RawAnalysisDocument, error) {
	var doc RawAnalysisDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}
