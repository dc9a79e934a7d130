package analysis

import (
	"testing"

	"vibemesh/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
	"processed_region": {
		"audio": {
			"music": {
				"sections": [
					{
						"bpm": 120,
						"key": [["C", 0.9]],
						"genre": [["pop", 0.8]],
						"instrument": [["guitar", 0.7]],
						"duration": 180.0,
						"loudness": -8.0
					}
				]
			}
		}
	}
}`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	sections := doc.ProcessedRegion.Audio.Music.Sections
	require.Len(t, sections, 1)
	assert.Equal(t, 120.0, sections[0].BPM)
	assert.Equal(t, 180.0, sections[0].Duration)
	assert.Equal(t, -8.0, sections[0].Loudness)
	require.Len(t, sections[0].Key, 1)
	assert.Equal(t, LabelConfidence{Label: "C", Confidence: 0.9}, sections[0].Key[0])
}

func TestParseDocumentRejectsInvalidJSON(t *testing.T) {
	_, err := ParseDocument([]byte(`{"processed_region": [`))
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestLabelConfidenceRejectsWrongArity(t *testing.T) {
	var p LabelConfidence
	assert.Error(t, p.UnmarshalJSON([]byte(`["C"]`)))
	assert.Error(t, p.UnmarshalJSON([]byte(`["C", 0.9, "extra"]`)))
	assert.Error(t, p.UnmarshalJSON([]byte(`{"label": "C"}`)))
}

func TestShape(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	metadata := model.TrackMetadata{Artist: "A", Album: "B", Year: "2020"}
	record, err := Shape(doc, "mytrack", metadata)
	require.NoError(t, err)

	expected := &model.TrackAnalysis{
		Name:          "mytrack",
		Artist:        "A",
		Album:         "B",
		Year:          "2020",
		Duration:      180.0,
		Loudness:      -8.0,
		BPM:           120,
		Keys:          []model.KeyReading{{Major: "C", Confidence: 0.9}},
		Genres:        []model.GenreReading{{Type: "pop", Confidence: 0.8}},
		Instrumentals: []model.InstrumentReading{{Type: "guitar", Confidence: 0.7}},
	}
	assert.Equal(t, expected, record)
}

func TestShapeRejectsEmptySections(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"processed_region":{"audio":{"music":{"sections":[]}}}}`))
	require.NoError(t, err)

	_, err = Shape(doc, "mytrack", model.TrackMetadata{})
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
