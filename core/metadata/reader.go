// Package metadata reads ID3 tags and embedded cover art from local MP3s.
package metadata

import (
	"encoding/base64"
	"fmt"

	"vibemesh/model"

	"github.com/bogem/id3v2"
)

// Reader extracts tag metadata from audio files on disk.
type Reader struct{}

// NewReader creates a tag reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadTags returns artist, album and year from the file's ID3 frames.
// Absent frames come back as empty strings, not errors.
func (r *Reader) ReadTags(path string) (model.TrackMetadata, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return model.TrackMetadata{}, fmt.Errorf("failed to parse tags of %s: %w", path, err)
	}
	defer tag.Close()

	return model.TrackMetadata{
		Artist: tag.Artist(),
		Album:  tag.Album(),
		Year:   tag.Year(),
	}, nil
}

// ReadCover returns the embedded cover image, preferring the front-cover
// picture frame, base64-encoded for JSON transport.
func (r *Reader) ReadCover(path string) (*model.CoverImage, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to parse tags of %s: %w", path, err)
	}
	defer tag.Close()

	frames := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(frames) == 0 {
		return nil, fmt.Errorf("no cover image embedded in %s", path)
	}

	var picture *id3v2.PictureFrame
	for i := range frames {
		pf, ok := frames[i].(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if pf.PictureType == id3v2.PTFrontCover {
			picture = &pf
			break
		}
		if picture == nil {
			picture = &pf
		}
	}
	if picture == nil {
		return nil, fmt.Errorf("no usable picture frame in %s", path)
	}

	return &model.CoverImage{
		Format: picture.MimeType,
		Data:   base64.StdEncoding.EncodeToString(picture.Picture),
	}, nil
}
