package metadata

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTaggedFile creates an MP3-shaped file carrying the given ID3 frames.
func writeTaggedFile(t *testing.T, withCover bool) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mytrack.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio bytes"), 0644))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetArtist("A")
	tag.SetAlbum("B")
	tag.SetYear("2020")
	if withCover {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Picture:     []byte("cover bytes"),
		})
	}
	require.NoError(t, tag.Save())

	return path
}

func TestReadTags(t *testing.T) {
	path := writeTaggedFile(t, false)

	metadata, err := NewReader().ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, "A", metadata.Artist)
	assert.Equal(t, "B", metadata.Album)
	assert.Equal(t, "2020", metadata.Year)
}

func TestReadCover(t *testing.T) {
	path := writeTaggedFile(t, true)

	cover, err := NewReader().ReadCover(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", cover.Format)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("cover bytes")), cover.Data)
}

func TestReadCoverMissing(t *testing.T) {
	path := writeTaggedFile(t, false)

	_, err := NewReader().ReadCover(path)
	assert.Error(t, err)
}
