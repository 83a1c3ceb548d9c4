package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/playlist-downloader/internal/domain"
)

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0644))
	return path
}

func TestID3Tagger_Tag(t *testing.T) {
	path := writeFile(t, "song.mp3")

	err := NewID3Tagger().Tag(path, Metadata{
		Title:       "Song",
		Artist:      "Band",
		Album:       "Road Trip",
		TrackNumber: 2,
		TrackCount:  5,
	})
	require.NoError(t, err)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Song", tag.Title())
	assert.Equal(t, "Band", tag.Artist())
	assert.Equal(t, "Road Trip", tag.Album())
	assert.Equal(t, "2/5", tag.GetTextFrame(trackNumberFrame).Text)
}

func TestID3Tagger_SkipsOtherFormats(t *testing.T) {
	path := writeFile(t, "song.opus")

	require.NoError(t, NewID3Tagger().Tag(path, Metadata{Title: "Song"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not really audio", string(content))
}

func TestID3Tagger_MissingFile(t *testing.T) {
	err := NewID3Tagger().Tag(filepath.Join(t.TempDir(), "missing.mp3"), Metadata{Title: "Song"})
	assert.Error(t, err)
}

func TestID3Tagger_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))

	err := NewID3Tagger().Tag(path, Metadata{Title: "Song"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short.mp3")
}

func TestMetadataFor(t *testing.T) {
	track := &domain.Track{Number: 1, Name: "Song", Artist: "Band"}
	pl := &domain.Playlist{Name: "Mix", Tracks: []*domain.Track{track, {Number: 2}}}

	assert.Equal(t, Metadata{
		Title:       "Song",
		Artist:      "Band",
		Album:       "Mix",
		TrackNumber: 1,
		TrackCount:  2,
	}, MetadataFor(pl, track))
}
