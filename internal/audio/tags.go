// Package audio writes metadata into fetched audio files.
package audio

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/jaki95/playlist-downloader/internal/domain"
)

const trackNumberFrame = "TRCK"

// Tagger writes track metadata into an audio file.
type Tagger interface {
	Tag(path string, meta Metadata) error
}

// Metadata is the information written into a file's tags.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	TrackCount  int
}

// MetadataFor builds the tags of a playlist track.
func MetadataFor(pl *domain.Playlist, track *domain.Track) Metadata {
	return Metadata{
		Title:       track.Name,
		Artist:      track.Artist,
		Album:       pl.Name,
		TrackNumber: track.Number,
		TrackCount:  len(pl.Tracks),
	}
}

// ID3Tagger writes ID3v2 tags. Files other than mp3 are left untouched.
type ID3Tagger struct{}

func NewID3Tagger() *ID3Tagger {
	return &ID3Tagger{}
}

func (t *ID3Tagger) Tag(path string, meta Metadata) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		slog.Debug("Skipping tags for non-mp3 file", "path", path)
		return nil
	}

	// files shorter than a tag header cannot be tagged
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(meta.Title)
	tag.SetArtist(meta.Artist)
	if meta.Album != "" {
		tag.SetAlbum(meta.Album)
	}
	if meta.TrackNumber > 0 {
		number := fmt.Sprintf("%d", meta.TrackNumber)
		if meta.TrackCount > 0 {
			number = fmt.Sprintf("%d/%d", meta.TrackNumber, meta.TrackCount)
		}
		tag.AddTextFrame(trackNumberFrame, id3v2.EncodingUTF8, number)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags for %s: %w", path, err)
	}
	return nil
}
