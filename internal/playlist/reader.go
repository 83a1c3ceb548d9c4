// Package playlist reads playlist exports into tracks.
package playlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jaki95/playlist-downloader/internal/domain"
)

var ErrMalformedPlaylist = errors.New("malformed playlist")

// export mirrors the subset of the Spotify playlist tracks payload we need.
type export struct {
	Name  string  `json:"name"`
	Items *[]item `json:"items"`
}

type item struct {
	Track *struct {
		Name    *string `json:"name"`
		Artists []struct {
			Name *string `json:"name"`
		} `json:"artists"`
	} `json:"track"`
}

// Read opens the export at path and returns its tracks in file order.
func Read(path string) (*domain.Playlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist file: %w", err)
	}
	defer file.Close()

	playlist, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return playlist, nil
}

// Parse decodes an export. Items missing a track name or a first artist are
// skipped and recorded on the returned playlist.
func Parse(r io.Reader) (*domain.Playlist, error) {
	var data export
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlaylist, err)
	}
	if data.Items == nil {
		return nil, fmt.Errorf("%w: missing items", ErrMalformedPlaylist)
	}

	playlist := &domain.Playlist{Name: data.Name}
	for i, it := range *data.Items {
		reason := validate(it)
		if reason != "" {
			slog.Warn("Skipping playlist entry", "index", i, "reason", reason)
			playlist.Skipped = append(playlist.Skipped, domain.SkippedEntry{Index: i, Reason: reason})
			continue
		}

		playlist.Tracks = append(playlist.Tracks, &domain.Track{
			Index:  i,
			Number: len(playlist.Tracks) + 1,
			Name:   *it.Track.Name,
			Artist: *it.Track.Artists[0].Name,
		})
	}

	slog.Debug("Parsed playlist", "name", playlist.Name, "tracks", len(playlist.Tracks), "skipped", len(playlist.Skipped))
	return playlist, nil
}

func validate(it item) string {
	switch {
	case it.Track == nil:
		return "missing track"
	case it.Track.Name == nil:
		return "missing track.name"
	case len(it.Track.Artists) == 0:
		return "missing track.artists"
	case it.Track.Artists[0].Name == nil:
		return "missing track.artists[0].name"
	}
	return ""
}
