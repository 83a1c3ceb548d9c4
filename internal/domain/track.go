package domain

import "fmt"

// Track represents an individual track in a playlist export.
type Track struct {
	// Index is the position of the item in the export, Number its 1-based
	// position among valid tracks.
	Index  int    `json:"index"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// Query returns the search term used to look the track up on the video site.
func (t *Track) Query() string {
	return fmt.Sprintf("%s %s", t.Name, t.Artist)
}

func (t *Track) String() string {
	return fmt.Sprintf("%s by %s", t.Name, t.Artist)
}

// SkippedEntry records a playlist item that could not be turned into a Track.
type SkippedEntry struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Playlist is the ordered list of tracks read from an export.
type Playlist struct {
	Name    string         `json:"name,omitempty"`
	Tracks  []*Track       `json:"tracks"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}

// VideoCandidate is a search result considered for download.
type VideoCandidate struct {
	VideoID     string `json:"video_id"`
	Description string `json:"description"`
}
