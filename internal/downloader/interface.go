// Package downloader fetches the audio of a video and transcodes it.
package downloader

import (
	"context"
	"fmt"
	"io"
)

const watchURLFormat = "https://www.youtube.com/watch?v=%s"

// Fetcher downloads the audio of a single video.
type Fetcher interface {
	// Fetch writes the audio for videoID to disk and returns its path.
	// The path is empty when the file could not be located afterwards.
	Fetch(ctx context.Context, videoID string) (string, error)
}

// WatchURL returns the canonical watch page for a video id.
func WatchURL(videoID string) string {
	return fmt.Sprintf(watchURLFormat, videoID)
}

// Status is a lifecycle event of a single fetch.
type Status struct {
	VideoID  string
	State    string
	Filename string
}

const (
	StateDownloading    = "downloading"
	StateFinished       = "finished"
	StatePostProcessing = "post_processing"
	StateError          = "error"
)

// Hooks receive the downloader's output. Either may be nil.
type Hooks struct {
	// Log receives raw output lines; warnings are never passed on
	Log func(line string)
	// Status fires once per state change
	Status func(Status)
}

// WriterHooks prints output lines and state changes to w.
func WriterHooks(w io.Writer) Hooks {
	return Hooks{
		Log: func(line string) {
			fmt.Fprintln(w, line)
		},
		Status: func(s Status) {
			fmt.Fprintln(w, s.State)
			if s.State == StateFinished {
				fmt.Fprintln(w, "Done downloading, now converting ...")
			}
		},
	}
}

// FetchError wraps a failed download or transcode.
type FetchError struct {
	VideoID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.VideoID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
