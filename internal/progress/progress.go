package progress

import (
	"encoding/json"
	"sync"
	"time"
)

// Stage represents the current stage of a track
type Stage string

const (
	StageSearching   Stage = "searching"
	StageDownloading Stage = "downloading"
	StageConverting  Stage = "converting"
	StageComplete    Stage = "complete"
	StageError       Stage = "error"
)

// Event represents a progress event
type Event struct {
	Stage        Stage         `json:"stage"`
	Progress     float64       `json:"progress"`
	Message      string        `json:"message"`
	Timestamp    time.Time     `json:"timestamp"`
	TrackDetails *TrackDetails `json:"trackDetails,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// TrackDetails contains information about the current track being processed
type TrackDetails struct {
	TrackNumber     int    `json:"trackNumber"`
	TotalTracks     int    `json:"totalTracks"`
	CurrentTrack    string `json:"currentTrack"`
	ProcessedTracks int    `json:"processedTracks"`
}

// Tracker fans progress events out to listeners.
type Tracker struct {
	mu           sync.RWMutex
	stage        Stage
	progress     float64
	message      string
	trackDetails *TrackDetails
	err          error
	listeners    []func(Event)
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// AddListener adds a new progress event listener
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// StartTrack moves to a new track and resets the stage to searching.
func (t *Tracker) StartTrack(trackNumber, totalTracks, processedTracks int, currentTrack string) {
	t.mu.Lock()
	t.trackDetails = &TrackDetails{
		TrackNumber:     trackNumber,
		TotalTracks:     totalTracks,
		CurrentTrack:    currentTrack,
		ProcessedTracks: processedTracks,
	}
	t.stage = StageSearching
	t.progress = percent(processedTracks, totalTracks)
	t.message = "Searching for " + currentTrack
	t.err = nil
	event := t.eventLocked()
	t.mu.Unlock()

	t.notify(event)
}

// Update changes the stage of the current track.
func (t *Tracker) Update(stage Stage, message string) {
	t.mu.Lock()
	t.stage = stage
	t.message = message
	if stage == StageComplete && t.trackDetails != nil {
		t.trackDetails.ProcessedTracks = t.trackDetails.TrackNumber
		t.progress = percent(t.trackDetails.ProcessedTracks, t.trackDetails.TotalTracks)
	}
	event := t.eventLocked()
	t.mu.Unlock()

	t.notify(event)
}

// SetError marks the current track as failed.
func (t *Tracker) SetError(err error) {
	t.mu.Lock()
	t.stage = StageError
	t.err = err
	t.message = err.Error()
	if t.trackDetails != nil {
		t.trackDetails.ProcessedTracks = t.trackDetails.TrackNumber
		t.progress = percent(t.trackDetails.ProcessedTracks, t.trackDetails.TotalTracks)
	}
	event := t.eventLocked()
	t.mu.Unlock()

	t.notify(event)
}

// CurrentState returns the latest progress state
func (t *Tracker) CurrentState() Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.eventLocked()
}

func (t *Tracker) eventLocked() Event {
	event := Event{
		Stage:     t.stage,
		Progress:  t.progress,
		Message:   t.message,
		Timestamp: time.Now(),
	}
	if t.trackDetails != nil {
		details := *t.trackDetails
		event.TrackDetails = &details
	}
	if t.err != nil {
		event.Error = t.err.Error()
	}
	return event
}

func (t *Tracker) notify(event Event) {
	t.mu.RLock()
	listeners := make([]func(Event), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// MarshalJSON implements json.Marshaler for Event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}
