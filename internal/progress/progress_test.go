package progress

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestTracker(t *testing.T) {
	tracker := NewTracker()

	var receivedEvents []Event
	tracker.AddListener(func(event Event) {
		receivedEvents = append(receivedEvents, event)
	})

	tracker.StartTrack(1, 4, 0, "Song Band")
	tracker.Update(StageDownloading, "Downloading abc")
	tracker.Update(StageConverting, "Converting abc")
	tracker.Update(StageComplete, "Done")

	if len(receivedEvents) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(receivedEvents))
	}

	wantStages := []Stage{StageSearching, StageDownloading, StageConverting, StageComplete}
	for i, event := range receivedEvents {
		if event.Stage != wantStages[i] {
			t.Errorf("Event %d: Expected stage %s, got %s", i, wantStages[i], event.Stage)
		}
	}

	last := receivedEvents[3]
	if last.Progress != 25 {
		t.Errorf("Expected progress 25, got %f", last.Progress)
	}
	if last.TrackDetails == nil || last.TrackDetails.ProcessedTracks != 1 {
		t.Errorf("Expected one processed track, got %+v", last.TrackDetails)
	}
}

func TestTrackerError(t *testing.T) {
	tracker := NewTracker()
	tracker.StartTrack(2, 2, 1, "Song Band")

	tracker.SetError(context.Canceled)

	state := tracker.CurrentState()
	if state.Stage != StageError {
		t.Errorf("Expected error stage, got %s", state.Stage)
	}
	if state.Error != context.Canceled.Error() {
		t.Errorf("Expected error %v, got %s", context.Canceled, state.Error)
	}
	if state.Progress != 100 {
		t.Errorf("Expected progress 100, got %f", state.Progress)
	}

	// a new track clears the previous error
	tracker.StartTrack(3, 3, 2, "Next Band")
	if state := tracker.CurrentState(); state.Error != "" {
		t.Errorf("Expected no error, got %s", state.Error)
	}
}

func TestCurrentStateWithoutTrack(t *testing.T) {
	state := NewTracker().CurrentState()
	if state.TrackDetails != nil {
		t.Errorf("Expected no track details, got %+v", state.TrackDetails)
	}
	if state.Error != "" {
		t.Errorf("Expected no error, got %s", state.Error)
	}
}

func TestEventJSON(t *testing.T) {
	event := Event{
		Stage:     StageDownloading,
		Progress:  50.0,
		Message:   "Downloading...",
		Timestamp: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Failed to marshal event: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}

	if decoded["timestamp"] != "2024-05-01T12:30:00Z" {
		t.Errorf("Expected RFC3339 timestamp, got %v", decoded["timestamp"])
	}
	if decoded["stage"] != string(StageDownloading) {
		t.Errorf("Expected stage %s, got %v", StageDownloading, decoded["stage"])
	}
	if decoded["progress"] != 50.0 {
		t.Errorf("Expected progress 50, got %v", decoded["progress"])
	}
	if _, ok := decoded["trackDetails"]; ok {
		t.Errorf("Expected trackDetails to be omitted")
	}
}
