package activity

import (
	"testing"

	"github.com/voicekit/focusd/internal/focus"
)

func TestTrackerKeepsRecordsInOrder(t *testing.T) {
	tracker := NewTracker(10)
	tracker.NotifyOfActivityUpdates([]focus.ChannelState{
		{Name: "Content", State: focus.StateForeground, Interface: "AudioPlayer"},
		{Name: "Content", State: focus.StateBackground, Interface: "AudioPlayer"},
	})

	recent := tracker.Recent()
	if len(recent) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recent))
	}
	if recent[0].State != focus.StateForeground || recent[1].State != focus.StateBackground {
		t.Errorf("Expected oldest-first order, got %+v", recent)
	}
}

func TestTrackerIgnoresEmptyBatches(t *testing.T) {
	tracker := NewTracker(10)
	tracker.NotifyOfActivityUpdates(nil)
	tracker.NotifyOfActivityUpdates([]focus.ChannelState{})

	if n := len(tracker.Recent()); n != 0 {
		t.Errorf("Expected no records from empty batches, got %d", n)
	}
}

func TestTrackerRingOverwritesOldest(t *testing.T) {
	tracker := NewTracker(3)
	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		tracker.NotifyOfActivityUpdates([]focus.ChannelState{
			{Name: name, State: focus.StateForeground},
		})
	}

	recent := tracker.Recent()
	if len(recent) != 3 {
		t.Fatalf("Expected ring to cap at 3 records, got %d", len(recent))
	}
	want := []string{"c", "d", "e"}
	for i := range want {
		if recent[i].Channel != want[i] {
			t.Errorf("Record %d: expected channel %s, got %s", i, want[i], recent[i].Channel)
		}
	}
}
