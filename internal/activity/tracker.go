// Package activity keeps a bounded in-memory history of focus changes,
// fed by the arbitration engine and read back by the control server.
package activity

import (
	"log/slog"
	"sync"
	"time"

	"github.com/voicekit/focusd/internal/focus"
)

// DefaultHistory is how many records a tracker keeps when the configured
// size is zero or negative.
const DefaultHistory = 100

// Record is one observed focus change.
type Record struct {
	Channel   string      `json:"channel"`
	State     focus.State `json:"state"`
	Interface string      `json:"interface,omitempty"`
	Time      time.Time   `json:"time"`
}

// Tracker implements focus.ActivityTracker. It retains the most recent
// records in a fixed-size ring.
type Tracker struct {
	mu      sync.Mutex
	records []Record
	next    int
	filled  bool
}

// NewTracker creates a tracker retaining up to size records.
func NewTracker(size int) *Tracker {
	if size <= 0 {
		size = DefaultHistory
	}
	return &Tracker{records: make([]Record, size)}
}

// NotifyOfActivityUpdates appends one record per state change in the
// batch. Empty batches are normal and ignored.
func (t *Tracker) NotifyOfActivityUpdates(updates []focus.ChannelState) {
	if len(updates) == 0 {
		return
	}
	now := time.Now()

	t.mu.Lock()
	for _, u := range updates {
		slog.Debug("activityUpdate", "channel", u.Name, "state", u.State.String(), "interface", u.Interface)
		t.records[t.next] = Record{Channel: u.Name, State: u.State, Interface: u.Interface, Time: now}
		t.next++
		if t.next == len(t.records) {
			t.next = 0
			t.filled = true
		}
	}
	t.mu.Unlock()
}

// Recent returns the retained records, oldest first.
func (t *Tracker) Recent() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.filled {
		out := make([]Record, t.next)
		copy(out, t.records[:t.next])
		return out
	}
	out := make([]Record, 0, len(t.records))
	out = append(out, t.records[t.next:]...)
	out = append(out, t.records[:t.next]...)
	return out
}
