package focus

import (
	"sync"
	"testing"
)

// channelObserverMock records every focus change it is told about.
type channelObserverMock struct {
	mu     sync.Mutex
	states []State
}

func (o *channelObserverMock) OnFocusChanged(state State) {
	o.mu.Lock()
	o.states = append(o.states, state)
	o.mu.Unlock()
}

func (o *channelObserverMock) recorded() []State {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]State, len(o.states))
	copy(out, o.states)
	return out
}

func (o *channelObserverMock) lastState() (State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.states) == 0 {
		return StateNone, false
	}
	return o.states[len(o.states)-1], true
}

func TestSetFocusNotifiesOnChange(t *testing.T) {
	channel := NewChannel("Dialog", 100)
	observer := &channelObserverMock{}
	channel.SetObserver(observer)

	if !channel.SetFocus(StateForeground) {
		t.Error("Expected SetFocus to report a change for NONE -> FOREGROUND")
	}
	last, ok := observer.lastState()
	if !ok || last != StateForeground {
		t.Errorf("Expected observer to see FOREGROUND, got %v (notified=%v)", last, ok)
	}
}

func TestSetFocusSameStateIsSilentNoOp(t *testing.T) {
	channel := NewChannel("Dialog", 100)
	observer := &channelObserverMock{}
	channel.SetObserver(observer)

	if channel.SetFocus(StateNone) {
		t.Error("Expected SetFocus to the current state to report no change")
	}
	if n := len(observer.recorded()); n != 0 {
		t.Errorf("Expected no notifications for a no-op transition, got %d", n)
	}
}

func TestSetFocusNoneVacatesChannel(t *testing.T) {
	channel := NewChannel("Dialog", 100)
	observer := &channelObserverMock{}
	channel.SetObserver(observer)
	channel.SetInterface("SpeechSynthesizer")
	channel.SetFocus(StateForeground)

	if !channel.SetFocus(StateNone) {
		t.Fatal("Expected SetFocus to report a change for FOREGROUND -> NONE")
	}
	if last, ok := observer.lastState(); !ok || last != StateNone {
		t.Errorf("Expected the outgoing observer to still be told NONE, got %v (notified=%v)", last, ok)
	}
	if channel.HasObserver() {
		t.Error("Expected the observer to be detached once the channel went to NONE")
	}
	if channel.IsOwnedBy(observer) {
		t.Error("Expected the old observer to no longer own the vacated channel")
	}
	if got := channel.Interface(); got != "" {
		t.Errorf("Expected the owning interface to be cleared, got %q", got)
	}
}

func TestSetObserverDoesNotNotify(t *testing.T) {
	channel := NewChannel("Dialog", 100)
	previous := &channelObserverMock{}
	replacement := &channelObserverMock{}
	channel.SetObserver(previous)

	channel.SetObserver(replacement)

	if n := len(previous.recorded()); n != 0 {
		t.Errorf("Expected outgoing observer to get no notification from SetObserver, got %d", n)
	}
	if n := len(replacement.recorded()); n != 0 {
		t.Errorf("Expected incoming observer to get no notification from SetObserver, got %d", n)
	}
}

func TestIsOwnedByComparesIdentity(t *testing.T) {
	channel := NewChannel("Dialog", 100)
	owner := &channelObserverMock{}
	stranger := &channelObserverMock{}

	if channel.IsOwnedBy(owner) {
		t.Error("Unowned channel should not be owned by anyone")
	}
	channel.SetObserver(owner)
	if !channel.IsOwnedBy(owner) {
		t.Error("Expected channel to be owned by its attached observer")
	}
	if channel.IsOwnedBy(stranger) {
		t.Error("Expected channel not to be owned by a different observer")
	}
	if channel.IsOwnedBy(nil) {
		t.Error("nil observer must never own a channel")
	}
}

func TestHigherPriorityThan(t *testing.T) {
	dialog := NewChannel("Dialog", 100)
	content := NewChannel("Content", 400)

	if !dialog.HigherPriorityThan(content) {
		t.Error("Expected priority 100 to outrank priority 400")
	}
	if content.HigherPriorityThan(dialog) {
		t.Error("Expected priority 400 not to outrank priority 100")
	}
}

func TestStateSnapshot(t *testing.T) {
	channel := NewChannel("Content", 400)
	channel.SetInterface("AudioPlayer")
	channel.SetFocus(StateBackground)

	got := channel.State()
	want := ChannelState{Name: "Content", State: StateBackground, Interface: "AudioPlayer"}
	if got != want {
		t.Errorf("State snapshot mismatch: got %+v, want %+v", got, want)
	}
}
