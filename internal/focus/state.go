package focus

import "fmt"

// State represents the focus a channel currently holds.
type State int

const (
	// StateNone means the channel is not owned by any interface.
	StateNone State = iota
	// StateBackground means the channel is owned but another channel is in the foreground.
	StateBackground
	// StateForeground means the channel is owned and is the single user-facing channel.
	StateForeground
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateBackground:
		return "BACKGROUND"
	case StateForeground:
		return "FOREGROUND"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// MarshalText makes State render as its name in JSON and YAML output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the textual form produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NONE":
		*s = StateNone
	case "BACKGROUND":
		*s = StateBackground
	case "FOREGROUND":
		*s = StateForeground
	default:
		return fmt.Errorf("unknown focus state %q", text)
	}
	return nil
}

// ChannelObserver is notified whenever the focus of the channel it is
// attached to actually changes. The observer attached to a channel is the
// only principal allowed to release it.
type ChannelObserver interface {
	OnFocusChanged(state State)
}

// Observer is notified of every real focus change on any channel of a
// manager it is registered with.
type Observer interface {
	OnFocusChanged(channelName string, state State)
}

// ActivityTracker receives the batch of channel state changes produced by
// each completed arbitration operation. The batch may be empty.
type ActivityTracker interface {
	NotifyOfActivityUpdates(updates []ChannelState)
}
