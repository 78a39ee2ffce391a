package focus

import "sync"

// ChannelState is a snapshot of a channel's observable state, used for
// activity reporting and status queries.
type ChannelState struct {
	Name      string `json:"name"`
	State     State  `json:"state"`
	Interface string `json:"interface,omitempty"`
}

// Channel is a single named, prioritized resource. Name and priority are
// fixed at construction; focus state and ownership metadata are mutated
// only by the manager's arbitration worker, but may be snapshot-read from
// caller goroutines, hence the lock.
type Channel struct {
	name     string
	priority uint

	mu            sync.RWMutex
	state         State
	observer      ChannelObserver
	interfaceName string
}

// NewChannel creates an unowned channel with the given name and priority.
// A numerically smaller priority value means a more important channel.
func NewChannel(name string, priority uint) *Channel {
	return &Channel{name: name, priority: priority, state: StateNone}
}

func (c *Channel) Name() string {
	return c.name
}

func (c *Channel) Priority() uint {
	return c.priority
}

// HigherPriorityThan reports whether c outranks other. Equal priority
// values are rejected at registry construction and never occur at runtime.
func (c *Channel) HigherPriorityThan(other *Channel) bool {
	return c.priority < other.priority
}

// SetFocus moves the channel to the given state and notifies the attached
// observer, if any. It returns false, without notifying anyone, when the
// channel is already in that state. Moving to StateNone vacates the
// channel: the observer is detached and the owning interface cleared, with
// the outgoing observer still told it lost the channel.
func (c *Channel) SetFocus(state State) bool {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return false
	}
	c.state = state
	observer := c.observer
	if state == StateNone {
		c.observer = nil
		c.interfaceName = ""
	}
	c.mu.Unlock()

	if observer != nil {
		observer.OnFocusChanged(state)
	}
	return true
}

// SetObserver replaces the attached observer unconditionally. It does not
// notify the outgoing observer; callers must SetFocus(StateNone) at the
// previous owner first, or that owner never learns it lost the channel.
func (c *Channel) SetObserver(observer ChannelObserver) {
	c.mu.Lock()
	c.observer = observer
	c.mu.Unlock()
}

// IsOwnedBy reports whether observer is the one currently attached,
// compared by identity. Used to authorize release.
func (c *Channel) IsOwnedBy(observer ChannelObserver) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return observer != nil && c.observer == observer
}

func (c *Channel) HasObserver() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.observer != nil
}

// SetInterface records the name of the logical requester holding the
// channel. The stop paths re-read it as a generation token to detect that
// ownership changed between their snapshot and the deferred action.
func (c *Channel) SetInterface(name string) {
	c.mu.Lock()
	c.interfaceName = name
	c.mu.Unlock()
}

func (c *Channel) Interface() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interfaceName
}

// State returns a consistent snapshot of the channel's observable state.
func (c *Channel) State() ChannelState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ChannelState{Name: c.name, State: c.state, Interface: c.interfaceName}
}
