package focus

import (
	"log/slog"
	"sort"
	"sync"
)

// ChannelConfig describes one channel to create at manager construction.
type ChannelConfig struct {
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	Priority uint   `mapstructure:"priority" yaml:"priority" json:"priority"`
}

// Manager arbitrates exclusive use of a fixed set of prioritized channels.
// Any number of goroutines may call its methods concurrently; every state
// mutation runs on a single arbitration worker, one at a time, so the
// focus invariants hold between any two observable operations.
type Manager struct {
	channels map[string]*Channel
	executor *Executor
	tracker  ActivityTracker

	// mu guards activeChannels and observers. It is never held while an
	// observer or tracker callback runs, so callbacks may call back in.
	mu             sync.Mutex
	activeChannels map[*Channel]struct{}
	observers      map[Observer]struct{}

	// activityUpdates is touched only by the arbitration worker.
	activityUpdates []ChannelState
}

// NewManager builds a manager from an ordered list of channel
// configurations. An entry whose name or priority collides with an
// earlier one is dropped with a diagnostic; construction never fails.
// The activity tracker is optional and may be nil.
func NewManager(configs []ChannelConfig, tracker ActivityTracker) *Manager {
	m := &Manager{
		channels:       make(map[string]*Channel, len(configs)),
		executor:       NewExecutor(),
		tracker:        tracker,
		activeChannels: make(map[*Channel]struct{}),
		observers:      make(map[Observer]struct{}),
	}
	for _, cfg := range configs {
		if _, ok := m.channels[cfg.Name]; ok {
			slog.Error("createChannelFailed", "reason", "channelNameExists", "channel", cfg.Name, "priority", cfg.Priority)
			continue
		}
		if m.priorityExists(cfg.Priority) {
			slog.Error("createChannelFailed", "reason", "channelPriorityExists", "channel", cfg.Name, "priority", cfg.Priority)
			continue
		}
		m.channels[cfg.Name] = NewChannel(cfg.Name, cfg.Priority)
	}
	return m
}

func (m *Manager) priorityExists(priority uint) bool {
	for _, c := range m.channels {
		if c.Priority() == priority {
			return true
		}
	}
	return false
}

// AcquireChannel requests exclusive use of the named channel for
// interfaceName, with observer as the new owner. It returns true when the
// request was accepted for arbitration, not when it completed; false means
// the channel does not exist or the manager has shut down, and nothing was
// queued.
func (m *Manager) AcquireChannel(channelName string, observer ChannelObserver, interfaceName string) bool {
	slog.Debug("acquireChannel", "channel", channelName, "interface", interfaceName)
	channel := m.getChannel(channelName)
	if channel == nil {
		slog.Error("acquireChannelFailed", "reason", "channelNotFound", "channel", channelName)
		return false
	}
	if !m.executor.Submit(func() {
		m.acquireChannelTask(channel, observer, interfaceName)
	}) {
		slog.Warn("acquireChannelDropped", "reason", "managerShutDown", "channel", channelName)
		return false
	}
	return true
}

// ReleaseChannel gives up the named channel. The result arrives on the
// returned channel once the arbitration worker has run the request: true
// when the release happened, false when observer does not own the channel.
// An unknown channel name resolves false immediately. The result channel
// is buffered, so callers are free to ignore it.
func (m *Manager) ReleaseChannel(channelName string, observer ChannelObserver) <-chan bool {
	slog.Debug("releaseChannel", "channel", channelName)
	result := make(chan bool, 1)
	channel := m.getChannel(channelName)
	if channel == nil {
		slog.Error("releaseChannelFailed", "reason", "channelNotFound", "channel", channelName)
		result <- false
		return result
	}
	if !m.executor.Submit(func() {
		m.releaseChannelTask(channel, observer, result)
	}) {
		slog.Warn("releaseChannelDropped", "reason", "managerShutDown", "channel", channelName)
		result <- false
	}
	return result
}

// StopForegroundActivity stops whatever currently holds the foreground
// channel. The request jumps ahead of queued acquisitions. If ownership of
// the channel changes before the worker gets to it, the request is
// dropped.
func (m *Manager) StopForegroundActivity() {
	m.mu.Lock()
	foreground := m.highestPriorityActiveLocked()
	if foreground == nil {
		m.mu.Unlock()
		slog.Debug("stopForegroundActivityFailed", "reason", "noForegroundActivity")
		return
	}
	foregroundInterface := foreground.Interface()
	m.mu.Unlock()

	if !m.executor.SubmitFront(func() {
		m.stopForegroundActivityTask(foreground, foregroundInterface)
	}) {
		slog.Warn("stopForegroundActivityDropped", "reason", "managerShutDown")
	}
}

// StopAllActivities stops every currently active channel, skipping any
// whose ownership changes before the worker gets to it. The request jumps
// ahead of queued acquisitions.
func (m *Manager) StopAllActivities() {
	m.mu.Lock()
	if len(m.activeChannels) == 0 {
		m.mu.Unlock()
		slog.Debug("stopAllActivities", "reason", "noActiveChannels")
		return
	}
	owners := make(map[*Channel]string, len(m.activeChannels))
	for channel := range m.activeChannels {
		owners[channel] = channel.Interface()
	}
	m.mu.Unlock()

	if !m.executor.SubmitFront(func() {
		m.stopAllActivitiesTask(owners)
	}) {
		slog.Warn("stopAllActivitiesDropped", "reason", "managerShutDown")
	}
}

// AddObserver registers a global focus observer.
func (m *Manager) AddObserver(observer Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers[observer] = struct{}{}
}

// RemoveObserver unregisters a global focus observer.
func (m *Manager) RemoveObserver(observer Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.observers, observer)
}

// ChannelStates returns a snapshot of every configured channel, most
// important first.
func (m *Manager) ChannelStates() []ChannelState {
	channels := make([]*Channel, 0, len(m.channels))
	for _, c := range m.channels {
		channels = append(channels, c)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].HigherPriorityThan(channels[j])
	})
	states := make([]ChannelState, len(channels))
	for i, c := range channels {
		states[i] = c.State()
	}
	return states
}

// Shutdown drains the already-queued arbitration work and stops the
// worker. Requests submitted afterwards are dropped.
func (m *Manager) Shutdown() {
	m.executor.Shutdown()
}

// setChannelFocus applies a focus change to a channel and, when the state
// actually changed, broadcasts it to the global observers and records an
// activity update. Runs on the arbitration worker only.
func (m *Manager) setChannelFocus(channel *Channel, state State) {
	if !channel.SetFocus(state) {
		return
	}
	m.mu.Lock()
	observers := make([]Observer, 0, len(m.observers))
	for o := range m.observers {
		observers = append(observers, o)
	}
	m.mu.Unlock()
	for _, o := range observers {
		o.OnFocusChanged(channel.Name(), state)
	}
	m.activityUpdates = append(m.activityUpdates, channel.State())
}

func (m *Manager) acquireChannelTask(channel *Channel, observer ChannelObserver, interfaceName string) {
	// Tell the old owner, if any, that it lost the channel. This must
	// precede SetObserver or the notification is silently lost.
	m.setChannelFocus(channel, StateNone)

	m.mu.Lock()
	foreground := m.highestPriorityActiveLocked()
	channel.SetInterface(interfaceName)
	m.activeChannels[channel] = struct{}{}
	m.mu.Unlock()

	channel.SetObserver(observer)

	switch {
	case foreground == nil || foreground == channel:
		m.setChannelFocus(channel, StateForeground)
	case channel.HigherPriorityThan(foreground):
		m.setChannelFocus(foreground, StateBackground)
		m.setChannelFocus(channel, StateForeground)
	default:
		m.setChannelFocus(channel, StateBackground)
	}
	m.notifyActivityTracker()
}

func (m *Manager) releaseChannelTask(channel *Channel, observer ChannelObserver, result chan<- bool) {
	if !channel.IsOwnedBy(observer) {
		slog.Error("releaseChannelFailed", "reason", "observerDoesNotOwnChannel", "channel", channel.Name())
		result <- false
		return
	}
	result <- true

	m.mu.Lock()
	wasForeground := m.highestPriorityActiveLocked() == channel
	delete(m.activeChannels, channel)
	m.mu.Unlock()

	m.setChannelFocus(channel, StateNone)
	if wasForeground {
		m.foregroundHighestPriorityActive()
	}
	m.notifyActivityTracker()
}

func (m *Manager) stopForegroundActivityTask(channel *Channel, snapshotInterface string) {
	// The snapshot interface name is a generation token: if ownership
	// changed between the caller's snapshot and now, do nothing.
	if channel.Interface() != snapshotInterface {
		return
	}
	if !channel.HasObserver() {
		return
	}
	m.setChannelFocus(channel, StateNone)

	m.mu.Lock()
	delete(m.activeChannels, channel)
	m.mu.Unlock()

	m.foregroundHighestPriorityActive()
	m.notifyActivityTracker()
}

func (m *Manager) stopAllActivitiesTask(owners map[*Channel]string) {
	var toClear []*Channel

	m.mu.Lock()
	for channel, snapshotInterface := range owners {
		if channel.Interface() == snapshotInterface {
			delete(m.activeChannels, channel)
			toClear = append(toClear, channel)
		} else {
			slog.Info("stopAllActivitiesSkipped",
				"reason", "channelHasOtherOwnership",
				"channel", channel.Name(),
				"currentInterface", channel.Interface(),
				"originalInterface", snapshotInterface)
		}
	}
	m.mu.Unlock()

	for _, channel := range toClear {
		m.setChannelFocus(channel, StateNone)
	}
	m.foregroundHighestPriorityActive()
	m.notifyActivityTracker()
}

func (m *Manager) getChannel(name string) *Channel {
	return m.channels[name]
}

// highestPriorityActiveLocked returns the foreground channel, the most
// important member of the active set, or nil when nothing is active.
// Linear scan: the channel count is small and fixed.
func (m *Manager) highestPriorityActiveLocked() *Channel {
	var best *Channel
	for channel := range m.activeChannels {
		if best == nil || channel.HigherPriorityThan(best) {
			best = channel
		}
	}
	return best
}

func (m *Manager) foregroundHighestPriorityActive() {
	m.mu.Lock()
	channel := m.highestPriorityActiveLocked()
	m.mu.Unlock()

	if channel != nil {
		m.setChannelFocus(channel, StateForeground)
	}
}

func (m *Manager) notifyActivityTracker() {
	if m.tracker != nil {
		updates := make([]ChannelState, len(m.activityUpdates))
		copy(updates, m.activityUpdates)
		m.tracker.NotifyOfActivityUpdates(updates)
	}
	m.activityUpdates = m.activityUpdates[:0]
}
