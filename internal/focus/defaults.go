package focus

// Conventional channel names and priorities for a voice-controlled
// device. Lower priority value = more important.
const (
	DialogChannelName             = "Dialog"
	DialogChannelPriority         = 100
	AlertChannelName              = "Alert"
	AlertChannelPriority          = 200
	CommunicationsChannelName     = "Communications"
	CommunicationsChannelPriority = 300
	ContentChannelName            = "Content"
	ContentChannelPriority        = 400

	VisualChannelName     = "Visual"
	VisualChannelPriority = 100
)

// DefaultAudioChannels returns the conventional audio channel table:
// dialog outranks alerts, alerts outrank communications, communications
// outrank content.
func DefaultAudioChannels() []ChannelConfig {
	return []ChannelConfig{
		{Name: DialogChannelName, Priority: DialogChannelPriority},
		{Name: AlertChannelName, Priority: AlertChannelPriority},
		{Name: CommunicationsChannelName, Priority: CommunicationsChannelPriority},
		{Name: ContentChannelName, Priority: ContentChannelPriority},
	}
}

// DefaultVisualChannels returns the conventional visual channel table.
func DefaultVisualChannels() []ChannelConfig {
	return []ChannelConfig{
		{Name: VisualChannelName, Priority: VisualChannelPriority},
	}
}
