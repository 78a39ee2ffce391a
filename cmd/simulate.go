package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/voicekit/focusd/internal/activity"
	"github.com/voicekit/focusd/internal/focus"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted arbitration scenario",
	Long: `Run a scripted end-to-end arbitration scenario against the configured
audio channels and print every focus transition:

music starts on the Content channel, a spoken dialog barges in and takes
the foreground, the dialog finishes and the music comes back, then all
activity is stopped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker := activity.NewTracker(cfg.Activity.History)
		manager := focus.NewManager(cfg.Channels.Audio, tracker)
		defer manager.Shutdown()

		manager.AddObserver(&printingObserver{})

		music := &simActivity{name: "music"}
		dialog := &simActivity{name: "dialog"}

		step("AudioPlayer acquires Content (music starts)")
		manager.AcquireChannel(focus.ContentChannelName, music, "AudioPlayer")
		pause()

		step("SpeechSynthesizer acquires Dialog (user talks to the device)")
		manager.AcquireChannel(focus.DialogChannelName, dialog, "SpeechSynthesizer")
		pause()

		step("SpeechSynthesizer releases Dialog (response finished)")
		if released := <-manager.ReleaseChannel(focus.DialogChannelName, dialog); !released {
			return fmt.Errorf("dialog release unexpectedly failed")
		}
		pause()

		step("Stop all activity")
		manager.StopAllActivities()
		pause()

		fmt.Println()
		fmt.Printf("%d focus transitions recorded\n", len(tracker.Recent()))
		return nil
	},
}

// simActivity plays the role of an interface holding a channel.
type simActivity struct {
	name string
}

func (a *simActivity) OnFocusChanged(state focus.State) {
	fmt.Printf("    [%s] focus -> %s\n", a.name, state)
}

// printingObserver reports every focus change across all channels.
type printingObserver struct{}

func (o *printingObserver) OnFocusChanged(channelName string, state focus.State) {
	fmt.Printf("  %s -> %s\n", channelName, state)
}

func step(description string) {
	fmt.Printf("\n%s\n", description)
}

// pause gives the arbitration worker time to run fire-and-forget requests
// so the printed transitions line up with the steps.
func pause() {
	time.Sleep(100 * time.Millisecond)
}
