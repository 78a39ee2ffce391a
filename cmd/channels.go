package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/voicekit/focusd/internal/focus"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the configured channels",
	Long: `List every configured channel with its modality and priority.
A numerically smaller priority value means a more important channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODALITY\tCHANNEL\tPRIORITY")
		printChannelTable(w, "audio", cfg.Channels.Audio)
		printChannelTable(w, "visual", cfg.Channels.Visual)
		return w.Flush()
	},
}

func printChannelTable(w *tabwriter.Writer, modality string, configs []focus.ChannelConfig) {
	for _, cc := range configs {
		fmt.Fprintf(w, "%s\t%s\t%d\n", modality, cc.Name, cc.Priority)
	}
}
