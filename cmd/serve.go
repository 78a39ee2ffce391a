package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/voicekit/focusd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the focus control server",
	Long: `Start the focusd HTTP control server.

Other processes on the device acquire, release, and stop channels through
its JSON API, and can read the current focus of every channel and the
recent arbitration activity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		srv, err := server.New(cfgFile, port)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		defer srv.Shutdown()

		slog.Info("focusd control server starting", "config", cfgFile)

		// Start blocks until the listener fails
		if err := srv.Start(); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "port for the control server (default from config)")
}
