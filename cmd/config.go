package cmd

import (
	"fmt"

	"github.com/voicekit/focusd/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and manage the focusd configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.Dump()
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(cfgFile); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", cfgFile)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
