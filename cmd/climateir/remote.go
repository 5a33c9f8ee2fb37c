package main

import (
	"github.com/spf13/cobra"

	"github.com/muurk/climateir/internal/ui"
)

var remoteCmd = &cobra.Command{
	Use:   "remote <device>",
	Short: "Drive a configured device with an interactive remote",
	Long: `Open a handset-like terminal UI for a configured device.

Adjust temperature with the arrow keys, cycle mode (m), fan (f) and swing (s),
toggle power with o and press enter to send.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemote,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
}

func runRemote(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	c, sink, err := newController(reg, args[0], nil, nil)
	if err != nil {
		return err
	}
	defer closeSink(sink)

	return ui.RunRemote(cmd.Context(), c)
}
