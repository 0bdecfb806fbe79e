package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server's file watcher status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		active, err := newClient().WatcherStatus(cmd.Context())
		if err != nil {
			return err
		}
		if active {
			fmt.Println("watcher: active")
		} else {
			fmt.Println("watcher: inactive")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
