package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Inspect and restore document backups",
}

var backupsListCmd = &cobra.Command{
	Use:   "list <file-path>",
	Short: "List backups for a document path, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := newClient().ListBackups(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("no backups")
			return nil
		}
		for _, b := range backups {
			ts := time.Unix(0, b.Timestamp).Format(time.RFC3339)
			fmt.Printf("%s  %6d bytes  %s  %s\n", ts, b.Size, b.Checksum[:12], b.BackupPath)
		}
		return nil
	},
}

var snapshotFirst bool

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <backup-path> <target-path>",
	Short: "Restore a backup over a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().RestoreBackup(cmd.Context(), args[0], args[1], snapshotFirst); err != nil {
			return err
		}
		fmt.Println("restored", args[1])
		return nil
	},
}

func init() {
	backupsRestoreCmd.Flags().BoolVar(&snapshotFirst, "snapshot-first", false, "snapshot the current content before restoring")
	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsRestoreCmd)
	rootCmd.AddCommand(backupsCmd)
}
