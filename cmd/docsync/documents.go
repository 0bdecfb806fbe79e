package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/inkforge/docsync/internal/client"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <project-id> <document-type>",
	Short: "Print a project document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := newClient().LoadDocument(cmd.Context(), args[0], args[1])
		if err != nil {
			if errors.Is(err, client.ErrNotFound) {
				// No document yet: empty content, nothing to print.
				return nil
			}
			return err
		}
		fmt.Fprintln(os.Stderr, "last modified:", doc.LastModifiedTimestamp)
		fmt.Print(doc.Content)
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put <project-id> <document-type> [file]",
	Short: "Save a project document from a file or stdin",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 3 {
			data, err = os.ReadFile(args[2])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}

		c := newClient()

		var lastKnown int64
		doc, err := c.LoadDocument(cmd.Context(), args[0], args[1])
		if err != nil && !errors.Is(err, client.ErrNotFound) {
			return err
		}
		if doc != nil {
			lastKnown = doc.LastModifiedTimestamp
		}

		newStamp, err := c.SaveDocument(cmd.Context(), args[0], args[1], string(data), lastKnown)
		if err != nil {
			var conflict *client.ConflictError
			if errors.As(err, &conflict) {
				return fmt.Errorf("save conflict: %s (reload and retry)", conflict.Description)
			}
			return err
		}

		fmt.Println("saved, new timestamp:", newStamp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
}
