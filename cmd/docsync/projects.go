package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	projectID   string
	projectDesc string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().CreateProject(cmd.Context(), projectID, args[0], projectDesc); err != nil {
			return err
		}
		fmt.Println("created project", args[0])
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectID, "id", "", "explicit project ID (defaults to a generated UUID)")
	projectCreateCmd.Flags().StringVar(&projectDesc, "description", "", "project description")
	projectCmd.AddCommand(projectCreateCmd)
	rootCmd.AddCommand(projectCmd)
}
