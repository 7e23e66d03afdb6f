package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's labeling state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		status, err := c.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("config: %s\n", status.ConfigPath)
		if status.DryRun {
			fmt.Println("mode: dry-run")
		}
		rules := status.Rules
		fmt.Printf("rules: %d class, %d class_active, %d initial_class, %d initial_class_active, %d title groups, %d active title groups, %d exclude, %d workspace names\n",
			rules.Class, rules.ClassActive, rules.InitialClass, rules.InitialClassActive,
			rules.TitleGroups, rules.TitleGroupsActive, rules.Exclude, rules.WorkspaceNames)
		if len(status.KnownWorkspaces) == 0 {
			fmt.Println("workspaces: none")
			return nil
		}
		fmt.Printf("workspaces: %v\n", status.KnownWorkspaces)
		ids := make([]int, 0, len(status.Labels))
		for id := range status.Labels {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Printf("  %d -> %q\n", id, status.Labels[id])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
