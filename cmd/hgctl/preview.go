package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the labels the daemon would dispatch right now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.Preview(cmd.Context())
		if err != nil {
			return err
		}
		if len(result.Workspaces) == 0 {
			fmt.Println("no workspaces")
			return nil
		}
		for _, ws := range result.Workspaces {
			fmt.Printf("%d (%d clients): %q\n", ws.ID, ws.Clients, ws.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
