package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var metricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show event and rename counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		snapshot, err := c.Metrics(cmd.Context())
		if err != nil {
			return err
		}
		if metricsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		}
		if !snapshot.Enabled {
			fmt.Println("metrics disabled")
			return nil
		}
		totals := snapshot.Totals
		fmt.Printf("since: %s\n", snapshot.Started.Format("2006-01-02 15:04:05"))
		fmt.Printf("events: %d  recomputes: %d  renames: %d (%d failed)  reloads: %d (%d failed)\n",
			totals.Events, totals.Recomputes, totals.Renames, totals.RenameErrors,
			totals.Reloads, totals.ReloadErrors)
		for _, ev := range snapshot.Events {
			fmt.Printf("  %-20s %d\n", ev.Kind, ev.Seen)
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "print the raw counter snapshot")
	rootCmd.AddCommand(metricsCmd)
}
