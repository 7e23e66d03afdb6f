package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyprglyph/hyprglyph/internal/config"
)

var checkConfigPath string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a configuration file without a running daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := checkConfigPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".config", "hyprglyph", "config.yaml")
		}
		issues, err := config.LintFile(path)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Printf("%s: ok\n", path)
			return nil
		}
		for _, issue := range issues {
			fmt.Printf("%s: %s\n", path, issue.Error())
		}
		return fmt.Errorf("%d problem(s) found", len(issues))
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkConfigPath, "config", "", "path to YAML config")
	rootCmd.AddCommand(checkCmd)
}
