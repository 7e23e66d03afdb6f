package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyprglyph/hyprglyph/internal/control/client"
)

var socketPath string

var rootCmd = &cobra.Command{
	Use:           "hgctl",
	Short:         "Control a running hyprglyph daemon",
	Long:          "hgctl talks to the hyprglyph control socket to inspect and steer the workspace renamer.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "control socket path (defaults to the runtime dir)")
}

func newClient() (*client.Client, error) {
	return client.New(socketPath)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
