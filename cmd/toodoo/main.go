// Package main implements toodoo, the terminal client and API server for
// Too-Doo notes.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/too-doo/internal/model"
)

var (
	// configPath is the YAML configuration file.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "toodoo",
	Short: "Notes, checklists and labels in the terminal",
	Long: `toodoo keeps notes and checklists organized by labels.

Run without a subcommand to open the terminal UI. Other subcommands
manage notes from scripts, run the HTTP API or the weekly aggregation.

Examples:
  # Open the terminal UI
  toodoo

  # Sign in once, then add a note
  toodoo login --email ada@example.com
  toodoo notes add "Buy milk" --label Home --due 2024-06-01

  # Serve the HTTP API with background jobs
  toodoo serve`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "configuration file")
}
