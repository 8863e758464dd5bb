// ABOUTME: Interactive console entry point
// ABOUTME: Wires client, session store and profile manager into the TUI

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/config"
	"github.com/sercanio/apptemplate-cli/internal/imaging"
	"github.com/sercanio/apptemplate-cli/internal/profile"
	"github.com/sercanio/apptemplate-cli/internal/session"
	"github.com/sercanio/apptemplate-cli/internal/tui"
)

// consoleCmd is an explicit alias for the default (no subcommand) behavior
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Launch the interactive admin console",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole()
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole() error {
	uploadCap := imaging.DefaultMaxUploadBytes
	if cfg, err := config.Load(); err == nil {
		uploadCap = cfg.MaxUploadMB << 20
	}

	client := newClient()
	store := session.NewStore(client, newLogger())
	manager := profile.NewManagerWithUploadCap(client, store, uploadCap)
	return tui.Run(client, store, manager)
}
