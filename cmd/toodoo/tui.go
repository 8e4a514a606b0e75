package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/app"
	jobs "github.com/nhle/too-doo/internal/sync"
	"github.com/nhle/too-doo/internal/ui"
)

var tuiNoJobs bool

func init() {
	tuiCmd.Flags().BoolVar(&tuiNoJobs, "no-jobs", false, "do not run background jobs while the UI is open")
	rootCmd.Flags().BoolVar(&tuiNoJobs, "no-jobs", false, "do not run background jobs while the UI is open")
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, logFile)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.currentUser(ctx)
	if err != nil {
		return err
	}

	var poller *jobs.Poller
	if !tuiNoJobs {
		poller = e.newPoller(ctx, user.Email)
		defer poller.Stop()
	}

	svc := ui.Services{
		Notes:      e.notes,
		Analytics:  e.analytics,
		UserID:     user.ID,
		Config:     e.cfg,
		ConfigPath: configPath,
	}
	if creds, err := e.credentials(); err == nil {
		svc.Secrets = creds
	} else {
		e.logger.Warn(ctx, "keyring unavailable, mail password cannot be stored", zap.Error(err))
	}
	p := tea.NewProgram(app.New(svc, user.Email, poller), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}
