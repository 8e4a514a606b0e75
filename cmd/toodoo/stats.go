package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/model"
)

var (
	statsTimeframe string
	statsAll       bool
)

func init() {
	statsCmd.Flags().StringVarP(&statsTimeframe, "timeframe", "t", string(analytics.TimeframeWeek), "1w, 1m or 3m")
	statsCmd.Flags().BoolVar(&statsAll, "all", false, "count completed notes in focus areas too")
	rootCmd.AddCommand(statsCmd, aggregateCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show activity, focus areas and streaks",
	Long: `Show notes created and completed per bucket of a timeframe, the
share of notes per label, and completion streaks.

Examples:
  toodoo stats
  toodoo stats --timeframe 3m --all`,
	Args: cobra.NoArgs,
	RunE: withUser(runStats),
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run the weekly aggregation once for every account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := analytics.NewAggregator(e.store, e.logger, e.cfg.Aggregation.Weeks).RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Detail)
		return nil
	},
}

func runStats(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, _ []string) error {
	tf, err := analytics.ParseTimeframe(statsTimeframe)
	if err != nil {
		return err
	}
	points, err := e.analytics.Activity(ctx, user.ID, tf)
	if err != nil {
		return err
	}
	focus, err := e.analytics.FocusAreas(ctx, user.ID, !statsAll)
	if err != nil {
		return err
	}
	streaks, err := e.analytics.Stats(ctx, user.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	t := newTable(out)
	t.SetTitle("Activity, " + tf.Label())
	t.AppendHeader(table.Row{"Period", "Created", "Completed"})
	created, completed := 0, 0
	for _, p := range points {
		t.AppendRow(table.Row{p.Label, p.Created, p.Completed})
		created += p.Created
		completed += p.Completed
	}
	t.AppendFooter(table.Row{"Total", created, completed})
	t.Render()

	f := newTable(out)
	f.SetTitle("Focus areas")
	f.AppendHeader(table.Row{"Label", "Notes", "Share"})
	for _, s := range focus.Slices {
		f.AppendRow(table.Row{s.Name, s.Value, share(s.Value, focus.Total)})
	}
	f.Render()

	fmt.Fprintf(out, "Current streak: %d days, longest: %d days\n", streaks.CurrentStreak, streaks.LongestStreak)
	return nil
}

// share renders value/total as a percentage with a bar.
func share(value, total int) string {
	if total == 0 {
		return ""
	}
	pct := value * 100 / total
	return fmt.Sprintf("%-10s %3d%%", strings.Repeat("█", pct/10), pct)
}
