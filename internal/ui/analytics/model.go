package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	stats "github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
)

// LoadedMsg carries everything the dashboard shows.
type LoadedMsg struct {
	Timeframe  stats.Timeframe
	ActiveOnly bool
	Points     []stats.Point
	Focus      *stats.Focus
	Stats      stats.Stats
	Weekly     []model.AnalyticsAggregate
	Err        error
}

var (
	createdStyle   = lipgloss.NewStyle().Foreground(theme.ColorBlue)
	completedStyle = lipgloss.NewStyle().Foreground(theme.ColorGreen)
)

// Model is the analytics dashboard: an activity chart for the chosen
// timeframe, focus areas by label, and completion streaks.
type Model struct {
	svc        ui.Services
	keys       *keys.KeyMap
	timeframe  stats.Timeframe
	activeOnly bool
	data       *LoadedMsg
	width      int
	height     int
}

// New creates the analytics view showing one week of active focus.
func New(svc ui.Services, k *keys.KeyMap, width, height int) Model {
	return Model{
		svc:        svc,
		keys:       k,
		timeframe:  stats.TimeframeWeek,
		activeOnly: true,
		width:      width,
		height:     height,
	}
}

// Init loads the dashboard.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// SetTimeframe switches the activity chart and reloads.
func (m *Model) SetTimeframe(tf stats.Timeframe) tea.Cmd {
	m.timeframe = tf
	return m.Load()
}

// Load fetches all dashboard data concurrently. Any failure fails the
// whole load.
func (m Model) Load() tea.Cmd {
	svc, tf, activeOnly := m.svc, m.timeframe, m.activeOnly
	return func() tea.Msg {
		msg := LoadedMsg{Timeframe: tf, ActiveOnly: activeOnly}
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() (err error) {
			msg.Points, err = svc.Analytics.Activity(ctx, svc.UserID, tf)
			return err
		})
		g.Go(func() (err error) {
			msg.Focus, err = svc.Analytics.FocusAreas(ctx, svc.UserID, activeOnly)
			return err
		})
		g.Go(func() (err error) {
			msg.Stats, err = svc.Analytics.Stats(ctx, svc.UserID)
			return err
		})
		g.Go(func() (err error) {
			msg.Weekly, err = svc.Analytics.Weekly(ctx, svc.UserID)
			return err
		})
		msg.Err = g.Wait()
		return msg
	}
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			return m, func() tea.Msg { return ui.ErrMsg{Err: msg.Err} }
		}
		if msg.Timeframe != m.timeframe || msg.ActiveOnly != m.activeOnly {
			return m, nil
		}
		m.data = &msg
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Timeframe):
			return m, m.SetTimeframe(nextTimeframe(m.timeframe))
		case key.Matches(msg, m.keys.CycleLabel):
			m.activeOnly = !m.activeOnly
			return m, m.Load()
		}
	}
	return m, nil
}

func nextTimeframe(tf stats.Timeframe) stats.Timeframe {
	for i, t := range stats.Timeframes {
		if t == tf {
			return stats.Timeframes[(i+1)%len(stats.Timeframes)]
		}
	}
	return stats.TimeframeWeek
}

// View renders the dashboard.
func (m Model) View() string {
	if m.data == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading analytics...")
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	half := max((m.width-6)/2, 20)

	activity := lipgloss.JoinVertical(lipgloss.Left,
		title.Render("Activity · "+m.timeframe.Label()),
		theme.HelpStyle.Render(createdStyle.Render("■ created")+"  "+completedStyle.Render("■ completed")),
		m.activityChart(half, max(m.height/2-4, 6)),
		m.bucketLabels(),
	)

	scope := "active notes"
	if !m.activeOnly {
		scope = "all notes"
	}
	focus := lipgloss.JoinVertical(lipgloss.Left,
		title.Render("Focus Areas · "+scope),
		m.focusBars(half),
	)

	streaks := lipgloss.JoinVertical(lipgloss.Left,
		title.Render("Streaks"),
		fmt.Sprintf("Current  %d days", m.data.Stats.CurrentStreak),
		fmt.Sprintf("Longest  %d days", m.data.Stats.LongestStreak),
		"",
		title.Render("Completed per week"),
		m.weeklySparkline(half),
	)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.PanelStyle.Width(half).Render(activity),
		theme.PanelStyle.Width(half).Render(focus),
	)
	hints := theme.HelpStyle.Render("t timeframe · tab active/all · r refresh")
	return lipgloss.JoinVertical(lipgloss.Left, top, theme.PanelStyle.Width(half).Render(streaks), hints)
}

// activityChart draws created and completed counts side by side for
// each bucket, in chronological order.
func (m Model) activityChart(width, height int) string {
	points := chronological(m.data.Points)
	data := make([]barchart.BarData, len(points))
	for i, p := range points {
		data[i] = barchart.BarData{
			Label: fmt.Sprintf("%d", i+1),
			Values: []barchart.BarValue{
				{Name: "created", Value: float64(p.Created), Style: createdStyle},
				{Name: "completed", Value: float64(p.Completed), Style: completedStyle},
			},
		}
	}
	chart := barchart.New(width, height)
	chart.PushAll(data)
	chart.Draw()
	return chart.View()
}

// bucketLabels maps the numbered bars back to bucket names.
func (m Model) bucketLabels() string {
	points := chronological(m.data.Points)
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%d %s", i+1, p.Label)
	}
	return theme.HelpStyle.Render(strings.Join(parts, " · "))
}

// focusBars renders one proportional bar per focus slice in the label's
// color.
func (m Model) focusBars(width int) string {
	focus := m.data.Focus
	if focus == nil || focus.Total == 0 {
		return theme.HelpStyle.Render("No notes to chart yet.")
	}

	nameWidth := 0
	for _, s := range focus.Slices {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
	}
	barWidth := max(width-nameWidth-12, 5)

	lines := make([]string, 0, len(focus.Slices))
	for _, s := range focus.Slices {
		n := max(s.Value*barWidth/focus.Total, 1)
		pct := s.Value * 100 / focus.Total
		lines = append(lines, fmt.Sprintf("%-*s %s %3d%%",
			nameWidth, s.Name, theme.ColorStyle(s.Color).Render(strings.Repeat("█", n)), pct))
	}
	return strings.Join(lines, "\n")
}

// weeklySparkline plots stored weekly completion counts, oldest first.
func (m Model) weeklySparkline(width int) string {
	if len(m.data.Weekly) == 0 {
		return theme.HelpStyle.Render("No weekly history yet.")
	}
	spark := sparkline.New(max(width-4, len(m.data.Weekly)), 3)
	for i := len(m.data.Weekly) - 1; i >= 0; i-- {
		spark.Push(float64(m.data.Weekly[i].CompletedCount))
	}
	spark.Draw()
	return spark.View()
}

// chronological returns points ordered oldest first. The month view
// arrives newest first.
func chronological(points []stats.Point) []stats.Point {
	out := make([]stats.Point, len(points))
	copy(out, points)
	if len(out) > 1 && out[0].Start.After(out[len(out)-1].Start) {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
