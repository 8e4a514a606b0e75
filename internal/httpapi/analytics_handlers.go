package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/model"
)

// ActivityResponse is the activity chart for one timeframe.
type ActivityResponse struct {
	Timeframe analytics.Timeframe `json:"timeframe"`
	Label     string              `json:"label"`
	Points    []analytics.Point   `json:"points"`
}

// DashboardResponse is the analytics page in one document.
type DashboardResponse struct {
	Activity ActivityResponse `json:"activity"`
	Focus    *analytics.Focus `json:"focus"`
	Stats    analytics.Stats  `json:"stats"`
}

// SettingsResponse is the settings page data.
type SettingsResponse struct {
	User     *model.User    `json:"user"`
	ViewMode model.ViewMode `json:"view_mode"`
	Labels   []model.Label  `json:"labels"`
}

func (s *Server) activity(c echo.Context) (ActivityResponse, error) {
	tf, err := analytics.ParseTimeframe(c.QueryParam("timeframe"))
	if err != nil {
		return ActivityResponse{}, err
	}
	points, err := s.analytics.Activity(c.Request().Context(), userID(c), tf)
	if err != nil {
		return ActivityResponse{}, err
	}
	return ActivityResponse{Timeframe: tf, Label: tf.Label(), Points: points}, nil
}

func (s *Server) handleActivity(c echo.Context) error {
	resp, err := s.activity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFocus(c echo.Context) error {
	activeOnly, err := scopeParam(c)
	if err != nil {
		return err
	}
	focus, err := s.analytics.FocusAreas(c.Request().Context(), userID(c), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, focus)
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.analytics.Stats(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleWeekly(c echo.Context) error {
	aggs, err := s.analytics.Weekly(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	if aggs == nil {
		aggs = []model.AnalyticsAggregate{}
	}
	return c.JSON(http.StatusOK, aggs)
}

// handleAnalyticsPage is reached only with a session; the guard
// redirects everyone else.
func (s *Server) handleAnalyticsPage(c echo.Context) error {
	act, err := s.activity(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	focus, err := s.analytics.FocusAreas(ctx, userID(c), true)
	if err != nil {
		return err
	}
	stats, err := s.analytics.Stats(ctx, userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DashboardResponse{Activity: act, Focus: focus, Stats: stats})
}

func (s *Server) handleSettingsPage(c echo.Context) error {
	ctx := c.Request().Context()
	mode, err := s.notes.ViewMode(ctx, userID(c))
	if err != nil {
		return err
	}
	labels, err := s.notes.ListLabels(ctx, userID(c))
	if err != nil {
		return err
	}
	if labels == nil {
		labels = []model.Label{}
	}
	return c.JSON(http.StatusOK, SettingsResponse{User: currentUser(c), ViewMode: mode, Labels: labels})
}
