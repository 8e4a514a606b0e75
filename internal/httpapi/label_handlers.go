package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nhle/too-doo/internal/model"
)

// LabelRequest is the body of label create and update.
type LabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ViewModeRequest is the body of PUT /preferences/view-mode.
type ViewModeRequest struct {
	Mode model.ViewMode `json:"mode"`
}

func (s *Server) handleListLabels(c echo.Context) error {
	labels, err := s.notes.ListLabels(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	if labels == nil {
		labels = []model.Label{}
	}
	return c.JSON(http.StatusOK, labels)
}

func (s *Server) handleCreateLabel(c echo.Context) error {
	var req LabelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	label, err := s.notes.CreateLabel(c.Request().Context(), userID(c), req.Name, req.Color)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, label)
}

func (s *Server) handleUpdateLabel(c echo.Context) error {
	var req LabelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	label, err := s.notes.UpdateLabel(c.Request().Context(), userID(c), c.Param("id"), req.Name, req.Color)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, label)
}

func (s *Server) handleDeleteLabel(c echo.Context) error {
	if err := s.notes.DeleteLabel(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleReorderLabels(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ids, err := s.notes.ReorderLabels(c.Request().Context(), userID(c), req.IDs, req.From, req.To)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ReorderResponse{IDs: ids})
}

// handleLabelCounts answers ?scope=active (default) or ?scope=all.
func (s *Server) handleLabelCounts(c echo.Context) error {
	activeOnly, err := scopeParam(c)
	if err != nil {
		return err
	}
	counts, err := s.notes.LabelCounts(c.Request().Context(), userID(c), activeOnly)
	if err != nil {
		return err
	}
	if counts == nil {
		counts = []model.LabelCount{}
	}
	return c.JSON(http.StatusOK, counts)
}

func (s *Server) handleGetViewMode(c echo.Context) error {
	mode, err := s.notes.ViewMode(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ViewModeRequest{Mode: mode})
}

func (s *Server) handleSetViewMode(c echo.Context) error {
	var req ViewModeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.notes.SetViewMode(c.Request().Context(), userID(c), req.Mode); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

func scopeParam(c echo.Context) (activeOnly bool, err error) {
	switch c.QueryParam("scope") {
	case "", "active":
		return true, nil
	case "all":
		return false, nil
	default:
		return false, echo.NewHTTPError(http.StatusBadRequest, "scope must be 'active' or 'all'")
	}
}
