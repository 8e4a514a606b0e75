package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
)

// NotePatchRequest is the body of PATCH /notes/:id. Absent fields are
// left untouched; a JSON null label_id or due_date clears it.
type NotePatchRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	LabelID     optional[string]    `json:"label_id"`
	DueDate     optional[time.Time] `json:"due_date"`
	IsPriority  *bool               `json:"is_priority"`
	IsList      *bool               `json:"is_list"`
	IsCompleted *bool               `json:"is_completed"`
}

func (r NotePatchRequest) patch() model.NotePatch {
	p := model.NotePatch{
		Title:       r.Title,
		Description: r.Description,
		IsPriority:  r.IsPriority,
		IsList:      r.IsList,
		IsCompleted: r.IsCompleted,
	}
	if r.LabelID.Set {
		p.LabelID = r.LabelID.Value
		p.ClearLabel = r.LabelID.Value == nil
	}
	if r.DueDate.Set {
		p.DueDate = r.DueDate.Value
		p.ClearDueDate = r.DueDate.Value == nil
	}
	return p
}

// ReorderRequest moves the item at From to To within IDs.
type ReorderRequest struct {
	IDs  []string `json:"ids"`
	From int      `json:"from"`
	To   int      `json:"to"`
}

// ReorderResponse is the order after a successful move.
type ReorderResponse struct {
	IDs []string `json:"ids"`
}

func activeQuery(c echo.Context) notes.ActiveQuery {
	q := notes.ActiveQuery{
		Unlabeled:    c.QueryParam("unlabeled") == "true",
		PriorityOnly: c.QueryParam("priority") == "true",
		Query:        c.QueryParam("q"),
		DueDateOnly:  c.QueryParam("due_date_only") == "true",
		Mode:         model.ParseViewMode(c.QueryParam("mode")),
	}
	if l := c.QueryParam("label"); l != "" {
		q.LabelID = &l
	}
	return q
}

// handleListNotes answers ?view=active (default) or ?view=completed.
func (s *Server) handleListNotes(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		list []model.Note
		err  error
	)
	switch c.QueryParam("view") {
	case "", "active":
		list, err = s.notes.ActiveNotes(ctx, userID(c), activeQuery(c))
	case "completed":
		list, err = s.notes.CompletedNotes(ctx, userID(c))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "view must be 'active' or 'completed'")
	}
	if err != nil {
		return err
	}
	if list == nil {
		list = []model.Note{}
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreateNote(c echo.Context) error {
	var req notes.NewNote
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	note, err := s.notes.CreateNote(c.Request().Context(), userID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

func (s *Server) handleGetNote(c echo.Context) error {
	note, err := s.notes.GetNote(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) handleUpdateNote(c echo.Context) error {
	var req NotePatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	note, err := s.notes.UpdateNote(c.Request().Context(), userID(c), c.Param("id"), req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) handleDeleteNote(c echo.Context) error {
	if err := s.notes.DeleteNote(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCompleteNote(c echo.Context) error {
	note, err := s.notes.CompleteNote(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) handleRevertNote(c echo.Context) error {
	note, err := s.notes.RevertNote(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) handleTogglePriority(c echo.Context) error {
	note, err := s.notes.TogglePriority(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) handleToggleItem(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "index must be an integer")
	}
	result, err := s.notes.ToggleListItem(c.Request().Context(), userID(c), c.Param("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleReorderNotes(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ids, err := s.notes.ReorderNotes(c.Request().Context(), userID(c), req.IDs, req.From, req.To)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ReorderResponse{IDs: ids})
}

func (s *Server) handleLabelGroups(c echo.Context) error {
	groups, err := s.notes.LabelGroups(c.Request().Context(), userID(c), activeQuery(c))
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []notes.Group{}
	}
	return c.JSON(http.StatusOK, groups)
}

func (s *Server) handleCompletedGroups(c echo.Context) error {
	groups, err := s.notes.FannedGroups(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []notes.Group{}
	}
	return c.JSON(http.StatusOK, groups)
}
