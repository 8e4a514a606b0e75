package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/too-doo/internal/model"
)

// noteColumns is the select list shared by every note query. Label
// columns come from a LEFT JOIN and are NULL for unlabeled notes.
const noteColumns = `notes.id, notes.user_id, notes.title, notes.description,
	notes.label_id, notes.due_date, notes.is_priority, notes.is_completed,
	notes.completed_at, notes.is_list, notes.position,
	notes.created_at, notes.updated_at,
	labels.id AS label_ref_id, labels.name AS label_name,
	labels.color AS label_color, labels.position AS label_position`

const noteFrom = " FROM notes LEFT JOIN labels ON labels.id = notes.label_id"

// noteRow is the raw shape of a joined note query.
type noteRow struct {
	model.Note
	LabelRefID    sql.NullString `db:"label_ref_id"`
	LabelName     sql.NullString `db:"label_name"`
	LabelColor    sql.NullString `db:"label_color"`
	LabelPosition sql.NullInt64  `db:"label_position"`
}

// normalizeNote maps a joined row to a Note whose Label is either a
// complete label or nil.
func normalizeNote(r noteRow) model.Note {
	n := r.Note
	n.Label = nil
	if r.LabelRefID.Valid {
		n.Label = &model.Label{
			ID:       r.LabelRefID.String,
			UserID:   n.UserID,
			Name:     r.LabelName.String,
			Color:    r.LabelColor.String,
			Position: int(r.LabelPosition.Int64),
		}
	}
	return n
}

// CreateNote inserts a new note. Generates a UUID if ID is empty and
// appends the note after its siblings in the same label group.
func (s *SQLStore) CreateNote(ctx context.Context, note model.Note) (model.Note, error) {
	if strings.TrimSpace(note.Title) == "" {
		return model.Note{}, fmt.Errorf("%w: note title must not be empty", ErrInvalid)
	}
	if note.UserID == "" {
		return model.Note{}, fmt.Errorf("note user_id must not be empty")
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	if note.IsCompleted && note.CompletedAt == nil {
		note.CompletedAt = &now
	}
	if !note.IsCompleted {
		note.CompletedAt = nil
	}
	note.DueDate = utcPtr(note.DueDate)
	note.CompletedAt = utcPtr(note.CompletedAt)

	if note.Position == nil {
		query := "SELECT COALESCE(MAX(position), 0) FROM notes WHERE user_id = ? AND label_id IS NULL"
		args := []interface{}{note.UserID}
		if note.LabelID != nil {
			query = "SELECT COALESCE(MAX(position), 0) FROM notes WHERE user_id = ? AND label_id = ?"
			args = append(args, *note.LabelID)
		}
		var maxPos int
		if err := s.db.GetContext(ctx, &maxPos, s.rebind(query), args...); err != nil {
			return model.Note{}, fmt.Errorf("getting max note position: %w", err)
		}
		next := maxPos + 1
		note.Position = &next
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO notes (
			id, user_id, title, description, label_id, due_date,
			is_priority, is_completed, completed_at, is_list, position,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		note.ID, note.UserID, note.Title, note.Description, note.LabelID, note.DueDate,
		note.IsPriority, note.IsCompleted, note.CompletedAt, note.IsList, note.Position,
		note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return model.Note{}, fmt.Errorf("creating note: %w", err)
	}
	return note, nil
}

// GetNote retrieves a single note owned by userID, with its label attached.
func (s *SQLStore) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	var row noteRow
	err := s.db.GetContext(ctx, &row, s.rebind(
		"SELECT "+noteColumns+noteFrom+" WHERE notes.id = ? AND notes.user_id = ?"),
		id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting note %s: %w", id, notFoundIf(err, "note", id))
	}
	n := normalizeNote(row)
	return &n, nil
}

// ListNotes retrieves notes matching the filter.
func (s *SQLStore) ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error) {
	query, args := s.buildNoteQuery("SELECT "+noteColumns, filter, true)

	var rows []noteRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}

	notes := make([]model.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, normalizeNote(r))
	}
	return notes, nil
}

// CountNotes returns the count of notes matching the filter.
func (s *SQLStore) CountNotes(ctx context.Context, filter NoteFilter) (int, error) {
	query, args := s.buildNoteQuery("SELECT COUNT(*)", filter, false)

	var count int
	if err := s.db.GetContext(ctx, &count, s.rebind(query), args...); err != nil {
		return 0, fmt.Errorf("counting notes: %w", err)
	}
	return count, nil
}

// UpdateNoteFields applies a targeted update to one note. Completing a
// note without an explicit timestamp stamps completed_at; reverting it
// clears completed_at.
func (s *SQLStore) UpdateNoteFields(
	ctx context.Context,
	userID, id string,
	patch model.NotePatch,
) error {
	if patch.Empty() {
		return nil
	}

	now := time.Now().UTC()
	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return fmt.Errorf("%w: note title must not be empty", ErrInvalid)
		}
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	switch {
	case patch.ClearLabel:
		set("label_id", nil)
	case patch.LabelID != nil:
		set("label_id", *patch.LabelID)
	}
	switch {
	case patch.ClearDueDate:
		set("due_date", nil)
	case patch.DueDate != nil:
		set("due_date", patch.DueDate.UTC())
	}
	if patch.IsPriority != nil {
		set("is_priority", *patch.IsPriority)
	}
	if patch.IsList != nil {
		set("is_list", *patch.IsList)
	}
	if patch.IsCompleted != nil {
		set("is_completed", *patch.IsCompleted)
		if *patch.IsCompleted {
			completedAt := now
			if patch.CompletedAt != nil {
				completedAt = patch.CompletedAt.UTC()
			}
			set("completed_at", completedAt)
		} else {
			set("completed_at", nil)
		}
	}
	if patch.Position != nil {
		set("position", *patch.Position)
	}
	set("updated_at", now)

	args = append(args, id, userID)
	result, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?"),
		args...)
	if err != nil {
		return fmt.Errorf("updating note %s: %w", id, err)
	}
	return requireAffected(result, "note", id)
}

// SetNotePosition updates the position of a specific note.
func (s *SQLStore) SetNotePosition(ctx context.Context, userID, id string, position int) error {
	result, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE notes SET position = ?, updated_at = ? WHERE id = ? AND user_id = ?"),
		position, time.Now().UTC(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("setting position of note %s: %w", id, err)
	}
	return requireAffected(result, "note", id)
}

// DeleteNote hard-deletes a note.
func (s *SQLStore) DeleteNote(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind(
		"DELETE FROM notes WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}
	return requireAffected(result, "note", id)
}

// CountNotesInRange returns the exact number of notes whose timestamp
// column falls inside r.
func (s *SQLStore) CountNotesInRange(ctx context.Context, r CountRange) (int, error) {
	if r.Column != ColumnCreatedAt && r.Column != ColumnCompletedAt {
		return 0, fmt.Errorf("unsupported count column %q", r.Column)
	}
	endOp := "<"
	if r.InclusiveEnd {
		endOp = "<="
	}
	col := string(r.Column)
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM notes WHERE user_id = ? AND %s >= ? AND %s %s ?",
		col, col, endOp)

	var count int
	err := s.db.GetContext(ctx, &count, s.rebind(query),
		r.UserID, r.Start.UTC(), r.End.UTC())
	if err != nil {
		return 0, fmt.Errorf("counting notes by %s: %w", col, err)
	}
	return count, nil
}

// ListCompletionTimes returns completed_at for every completed note of a user.
func (s *SQLStore) ListCompletionTimes(ctx context.Context, userID string) ([]time.Time, error) {
	var times []time.Time
	err := s.db.SelectContext(ctx, &times, s.rebind(
		"SELECT completed_at FROM notes WHERE user_id = ? AND completed_at IS NOT NULL ORDER BY completed_at"),
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing completion times: %w", err)
	}
	return times, nil
}

// noteSorts maps the accepted sort modes to ORDER BY clauses. NULL due
// dates and positions sort last.
var noteSorts = map[string]string{
	SortPriorityDueDate:  "notes.is_priority DESC, notes.due_date IS NULL, notes.due_date ASC",
	SortDueDate:          "notes.due_date IS NULL, notes.due_date ASC",
	SortPriorityPosition: "notes.is_priority DESC, notes.position IS NULL, notes.position ASC",
	SortCreatedDesc:      "notes.created_at DESC",
	SortCompletedDesc:    "notes.completed_at DESC",
}

// buildNoteQuery constructs the SQL query and args for a NoteFilter.
func (s *SQLStore) buildNoteQuery(
	selectClause string,
	filter NoteFilter,
	withOrder bool,
) (string, []interface{}) {
	conditions := []string{"notes.user_id = ?"}
	args := []interface{}{filter.UserID}

	if filter.Completed != nil {
		conditions = append(conditions, "notes.is_completed = ?")
		args = append(args, *filter.Completed)
	}
	if filter.Unlabeled {
		conditions = append(conditions, "notes.label_id IS NULL")
	} else if filter.LabelID != nil {
		conditions = append(conditions, "notes.label_id = ?")
		args = append(args, *filter.LabelID)
	}
	if filter.Priority != nil {
		conditions = append(conditions, "notes.is_priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.Query != nil && *filter.Query != "" {
		like := "LIKE"
		if s.dialect == dialectPostgres {
			like = "ILIKE"
		}
		conditions = append(conditions,
			fmt.Sprintf("(notes.title %s ? OR notes.description %s ?)", like, like))
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := selectClause + noteFrom + " WHERE " + strings.Join(conditions, " AND ")
	if !withOrder {
		return query, args
	}

	order, ok := noteSorts[filter.SortBy]
	if !ok {
		order = noteSorts[SortPriorityDueDate]
	}
	query += " ORDER BY " + order + ", notes.created_at ASC, notes.id ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, args
}

// utcPtr normalizes an optional timestamp to UTC.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
