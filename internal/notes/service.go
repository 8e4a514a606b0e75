package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
)

// Service implements note and label operations on top of a Store.
type Service struct {
	store  store.Store
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates a notes service.
func NewService(s store.Store, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:  s,
		logger: logger.Named("notes"),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// NewNote holds the fields accepted when creating a note.
type NewNote struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	LabelID     *string          `json:"label_id"`
	DueDate     *time.Time       `json:"due_date"`
	IsPriority  bool             `json:"is_priority"`
	IsList      bool             `json:"is_list"`
	Items       []model.ListItem `json:"items"`
}

// CreateNote validates and stores a new active note. A checklist note
// takes its items from Items, or parses them out of Description.
func (s *Service) CreateNote(ctx context.Context, userID string, in NewNote) (*model.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: note title must not be empty", store.ErrInvalid)
	}
	if err := s.checkLabel(ctx, userID, in.LabelID); err != nil {
		return nil, err
	}

	description := in.Description
	if in.IsList {
		items := in.Items
		if items == nil {
			items = ItemsFromText(in.Description)
		}
		encoded, err := EncodeListItems(items)
		if err != nil {
			return nil, err
		}
		description = encoded
	}

	created, err := s.store.CreateNote(ctx, model.Note{
		UserID:      userID,
		Title:       title,
		Description: description,
		LabelID:     in.LabelID,
		DueDate:     in.DueDate,
		IsPriority:  in.IsPriority,
		IsList:      in.IsList,
	})
	if err != nil {
		s.logger.Error(ctx, "creating note failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info(ctx, "note created", zap.String("note_id", created.ID))
	return s.store.GetNote(ctx, userID, created.ID)
}

// GetNote returns one note with its label attached.
func (s *Service) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	return s.store.GetNote(ctx, userID, id)
}

// UpdateNote applies a targeted update. Turning a plain note into a
// checklist converts its text body into items.
func (s *Service) UpdateNote(ctx context.Context, userID, id string, patch model.NotePatch) (*model.Note, error) {
	if !patch.ClearLabel {
		if err := s.checkLabel(ctx, userID, patch.LabelID); err != nil {
			return nil, err
		}
	}

	if patch.IsList != nil {
		current, err := s.store.GetNote(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if *patch.IsList && !current.IsList {
			body := current.Description
			if patch.Description != nil {
				body = *patch.Description
			}
			if _, err := ParseListItems(body); err != nil || strings.TrimSpace(body) == "" {
				encoded, encErr := EncodeListItems(ItemsFromText(body))
				if encErr != nil {
					return nil, encErr
				}
				patch.Description = &encoded
			}
		}
	}

	if patch.IsCompleted != nil && *patch.IsCompleted && patch.CompletedAt == nil {
		now := s.now().UTC()
		patch.CompletedAt = &now
	}

	if err := s.store.UpdateNoteFields(ctx, userID, id, patch); err != nil {
		s.logger.Error(ctx, "updating note failed", zap.String("note_id", id), zap.Error(err))
		return nil, err
	}
	return s.store.GetNote(ctx, userID, id)
}

// CompleteNote marks a note completed now.
func (s *Service) CompleteNote(ctx context.Context, userID, id string) (*model.Note, error) {
	done := true
	return s.UpdateNote(ctx, userID, id, model.NotePatch{IsCompleted: &done})
}

// RevertNote moves a completed note back to the Active view.
func (s *Service) RevertNote(ctx context.Context, userID, id string) (*model.Note, error) {
	done := false
	return s.UpdateNote(ctx, userID, id, model.NotePatch{IsCompleted: &done})
}

// TogglePriority flips the priority flag of a note.
func (s *Service) TogglePriority(ctx context.Context, userID, id string) (*model.Note, error) {
	current, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	flipped := !current.IsPriority
	return s.UpdateNote(ctx, userID, id, model.NotePatch{IsPriority: &flipped})
}

// DeleteNote hard-deletes a note.
func (s *Service) DeleteNote(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteNote(ctx, userID, id); err != nil {
		s.logger.Error(ctx, "deleting note failed", zap.String("note_id", id), zap.Error(err))
		return err
	}
	s.logger.Info(ctx, "note deleted", zap.String("note_id", id))
	return nil
}

// ToggleResult describes the outcome of a checklist toggle.
type ToggleResult struct {
	Note          *model.Note      `json:"note"`
	Items         []model.ListItem `json:"items"`
	AutoCompleted bool             `json:"auto_completed"` // last open item checked
	AutoReverted  bool             `json:"auto_reverted"`  // completed list lost a check
}

// ToggleListItem flips checklist item index and persists the whole list.
// A list whose items are all checked becomes completed; a completed list
// with an unchecked item becomes active again.
func (s *Service) ToggleListItem(ctx context.Context, userID, id string, index int) (*ToggleResult, error) {
	current, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !current.IsList {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotList)
	}

	items, parseErr := ParseListItems(current.Description)
	if parseErr != nil {
		s.logger.Warn(ctx, "malformed checklist treated as empty",
			zap.String("note_id", id), zap.Error(parseErr))
	}
	toggled, err := ToggleItem(items, index)
	if err != nil {
		return nil, err
	}
	encoded, err := EncodeListItems(toggled)
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{Items: toggled}
	patch := model.NotePatch{Description: &encoded}
	all := AllCompleted(toggled)
	switch {
	case all && !current.IsCompleted:
		done := true
		now := s.now().UTC()
		patch.IsCompleted = &done
		patch.CompletedAt = &now
		result.AutoCompleted = true
	case !all && current.IsCompleted:
		done := false
		patch.IsCompleted = &done
		result.AutoReverted = true
	}

	if err := s.store.UpdateNoteFields(ctx, userID, id, patch); err != nil {
		s.logger.Error(ctx, "toggling checklist item failed",
			zap.String("note_id", id), zap.Int("index", index), zap.Error(err))
		return nil, err
	}
	if result.AutoCompleted {
		s.logger.Info(ctx, "checklist completed", zap.String("note_id", id))
	}

	result.Note, err = s.store.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ActiveNotes returns the incomplete notes for the Active view.
func (s *Service) ActiveNotes(ctx context.Context, userID string, q ActiveQuery) ([]model.Note, error) {
	active := false
	filter := store.NoteFilter{
		UserID:    userID,
		Completed: &active,
		LabelID:   q.LabelID,
		Unlabeled: q.Unlabeled,
		SortBy:    store.SortPriorityDueDate,
	}
	if q.PriorityOnly {
		priority := true
		filter.Priority = &priority
	}
	if q.Query != "" {
		filter.Query = &q.Query
	}
	switch {
	case q.Mode == model.ViewModeLabel:
		filter.SortBy = store.SortPriorityPosition
	case q.DueDateOnly:
		filter.SortBy = store.SortDueDate
	}
	return s.store.ListNotes(ctx, filter)
}

// CompletedNotes returns completed notes, most recently completed first.
func (s *Service) CompletedNotes(ctx context.Context, userID string) ([]model.Note, error) {
	done := true
	return s.store.ListNotes(ctx, store.NoteFilter{
		UserID:    userID,
		Completed: &done,
		SortBy:    store.SortCompletedDesc,
	})
}

// LabelGroups returns the Active view grouped by label.
func (s *Service) LabelGroups(ctx context.Context, userID string, q ActiveQuery) ([]Group, error) {
	q.Mode = model.ViewModeLabel
	active, err := s.ActiveNotes(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	return GroupByLabel(active), nil
}

// FannedGroups returns completed notes grouped by label, with a group
// for every label the user owns.
func (s *Service) FannedGroups(ctx context.Context, userID string) ([]Group, error) {
	completed, err := s.CompletedNotes(ctx, userID)
	if err != nil {
		return nil, err
	}
	labels, err := s.store.ListLabels(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	return GroupFanned(completed, labels), nil
}

// ReorderNotes moves the note at from to to within ordered, the ids of one
// group as displayed, and persists the positions of the affected range.
// All updates are awaited; on any failure a *ReorderError carrying the
// original order is returned.
func (s *Service) ReorderNotes(ctx context.Context, userID string, ordered []string, from, to int) ([]string, error) {
	return s.reorder(ctx, "note", ordered, from, to, func(ctx context.Context, id string, pos int) error {
		return s.store.SetNotePosition(ctx, userID, id, pos)
	})
}

// ReorderLabels is ReorderNotes for a user's labels.
func (s *Service) ReorderLabels(ctx context.Context, userID string, ordered []string, from, to int) ([]string, error) {
	return s.reorder(ctx, "label", ordered, from, to, func(ctx context.Context, id string, pos int) error {
		return s.store.SetLabelPosition(ctx, userID, id, pos)
	})
}

func (s *Service) reorder(
	ctx context.Context,
	kind string,
	ordered []string,
	from, to int,
	setPosition func(ctx context.Context, id string, pos int) error,
) ([]string, error) {
	moved, err := Move(ordered, from, to)
	if err != nil {
		return nil, err
	}
	if from == to {
		return moved, nil
	}

	var g errgroup.Group
	for _, u := range AssignPositions(moved, from, to) {
		g.Go(func() error {
			if err := setPosition(ctx, u.ID, u.Position); err != nil {
				return fmt.Errorf("%s %s: %w", kind, u.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, "reorder failed", zap.String("kind", kind),
			zap.Int("from", from), zap.Int("to", to), zap.Error(err))
		snapshot := make([]string, len(ordered))
		copy(snapshot, ordered)
		return nil, &ReorderError{Kind: kind, Snapshot: snapshot, Err: err}
	}
	return moved, nil
}

func (s *Service) checkLabel(ctx context.Context, userID string, labelID *string) error {
	if labelID == nil {
		return nil
	}
	if _, err := s.store.GetLabel(ctx, userID, *labelID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("label %s: %w", *labelID, store.ErrNotFound)
		}
		return err
	}
	return nil
}
