package notes

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
)

// ListLabels returns a user's labels in their manual order.
func (s *Service) ListLabels(ctx context.Context, userID string) ([]model.Label, error) {
	return s.store.ListLabels(ctx, userID, true)
}

// CreateLabel adds a label at the end of the user's order.
func (s *Service) CreateLabel(ctx context.Context, userID, name, color string) (model.Label, error) {
	label, err := s.store.CreateLabel(ctx, model.Label{UserID: userID, Name: name, Color: color})
	if err != nil {
		s.logger.Warn(ctx, "creating label failed", zap.String("name", name), zap.Error(err))
		return model.Label{}, err
	}
	s.logger.Info(ctx, "label created", zap.String("label_id", label.ID))
	return label, nil
}

// UpdateLabel renames or recolors a label. Empty arguments keep the
// current value.
func (s *Service) UpdateLabel(ctx context.Context, userID, id, name, color string) (*model.Label, error) {
	current, err := s.store.GetLabel(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		current.Name = name
	}
	if color != "" {
		current.Color = color
	}
	if err := s.store.UpdateLabel(ctx, *current); err != nil {
		return nil, fmt.Errorf("updating label: %w", err)
	}
	return s.store.GetLabel(ctx, userID, id)
}

// DeleteLabel removes a label; its notes become unlabeled.
func (s *Service) DeleteLabel(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteLabel(ctx, userID, id); err != nil {
		s.logger.Error(ctx, "deleting label failed", zap.String("label_id", id), zap.Error(err))
		return err
	}
	s.logger.Info(ctx, "label deleted", zap.String("label_id", id))
	return nil
}

// LabelCounts returns task counts per label, for active notes only or for
// all notes.
func (s *Service) LabelCounts(ctx context.Context, userID string, activeOnly bool) ([]model.LabelCount, error) {
	if activeOnly {
		return s.store.ActiveTaskCountsByLabel(ctx, userID)
	}
	return s.store.AllTaskCountsByLabel(ctx, userID)
}

// ViewMode returns the user's saved Active view layout.
func (s *Service) ViewMode(ctx context.Context, userID string) (model.ViewMode, error) {
	v, err := s.store.GetPreference(ctx, userID, model.PrefViewMode)
	if err != nil {
		return model.ViewModeTask, err
	}
	return model.ParseViewMode(v), nil
}

// SetViewMode persists the Active view layout.
func (s *Service) SetViewMode(ctx context.Context, userID string, mode model.ViewMode) error {
	if mode != model.ViewModeTask && mode != model.ViewModeLabel {
		return fmt.Errorf("%w: unknown view mode %q", store.ErrInvalid, mode)
	}
	return s.store.SetPreference(ctx, userID, model.PrefViewMode, string(mode))
}
