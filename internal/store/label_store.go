package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/too-doo/internal/model"
)

// CreateLabel inserts a new label at the end of the user's label order.
func (s *SQLStore) CreateLabel(ctx context.Context, label model.Label) (model.Label, error) {
	label.Name = strings.TrimSpace(label.Name)
	if label.Name == "" {
		return model.Label{}, fmt.Errorf("%w: label name must not be empty", ErrInvalid)
	}
	if label.ID == "" {
		label.ID = uuid.New().String()
	}
	if label.Color == "" {
		label.Color = model.DefaultLabelColor
	}
	label.CreatedAt = time.Now().UTC()

	var maxPos int
	err := s.db.GetContext(ctx, &maxPos, s.rebind(
		"SELECT COALESCE(MAX(position), 0) FROM labels WHERE user_id = ?"), label.UserID)
	if err != nil {
		return model.Label{}, fmt.Errorf("getting max label position: %w", err)
	}
	label.Position = maxPos + 1

	_, err = s.db.ExecContext(ctx, s.rebind(
		"INSERT INTO labels (id, user_id, name, color, position, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
		label.ID, label.UserID, label.Name, label.Color, label.Position, label.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Label{}, fmt.Errorf("label %q: %w", label.Name, ErrConflict)
		}
		return model.Label{}, fmt.Errorf("creating label: %w", err)
	}
	return label, nil
}

// GetLabel retrieves a single label owned by userID.
func (s *SQLStore) GetLabel(ctx context.Context, userID, id string) (*model.Label, error) {
	var l model.Label
	err := s.db.GetContext(ctx, &l, s.rebind(
		"SELECT id, user_id, name, color, position, created_at FROM labels WHERE id = ? AND user_id = ?"),
		id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting label %s: %w", id, notFoundIf(err, "label", id))
	}
	return &l, nil
}

// UpdateLabel updates a label's name and color.
func (s *SQLStore) UpdateLabel(ctx context.Context, label model.Label) error {
	label.Name = strings.TrimSpace(label.Name)
	if label.Name == "" {
		return fmt.Errorf("%w: label name must not be empty", ErrInvalid)
	}
	result, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE labels SET name = ?, color = ? WHERE id = ? AND user_id = ?"),
		label.Name, label.Color, label.ID, label.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("label %q: %w", label.Name, ErrConflict)
		}
		return fmt.Errorf("updating label %s: %w", label.ID, err)
	}
	return requireAffected(result, "label", label.ID)
}

// SetLabelPosition updates the position of a label.
func (s *SQLStore) SetLabelPosition(ctx context.Context, userID, id string, position int) error {
	result, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE labels SET position = ? WHERE id = ? AND user_id = ?"),
		position, id, userID,
	)
	if err != nil {
		return fmt.Errorf("setting position of label %s: %w", id, err)
	}
	return requireAffected(result, "label", id)
}

// DeleteLabel removes a label. Notes that carried it become unlabeled
// in the same transaction.
func (s *SQLStore) DeleteLabel(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		"UPDATE notes SET label_id = NULL, updated_at = ? WHERE label_id = ? AND user_id = ?"),
		time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("detaching notes from label %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, s.rebind(
		"DELETE FROM labels WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("deleting label %s: %w", id, err)
	}
	if err := requireAffected(result, "label", id); err != nil {
		return err
	}

	return tx.Commit()
}

// ListLabels retrieves a user's labels ordered by position or by name.
func (s *SQLStore) ListLabels(ctx context.Context, userID string, byPosition bool) ([]model.Label, error) {
	order := "name ASC"
	if byPosition {
		order = "position ASC, name ASC"
	}
	var labels []model.Label
	err := s.db.SelectContext(ctx, &labels, s.rebind(
		"SELECT id, user_id, name, color, position, created_at FROM labels WHERE user_id = ? ORDER BY "+order),
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	return labels, nil
}

// ActiveTaskCountsByLabel counts incomplete notes grouped by label_id.
// The unlabeled group has a nil LabelID.
func (s *SQLStore) ActiveTaskCountsByLabel(ctx context.Context, userID string) ([]model.LabelCount, error) {
	return s.countByLabel(ctx, userID, true)
}

// AllTaskCountsByLabel counts every note grouped by label_id.
func (s *SQLStore) AllTaskCountsByLabel(ctx context.Context, userID string) ([]model.LabelCount, error) {
	return s.countByLabel(ctx, userID, false)
}

func (s *SQLStore) countByLabel(ctx context.Context, userID string, activeOnly bool) ([]model.LabelCount, error) {
	query := "SELECT label_id, COUNT(*) AS count FROM notes WHERE user_id = ?"
	args := []interface{}{userID}
	if activeOnly {
		query += " AND is_completed = ?"
		args = append(args, false)
	}
	query += " GROUP BY label_id"

	var counts []model.LabelCount
	if err := s.db.SelectContext(ctx, &counts, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("counting notes by label: %w", err)
	}
	return counts, nil
}
