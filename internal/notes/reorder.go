package notes

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is returned when a reorder index is outside the list.
var ErrInvalidMove = errors.New("invalid move")

// PositionUpdate is one row whose position changes after a reorder.
type PositionUpdate struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// ReorderError reports a batch of position updates that did not fully
// apply. Snapshot is the order before the move; callers restore it.
type ReorderError struct {
	Kind     string
	Snapshot []string
	Err      error
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("reordering %ss: %v", e.Kind, e.Err)
}

func (e *ReorderError) Unwrap() error {
	return e.Err
}

// Move returns a copy of items with the element at from moved to to,
// shifting the elements in between.
func Move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, fmt.Errorf("moving %d to %d in list of %d: %w", from, to, len(items), ErrInvalidMove)
	}
	out := make([]T, 0, len(items))
	out = append(out, items...)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}

// AffectedRange returns the closed index range touched by a move.
func AffectedRange(from, to int) (start, end int) {
	if from < to {
		return from, to
	}
	return to, from
}

// AssignPositions computes new positions for the items of an already
// moved list that fall in the affected range. Each gets start+offset+1.
func AssignPositions(ids []string, from, to int) []PositionUpdate {
	start, end := AffectedRange(from, to)
	if end >= len(ids) {
		end = len(ids) - 1
	}
	updates := make([]PositionUpdate, 0, end-start+1)
	for i := start; i <= end; i++ {
		updates = append(updates, PositionUpdate{ID: ids[i], Position: i + 1})
	}
	return updates
}
