package model

import (
	"fmt"
	"time"
)

// Note is a user-created task or checklist, the primary domain entity.
//
// When IsList is true, Description holds a JSON-encoded []ListItem.
type Note struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	LabelID     *string    `json:"label_id" db:"label_id"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	IsPriority  bool       `json:"is_priority" db:"is_priority"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	IsList      bool       `json:"is_list" db:"is_list"`
	Position    *int       `json:"position" db:"position"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Label is attached after a fetch; nil when the note is unlabeled.
	Label *Label `json:"label" db:"-"`
}

// NotePatch is a targeted field update. Nil fields are left untouched.
// ClearLabel and ClearDueDate explicitly set the column to NULL.
type NotePatch struct {
	Title        *string
	Description  *string
	LabelID      *string
	ClearLabel   bool
	DueDate      *time.Time
	ClearDueDate bool
	IsPriority   *bool
	IsList       *bool
	IsCompleted  *bool
	CompletedAt  *time.Time
	Position     *int
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.LabelID == nil &&
		!p.ClearLabel && p.DueDate == nil && !p.ClearDueDate &&
		p.IsPriority == nil && p.IsList == nil && p.IsCompleted == nil &&
		p.CompletedAt == nil && p.Position == nil
}

// PositionValue returns the note position, treating NULL as zero.
func (n Note) PositionValue() int {
	if n.Position == nil {
		return 0
	}
	return *n.Position
}

// IsOverdue reports whether an active note is past its due date.
func (n Note) IsOverdue(now time.Time) bool {
	return !n.IsCompleted && n.DueDate != nil && n.DueDate.Before(now)
}

// LabelName returns the attached label's name, or "" when unlabeled.
func (n Note) LabelName() string {
	if n.Label == nil {
		return ""
	}
	return n.Label.Name
}

// Validate checks the completion invariant.
func (n Note) Validate() error {
	if n.IsCompleted && n.CompletedAt == nil {
		return fmt.Errorf("note %s is completed without completed_at", n.ID)
	}
	if !n.IsCompleted && n.CompletedAt != nil {
		return fmt.Errorf("note %s has completed_at but is not completed", n.ID)
	}
	return nil
}
