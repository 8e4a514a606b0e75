package model

import "time"

// User is an account owning notes and labels.
// PasswordHash is empty for accounts created through OAuth.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Provider     string     `json:"provider" db:"provider"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// Session is an authenticated login identified by an opaque token.
type Session struct {
	Token     string    `json:"token" db:"token"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ViewMode selects how the Active view lays out notes.
type ViewMode string

const (
	ViewModeTask  ViewMode = "task"
	ViewModeLabel ViewMode = "label"
)

// PrefViewMode is the preference key holding the chosen ViewMode.
const PrefViewMode = "notesViewMode"

// ParseViewMode maps a stored preference to a ViewMode, defaulting to task.
func ParseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewModeLabel {
		return ViewModeLabel
	}
	return ViewModeTask
}
