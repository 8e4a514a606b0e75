package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/too-doo/internal/model"
)

// ErrNotFound is returned when a row addressed by id (and owner) does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("conflict")

// ErrInvalid marks input rejected by validation.
var ErrInvalid = errors.New("invalid input")

// Sort modes accepted by NoteFilter.SortBy.
const (
	SortPriorityDueDate  = "priority_due_date"
	SortDueDate          = "due_date"
	SortPriorityPosition = "priority_position"
	SortCreatedDesc      = "created_desc"
	SortCompletedDesc    = "completed_desc"
)

// NoteFilter controls filtering, sorting, and pagination for note queries.
type NoteFilter struct {
	UserID    string
	Completed *bool   // nil (all), false (active) or true (completed)
	LabelID   *string // restrict to one label
	Unlabeled bool    // restrict to notes without a label
	Priority  *bool   // restrict by is_priority
	Query     *string // search title + description
	SortBy    string  // one of the Sort* constants, default SortPriorityDueDate
	Limit     int
	Offset    int
}

// TimeColumn names a timestamp column that can be counted over a range.
type TimeColumn string

const (
	ColumnCreatedAt   TimeColumn = "created_at"
	ColumnCompletedAt TimeColumn = "completed_at"
)

// CountRange counts a user's notes whose Column falls in [Start, End]
// when InclusiveEnd is set, otherwise in [Start, End).
type CountRange struct {
	UserID       string
	Column       TimeColumn
	Start        time.Time
	End          time.Time
	InclusiveEnd bool
}

// Store defines the persistence interface for notes, labels, statistics,
// accounts and preferences.
type Store interface {
	// === Notes ===

	CreateNote(ctx context.Context, note model.Note) (model.Note, error)
	GetNote(ctx context.Context, userID, id string) (*model.Note, error)
	ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error)
	CountNotes(ctx context.Context, filter NoteFilter) (int, error)
	UpdateNoteFields(ctx context.Context, userID, id string, patch model.NotePatch) error
	SetNotePosition(ctx context.Context, userID, id string, position int) error
	DeleteNote(ctx context.Context, userID, id string) error
	CountNotesInRange(ctx context.Context, r CountRange) (int, error)
	ListCompletionTimes(ctx context.Context, userID string) ([]time.Time, error)

	// === Labels ===

	CreateLabel(ctx context.Context, label model.Label) (model.Label, error)
	GetLabel(ctx context.Context, userID, id string) (*model.Label, error)
	UpdateLabel(ctx context.Context, label model.Label) error
	SetLabelPosition(ctx context.Context, userID, id string, position int) error
	DeleteLabel(ctx context.Context, userID, id string) error
	ListLabels(ctx context.Context, userID string, byPosition bool) ([]model.Label, error)
	ActiveTaskCountsByLabel(ctx context.Context, userID string) ([]model.LabelCount, error)
	AllTaskCountsByLabel(ctx context.Context, userID string) ([]model.LabelCount, error)

	// === Statistics ===

	GetUserStats(ctx context.Context, userID string) (*model.UserStats, error)
	UpsertUserStats(ctx context.Context, stats model.UserStats) error
	UpsertAnalyticsAggregate(ctx context.Context, agg model.AnalyticsAggregate) error
	ListAnalyticsAggregates(ctx context.Context, userID string) ([]model.AnalyticsAggregate, error)

	// === Accounts ===

	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	TouchLogin(ctx context.Context, userID string, at time.Time) error
	CreateSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// === Preferences ===

	GetPreference(ctx context.Context, userID, key string) (string, error)
	SetPreference(ctx context.Context, userID, key, value string) error

	// === Mail capture ===

	IsMessageImported(ctx context.Context, messageID string) (bool, error)
	MarkMessageImported(ctx context.Context, messageID, noteID string) error
}
