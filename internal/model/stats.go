package model

import "time"

// UserStats holds the completion streaks maintained by the aggregation job.
type UserStats struct {
	UserID        string    `json:"user_id" db:"user_id"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	LongestStreak int       `json:"longest_streak" db:"longest_streak"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AnalyticsAggregate is a historical weekly created/completed count.
type AnalyticsAggregate struct {
	UserID         string    `json:"user_id" db:"user_id"`
	PeriodStart    time.Time `json:"period_start" db:"period_start"`
	PeriodEnd      time.Time `json:"period_end" db:"period_end"`
	CreatedCount   int       `json:"created_count" db:"created_count"`
	CompletedCount int       `json:"completed_count" db:"completed_count"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
