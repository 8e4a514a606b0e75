package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/too-doo/internal/model"
)

// GetUserStats returns the streak record for a user.
func (s *SQLStore) GetUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	var st model.UserStats
	err := s.db.GetContext(ctx, &st, s.rebind(
		"SELECT user_id, current_streak, longest_streak, updated_at FROM user_stats WHERE user_id = ?"),
		userID)
	if err != nil {
		return nil, fmt.Errorf("getting user stats: %w", notFoundIf(err, "user_stats", userID))
	}
	return &st, nil
}

// UpsertUserStats inserts or replaces a user's streak record.
func (s *SQLStore) UpsertUserStats(ctx context.Context, stats model.UserStats) error {
	stats.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO user_stats (user_id, current_streak, longest_streak, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			updated_at = EXCLUDED.updated_at`),
		stats.UserID, stats.CurrentStreak, stats.LongestStreak, stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting user stats: %w", err)
	}
	return nil
}

// UpsertAnalyticsAggregate stores the counts of one weekly period. A
// rerun for the same period overwrites the previous counts.
func (s *SQLStore) UpsertAnalyticsAggregate(ctx context.Context, agg model.AnalyticsAggregate) error {
	agg.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO analytics_aggregates (
			user_id, period_start, period_end, created_count, completed_count, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, period_start, period_end) DO UPDATE SET
			created_count = EXCLUDED.created_count,
			completed_count = EXCLUDED.completed_count,
			updated_at = EXCLUDED.updated_at`),
		agg.UserID, agg.PeriodStart.UTC(), agg.PeriodEnd.UTC(),
		agg.CreatedCount, agg.CompletedCount, agg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting analytics aggregate: %w", err)
	}
	return nil
}

// ListAnalyticsAggregates returns a user's stored periods, newest first.
func (s *SQLStore) ListAnalyticsAggregates(ctx context.Context, userID string) ([]model.AnalyticsAggregate, error) {
	var aggs []model.AnalyticsAggregate
	err := s.db.SelectContext(ctx, &aggs, s.rebind(`
		SELECT user_id, period_start, period_end, created_count, completed_count, updated_at
		FROM analytics_aggregates WHERE user_id = ? ORDER BY period_start DESC`),
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing analytics aggregates: %w", err)
	}
	return aggs, nil
}
