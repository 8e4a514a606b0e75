package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
	jobs "github.com/nhle/too-doo/internal/sync"
)

// Period is one weekly window of the aggregation job.
type Period struct {
	Start time.Time
	End   time.Time
}

// WeeklyPeriods returns n trailing weeks ending today, newest first. Week i
// ends at 23:59:59.999 on today-7i and starts at midnight six days before.
func WeeklyPeriods(now time.Time, n int) []Period {
	periods := make([]Period, 0, n)
	for i := 0; i < n; i++ {
		end := endOfDay(now.AddDate(0, 0, -7*i))
		start := startOfDay(end.AddDate(0, 0, -6))
		periods = append(periods, Period{Start: start, End: end})
	}
	return periods
}

// Aggregator writes historical weekly created/completed counts and
// refreshes completion streaks for every user.
type Aggregator struct {
	store  store.Store
	logger *logging.Logger
	weeks  int
	loc    *time.Location
	now    func() time.Time
}

// NewAggregator creates an aggregation job covering weeks trailing weeks.
// The current week is never stored.
func NewAggregator(s store.Store, logger *logging.Logger, weeks int) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if weeks < 2 {
		weeks = 5
	}
	return &Aggregator{
		store:  s,
		logger: logger.Named("aggregator"),
		weeks:  weeks,
		loc:    time.Local,
		now:    time.Now,
	}
}

// WithClock replaces the time source and the location used for day
// boundaries. Intended for tests.
func (a *Aggregator) WithClock(now func() time.Time, loc *time.Location) *Aggregator {
	a.now = now
	a.loc = loc
	return a
}

// Name identifies the job in poller statuses.
func (a *Aggregator) Name() string {
	return "aggregate"
}

// RunOnce aggregates every user. A failing user aborts the run.
func (a *Aggregator) RunOnce(ctx context.Context) (jobs.Report, error) {
	started := time.Now()
	report, err := a.run(ctx)
	AggregationDuration.Observe(time.Since(started).Seconds())
	RecordAggregationResult(err == nil)
	if err != nil {
		a.logger.Error(ctx, "aggregation failed", zap.Error(err))
		return report, err
	}
	a.logger.Info(ctx, "aggregation completed",
		zap.Int("users", report.Items), zap.Duration("duration", time.Since(started)))
	return report, nil
}

func (a *Aggregator) run(ctx context.Context) (jobs.Report, error) {
	userIDs, err := a.store.ListUserIDs(ctx)
	if err != nil {
		return jobs.Report{}, fmt.Errorf("listing users: %w", err)
	}

	now := a.now().In(a.loc)
	periods := WeeklyPeriods(now, a.weeks)

	written := 0
	for _, userID := range userIDs {
		for _, p := range periods[1:] {
			created, err := a.count(ctx, userID, store.ColumnCreatedAt, p)
			if err != nil {
				return jobs.Report{Items: written}, err
			}
			completed, err := a.count(ctx, userID, store.ColumnCompletedAt, p)
			if err != nil {
				return jobs.Report{Items: written}, err
			}
			err = a.store.UpsertAnalyticsAggregate(ctx, model.AnalyticsAggregate{
				UserID:         userID,
				PeriodStart:    p.Start,
				PeriodEnd:      p.End,
				CreatedCount:   created,
				CompletedCount: completed,
			})
			if err != nil {
				return jobs.Report{Items: written}, fmt.Errorf("user %s: %w", userID, err)
			}
			AggregatesWritten.Inc()
		}

		if err := a.refreshStreaks(ctx, userID, now); err != nil {
			return jobs.Report{Items: written}, err
		}
		written++
	}

	return jobs.Report{
		Items:  written,
		Detail: fmt.Sprintf("%d users, %d weeks", written, len(periods)-1),
	}, nil
}

func (a *Aggregator) count(ctx context.Context, userID string, col store.TimeColumn, p Period) (int, error) {
	n, err := a.store.CountNotesInRange(ctx, store.CountRange{
		UserID: userID,
		Column: col,
		Start:  p.Start,
		End:    p.End,
	})
	if err != nil {
		return 0, fmt.Errorf("user %s: counting %s: %w", userID, col, err)
	}
	return n, nil
}

func (a *Aggregator) refreshStreaks(ctx context.Context, userID string, now time.Time) error {
	times, err := a.store.ListCompletionTimes(ctx, userID)
	if err != nil {
		return fmt.Errorf("user %s: %w", userID, err)
	}
	current, longest := ComputeStreaks(times, now, a.loc)
	err = a.store.UpsertUserStats(ctx, model.UserStats{
		UserID:        userID,
		CurrentStreak: current,
		LongestStreak: longest,
	})
	if err != nil {
		return fmt.Errorf("user %s: %w", userID, err)
	}
	return nil
}
