package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
)

// maxConcurrentCounts bounds the number of count queries in flight.
const maxConcurrentCounts = 8

// Point is one bucket of the activity chart with its counts.
type Point struct {
	Bucket
	Created   int `json:"created"`
	Completed int `json:"completed"`
}

// Stats is the streak summary shown on the analytics page.
type Stats struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Service answers analytics queries for one user at a time.
type Service struct {
	store  store.Store
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates an analytics service.
func NewService(s store.Store, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{store: s, logger: logger.Named("analytics"), now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Activity counts notes created and completed in every bucket of tf.
// Each count is an independent query run concurrently; results are
// placed by bucket index. Any failed query fails the whole call.
func (s *Service) Activity(ctx context.Context, userID string, tf Timeframe) ([]Point, error) {
	buckets, err := BuildBuckets(s.now(), tf)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(buckets))
	for i, b := range buckets {
		points[i].Bucket = b
	}

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(maxConcurrentCounts)
	for _, b := range buckets {
		for _, col := range []store.TimeColumn{store.ColumnCreatedAt, store.ColumnCompletedAt} {
			p.Go(func(ctx context.Context) error {
				n, err := s.store.CountNotesInRange(ctx, store.CountRange{
					UserID:       userID,
					Column:       col,
					Start:        b.Start,
					End:          b.End,
					InclusiveEnd: b.Inclusive,
				})
				if err != nil {
					return fmt.Errorf("bucket %q: %w", b.Label, err)
				}
				if col == store.ColumnCreatedAt {
					points[b.Index].Created = n
				} else {
					points[b.Index].Completed = n
				}
				return nil
			})
		}
	}
	if err := p.Wait(); err != nil {
		s.logger.Error(ctx, "fetching activity failed", zap.String("timeframe", string(tf)), zap.Error(err))
		return nil, err
	}
	return points, nil
}

// FocusAreas returns the label distribution of a user's notes.
func (s *Service) FocusAreas(ctx context.Context, userID string, activeOnly bool) (*Focus, error) {
	labels, err := s.store.ListLabels(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	var counts []model.LabelCount
	if activeOnly {
		counts, err = s.store.ActiveTaskCountsByLabel(ctx, userID)
	} else {
		counts, err = s.store.AllTaskCountsByLabel(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	f := FocusAreas(labels, counts)
	return &f, nil
}

// Stats returns the stored streaks of a user, zero when the aggregation
// job has not run for them yet.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	st, err := s.store.GetUserStats(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, err
	}
	return Stats{CurrentStreak: st.CurrentStreak, LongestStreak: st.LongestStreak}, nil
}

// Weekly returns the stored historical weekly aggregates, newest first.
func (s *Service) Weekly(ctx context.Context, userID string) ([]model.AnalyticsAggregate, error) {
	return s.store.ListAnalyticsAggregates(ctx, userID)
}
