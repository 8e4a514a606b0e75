package analytics

import (
	"fmt"
	"time"

	"github.com/nhle/too-doo/internal/store"
)

// Timeframe selects the span and granularity of the activity chart.
type Timeframe string

const (
	TimeframeWeek    Timeframe = "1w"
	TimeframeMonth   Timeframe = "1m"
	TimeframeQuarter Timeframe = "3m"
)

// Timeframes lists the supported timeframes in display order.
var Timeframes = []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeQuarter}

// ParseTimeframe validates a timeframe string. Empty means one week.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case "", TimeframeWeek:
		return TimeframeWeek, nil
	case TimeframeMonth, TimeframeQuarter:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("%w: unknown timeframe %q", store.ErrInvalid, s)
}

// Label returns a human readable name.
func (tf Timeframe) Label() string {
	switch tf {
	case TimeframeMonth:
		return "1 Month"
	case TimeframeQuarter:
		return "3 Months"
	default:
		return "1 Week"
	}
}

// Bucket is one bar of the activity chart. Index is its chronological
// position. Inclusive buckets cover [Start, End]; the others [Start, End).
type Bucket struct {
	Index     int       `json:"index"`
	Label     string    `json:"label"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Inclusive bool      `json:"inclusive"`
}

var monthLabels = []string{"This Week", "Last Week", "2 Weeks Ago", "3 Weeks Ago", "4 Weeks Ago"}

// BuildBuckets returns the buckets for tf relative to now, using now's
// location for day boundaries. The week view runs oldest to newest; the
// month view follows its label order, newest first; the quarter view runs
// oldest to newest.
func BuildBuckets(now time.Time, tf Timeframe) ([]Bucket, error) {
	today := startOfDay(now)

	switch tf {
	case TimeframeWeek:
		buckets := make([]Bucket, 7)
		for i := 0; i < 7; i++ {
			day := today.AddDate(0, 0, i-6)
			label := day.Weekday().String()[:3]
			if i == 6 {
				label += " (Today)"
			}
			buckets[i] = Bucket{
				Index:     i,
				Label:     label,
				Start:     day,
				End:       endOfDay(day),
				Inclusive: true,
			}
		}
		return buckets, nil

	case TimeframeMonth:
		buckets := make([]Bucket, len(monthLabels))
		for i, label := range monthLabels {
			b := Bucket{
				Index: i,
				Label: label,
				Start: today.AddDate(0, 0, -7*i-6),
			}
			if i == 0 {
				b.End = endOfDay(today)
				b.Inclusive = true
			} else {
				b.End = today.AddDate(0, 0, -7*i+1)
			}
			buckets[i] = b
		}
		return buckets, nil

	case TimeframeQuarter:
		const n, span = 6, 14
		buckets := make([]Bucket, n)
		for i := 0; i < n; i++ {
			back := n - 1 - i
			last := today.AddDate(0, 0, -span*back)
			b := Bucket{
				Index: i,
				Label: fmt.Sprintf("%d/%d", int(last.Month()), last.Day()),
				Start: last.AddDate(0, 0, -(span - 1)),
			}
			if back == 0 {
				b.End = endOfDay(last)
				b.Inclusive = true
			} else {
				b.End = last.AddDate(0, 0, 1)
			}
			buckets[i] = b
		}
		return buckets, nil
	}

	return nil, fmt.Errorf("unknown timeframe %q", tf)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay returns 23:59:59.999 on t's day.
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}
