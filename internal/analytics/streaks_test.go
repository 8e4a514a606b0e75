package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name        string
		completions []time.Time
		today       time.Time
		current     int
		longest     int
	}{
		{name: "none", today: day(10, 12)},
		{
			name:        "ending today",
			completions: []time.Time{day(8, 9), day(9, 9), day(10, 9), day(10, 18)},
			today:       day(10, 20),
			current:     3,
			longest:     3,
		},
		{
			name:        "ending yesterday still counts",
			completions: []time.Time{day(8, 9), day(9, 9)},
			today:       day(10, 20),
			current:     2,
			longest:     2,
		},
		{
			name:        "broken streak",
			completions: []time.Time{day(1, 9), day(2, 9), day(3, 9), day(4, 9), day(7, 9)},
			today:       day(10, 20),
			current:     0,
			longest:     4,
		},
		{
			name:        "unordered input",
			completions: []time.Time{day(10, 9), day(5, 9), day(9, 9), day(6, 9)},
			today:       day(10, 20),
			current:     2,
			longest:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := ComputeStreaks(tt.completions, tt.today, time.UTC)
			assert.Equal(t, tt.current, current)
			assert.Equal(t, tt.longest, longest)
		})
	}
}

func TestComputeStreaks_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 10th is still the 9th at UTC-5.
	completions := []time.Time{time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)}
	today := time.Date(2024, 3, 9, 20, 0, 0, 0, loc)

	current, longest := ComputeStreaks(completions, today, loc)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestWeeklyPeriods(t *testing.T) {
	now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	periods := WeeklyPeriods(now, 5)
	assert.Len(t, periods, 5)

	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), periods[0].Start)
	assert.Equal(t, time.Date(2024, 3, 13, 23, 59, 59, 999_000_000, time.UTC), periods[0].End)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), periods[1].Start)
	assert.Equal(t, time.Date(2024, 3, 6, 23, 59, 59, 999_000_000, time.UTC), periods[1].End)
}
