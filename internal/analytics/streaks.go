package analytics

import (
	"sort"
	"time"
)

// ComputeStreaks returns the current and longest runs of consecutive
// days with at least one completion. Days are taken in loc. The current
// streak counts back from today, or from yesterday when nothing has been
// completed yet today.
func ComputeStreaks(completions []time.Time, today time.Time, loc *time.Location) (current, longest int) {
	if len(completions) == 0 {
		return 0, 0
	}

	seen := make(map[time.Time]bool, len(completions))
	days := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		d := startOfDay(c.In(loc))
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	day := startOfDay(today.In(loc))
	if !seen[day] {
		day = day.AddDate(0, 0, -1)
	}
	for seen[day] {
		current++
		day = day.AddDate(0, 0, -1)
	}
	return current, longest
}
