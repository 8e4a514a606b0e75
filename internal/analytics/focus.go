package analytics

import (
	"sort"

	"github.com/nhle/too-doo/internal/model"
)

// Chart colors for the synthetic focus-area slices.
const (
	UnmarkedColor = "#64748b"
	OtherColor    = "#475569"
)

// maxFocusSlices is the number of slices kept before the rest collapse
// into Other.
const maxFocusSlices = 5

// Slice is one segment of the focus-area chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Focus is the focus-area chart input. Total is the sum of slice values.
type Focus struct {
	Slices []Slice `json:"slices"`
	Total  int     `json:"total"`
}

// FocusAreas merges per-label counts with the labels they refer to. The
// unlabeled count becomes Unmarked, empty slices are dropped, the rest is
// sorted by count, and anything past the top five is summed into Other.
func FocusAreas(labels []model.Label, counts []model.LabelCount) Focus {
	byLabel := make(map[string]int, len(counts))
	unmarked := 0
	for _, c := range counts {
		if c.LabelID == nil {
			unmarked += c.Count
			continue
		}
		byLabel[*c.LabelID] += c.Count
	}

	all := []Slice{{Name: "Unmarked", Value: unmarked, Color: UnmarkedColor}}
	for _, l := range labels {
		all = append(all, Slice{Name: l.Name, Value: byLabel[l.ID], Color: l.Color})
	}

	slices := make([]Slice, 0, len(all))
	for _, s := range all {
		if s.Value > 0 {
			slices = append(slices, s)
		}
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Value > slices[j].Value
	})

	if len(slices) > maxFocusSlices {
		other := 0
		for _, s := range slices[maxFocusSlices:] {
			other += s.Value
		}
		slices = append(slices[:maxFocusSlices:maxFocusSlices], Slice{Name: "Other", Value: other, Color: OtherColor})
	}

	total := 0
	for _, s := range slices {
		total += s.Value
	}
	return Focus{Slices: slices, Total: total}
}
