package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/model"
)

func strp(s string) *string { return &s }

func TestFocusAreas_CollapsesTail(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F"}
	values := []int{10, 8, 6, 4, 2, 1}

	var labels []model.Label
	var counts []model.LabelCount
	for i, n := range names {
		labels = append(labels, model.Label{ID: "id-" + n, Name: n, Color: "#fff"})
		counts = append(counts, model.LabelCount{LabelID: strp("id-" + n), Count: values[i]})
	}
	counts = append(counts, model.LabelCount{LabelID: nil, Count: 0})

	f := FocusAreas(labels, counts)
	require.Len(t, f.Slices, 6)
	for i, n := range names[:5] {
		assert.Equal(t, n, f.Slices[i].Name)
		assert.Equal(t, values[i], f.Slices[i].Value)
	}
	assert.Equal(t, Slice{Name: "Other", Value: 1, Color: OtherColor}, f.Slices[5])
	assert.Equal(t, 31, f.Total)
}

func TestFocusAreas_UnmarkedAndZeros(t *testing.T) {
	labels := []model.Label{
		{ID: "w", Name: "Work", Color: "#CB9DF0"},
		{ID: "h", Name: "Home", Color: "#ACE1AF"},
	}
	counts := []model.LabelCount{
		{LabelID: nil, Count: 3},
		{LabelID: strp("w"), Count: 5},
	}

	f := FocusAreas(labels, counts)
	assert.Equal(t, []Slice{
		{Name: "Work", Value: 5, Color: "#CB9DF0"},
		{Name: "Unmarked", Value: 3, Color: UnmarkedColor},
	}, f.Slices)
	assert.Equal(t, 8, f.Total)
}

func TestFocusAreas_Empty(t *testing.T) {
	f := FocusAreas(nil, nil)
	assert.Empty(t, f.Slices)
	assert.Zero(t, f.Total)
}
