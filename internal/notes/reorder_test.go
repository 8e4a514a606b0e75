package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{name: "down", from: 1, to: 3, want: []string{"a", "c", "d", "b", "e"}},
		{name: "up", from: 4, to: 0, want: []string{"e", "a", "b", "c", "d"}},
		{name: "same", from: 2, to: 2, want: []string{"a", "b", "c", "d", "e"}},
		{name: "last", from: 0, to: 4, want: []string{"b", "c", "d", "e", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := []string{"a", "b", "c", "d", "e"}
			got, err := Move(input, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"a", "b", "c", "d", "e"}, input)
		})
	}
}

func TestMove_Invalid(t *testing.T) {
	_, err := Move([]string{"a"}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidMove)
	_, err = Move([]string{"a"}, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestAssignPositions_ContiguousRange(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}

	for from := range ids {
		for to := range ids {
			moved, err := Move(ids, from, to)
			require.NoError(t, err)

			updates := AssignPositions(moved, from, to)
			start, end := AffectedRange(from, to)
			require.Len(t, updates, end-start+1)

			for offset, u := range updates {
				assert.Equal(t, start+offset+1, u.Position)
				assert.Equal(t, moved[start+offset], u.ID)
			}
		}
	}
}

func TestReorderError(t *testing.T) {
	base := assert.AnError
	err := &ReorderError{Kind: "note", Snapshot: []string{"a"}, Err: base}
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "reordering notes")
}
