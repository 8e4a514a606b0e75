package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/model"
)

func TestParseListItems(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []model.ListItem
		wantErr bool
	}{
		{name: "empty", input: "", want: []model.ListItem{}},
		{name: "null", input: "null", want: []model.ListItem{}},
		{
			name:  "items",
			input: `[{"text":"eggs","isCompleted":true},{"text":"milk","isCompleted":false}]`,
			want: []model.ListItem{
				{Text: "eggs", IsCompleted: true},
				{Text: "milk"},
			},
		},
		{name: "malformed", input: "buy milk", want: []model.ListItem{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListItems(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToggleItem_RoundTrip(t *testing.T) {
	items := []model.ListItem{{Text: "a"}, {Text: "b", IsCompleted: true}, {Text: "c"}}

	for i := range items {
		toggled, err := ToggleItem(items, i)
		require.NoError(t, err)

		encoded, err := EncodeListItems(toggled)
		require.NoError(t, err)
		decoded, err := ParseListItems(encoded)
		require.NoError(t, err)

		for j := range items {
			if j == i {
				assert.Equal(t, !items[j].IsCompleted, decoded[j].IsCompleted)
			} else {
				assert.Equal(t, items[j], decoded[j])
			}
		}
	}

	// The input is left untouched.
	assert.False(t, items[0].IsCompleted)
}

func TestToggleItem_OutOfRange(t *testing.T) {
	_, err := ToggleItem([]model.ListItem{{Text: "a"}}, 1)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = ToggleItem(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestAllCompleted(t *testing.T) {
	assert.False(t, AllCompleted(nil))
	assert.False(t, AllCompleted([]model.ListItem{{IsCompleted: true}, {}}))
	assert.True(t, AllCompleted([]model.ListItem{{IsCompleted: true}, {IsCompleted: true}}))
}

func TestEncodeListItems_Nil(t *testing.T) {
	s, err := EncodeListItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestItemsFromText(t *testing.T) {
	text := "- [ ] eggs\n* [x] milk\n\n  bread  \n- butter\n- [ ]   \n"
	got := ItemsFromText(text)
	assert.Equal(t, []model.ListItem{
		{Text: "eggs"},
		{Text: "milk", IsCompleted: true},
		{Text: "bread"},
		{Text: "butter"},
	}, got)
}

func TestProgress(t *testing.T) {
	done, total := Progress([]model.ListItem{{IsCompleted: true}, {}, {IsCompleted: true}})
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)
}

func TestItemsToText(t *testing.T) {
	items := []model.ListItem{{Text: "milk"}, {Text: "eggs", IsCompleted: true}}
	text := ItemsToText(items)
	assert.Equal(t, "- [ ] milk\n- [x] eggs", text)
	assert.Equal(t, items, ItemsFromText(text))
}
