package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/too-doo/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestSortActive(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	soon := base.Add(24 * time.Hour)
	later := base.Add(72 * time.Hour)

	notes := []model.Note{
		{ID: "plain", CreatedAt: base},
		{ID: "later", DueDate: &later, CreatedAt: base, Position: ptr(1)},
		{ID: "urgent", IsPriority: true, CreatedAt: base, Position: ptr(3)},
		{ID: "soon", DueDate: &soon, CreatedAt: base, Position: ptr(2)},
	}

	t.Run("priority then due date", func(t *testing.T) {
		got := append([]model.Note(nil), notes...)
		SortActive(got, model.ViewModeTask, false)
		assert.Equal(t, []string{"urgent", "soon", "later", "plain"}, IDs(got))
	})

	t.Run("due date only", func(t *testing.T) {
		got := append([]model.Note(nil), notes...)
		SortActive(got, model.ViewModeTask, true)
		assert.Equal(t, []string{"soon", "later", "plain", "urgent"}, IDs(got))
	})

	t.Run("label mode", func(t *testing.T) {
		got := append([]model.Note(nil), notes...)
		SortActive(got, model.ViewModeLabel, false)
		assert.Equal(t, []string{"urgent", "later", "soon", "plain"}, IDs(got))
	})
}

func TestGroupByLabel(t *testing.T) {
	work := &model.Label{ID: "l1", Name: "Work", Position: 2}
	home := &model.Label{ID: "l2", Name: "Home", Position: 1}

	groups := GroupByLabel([]model.Note{
		{ID: "n1"},
		{ID: "n2", LabelID: &work.ID, Label: work},
		{ID: "n3", LabelID: &home.ID, Label: home},
		{ID: "n4", LabelID: &work.ID, Label: work},
	})

	assert.Len(t, groups, 3)
	assert.Equal(t, "Home", groups[0].Name)
	assert.Equal(t, "Work", groups[1].Name)
	assert.Equal(t, GroupUncategorized, groups[2].Name)
	assert.Nil(t, groups[2].LabelID)
	assert.Equal(t, []string{"n2", "n4"}, IDs(groups[1].Notes))
}

func TestGroupFanned(t *testing.T) {
	work := model.Label{ID: "l1", Name: "Work"}
	idle := model.Label{ID: "l2", Name: "Idle", Color: "#FFE6A9"}

	t.Run("every label and unmarked present", func(t *testing.T) {
		groups := GroupFanned([]model.Note{
			{ID: "n1", LabelID: &work.ID, Label: &work},
		}, []model.Label{work, idle})

		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = g.Name
		}
		assert.Equal(t, []string{"Work", "Idle", GroupUnmarked}, names)
		assert.Empty(t, groups[1].Notes)
		assert.Equal(t, "#FFE6A9", groups[1].Color)
	})

	t.Run("unmarked keeps its first position", func(t *testing.T) {
		groups := GroupFanned([]model.Note{{ID: "n1"}, {ID: "n2"}}, []model.Label{work})
		assert.Equal(t, GroupUnmarked, groups[0].Name)
		assert.Len(t, groups[0].Notes, 2)
		assert.Len(t, groups, 2)
	})
}

func TestNormalize(t *testing.T) {
	labels := []model.Label{{ID: "l1", Name: "Work"}}
	out := Normalize([]model.Note{
		{ID: "a", LabelID: ptr("l1")},
		{ID: "b", LabelID: ptr("gone")},
		{ID: "c"},
	}, labels)

	assert.Equal(t, "Work", out[0].LabelName())
	assert.Nil(t, out[1].LabelID)
	assert.Nil(t, out[1].Label)
	assert.Nil(t, out[2].Label)
}
