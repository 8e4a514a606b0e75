package notes

import (
	"sort"
	"strings"

	"github.com/nhle/too-doo/internal/model"
)

// Synthetic group names.
const (
	GroupUncategorized = "Uncategorized"
	GroupUnmarked      = "Unmarked"
)

// Group is a set of notes sharing a label.
type Group struct {
	Name     string       `json:"name"`
	LabelID  *string      `json:"label_id"`
	Color    string       `json:"color,omitempty"`
	Position int          `json:"position"`
	Notes    []model.Note `json:"notes"`
}

// ActiveQuery selects and orders the Active view. DueDateOnly sorts by
// due date alone instead of priority first. Query searches title and
// description.
type ActiveQuery struct {
	LabelID      *string
	Unlabeled    bool
	PriorityOnly bool
	Query        string
	Mode         model.ViewMode
	DueDateOnly  bool
}

// SortActive orders notes the way the Active view shows them. Label mode
// sorts by priority then position; otherwise by priority then due date,
// or by due date alone. Missing due dates and positions sort last.
func SortActive(notes []model.Note, mode model.ViewMode, dueDateOnly bool) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if mode == model.ViewModeLabel || !dueDateOnly {
			if a.IsPriority != b.IsPriority {
				return a.IsPriority
			}
		}
		if mode == model.ViewModeLabel {
			if c := compareNullable(a.Position != nil, b.Position != nil); c != 0 {
				return c < 0
			}
			if a.Position != nil && *a.Position != *b.Position {
				return *a.Position < *b.Position
			}
		} else {
			if c := compareNullable(a.DueDate != nil, b.DueDate != nil); c != 0 {
				return c < 0
			}
			if a.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
				return a.DueDate.Before(*b.DueDate)
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// compareNullable orders present values before missing ones.
func compareNullable(aSet, bSet bool) int {
	switch {
	case aSet == bSet:
		return 0
	case aSet:
		return -1
	default:
		return 1
	}
}

// GroupByLabel partitions notes by label name for the Label view. Groups
// are ordered by label position then name, with Uncategorized last.
// Note order inside a group is preserved.
func GroupByLabel(notes []model.Note) []Group {
	index := map[string]int{}
	var groups []Group
	for _, n := range notes {
		name := GroupUncategorized
		if n.Label != nil {
			name = n.Label.Name
		}
		i, ok := index[name]
		if !ok {
			g := Group{Name: name}
			if n.Label != nil {
				id := n.Label.ID
				g.LabelID = &id
				g.Color = n.Label.Color
				g.Position = n.Label.Position
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[name] = i
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.LabelID == nil || b.LabelID == nil {
			return b.LabelID == nil && a.LabelID != nil
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return groups
}

// GroupFanned partitions completed notes by label for the stacked
// Completed view. Groups appear in the order their first note appears,
// followed by every remaining label (empty), followed by Unmarked when no
// note is unlabeled.
func GroupFanned(notes []model.Note, labels []model.Label) []Group {
	index := map[string]int{}
	var groups []Group
	add := func(g Group) int {
		groups = append(groups, g)
		index[g.Name] = len(groups) - 1
		return len(groups) - 1
	}

	for _, n := range notes {
		name := GroupUnmarked
		if n.Label != nil {
			name = n.Label.Name
		}
		i, ok := index[name]
		if !ok {
			g := Group{Name: name, Notes: []model.Note{}}
			if n.Label != nil {
				id := n.Label.ID
				g.LabelID = &id
				g.Color = n.Label.Color
				g.Position = n.Label.Position
			}
			i = add(g)
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}

	for _, l := range labels {
		if _, ok := index[l.Name]; ok {
			continue
		}
		id := l.ID
		add(Group{Name: l.Name, LabelID: &id, Color: l.Color, Position: l.Position, Notes: []model.Note{}})
	}

	if _, ok := index[GroupUnmarked]; !ok {
		add(Group{Name: GroupUnmarked, Notes: []model.Note{}})
	}
	return groups
}

// Normalize attaches labels to notes by label_id. A label_id that names
// no known label is cleared so the note reads as unlabeled.
func Normalize(notes []model.Note, labels []model.Label) []model.Note {
	byID := make(map[string]model.Label, len(labels))
	for _, l := range labels {
		byID[l.ID] = l
	}
	out := make([]model.Note, len(notes))
	for i, n := range notes {
		n.Label = nil
		if n.LabelID != nil {
			if l, ok := byID[*n.LabelID]; ok {
				n.Label = &l
			} else {
				n.LabelID = nil
			}
		}
		out[i] = n
	}
	return out
}

// IDs returns the ids of notes in order.
func IDs(notes []model.Note) []string {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}
