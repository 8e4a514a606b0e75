package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/too-doo/internal/model"
)

// ErrInvalidItem is returned when a checklist index is out of range.
var ErrInvalidItem = errors.New("checklist item out of range")

// ErrNotList is returned when a checklist operation targets a plain note.
var ErrNotList = errors.New("note is not a checklist")

// ParseListItems decodes a checklist description. An empty description is
// an empty checklist. Malformed JSON yields an empty checklist together
// with the decode error so callers can log it.
func ParseListItems(description string) ([]model.ListItem, error) {
	if strings.TrimSpace(description) == "" {
		return []model.ListItem{}, nil
	}
	var items []model.ListItem
	if err := json.Unmarshal([]byte(description), &items); err != nil {
		return []model.ListItem{}, fmt.Errorf("decoding checklist: %w", err)
	}
	if items == nil {
		items = []model.ListItem{}
	}
	return items, nil
}

// EncodeListItems serializes a checklist for storage in a note description.
func EncodeListItems(items []model.ListItem) (string, error) {
	if items == nil {
		items = []model.ListItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding checklist: %w", err)
	}
	return string(data), nil
}

// ToggleItem returns a copy of items with item i flipped.
func ToggleItem(items []model.ListItem, i int) ([]model.ListItem, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("toggling item %d of %d: %w", i, len(items), ErrInvalidItem)
	}
	out := make([]model.ListItem, len(items))
	copy(out, items)
	out[i].IsCompleted = !out[i].IsCompleted
	return out, nil
}

// AllCompleted reports whether a non-empty checklist is fully checked.
func AllCompleted(items []model.ListItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.IsCompleted {
			return false
		}
	}
	return true
}

// ItemsFromText turns a plain-text body into checklist items, one per
// non-blank line. Markdown task markers ("- [ ] a", "* [x] b") set the
// completion flag and are stripped; a bare "- " bullet is stripped too.
func ItemsFromText(text string) []model.ListItem {
	items := []model.ListItem{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		item := model.ListItem{Text: line}
		for _, bullet := range []string{"- ", "* ", "+ "} {
			if strings.HasPrefix(line, bullet) {
				item.Text = strings.TrimSpace(line[len(bullet):])
				break
			}
		}
		switch {
		case strings.HasPrefix(item.Text, "[ ]"):
			item.Text = strings.TrimSpace(item.Text[3:])
		case strings.HasPrefix(item.Text, "[x]"), strings.HasPrefix(item.Text, "[X]"):
			item.Text = strings.TrimSpace(item.Text[3:])
			item.IsCompleted = true
		}
		if item.Text != "" {
			items = append(items, item)
		}
	}
	return items
}

// Progress returns the number of checked items and the total.
func Progress(items []model.ListItem) (done, total int) {
	for _, it := range items {
		if it.IsCompleted {
			done++
		}
	}
	return done, len(items)
}

// ItemsToText renders items as markdown task lines, the inverse of
// ItemsFromText.
func ItemsToText(items []model.ListItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		mark := "[ ]"
		if it.IsCompleted {
			mark = "[x]"
		}
		lines[i] = "- " + mark + " " + it.Text
	}
	return strings.Join(lines, "\n")
}
