package model

// ListItem is one checklist entry embedded in a list note's description.
type ListItem struct {
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}
