package model

import "time"

// Label is a user-defined category attachable to notes.
type Label struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LabelColor is a named entry of the label palette.
type LabelColor struct {
	Name  string
	Value string
}

// LabelPalette is the set of colors offered when creating a label.
var LabelPalette = []LabelColor{
	{Name: "Purple", Value: "#CB9DF0"},
	{Name: "Blue", Value: "#C6E7FF"},
	{Name: "Yellow", Value: "#FFE6A9"},
	{Name: "Green", Value: "#ACE1AF"},
	{Name: "Orange", Value: "#FFB26F"},
	{Name: "Pink", Value: "#FFCCEA"},
	{Name: "Red", Value: "#FF8A8A"},
}

// DefaultLabelColor is used when a label is created without a color.
const DefaultLabelColor = "#CB9DF0"

// LabelCount is one row of the per-label task count functions.
// LabelID is nil for notes without a label.
type LabelCount struct {
	LabelID *string `json:"label_id" db:"label_id"`
	Count   int     `json:"count" db:"count"`
}
