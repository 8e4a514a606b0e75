package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
)

func TestParseDue(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.Local)

	due, err := parseDue("", now)
	require.NoError(t, err)
	assert.Nil(t, due)

	due, err = parseDue("today", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.Local), *due)

	due, err = parseDue("Tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, time.Local), *due)

	due, err = parseDue("2024-07-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local), *due)

	_, err = parseDue("next week", now)
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("")
	require.NoError(t, err)
	assert.Empty(t, c)

	c, err = parseColor("green")
	require.NoError(t, err)
	assert.Equal(t, "#ACE1AF", c)

	c, err = parseColor("#ff00aa")
	require.NoError(t, err)
	assert.Equal(t, "#FF00AA", c)

	_, err = parseColor("#zzzzzz")
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestShare(t *testing.T) {
	assert.Equal(t, "", share(1, 0))
	assert.Equal(t, "█████       50%", share(1, 2))
	assert.Equal(t, "██████████ 100%", share(3, 3))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "0123abcd", shortID("0123abcd-ffff"))
}

func TestWriteNotes(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.Local)
	due := now.AddDate(0, 0, -2)
	ns := []model.Note{
		{ID: "11111111-aaaa", Title: "Pay rent", IsPriority: true, DueDate: &due, CreatedAt: now.Add(-time.Hour)},
		{ID: "22222222-bbbb", Title: "Groceries", IsList: true,
			Description: `[{"text":"milk","isCompleted":true},{"text":"eggs","isCompleted":false}]`,
			Label:       &model.Label{Name: "Home"}, CreatedAt: now},
	}

	var buf bytes.Buffer
	writeNotes(&buf, "Active (2)", ns, now)
	out := buf.String()

	assert.Contains(t, out, "Active (2)")
	assert.Contains(t, out, "11111111")
	assert.Contains(t, out, "Pay rent")
	assert.Contains(t, out, "overdue")
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "Home")
	assert.NotContains(t, out, "aaaa")
}

func TestAggregateCommand(t *testing.T) {
	dir := t.TempDir()
	prev := configPath
	configPath = filepath.Join(dir, "config.yaml")
	t.Cleanup(func() { configPath = prev })

	yaml := "database:\n  driver: sqlite\n  path: " + filepath.Join(dir, "toodoo.db") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o600))

	var out bytes.Buffer
	aggregateCmd.SetOut(&out)
	aggregateCmd.SetContext(context.Background())
	require.NoError(t, aggregateCmd.RunE(aggregateCmd, nil))
	assert.Contains(t, out.String(), "0 users")
}
