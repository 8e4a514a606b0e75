package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	assert.Nil(t, Suggest("  "))

	got := Suggest("compl")
	require.NotEmpty(t, got)
	assert.Equal(t, "completed", got[0])

	assert.LessOrEqual(t, len(Suggest("e")), maxSuggestions)
	assert.Empty(t, Suggest("zzzz"))
}

func TestModel_EnterEmitsCommand(t *testing.T) {
	m := New(80, 20)
	for _, r := range "sync" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("sync"), cmd())
	assert.Empty(t, m.input.Value())
}

func TestModel_TabCompletes(t *testing.T) {
	m := New(80, 20)
	for _, r := range "anal" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "analytics", m.input.Value())
}

func TestModel_EmptyEnter(t *testing.T) {
	m := New(80, 20)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestModel_EscCloses(t *testing.T) {
	m := New(80, 20)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
	assert.Empty(t, m.input.Value())
}
