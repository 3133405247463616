package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cmd, ok := Parse("  Select 1 1-2 ")
	require.True(t, ok)
	assert.Equal(t, "select", cmd.Name)
	assert.Equal(t, []string{"1", "1-2"}, cmd.Args)

	_, ok = Parse("   ")
	assert.False(t, ok)
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "stop" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: "stop", Args: []string{}}, cmd())
}
