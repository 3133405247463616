package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestColumns(t *testing.T) {
	assert.Equal(t, []int{33, 33, 34}, Columns(100, 3))
	assert.Nil(t, Columns(100, 0))
}

func TestHeaderSpansWidth(t *testing.T) {
	l := NewLayout(60, 20)
	assert.Equal(t, 18, l.ContentHeight())
	assert.Equal(t, 60, lipgloss.Width(l.RenderHeader("Timesheet", "idle")))
}
