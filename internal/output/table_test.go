package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualLen(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain", "focus", 5},
		{"empty", "", 0},
		{"bold", "\x1b[1mhello\x1b[0m", 5},
		{"stacked sequences", "\x1b[1m\x1b[34mdeep work\x1b[0m", 9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, visualLen(tc.input))
		})
	}
}

func TestPad_IgnoresEscapes(t *testing.T) {
	styled := "\x1b[31mred\x1b[0m"
	got := pad(styled, 6)
	assert.Equal(t, 6, visualLen(got))
	assert.True(t, strings.HasPrefix(got, styled))

	assert.Equal(t, "toolong", pad("toolong", 3))
}

func TestTable_Render(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Session", "Score")
	tbl.AddRow("10:00-10:45", "92")
	tbl.AddRow("14:00-14:20", "61", "ignored")
	tbl.AddRow("16:00-16:30")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Session")
	assert.Contains(t, lines[1], "─")
	assert.Contains(t, lines[2], "10:00-10:45")
	assert.NotContains(t, out, "ignored")
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, out, tbl.String())

	// Every rendered line has the same printed width.
	for _, l := range lines[2:] {
		assert.Equal(t, visualLen(lines[0]), visualLen(l))
	}
}

func TestTable_StyledCellsAlign(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Trend", "Category")
	tbl.AddRow("\x1b[32m+ rising\x1b[0m", "coding")
	tbl.AddRow("stable", "social")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[3], "social"), visualLen(lines[2][:strings.Index(lines[2], "coding")]))
}

func TestTable_EmptyHeaders(t *testing.T) {
	assert.Equal(t, "", NewTable().Render())
}

func TestSetNoColor_Restores(t *testing.T) {
	SetNoColor(true)
	assert.True(t, IsNoColor())
	assert.NotContains(t, StyleHeader.Render("x"), "\x1b[")

	SetNoColor(false)
	assert.False(t, IsNoColor())
}
