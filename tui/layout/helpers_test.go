package layout

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", Fit("ab", 4))
	assert.Equal(t, "", Fit("ab", 0))
	assert.Equal(t, "ab…", Fit("abcdef", 3))

	styled := lipgloss.NewStyle().Bold(true).Render("0:12.5 → 0:20.0")
	assert.Equal(t, 8, lipgloss.Width(Fit(styled, 8)))
	assert.Equal(t, 20, lipgloss.Width(Fit(styled, 20)))
}

func TestFrame(t *testing.T) {
	out := Frame(5, 4, "one", "two\nthree")
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "one  ", lines[0])
	assert.Equal(t, "three", lines[2])
	assert.Equal(t, "     ", lines[3])
}

func TestFrame_KeepsRowsAndCutsHeight(t *testing.T) {
	out := Frame(4, 2, "header", "timeline", "status")
	assert.Equal(t, []string{"hea…", "tim…"}, strings.Split(out, "\n"))

	all := Frame(3, 0, "a", "b\nc", "d")
	assert.Len(t, strings.Split(all, "\n"), 4, "height 0 keeps every row")
}
