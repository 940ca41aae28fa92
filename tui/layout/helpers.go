// Package layout fits rendered blocks into the fixed terminal frame of the trim view.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "…"

// Fit returns s cut or space padded to exactly width cells. Cut text ends in an
// ellipsis; styling escapes and wide runes are measured, not counted.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		s = ansi.Truncate(s, width, ellipsis)
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// Frame stacks blocks top to bottom, one row per line, every row exactly width
// cells. Blocks never shift: row n of the frame is always row n of the stack, which
// is what lets the host map a mouse row back to the block under it. With height > 0
// the frame is cut or blank-filled to that many rows.
func Frame(width, height int, blocks ...string) string {
	var rows []string
	for _, b := range blocks {
		rows = append(rows, strings.Split(b, "\n")...)
	}
	if height > 0 {
		if len(rows) > height {
			rows = rows[:height]
		}
		for len(rows) < height {
			rows = append(rows, "")
		}
	}
	for i, r := range rows {
		rows[i] = Fit(r, width)
	}
	return strings.Join(rows, "\n")
}
