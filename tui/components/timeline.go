package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/tui/styles"
)

// Timeline box rows, relative to the top border.
const (
	TimelineHeight     = 6
	TimelineLabelRow   = 1
	TimelineTrackRow   = 2
	TimelinePlayRow    = 3
	TimelineSummaryRow = 4
)

// HandleSlop is how many cells either side of a handle still grab it.
const HandleSlop = 1

// TimelineGeometry is the horizontal layout of the track inside a timeline of a
// given total width. Cell i of the bar sits at column Left+i.
type TimelineGeometry struct {
	Left  int
	Cells int
}

// NewTimelineGeometry lays out a timeline box of the given width: one border and one
// padding cell on each side.
func NewTimelineGeometry(width int) TimelineGeometry {
	cells := width - 4
	if cells < 2 {
		cells = 2
	}
	return TimelineGeometry{Left: 2, Cells: cells}
}

// Rect is the track extent used for pointer/time conversion. The first cell maps to
// 0 and the last cell to the full duration.
func (g TimelineGeometry) Rect() timeutil.TrackRect {
	return timeutil.TrackRect{Left: float64(g.Left), Width: float64(g.Cells - 1)}
}

// Cell returns the bar cell index for time t.
func (g TimelineGeometry) Cell(t, duration float64) int {
	if duration <= 0 {
		return 0
	}
	pct := timeutil.TimeToPercent(t, duration) / 100
	c := int(math.Round(pct * float64(g.Cells-1)))
	if c < 0 {
		return 0
	}
	if c > g.Cells-1 {
		return g.Cells - 1
	}
	return c
}

// Column returns the terminal column of time t.
func (g TimelineGeometry) Column(t, duration float64) int {
	return g.Left + g.Cell(t, duration)
}

// TimelineState is everything the timeline renders.
type TimelineState struct {
	Start       float64
	End         float64
	Duration    float64
	Cursor      float64
	Playing     bool
	Placeholder bool
	// Dragging names the handle being dragged ("start", "end", "playhead") or "".
	Dragging string
	// Preview is the bar cell under the dragging pointer, -1 when unknown. It is
	// drawn only where it differs from the clamped handle.
	Preview int
}

// Timeline renders the trim timeline in a bordered container.
// Total output height is TimelineHeight lines.
func Timeline(state TimelineState, width int) string {
	if width < 12 {
		return ""
	}
	g := NewTimelineGeometry(width)

	startCell := g.Cell(state.Start, state.Duration)
	endCell := g.Cell(state.End, state.Duration)
	playCell := g.Cell(state.Cursor, state.Duration)

	styleFor := func(handle string) lipgloss.Style {
		if state.Dragging == handle {
			return styles.HandleDragged
		}
		return styles.Handle
	}

	// Track row
	var bar strings.Builder
	for i := 0; i < g.Cells; i++ {
		switch {
		case i == startCell:
			bar.WriteString(styleFor("start").Render("┃"))
		case i == endCell:
			bar.WriteString(styleFor("end").Render("┃"))
		case state.Dragging != "" && i == state.Preview:
			bar.WriteString(styles.HandleDragged.Render("┆"))
		case i > startCell && i < endCell:
			bar.WriteString(styles.TrackSelected.Render("━"))
		default:
			bar.WriteString(styles.TrackOutside.Render("─"))
		}
	}

	// Playhead row
	playGlyph := "▲"
	if state.Playing {
		playGlyph = "▶"
	}
	play := styles.Playhead
	if state.Dragging == "playhead" {
		play = styles.HandleDragged
	}
	playLine := strings.Repeat(" ", playCell) + play.Render(playGlyph)

	// Label row: start label left-aligned on its handle, end label right-aligned on its.
	labels := []rune(strings.Repeat(" ", g.Cells))
	put := func(at int, s string) {
		for i, r := range s {
			if at+i >= 0 && at+i < len(labels) {
				labels[at+i] = r
			}
		}
	}
	startLabel := timeutil.FormatTime(state.Start)
	endLabel := timeutil.FormatTime(state.End)
	endAt := endCell - len(endLabel) + 1
	put(endAt, endLabel)
	startAt := startCell
	if startAt+len(startLabel) > endAt-1 {
		startAt = endAt - 1 - len(startLabel)
	}
	if startAt < 0 {
		startAt = 0
	}
	put(startAt, startLabel)

	// Summary row
	durLabel := timeutil.FormatTime(state.Duration)
	if state.Placeholder {
		durLabel += "?"
	}
	summary := fmt.Sprintf("sel %s  ·  %s / %s",
		timeutil.FormatTime(state.End-state.Start),
		timeutil.FormatTime(state.Cursor),
		durLabel,
	)

	borderStyle := styles.Border
	boxInner := width - 2

	headerText := styles.Title.Render(" Trim ")
	fillWidth := boxInner - 1 - lipgloss.Width(headerText)
	if fillWidth < 0 {
		fillWidth = 0
	}
	topLine := borderStyle.Render("╭─") + headerText + borderStyle.Render(strings.Repeat("─", fillWidth)+"╮")

	wrapLine := func(content string) string {
		pad := boxInner - 1 - lipgloss.Width(content)
		if pad < 0 {
			pad = 0
		}
		return borderStyle.Render("│") + " " + content + strings.Repeat(" ", pad) + borderStyle.Render("│")
	}
	bottomLine := borderStyle.Render("╰" + strings.Repeat("─", boxInner) + "╯")

	return strings.Join([]string{
		topLine,
		wrapLine(styles.PrimaryText.Render(string(labels))),
		wrapLine(bar.String()),
		wrapLine(playLine),
		wrapLine(styles.PrimaryText.Render(summary)),
		bottomLine,
	}, "\n")
}

// HitTarget is what a press on the timeline grabbed.
type HitTarget int

const (
	HitNone HitTarget = iota
	HitStart
	HitEnd
	HitPlayhead
)

// HitTest maps a press at column x on timeline row to a target. Presses on the
// track row within HandleSlop of a handle grab it (the nearer one when both are in
// reach); any other press on the label, track or playhead rows grabs the playhead.
func HitTest(g TimelineGeometry, row, x int, start, end, duration float64) HitTarget {
	if row < TimelineLabelRow || row > TimelinePlayRow {
		return HitNone
	}
	if x < g.Left-1 || x > g.Left+g.Cells {
		return HitNone
	}

	if row != TimelinePlayRow {
		sc := g.Column(start, duration)
		ec := g.Column(end, duration)
		ds := abs(x - sc)
		de := abs(x - ec)
		switch {
		case ds <= HandleSlop && (ds < de || (ds == de && x <= sc)):
			return HitStart
		case de <= HandleSlop:
			return HitEnd
		}
	}
	return HitPlayhead
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
