package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/trimline-cli/playback"
	"github.com/user/trimline-cli/tui/components"
	"github.com/user/trimline-cli/tui/layout"
	"github.com/user/trimline-cli/tui/styles"
)

// View renders the current state of the model as a string.
// Rows: header, timeline box, status bar, command line.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.showHelp {
		return components.HelpOverlay(m.width, m.height)
	}

	if m.width > 0 && m.width < minTerminalWidth {
		return styles.Warning.Render(fmt.Sprintf("Terminal too narrow (%d cols)", m.width)) + "\n" +
			styles.SecondaryText.Render(fmt.Sprintf("Minimum width: %d columns", minTerminalWidth))
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	cursor := m.sync.Cursor()
	r := m.trim.Range()
	handle, preview := m.dragging()

	timeline := components.Timeline(components.TimelineState{
		Start:       r.Start,
		End:         r.End,
		Duration:    m.trim.Duration(),
		Cursor:      cursor.CurrentTime,
		Playing:     cursor.IsPlaying,
		Placeholder: m.trim.IsPlaceholder(),
		Dragging:    handle,
		Preview:     preview,
	}, width)

	status := components.StatusBar(components.StatusBarState{
		Playing:   m.sync.State() == playback.Playing,
		TimePos:   cursor.CurrentTime,
		Start:     r.Start,
		End:       r.End,
		Duration:  m.trim.Duration(),
		Source:    m.durationSource,
		Connected: m.connected,
	}, width)

	return layout.Frame(width, 0,
		m.renderHeader(width),
		timeline,
		status,
		components.CommandInput(m.commandInput, width),
	)
}

func (m *Model) renderHeader(width int) string {
	title := m.title
	if title == "" {
		title = m.assetID
	}
	left := styles.Title.Render(" ✂ " + title)
	right := styles.SecondaryText.Render(m.assetID + " ")
	if m.committing {
		right = styles.SecondaryText.Render("committing… ") + right
	}
	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		return layout.Fit(left, width)
	}
	return left + fmt.Sprintf("%*s", pad, "") + right
}
