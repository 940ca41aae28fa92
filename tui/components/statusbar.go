// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/tui/layout"
	"github.com/user/trimline-cli/tui/styles"
)

// StatusBarState holds the current playback state for the status bar.
type StatusBarState struct {
	// Playing indicates if the player is playing
	Playing bool
	// TimePos is the current playback position in seconds
	TimePos float64
	// Start and End are the trim range bounds
	Start float64
	End   float64
	// Duration is the total video duration in seconds
	Duration float64
	// Source names where the duration came from ("placeholder", "metadata", ...)
	Source string
	// Connected reports whether the last poll reached the player
	Connected bool
}

// StatusBar renders the status bar component.
// It displays the play/pause icon, the cursor, the selection and the duration with its source.
func StatusBar(state StatusBarState, width int) string {
	playIcon := "⏸"
	if state.Playing {
		playIcon = "▶"
	}

	leftContent := fmt.Sprintf(" %s %s │ %s → %s (%s)",
		playIcon,
		timeutil.FormatTime(state.TimePos),
		timeutil.FormatTime(state.Start),
		timeutil.FormatTime(state.End),
		timeutil.FormatTime(state.End-state.Start),
	)

	source := state.Source
	if source == "" {
		source = "?"
	}
	rightContent := fmt.Sprintf("%s %s ", timeutil.FormatTime(state.Duration), source)
	if !state.Connected {
		rightContent = "⚠ no player · " + rightContent
	}

	padding := width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent)
	if padding < 1 {
		padding = 1
	}
	content := layout.Fit(leftContent+fmt.Sprintf("%*s", padding, "")+rightContent, width)

	statusBarStyle := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Foreground(styles.LightLavender).
		Bold(true)

	return statusBarStyle.Render(content)
}
