package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/trimline-cli/tui/styles"
)

type binding struct{ key, desc string }

type bindingGroup struct {
	title    string
	bindings []binding
}

var helpGroups = []bindingGroup{
	{"Playback", []binding{
		{"space", "play/pause inside the selection"},
		{"drag ▲", "scrub the playhead"},
		{"click", "seek, clamped to the selection"},
	}},
	{"Selection", []binding{
		{"drag ┃", "move the in or out handle"},
		{"[ / ]", "mark in / out at the playhead"},
		{"←/→", "nudge in point"},
		{"shift+←/→", "nudge out point"},
		{"r", "select the whole video"},
		{"s", "commit the selection"},
		{"esc", "cancel a drag"},
	}},
	{"Commands", []binding{
		{":in 1:02.5", "set the in point"},
		{":out 1:10", "set the out point"},
		{":seek 1:05", "move the playhead"},
		{":play :pause", "control playback"},
		{":commit", "commit the selection"},
		{":reset", "select the whole video"},
		{"↑/↓", "command history"},
		{"?  q", "help · quit"},
	}},
}

var (
	helpTitleStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	helpGroupStyle = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).MarginTop(1)
	helpKeyStyle   = lipgloss.NewStyle().Foreground(styles.Lavender).Bold(true).Width(14)
	helpDescStyle  = lipgloss.NewStyle().Foreground(styles.LightLavender)
	helpFootStyle  = lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true)
	helpPanelStyle = lipgloss.NewStyle().
			Background(styles.DarkPurple).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.BrightPurple).
			Padding(1, 2)
)

// HelpOverlay renders the keybinding panel centred in a width x height area.
func HelpOverlay(width, height int) string {
	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("Keybindings"))
	for _, g := range helpGroups {
		b.WriteString("\n" + helpGroupStyle.Render(g.title))
		for _, kb := range g.bindings {
			b.WriteString("\n  " + helpKeyStyle.Render(kb.key) + helpDescStyle.Render(kb.desc))
		}
	}
	b.WriteString("\n\n" + helpFootStyle.Render("press any key to close"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpPanelStyle.Render(b.String()))
}
