// Package styles holds the lipgloss palette and the shared styles of the trim view.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette, Ciapre from Gogh.
const (
	DeepPurple    = lipgloss.Color("#191C27") // background
	DarkPurple    = lipgloss.Color("#181818") // bars and panels
	Purple        = lipgloss.Color("#5C4F4B") // borders, track outside the selection
	BrightPurple  = lipgloss.Color("#724D7C") // selected span
	Lavender      = lipgloss.Color("#AEA47A") // secondary text
	LightLavender = lipgloss.Color("#F3DBB2") // primary text
	Pink          = lipgloss.Color("#D33061") // titles, dragged handle, errors
	Cyan          = lipgloss.Color("#3097C6") // playhead, information
	Amber         = lipgloss.Color("#CC8B3F") // resting handles
	Red           = lipgloss.Color("#AC3835")
	Green         = lipgloss.Color("#A6A75D")
)

// Chrome.
var (
	Title = lipgloss.NewStyle().
		Foreground(Pink).
		Bold(true)

	Border = lipgloss.NewStyle().
		Foreground(Purple)

	PrimaryText = lipgloss.NewStyle().
			Foreground(LightLavender)

	SecondaryText = lipgloss.NewStyle().
			Foreground(Lavender)

	Warning = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	Success = lipgloss.NewStyle().
		Foreground(Green).
		Bold(true)
)

// Timeline track.
var (
	TrackOutside = lipgloss.NewStyle().
			Foreground(Purple)

	TrackSelected = lipgloss.NewStyle().
			Foreground(BrightPurple)

	Handle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	HandleDragged = lipgloss.NewStyle().
			Foreground(Pink).
			Bold(true)

	Playhead = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)
)
