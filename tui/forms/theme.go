package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/trimline-cli/tui/styles"
)

// Theme returns a custom huh theme that matches the TUI color palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.BrightPurple).
		PaddingLeft(1)
	paint(&t.Focused, palette{
		title:  lipgloss.NewStyle().Foreground(styles.Pink).Bold(true),
		desc:   styles.Lavender,
		text:   styles.LightLavender,
		accent: styles.Cyan,
		dim:    styles.Purple,
		button: styles.BrightPurple,
	})
	t.Focused.NoteTitle = t.Focused.NoteTitle.Foreground(styles.Cyan).Bold(true)

	t.Blurred.Base = t.Blurred.Base.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true).
		PaddingLeft(1)
	paint(&t.Blurred, palette{
		title:  lipgloss.NewStyle().Foreground(styles.Lavender),
		desc:   styles.Purple,
		text:   styles.Lavender,
		accent: styles.Purple,
		dim:    styles.Purple,
		button: styles.Purple,
	})

	return t
}

type palette struct {
	title  lipgloss.Style
	desc   lipgloss.Color
	text   lipgloss.Color
	accent lipgloss.Color
	dim    lipgloss.Color
	button lipgloss.Color
}

// paint applies one palette to the field styles a trimline form uses: inputs,
// confirms and notes.
func paint(f *huh.FieldStyles, p palette) {
	f.Title = p.title
	f.NoteTitle = p.title
	f.Description = lipgloss.NewStyle().Foreground(p.desc)
	f.ErrorIndicator = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	f.ErrorMessage = lipgloss.NewStyle().Foreground(styles.Pink)

	f.TextInput.Cursor = lipgloss.NewStyle().Foreground(p.accent)
	f.TextInput.Placeholder = lipgloss.NewStyle().Foreground(p.dim)
	f.TextInput.Prompt = lipgloss.NewStyle().Foreground(p.accent)
	f.TextInput.Text = lipgloss.NewStyle().Foreground(p.text)

	f.FocusedButton = lipgloss.NewStyle().
		Background(p.button).
		Foreground(styles.LightLavender).
		Bold(true).
		Padding(0, 1)
	f.BlurredButton = lipgloss.NewStyle().
		Background(styles.DeepPurple).
		Foreground(p.desc).
		Padding(0, 1)
	f.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.dim).
		Padding(0, 1)
	f.Next = f.FocusedButton
}
