// Package forms provides huh-based form components for the CLI and TUI.
package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/user/trimline-cli/pkg/timeutil"
)

// NewConfirmCommitForm creates a huh confirm form asking whether to queue a cut of
// [start, end] from the named asset. The result pointer is bound to the confirm field.
func NewConfirmCommitForm(asset string, start, end float64, confirm *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Cut %s?", asset)).
				Description(fmt.Sprintf("%s → %s (%s)",
					timeutil.FormatTime(start),
					timeutil.FormatTime(end),
					timeutil.FormatTime(end-start))).
				Affirmative("Queue cut").
				Negative("Cancel").
				Value(confirm),
		),
	).WithTheme(Theme())
}
