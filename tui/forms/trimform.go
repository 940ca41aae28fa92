package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/trim"
)

// TrimFormResult holds the in/out points typed into a trim form.
type TrimFormResult struct {
	Start string
	End   string
}

// Range parses the form values. The end must come after the start.
func (r *TrimFormResult) Range() (trim.Range, error) {
	start, err := timeutil.ParseTimeToSeconds(r.Start)
	if err != nil {
		return trim.Range{}, fmt.Errorf("in point: %w", err)
	}
	end, err := timeutil.ParseTimeToSeconds(r.End)
	if err != nil {
		return trim.Range{}, fmt.Errorf("out point: %w", err)
	}
	if end <= start {
		return trim.Range{}, fmt.Errorf("out point must be after in point")
	}
	return trim.Range{Start: start, End: end}, nil
}

// NewTrimForm creates a huh form for typing a trim range. When duration is known
// (> 0) both points are checked against it.
func NewTrimForm(title string, duration float64, result *TrimFormResult) *huh.Form {
	desc := "Times as SS, MM:SS or H:MM:SS"
	if duration > 0 {
		desc = fmt.Sprintf("%s, up to %s", desc, timeutil.FormatTime(duration))
	}

	within := func(s string) error {
		t, err := timeutil.ParseTimeToSeconds(s)
		if err != nil {
			return err
		}
		if duration > 0 && t > duration {
			return fmt.Errorf("past the end (%s)", timeutil.FormatTime(duration))
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Trim %s", title)).Description(desc),

			huh.NewInput().
				Title("In").
				Placeholder("0:00").
				Value(&result.Start).
				Validate(within),

			huh.NewInput().
				Title("Out").
				Placeholder(timeutil.FormatTime(duration)).
				Value(&result.End).
				Validate(func(s string) error {
					if err := within(s); err != nil {
						return err
					}
					if _, err := result.Range(); err != nil {
						return err
					}
					return nil
				}),
		),
	).WithTheme(Theme())
}
