package forms

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// AssetFormResult holds the data returned by a completed asset form.
type AssetFormResult struct {
	Path  string
	Title string
}

// NewAssetForm creates a huh form for registering a video file.
func NewAssetForm(result *AssetFormResult) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Add Asset"),

			huh.NewInput().
				Title("Video file").
				Description("Required").
				Value(&result.Path).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("path is required")
					}
					info, err := os.Stat(s)
					if err != nil {
						return fmt.Errorf("cannot read file: %w", err)
					}
					if info.IsDir() {
						return fmt.Errorf("%s is a directory", s)
					}
					return nil
				}),

			huh.NewInput().
				Title("Title").
				Description("Optional, defaults to the file name").
				Value(&result.Title),
		),
	).WithTheme(Theme())
}
