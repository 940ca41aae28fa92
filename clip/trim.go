package clip

import (
	"context"
	"fmt"
)

// Cut writes the [start, end] window of input to output with ffmpeg. Streams are
// copied, so the cut snaps to the nearest keyframe before start.
func Cut(ctx context.Context, ffmpeg, input, output string, start, end float64) error {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if start < 0 || end <= start {
		return fmt.Errorf("clip: invalid range %.3f-%.3f", start, end)
	}

	out, err := runCommand(ctx, ffmpeg,
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-to", fmt.Sprintf("%.3f", end),
		"-i", input,
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		output,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg trim: %w: %s", err, string(out))
	}
	return nil
}
