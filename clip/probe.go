package clip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/user/trimline-cli/metrics"
)

// ErrInvalidDuration is returned when ffprobe reports no positive duration.
var ErrInvalidDuration = errors.New("clip: invalid duration")

// ProbeDuration asks ffprobe for the container duration of path in seconds.
func ProbeDuration(ctx context.Context, ffprobe, path string) (float64, error) {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}

	started := time.Now()
	output, err := runOutput(ctx, ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	metrics.ObserveProbeDuration(time.Since(started))
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", durationStr, ErrInvalidDuration)
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return 0, fmt.Errorf("duration %v: %w", duration, ErrInvalidDuration)
	}
	return duration, nil
}
