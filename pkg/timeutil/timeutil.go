package timeutil

import (
	"fmt"
	"math"
	"strings"
)

// TrackRect is the horizontal extent of a rendered timeline track.
// Left and Width are measured in the host's pointer units (terminal cells).
type TrackRect struct {
	Left  float64
	Width float64
}

// Right returns the x coordinate of the track's right edge.
func (r TrackRect) Right() float64 {
	return r.Left + r.Width
}

// Contains reports whether x falls inside the track.
func (r TrackRect) Contains(x float64) bool {
	return x >= r.Left && x < r.Right()
}

// Clamp limits v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PixelToTime converts a pointer x offset into a time within [0, duration].
// Positions left or right of the track clamp to the ends; an unmeasured track or
// a zero duration always yields 0.
func PixelToTime(x float64, rect TrackRect, duration float64) float64 {
	if rect.Width <= 0 || !(duration > 0) {
		return 0
	}
	ratio := Clamp((x-rect.Left)/rect.Width, 0, 1)
	return ratio * duration
}

// TimeToPixel is the inverse of PixelToTime, used to place handles on the track.
func TimeToPixel(t float64, rect TrackRect, duration float64) float64 {
	return rect.Left + TimeToPercent(t, duration)/100*rect.Width
}

// TimeToPercent returns t as a percentage of duration in [0, 100].
// A zero duration yields 0.
func TimeToPercent(t, duration float64) float64 {
	if !(duration > 0) {
		return 0
	}
	return Clamp(t/duration, 0, 1) * 100
}

// FormatTime formats seconds as M:SS.d (e.g. 0:07.5, 12:03.0).
// Negative, NaN and infinite values format as 0:00.0.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	// Work in whole tenths so 2.3 does not render as 0:02.2.
	totalTenths := int64(math.Floor(seconds*10 + 1e-6))
	mins := totalTenths / 600
	secs := (totalTenths / 10) % 60
	tenths := totalTenths % 10
	return fmt.Sprintf("%d:%02d.%d", mins, secs, tenths)
}

// FormatClock formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// ParseTimeToSeconds parses a time string in H:MM:SS, M:SS(.d), or raw seconds format.
// Uses colon count: 2 colons = H:M:S, 1 colon = M:S, 0 colons = raw seconds.
func ParseTimeToSeconds(timeStr string) (float64, error) {
	timeStr = strings.TrimSpace(timeStr)
	colons := strings.Count(timeStr, ":")

	switch colons {
	case 2:
		var hours, minutes int
		var seconds float64
		if n, err := fmt.Sscanf(timeStr, "%d:%d:%g", &hours, &minutes, &seconds); n == 3 && err == nil && minutes < 60 && validParts(minutes, seconds) {
			return float64(hours*3600+minutes*60) + seconds, nil
		}
	case 1:
		var minutes int
		var seconds float64
		if n, err := fmt.Sscanf(timeStr, "%d:%g", &minutes, &seconds); n == 2 && err == nil && validParts(minutes, seconds) {
			return float64(minutes*60) + seconds, nil
		}
	case 0:
		var secs float64
		if n, err := fmt.Sscanf(timeStr, "%g", &secs); n == 1 && err == nil && secs >= 0 {
			return secs, nil
		}
	}

	return 0, fmt.Errorf("expected H:MM:SS, M:SS, or seconds, got '%s'", timeStr)
}

func validParts(minutes int, seconds float64) bool {
	return minutes >= 0 && seconds >= 0 && seconds < 60
}
