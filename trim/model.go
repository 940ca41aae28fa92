// Package trim holds the trim range model: the selected [start, end] window of a
// video and the rules that keep it valid while handles are dragged.
package trim

import (
	"fmt"
	"math"

	"github.com/user/trimline-cli/pkg/timeutil"
)

const (
	// MinGapFloor is the smallest allowed distance between start and end, in seconds.
	// It applies even when the pixel-derived gap is smaller (very narrow tracks).
	MinGapFloor = 0.5
	// PlaceholderDuration is assumed until the real duration is known.
	PlaceholderDuration = 60.0
)

// Range is a trim window in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length returns End - Start.
func (r Range) Length() float64 {
	return r.End - r.Start
}

// Contains reports whether t lies inside [Start, End].
func (r Range) Contains(t float64) bool {
	return t >= r.Start && t <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", timeutil.FormatTime(r.Start), timeutil.FormatTime(r.End))
}

// Model owns the trim range and its duration. It is the only writer of Range.
// Model is not safe for concurrent use; the host event loop serialises access.
type Model struct {
	duration    float64
	placeholder bool
	rng         Range
}

// New creates a model covering [0, duration]. placeholder marks the duration as
// provisional so a later real value replaces it.
func New(duration float64, placeholder bool) *Model {
	if !(duration > 0) || math.IsInf(duration, 0) {
		duration = 0
	}
	return &Model{
		duration:    duration,
		placeholder: placeholder,
		rng:         Range{Start: 0, End: duration},
	}
}

// NewPlaceholder creates a model with the provisional 60s duration.
func NewPlaceholder() *Model {
	return New(PlaceholderDuration, true)
}

// Duration returns the current duration in seconds.
func (m *Model) Duration() float64 { return m.duration }

// IsPlaceholder reports whether the duration is still provisional.
func (m *Model) IsPlaceholder() bool { return m.placeholder }

// Range returns the current trim range.
func (m *Model) Range() Range { return m.rng }

// Start returns the range start.
func (m *Model) Start() float64 { return m.rng.Start }

// End returns the range end.
func (m *Model) End() float64 { return m.rng.End }

// Valid reports whether the model holds a usable, non-empty range.
func (m *Model) Valid() bool {
	return m.duration > 0 && m.rng.Start >= 0 && m.rng.Start < m.rng.End && m.rng.End <= m.duration
}

// MinGap returns the minimum start/end separation for the given pixel gap and
// rendered track width: max(MinGapFloor, minGapPixels/trackWidth*duration).
func (m *Model) MinGap(minGapPixels, trackWidth float64) float64 {
	var gapTime float64
	if trackWidth > 0 && minGapPixels > 0 {
		gapTime = minGapPixels / trackWidth * m.duration
	}
	return math.Max(MinGapFloor, gapTime)
}

// SetStart moves the start handle toward candidate, clamped to
// [0, end - MinGap]. It returns the resulting range.
func (m *Model) SetStart(candidate, minGapPixels, trackWidth float64) Range {
	gap := m.MinGap(minGapPixels, trackWidth)
	if gap >= m.duration {
		m.rng = Range{Start: 0, End: m.duration}
		return m.rng
	}

	hi := m.rng.End - gap
	if hi < 0 {
		// The gap grew (track shrank) past the current end; push end out.
		m.rng.End = gap
		hi = 0
	}
	m.rng.Start = timeutil.Clamp(candidate, 0, hi)
	m.check()
	return m.rng
}

// SetEnd moves the end handle toward candidate, clamped to
// [start + MinGap, duration]. It returns the resulting range.
func (m *Model) SetEnd(candidate, minGapPixels, trackWidth float64) Range {
	gap := m.MinGap(minGapPixels, trackWidth)
	if gap >= m.duration {
		m.rng = Range{Start: 0, End: m.duration}
		return m.rng
	}

	lo := m.rng.Start + gap
	if lo > m.duration {
		m.rng.Start = m.duration - gap
		lo = m.duration
	}
	m.rng.End = timeutil.Clamp(candidate, lo, m.duration)
	m.check()
	return m.rng
}

// NudgeStart moves start by delta seconds under the same rules as SetStart.
func (m *Model) NudgeStart(delta, minGapPixels, trackWidth float64) Range {
	return m.SetStart(m.rng.Start+delta, minGapPixels, trackWidth)
}

// NudgeEnd moves end by delta seconds under the same rules as SetEnd.
func (m *Model) NudgeEnd(delta, minGapPixels, trackWidth float64) Range {
	return m.SetEnd(m.rng.End+delta, minGapPixels, trackWidth)
}

// Reset selects the whole video.
func (m *Model) Reset() Range {
	m.rng = Range{Start: 0, End: m.duration}
	return m.rng
}

// SetDuration adopts a newly discovered duration. A value equal to the current one
// only settles the placeholder flag and keeps the user's range. A different value
// keeps a full-length selection full-length and otherwise clamps the range into the
// new duration. Non-positive values are ignored. Reports whether the range changed.
func (m *Model) SetDuration(duration float64, placeholder bool) bool {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return false
	}
	if duration == m.duration {
		m.placeholder = placeholder
		return false
	}

	wasFull := m.rng.Start == 0 && m.rng.End == m.duration
	m.duration = duration
	m.placeholder = placeholder
	before := m.rng

	switch {
	case wasFull:
		m.rng = Range{Start: 0, End: duration}
	default:
		end := math.Min(m.rng.End, duration)
		start := m.rng.Start
		if start > end-MinGapFloor {
			start = end - MinGapFloor
		}
		if start < 0 || end <= start {
			m.rng = Range{Start: 0, End: duration}
		} else {
			m.rng = Range{Start: start, End: end}
		}
	}
	m.check()
	return m.rng != before
}

// Adopt replaces a placeholder duration with a player-reported value and selects the
// whole video. A value equal to the placeholder keeps the user's range. It is a no-op
// once a real (non-placeholder) duration is known.
func (m *Model) Adopt(duration float64) bool {
	if !m.placeholder && m.duration > 0 {
		return false
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return false
	}
	if duration == m.duration {
		m.placeholder = false
		return false
	}
	m.duration = duration
	m.placeholder = false
	m.Reset()
	return true
}

// check restores the core invariant 0 <= start < end <= duration. Every mutator
// ends with it.
func (m *Model) check() {
	if m.duration <= 0 {
		m.rng = Range{}
		return
	}
	if m.rng.Start < 0 || m.rng.End > m.duration || m.rng.Start >= m.rng.End || math.IsNaN(m.rng.Start) || math.IsNaN(m.rng.End) {
		m.rng = Range{Start: 0, End: m.duration}
	}
}
