// Package playback keeps an external media player confined to the trim range.
//
// Sync is a two-state machine (Paused, Playing) bound to a trim.Model and a Player.
// It is the single writer of the playback cursor, except while the playhead is being
// scrubbed, when the scrub owns the cursor and pushes every value into the player.
package playback

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/trim"
)

// DefaultRestartEpsilon is how close to the end the cursor may be before a toggle
// restarts from the range start instead of resuming.
const DefaultRestartEpsilon = 0.1

var (
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("playback: sync closed")
	// ErrNoRange is returned when playback is requested without a usable trim range.
	ErrNoRange = errors.New("playback: no usable trim range")
)

// Player is the media player capability the sync drives. Implementations may be
// local or network backed; CurrentTime is not assumed to reflect a Play or Seek
// immediately.
type Player interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	CurrentTime() (float64, error)
	Duration() (float64, error)
	Paused() (bool, error)
}

// State is the playback state.
type State int

const (
	Paused State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// Cursor is the observable playback position.
type Cursor struct {
	CurrentTime float64
	IsPlaying   bool
}

// Option configures a Sync.
type Option func(*Sync)

// WithRestartEpsilon overrides DefaultRestartEpsilon.
func WithRestartEpsilon(eps float64) Option {
	return func(s *Sync) {
		if eps >= 0 {
			s.epsilon = eps
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sync) {
		s.logger = logger
	}
}

// Sync binds a trim model to a player.
// It is not safe for concurrent use; the host event loop serialises access.
type Sync struct {
	model       *trim.Model
	player      Player
	state       State
	currentTime float64
	epsilon     float64
	scrubbing   bool
	closed      bool
	logger      zerolog.Logger
}

// New creates a paused Sync with the cursor at the range start.
func New(model *trim.Model, player Player, opts ...Option) *Sync {
	s := &Sync{
		model:       model,
		player:      player,
		state:       Paused,
		currentTime: model.Start(),
		epsilon:     DefaultRestartEpsilon,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the bound trim model.
func (s *Sync) Model() *trim.Model { return s.model }

// State returns the current playback state.
func (s *Sync) State() State { return s.state }

// Cursor returns the current playback cursor.
func (s *Sync) Cursor() Cursor {
	return Cursor{CurrentTime: s.currentTime, IsPlaying: s.state == Playing}
}

// Scrubbing reports whether a playhead scrub currently owns the cursor.
func (s *Sync) Scrubbing() bool { return s.scrubbing }

// Closed reports whether Close has been called.
func (s *Sync) Closed() bool { return s.closed }

// TogglePlayback pauses when playing. When paused it seeks to the resume point and
// plays: the range start if the cursor is before start or within epsilon of the end,
// otherwise the cursor itself.
func (s *Sync) TogglePlayback() error {
	if s.closed {
		return ErrClosed
	}

	if s.state == Playing {
		if err := s.player.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		s.transition(Paused, "toggle")
		return nil
	}

	if !s.model.Valid() {
		return ErrNoRange
	}

	r := s.model.Range()
	startFrom := s.currentTime
	if s.currentTime < r.Start || s.currentTime >= r.End-s.epsilon {
		startFrom = r.Start
	}

	if err := s.player.Seek(startFrom); err != nil {
		return fmt.Errorf("seek to %s: %w", timeutil.FormatTime(startFrom), err)
	}
	s.currentTime = startFrom
	if err := s.player.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	s.transition(Playing, "toggle")
	return nil
}

// OnExternalTimeUpdate records a time reported by the player. Reaching or passing the
// range end while playing pauses the player within the same call, scrub or not.
// While scrubbing the scrub keeps the cursor; after Close, and for NaN reports,
// nothing changes. It returns true if the update caused an automatic pause.
func (s *Sync) OnExternalTimeUpdate(reported float64) bool {
	if s.closed || math.IsNaN(reported) || math.IsInf(reported, 0) {
		return false
	}
	if !s.scrubbing {
		s.currentTime = reported
	}

	if s.state != Playing || reported < s.model.End() {
		return false
	}
	if err := s.player.Pause(); err != nil {
		s.logger.Warn().Err(err).Float64("time", reported).Msg("auto-pause at range end failed")
		return false
	}
	s.transition(Paused, "range_end")
	return true
}

// OnExternalLoadedMetadata adopts a player-reported duration while the model still
// holds a placeholder (or nothing), selecting the whole video. It reports whether the
// duration was adopted.
func (s *Sync) OnExternalLoadedMetadata(reported float64) bool {
	if s.closed {
		return false
	}
	if !s.model.IsPlaceholder() && s.model.Duration() > 0 {
		return false
	}
	before := s.model.Duration()
	adopted := s.model.Adopt(reported)
	if adopted {
		s.clampCursor()
		s.logger.Info().
			Float64("placeholder", before).
			Float64("duration", reported).
			Msg("duration adopted from player metadata")
	}
	return adopted
}

// OnExternalPlay records that the player started playing on its own.
func (s *Sync) OnExternalPlay() {
	if s.closed || s.state == Playing {
		return
	}
	s.transition(Playing, "player")
}

// OnExternalPause records that the player paused on its own.
func (s *Sync) OnExternalPause() {
	if s.closed || s.state == Paused {
		return
	}
	s.transition(Paused, "player")
}

// SetDuration applies a duration discovered outside the player (see trim.Model.SetDuration)
// and keeps the cursor inside the resulting range.
func (s *Sync) SetDuration(duration float64, placeholder bool) bool {
	if s.closed {
		return false
	}
	changed := s.model.SetDuration(duration, placeholder)
	s.clampCursor()
	return changed
}

// SetStart moves the range start. If the new start passes the cursor, the cursor
// snaps forward to it and the player is seeked there.
func (s *Sync) SetStart(candidate, minGapPixels, trackWidth float64) trim.Range {
	r := s.model.SetStart(candidate, minGapPixels, trackWidth)
	if !s.closed && r.Start > s.currentTime {
		s.snap(r.Start)
	}
	return r
}

// SetEnd moves the range end. If the new end falls before the cursor, the cursor
// snaps back to it and the player is seeked there.
func (s *Sync) SetEnd(candidate, minGapPixels, trackWidth float64) trim.Range {
	r := s.model.SetEnd(candidate, minGapPixels, trackWidth)
	if !s.closed && r.End < s.currentTime {
		s.snap(r.End)
	}
	return r
}

// Reset selects the whole video. The cursor is already inside [0, duration].
func (s *Sync) Reset() trim.Range {
	r := s.model.Reset()
	s.clampCursor()
	return r
}

// BeginScrub hands cursor ownership to a playhead drag. Player time reports are
// ignored until EndScrub.
func (s *Sync) BeginScrub() {
	if s.closed {
		return
	}
	s.scrubbing = true
}

// ScrubTo moves the cursor to t clamped into the trim range and seeks the player.
// It returns the applied time.
func (s *Sync) ScrubTo(t float64) float64 {
	if s.closed {
		return s.currentTime
	}
	r := s.model.Range()
	t = timeutil.Clamp(t, r.Start, r.End)
	s.currentTime = t
	if err := s.player.Seek(t); err != nil {
		s.logger.Debug().Err(err).Float64("time", t).Msg("scrub seek failed")
	}
	return t
}

// EndScrub returns cursor ownership to the player.
func (s *Sync) EndScrub() {
	s.scrubbing = false
}

// Close stops the sync from reacting to any further player events or commands.
func (s *Sync) Close() {
	s.closed = true
	s.scrubbing = false
}

func (s *Sync) snap(t float64) {
	s.currentTime = t
	if err := s.player.Seek(t); err != nil {
		s.logger.Debug().Err(err).Float64("time", t).Msg("playhead snap seek failed")
	}
}

func (s *Sync) clampCursor() {
	d := s.model.Duration()
	if s.currentTime > d {
		s.currentTime = d
	}
	if s.currentTime < 0 {
		s.currentTime = 0
	}
}

func (s *Sync) transition(to State, cause string) {
	from := s.state
	s.state = to
	s.logger.Debug().
		Str("old_state", from.String()).
		Str("new_state", to.String()).
		Str("cause", cause).
		Float64("time", s.currentTime).
		Msg("playback state changed")
}
