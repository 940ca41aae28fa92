// Package drag turns pointer press/move/release sequences on a timeline track into
// time updates. A Dispatcher plays the role of the document: the host forwards every
// pointer event to it and it routes them to the sessions that captured that pointer,
// wherever the pointer currently is.
package drag

import (
	"github.com/rs/zerolog"

	"github.com/user/trimline-cli/pkg/timeutil"
)

// Handle identifies one of the draggable timeline affordances.
type Handle int

const (
	HandleStart Handle = iota
	HandleEnd
	HandlePlayhead
)

var handleNames = map[Handle]string{
	HandleStart:    "start",
	HandleEnd:      "end",
	HandlePlayhead: "playhead",
}

func (h Handle) String() string {
	if name, ok := handleNames[h]; ok {
		return name
	}
	return "unknown"
}

// handleOrder fixes the order sessions are visited in when one pointer drives several.
var handleOrder = []Handle{HandleStart, HandleEnd, HandlePlayhead}

// Track is the element a drag session measures and converts pointer x against.
type Track interface {
	// Rect returns the track's current horizontal extent.
	Rect() timeutil.TrackRect
	// Duration returns the time span the track represents.
	Duration() float64
}

// Session is one live drag of one handle. It exists from Begin until the pointer is
// released or cancelled, or the dispatcher is torn down.
type Session struct {
	d         *Dispatcher
	handle    Handle
	pointerID int
	rect      timeutil.TrackRect
	track     Track
	onMove    func(t float64)
	onEnd     func()
	previewX  float64
	moved     bool
	closed    bool
}

// Handle returns the handle being dragged.
func (s *Session) Handle() Handle { return s.handle }

// PointerID returns the pointer that owns the session.
func (s *Session) PointerID() int { return s.pointerID }

// Rect returns the track extent measured when the session began.
func (s *Session) Rect() timeutil.TrackRect { return s.rect }

// Active reports whether the session still holds the pointer capture.
func (s *Session) Active() bool { return !s.closed }

// PreviewX returns the last pointer x seen by the session and whether any move has
// been received. Views may draw the handle there before the next full render.
func (s *Session) PreviewX() (float64, bool) {
	return s.previewX, s.moved
}

// Close ends the session: onEnd runs once and the capture is released. Close is
// idempotent and safe to call from inside onMove.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.d.release(s)
	if s.onEnd != nil {
		s.onEnd()
	}
}

func (s *Session) move(x float64) {
	s.previewX = x
	s.moved = true
	t := timeutil.PixelToTime(x, s.rect, s.track.Duration())
	if s.onMove != nil {
		s.onMove(t)
	}
}

// Dispatcher owns pointer capture for all drag sessions of one timeline.
// It is not safe for concurrent use; the host event loop serialises access.
type Dispatcher struct {
	sessions map[Handle]*Session
	logger   zerolog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: make(map[Handle]*Session),
		logger:   logger,
	}
}

// Begin starts a drag of handle driven by pointerID. The track rect is measured once
// here and reused for every move of this session. An existing session on the same
// handle is closed first.
func (d *Dispatcher) Begin(handle Handle, pointerID int, track Track, onMove func(t float64), onEnd func()) *Session {
	if prev, ok := d.sessions[handle]; ok {
		prev.Close()
	}

	s := &Session{
		d:         d,
		handle:    handle,
		pointerID: pointerID,
		rect:      track.Rect(),
		track:     track,
		onMove:    onMove,
		onEnd:     onEnd,
	}
	d.sessions[handle] = s
	d.logger.Debug().
		Str("handle", handle.String()).
		Int("pointer_id", pointerID).
		Float64("track_left", s.rect.Left).
		Float64("track_width", s.rect.Width).
		Msg("drag started")
	return s
}

// Move delivers a pointer move to every session captured by pointerID, in handle
// order. It returns the number of sessions updated.
func (d *Dispatcher) Move(pointerID int, x float64) int {
	n := 0
	for _, s := range d.captured(pointerID) {
		if s.closed {
			continue
		}
		s.move(x)
		n++
	}
	return n
}

// Up ends every session captured by pointerID. Release may happen anywhere.
func (d *Dispatcher) Up(pointerID int) int {
	sessions := d.captured(pointerID)
	for _, s := range sessions {
		s.Close()
	}
	return len(sessions)
}

// Cancel ends pointerID's sessions the same way Up does; it exists so hosts can
// map pointer-cancel style events explicitly.
func (d *Dispatcher) Cancel(pointerID int) int {
	sessions := d.captured(pointerID)
	for _, s := range sessions {
		d.logger.Debug().Str("handle", s.handle.String()).Msg("drag cancelled")
		s.Close()
	}
	return len(sessions)
}

// CancelAll ends every session. Used on focus loss and teardown.
func (d *Dispatcher) CancelAll() int {
	var all []*Session
	for _, h := range handleOrder {
		if s, ok := d.sessions[h]; ok {
			all = append(all, s)
		}
	}
	for _, s := range all {
		s.Close()
	}
	return len(all)
}

// Active returns the live session for handle, if any.
func (d *Dispatcher) Active(handle Handle) (*Session, bool) {
	s, ok := d.sessions[handle]
	return s, ok
}

// Dragging reports whether any session is live.
func (d *Dispatcher) Dragging() bool {
	return len(d.sessions) > 0
}

func (d *Dispatcher) captured(pointerID int) []*Session {
	var out []*Session
	for _, h := range handleOrder {
		if s, ok := d.sessions[h]; ok && s.pointerID == pointerID {
			out = append(out, s)
		}
	}
	return out
}

func (d *Dispatcher) release(s *Session) {
	if cur, ok := d.sessions[s.handle]; ok && cur == s {
		delete(d.sessions, s.handle)
		d.logger.Debug().Str("handle", s.handle.String()).Msg("drag ended")
	}
}
