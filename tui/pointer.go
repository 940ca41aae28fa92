package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/trimline-cli/drag"
	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/trim"
	"github.com/user/trimline-cli/tui/components"
)

// timelineTrack is the rendered bar a drag measures against.
type timelineTrack struct {
	geometry components.TimelineGeometry
	model    *trim.Model
}

func (t timelineTrack) Rect() timeutil.TrackRect { return t.geometry.Rect() }

func (t timelineTrack) Duration() float64 { return t.model.Duration() }

// handleMouse routes terminal mouse events. Motion and release are delivered to the
// dispatcher wherever the pointer is, so a drag keeps tracking off the bar.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.showHelp || m.commandInput.Active {
			return nil
		}
		m.press(msg.X, msg.Y)
	case tea.MouseActionMotion:
		m.drags.Move(mousePointer, float64(msg.X))
	case tea.MouseActionRelease:
		m.drags.Up(mousePointer)
	}
	return nil
}

// press starts the drag for whatever is under (x, y). A press on the bar away from
// both handles grabs the playhead and seeks there at once.
func (m *Model) press(x, y int) {
	if !m.alive || m.width < minTerminalWidth {
		return
	}
	// A new press means any release for the previous one was lost.
	m.drags.Cancel(mousePointer)

	g := m.geometry()
	r := m.trim.Range()
	target := components.HitTest(g, y-timelineTop, x, r.Start, r.End, m.trim.Duration())
	track := timelineTrack{geometry: g, model: m.trim}
	gap, width := float64(m.minGapCells), g.Rect().Width

	switch target {
	case components.HitStart:
		m.drags.Begin(drag.HandleStart, mousePointer, track, func(t float64) {
			m.sync.SetStart(t, gap, width)
		}, nil)
	case components.HitEnd:
		m.drags.Begin(drag.HandleEnd, mousePointer, track, func(t float64) {
			m.sync.SetEnd(t, gap, width)
		}, nil)
	case components.HitPlayhead:
		m.sync.BeginScrub()
		m.drags.Begin(drag.HandlePlayhead, mousePointer, track, func(t float64) {
			m.sync.ScrubTo(t)
		}, m.sync.EndScrub)
		m.drags.Move(mousePointer, float64(x))
	}
}

// dragging returns the handle being dragged ("" when none) and the bar cell the
// pointer is over, -1 before the first move.
func (m *Model) dragging() (string, int) {
	for _, h := range []drag.Handle{drag.HandleStart, drag.HandleEnd, drag.HandlePlayhead} {
		s, ok := m.drags.Active(h)
		if !ok {
			continue
		}
		preview := -1
		if x, moved := s.PreviewX(); moved {
			preview = int(x - s.Rect().Left)
		}
		return h.String(), preview
	}
	return "", -1
}
