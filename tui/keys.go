package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/trimline-cli/logging"
	"github.com/user/trimline-cli/pkg/timeutil"
	"github.com/user/trimline-cli/playback"
	"github.com/user/trimline-cli/trim"
	"github.com/user/trimline-cli/tui/components"
)

// handleKey handles key events in normal mode.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?":
		m.showHelp = true
		return m, nil
	case "q", "ctrl+c":
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case "esc":
		if n := m.drags.CancelAll(); n > 0 {
			m.logger.Debug().Int("sessions", n).Msg("drags cancelled")
		}
		return m, nil
	case ":":
		m.commandInput.Open()
		return m, nil
	case " ":
		return m, m.togglePlayback()
	case "r", "R":
		r := m.sync.Reset()
		return m, m.toast("Selected "+r.String(), false)
	case "[":
		m.setStart(m.sync.Cursor().CurrentTime)
		return m, nil
	case "]":
		m.setEnd(m.sync.Cursor().CurrentTime)
		return m, nil
	case "left":
		m.setStart(m.trim.Start() - m.nudgeStep)
		return m, nil
	case "right":
		m.setStart(m.trim.Start() + m.nudgeStep)
		return m, nil
	case "shift+left":
		m.setEnd(m.trim.End() - m.nudgeStep)
		return m, nil
	case "shift+right":
		m.setEnd(m.trim.End() + m.nudgeStep)
		return m, nil
	case "s", "S":
		return m, m.commitCmd()
	}
	return m, nil
}

// gapArgs returns the min-gap cells and track width for the current terminal.
// Before the first resize the pixel gap is unknown and only the floor applies.
func (m *Model) gapArgs() (float64, float64) {
	if m.width < minTerminalWidth {
		return 0, 0
	}
	return float64(m.minGapCells), m.geometry().Rect().Width
}

func (m *Model) geometry() components.TimelineGeometry {
	return components.NewTimelineGeometry(m.width)
}

func (m *Model) setStart(t float64) trim.Range {
	gap, width := m.gapArgs()
	return m.sync.SetStart(t, gap, width)
}

func (m *Model) setEnd(t float64) trim.Range {
	gap, width := m.gapArgs()
	return m.sync.SetEnd(t, gap, width)
}

func (m *Model) togglePlayback() tea.Cmd {
	if err := m.sync.TogglePlayback(); err != nil {
		m.logger.Warn().Err(err).Msg("toggle playback failed")
		if errors.Is(err, playback.ErrNoRange) {
			return m.toast("Nothing to play: no usable range", true)
		}
		return m.toast("Player: "+err.Error(), true)
	}
	return nil
}

// commitCmd fires the commit of the current range. The range stays as it is
// whatever the outcome.
func (m *Model) commitCmd() tea.Cmd {
	switch {
	case m.committer == nil:
		return m.toast("No trim service configured", true)
	case !m.trim.Valid():
		return m.toast("Nothing to commit: no usable range", true)
	case m.trim.IsPlaceholder():
		return m.toast("Duration not known yet", true)
	case m.committing:
		return m.toast("Commit already in progress", true)
	}

	m.committing = true
	session, c, id, rng := m.session, m.committer, m.assetID, m.trim.Range()
	m.logger.Info().
		Float64(logging.FieldStart, rng.Start).
		Float64(logging.FieldEnd, rng.End).
		Msg("committing trim")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()
		accepted, err := c.CommitTrim(ctx, id, rng.Start, rng.End)
		return commitDoneMsg{session: session, rng: rng, accepted: accepted, err: err}
	}
}

func (m *Model) finishCommit(msg commitDoneMsg) tea.Cmd {
	if !m.alive || msg.session != m.session {
		return nil
	}
	m.committing = false
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("commit failed")
		return m.toast("Commit failed: "+msg.err.Error(), true)
	}
	m.logger.Info().
		Str(logging.FieldJobID, msg.accepted.JobID).
		Float64(logging.FieldStart, msg.rng.Start).
		Float64(logging.FieldEnd, msg.rng.End).
		Msg("trim queued")
	return m.toast(fmt.Sprintf("Queued %s as job %s", msg.rng, shortID(msg.accepted.JobID)), false)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// handleCommandInput handles key events when in command mode.
func (m *Model) handleCommandInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commandInput.Close()
		return m, nil

	case "enter":
		cmdStr := m.commandInput.Submit()
		if cmdStr == "" {
			return m, nil
		}
		result, cmd, err := m.executeCommand(cmdStr)
		if err != nil {
			return m, m.toast("Error: "+err.Error(), true)
		}
		if m.quitting {
			return m, tea.Quit
		}
		if result != "" {
			return m, tea.Batch(cmd, m.toast(result, false))
		}
		return m, cmd

	case "backspace":
		m.commandInput.Backspace()
	case "delete":
		m.commandInput.Delete()
	case "left":
		m.commandInput.Left()
	case "right":
		m.commandInput.Right()
	case "home", "ctrl+a":
		m.commandInput.Home()
	case "end", "ctrl+e":
		m.commandInput.End()
	case "up":
		m.commandInput.HistoryPrev()
	case "down":
		m.commandInput.HistoryNext()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			for _, r := range msg.Runes {
				m.commandInput.Insert(r)
			}
			if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
				m.commandInput.Insert(' ')
			}
		}
	}
	return m, nil
}

// executeCommand runs one ':' command line.
func (m *Model) executeCommand(cmdStr string) (string, tea.Cmd, error) {
	parts := strings.Fields(cmdStr)
	if len(parts) == 0 {
		return "", nil, nil
	}
	cmd, args := parts[0], parts[1:]

	timeArg := func() (float64, error) {
		if len(args) < 1 {
			return 0, fmt.Errorf("%s requires a time argument (e.g., %s 1:30 or %s 90)", cmd, cmd, cmd)
		}
		return timeutil.ParseTimeToSeconds(args[0])
	}

	switch cmd {
	case "in", "start":
		t, err := timeArg()
		if err != nil {
			return "", nil, err
		}
		r := m.setStart(t)
		return "In at " + timeutil.FormatTime(r.Start), nil, nil
	case "out", "end":
		t, err := timeArg()
		if err != nil {
			return "", nil, err
		}
		r := m.setEnd(t)
		return "Out at " + timeutil.FormatTime(r.End), nil, nil
	case "seek":
		t, err := timeArg()
		if err != nil {
			return "", nil, err
		}
		got := m.sync.ScrubTo(t)
		return "Seeked to " + timeutil.FormatTime(got), nil, nil
	case "play", "pause":
		wantPlaying := cmd == "play"
		if m.sync.Cursor().IsPlaying == wantPlaying {
			return "", nil, nil
		}
		if err := m.sync.TogglePlayback(); err != nil {
			return "", nil, err
		}
		return "", nil, nil
	case "reset":
		return "Selected " + m.sync.Reset().String(), nil, nil
	case "commit", "w":
		return "", m.commitCmd(), nil
	case "q", "quit":
		m.quitting = true
		m.Close()
		return "", nil, nil
	case "help", "h":
		return "Commands: in, out, seek, play, pause, reset, commit, quit", nil, nil
	default:
		return "", nil, fmt.Errorf("unknown command: %s", cmd)
	}
}
