package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/trimline-cli/api"
	"github.com/user/trimline-cli/config"
	"github.com/user/trimline-cli/drag"
	"github.com/user/trimline-cli/playback"
	"github.com/user/trimline-cli/resolver"
	"github.com/user/trimline-cli/trim"
	"github.com/user/trimline-cli/tui/components"
)

// fakePlayer reports whatever the test sets and records seeks.
type fakePlayer struct {
	time     float64
	duration float64
	paused   bool
	seeks    []float64
	offline  bool
}

func (f *fakePlayer) Play() error  { f.paused = false; return nil }
func (f *fakePlayer) Pause() error { f.paused = true; return nil }

func (f *fakePlayer) Seek(seconds float64) error {
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakePlayer) CurrentTime() (float64, error) {
	if f.offline {
		return 0, errors.New("offline")
	}
	return f.time, nil
}

func (f *fakePlayer) Duration() (float64, error) {
	if f.offline || f.duration == 0 {
		return 0, errors.New("unavailable")
	}
	return f.duration, nil
}

func (f *fakePlayer) Paused() (bool, error) {
	if f.offline {
		return false, errors.New("offline")
	}
	return f.paused, nil
}

type fakeResolver struct{ result resolver.Result }

func (f fakeResolver) Resolve(context.Context, string) resolver.Result { return f.result }

type fakeCommitter struct {
	calls []trim.Range
	err   error
}

func (f *fakeCommitter) CommitTrim(_ context.Context, _ string, start, end float64) (*api.TrimAccepted, error) {
	f.calls = append(f.calls, trim.Range{Start: start, End: end})
	if f.err != nil {
		return nil, f.err
	}
	return &api.TrimAccepted{JobID: "0b9f3c2e-aaaa-bbbb", Status: "pending"}, nil
}

func newTestModel(t *testing.T, opts Options) (*Model, *fakePlayer) {
	t.Helper()
	p := &fakePlayer{paused: true}
	if opts.Player == nil {
		opts.Player = p
	}
	if opts.AssetID == "" {
		opts.AssetID = "asset-1"
	}
	logger := zerolog.Nop()
	opts.Logger = &logger
	m := NewModel(opts)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, p
}

// With width 80 the bar has 76 cells from column 2; the track rect is 75 cells wide.
const trackRow = timelineTop + components.TimelineTrackRow

func col(t, duration float64) int {
	return components.NewTimelineGeometry(80).Column(t, duration)
}

func press(m *Model, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func motion(m *Model, x int) {
	m.Update(tea.MouseMsg{X: x, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
}

func release(m *Model, x int) {
	m.Update(tea.MouseMsg{X: x, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func key(m *Model, s string) tea.Cmd {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "shift+left":
		msg = tea.KeyMsg{Type: tea.KeyShiftLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func command(m *Model, line string) tea.Cmd {
	key(m, ":")
	for _, r := range line {
		key(m, string(r))
	}
	return key(m, "enter")
}

func TestModel_DragStartHandle(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	press(m, col(0, 60), trackRow)
	_, ok := m.drags.Active(drag.HandleStart)
	require.True(t, ok, "press on the start handle starts a start drag")

	motion(m, 32) // (32-2)/75 * 60
	assert.InDelta(t, 24.0, m.Range().Start, 1e-9)

	motion(m, 200) // far past the end handle: clamped by the min gap
	gap := m.trim.MinGap(2, 75)
	assert.InDelta(t, 60-gap, m.Range().Start, 1e-9)

	release(m, 500)
	assert.False(t, m.drags.Dragging())
}

func TestModel_DragEndHandleSnapsPlayhead(t *testing.T) {
	m, p := newTestModel(t, Options{})
	p.time = 50
	m.Update(tickMsg{})
	require.Equal(t, 50.0, m.Cursor().CurrentTime)

	press(m, col(60, 60), trackRow)
	motion(m, 62) // 48s
	release(m, 62)

	assert.InDelta(t, 48.0, m.Range().End, 1e-9)
	assert.InDelta(t, 48.0, m.Cursor().CurrentTime, 1e-9)
	require.NotEmpty(t, p.seeks)
	assert.InDelta(t, 48.0, p.seeks[len(p.seeks)-1], 1e-9)
}

func TestModel_ClickOnBarScrubsPlayhead(t *testing.T) {
	m, p := newTestModel(t, Options{})

	press(m, 17, trackRow) // 12s
	assert.True(t, m.sync.Scrubbing())
	assert.InDelta(t, 12.0, m.Cursor().CurrentTime, 1e-9)
	require.Len(t, p.seeks, 1)
	assert.InDelta(t, 12.0, p.seeks[0], 1e-9)

	// Player reports during the scrub lose.
	p.time = 3
	m.Update(tickMsg{})
	assert.InDelta(t, 12.0, m.Cursor().CurrentTime, 1e-9)

	release(m, 17)
	assert.False(t, m.sync.Scrubbing())
	m.Update(tickMsg{})
	assert.Equal(t, 3.0, m.Cursor().CurrentTime)
}

func TestModel_ScrubIsConfinedToRange(t *testing.T) {
	m, p := newTestModel(t, Options{})
	command(m, "in 10")
	command(m, "out 20")

	press(m, col(15, 60), timelineTop+components.TimelinePlayRow)
	motion(m, 79)
	assert.Equal(t, 20.0, m.Cursor().CurrentTime)
	motion(m, 0)
	assert.Equal(t, 10.0, m.Cursor().CurrentTime)
	release(m, 0)
	assert.Equal(t, 10.0, p.seeks[len(p.seeks)-1])
}

func TestModel_BlurCancelsDrag(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	press(m, col(0, 60), trackRow)
	require.True(t, m.drags.Dragging())

	m.Update(tea.BlurMsg{})
	assert.False(t, m.drags.Dragging())

	motion(m, 40)
	assert.Equal(t, 0.0, m.Range().Start)
}

func TestModel_PressOutsideTimelineIgnored(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	press(m, 10, 0)
	press(m, 10, timelineTop+components.TimelineSummaryRow)
	assert.False(t, m.drags.Dragging())
}

func TestModel_AutoPauseAtRangeEnd(t *testing.T) {
	m, p := newTestModel(t, Options{})
	command(m, "in 10")
	command(m, "out 20")

	key(m, " ")
	assert.Equal(t, playback.Playing, m.sync.State())
	assert.False(t, p.paused)
	assert.Equal(t, 10.0, p.seeks[len(p.seeks)-1])

	p.time = 15
	m.Update(tickMsg{})
	assert.Equal(t, playback.Playing, m.sync.State())

	p.time = 20.04
	m.Update(tickMsg{})
	assert.Equal(t, playback.Paused, m.sync.State())
	assert.True(t, p.paused)
}

func TestModel_RestartEpsilonFromConfig(t *testing.T) {
	resumeAt := func(opts Options) float64 {
		m, p := newTestModel(t, opts)
		command(m, "in 10")
		command(m, "out 20")
		p.time = 19.95
		m.Update(tickMsg{})
		key(m, " ")
		return p.seeks[len(p.seeks)-1]
	}

	assert.Equal(t, 10.0, resumeAt(Options{}), "default epsilon restarts near the end")

	tl := config.Default().Timeline
	tl.RestartEpsilon = 0
	assert.Equal(t, 19.95, resumeAt(Options{Timeline: tl}), "zero epsilon resumes in place")
}

func TestModel_AutoPauseWhileHoldingPlayhead(t *testing.T) {
	m, p := newTestModel(t, Options{})
	command(m, "in 10")
	command(m, "out 20")
	key(m, " ")

	press(m, col(15, 60), timelineTop+components.TimelinePlayRow)
	require.True(t, m.sync.Scrubbing())
	held := m.Cursor().CurrentTime

	p.time = 21
	m.Update(tickMsg{})
	assert.Equal(t, playback.Paused, m.sync.State())
	assert.True(t, p.paused)
	assert.Equal(t, held, m.Cursor().CurrentTime)

	release(m, col(15, 60))
	assert.False(t, m.sync.Scrubbing())
}

func TestModel_KeyboardNudgeAndMarks(t *testing.T) {
	m, p := newTestModel(t, Options{})

	key(m, "right")
	assert.InDelta(t, 0.1, m.Range().Start, 1e-9)

	key(m, "shift+left")
	assert.InDelta(t, 59.9, m.Range().End, 1e-9)

	p.time = 30
	m.Update(tickMsg{})
	key(m, "]")
	assert.InDelta(t, 30.0, m.Range().End, 1e-9)
	key(m, "r")
	assert.Equal(t, trim.Range{Start: 0, End: 60}, m.Range())
}

func TestModel_ResolvedDurationReplacesPlaceholder(t *testing.T) {
	m, _ := newTestModel(t, Options{Resolver: fakeResolver{result: resolver.Result{Duration: 93.5, Source: resolver.SourceMetadata}}})

	m.Update(m.resolveCmd()())
	assert.False(t, m.trim.IsPlaceholder())
	assert.Equal(t, trim.Range{Start: 0, End: 93.5}, m.Range())
	assert.Equal(t, resolver.SourceMetadata, m.durationSource)
}

func TestModel_PlaceholderResultKeepsPlaceholder(t *testing.T) {
	m, _ := newTestModel(t, Options{Resolver: fakeResolver{result: resolver.Result{Duration: 60, Source: resolver.SourcePlaceholder, Placeholder: true}}})
	m.Update(m.resolveCmd()())
	assert.True(t, m.trim.IsPlaceholder())
}

func TestModel_PlayerMetadataWinsOverLateResolver(t *testing.T) {
	m, p := newTestModel(t, Options{Resolver: fakeResolver{result: resolver.Result{Duration: 100, Source: resolver.SourceInfo}}})
	p.duration = 90
	m.Update(tickMsg{})
	require.Equal(t, 90.0, m.trim.Duration())

	m.Update(m.resolveCmd()())
	assert.Equal(t, 90.0, m.trim.Duration())
	assert.Equal(t, "player", m.durationSource)
}

func TestModel_LateResultsAfterCloseAreDropped(t *testing.T) {
	m, _ := newTestModel(t, Options{Resolver: fakeResolver{result: resolver.Result{Duration: 42, Source: resolver.SourceLifecycle}}})
	msg := m.resolveCmd()()
	m.Close()

	m.Update(msg)
	assert.True(t, m.trim.IsPlaceholder())
	assert.False(t, m.Alive())

	_, cmd := m.Update(tickMsg{})
	assert.Nil(t, cmd, "ticking stops after teardown")
}

func TestModel_CommitSuccess(t *testing.T) {
	c := &fakeCommitter{}
	m, p := newTestModel(t, Options{Committer: c})
	p.duration = 90
	m.Update(tickMsg{})
	command(m, "in 5")

	cmd := key(m, "s")
	require.NotNil(t, cmd)
	assert.True(t, m.committing)

	m.Update(cmd())
	assert.False(t, m.committing)
	assert.Equal(t, []trim.Range{{Start: 5, End: 90}}, c.calls)
	assert.Contains(t, m.commandInput.Result, "Queued")
	assert.Contains(t, m.commandInput.Result, "0b9f3c2e")
	assert.False(t, m.commandInput.IsError)
}

func TestModel_CommitFailureKeepsRange(t *testing.T) {
	c := &fakeCommitter{err: errors.New("service unavailable")}
	m, p := newTestModel(t, Options{Committer: c})
	p.duration = 90
	m.Update(tickMsg{})
	command(m, "in 5")

	m.Update(key(m, "s")())
	assert.True(t, m.commandInput.IsError)
	assert.Contains(t, m.commandInput.Result, "service unavailable")
	assert.Equal(t, trim.Range{Start: 5, End: 90}, m.Range())

	// Retry goes through.
	c.err = nil
	m.Update(key(m, "s")())
	assert.Len(t, c.calls, 2)
	assert.False(t, m.commandInput.IsError)
}

func TestModel_CommitRefusals(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	key(m, "s")
	assert.Equal(t, "No trim service configured", m.commandInput.Result)

	c := &fakeCommitter{}
	m, _ = newTestModel(t, Options{Committer: c})
	key(m, "s")
	assert.Equal(t, "Duration not known yet", m.commandInput.Result)
	assert.Empty(t, c.calls)
}

func TestModel_CommandErrors(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	command(m, "bogus")
	assert.True(t, m.commandInput.IsError)
	assert.Contains(t, m.commandInput.Result, "unknown command: bogus")

	command(m, "in")
	assert.Contains(t, m.commandInput.Result, "requires a time argument")

	command(m, "in abc")
	assert.True(t, m.commandInput.IsError)
	assert.Equal(t, 0.0, m.Range().Start)
}

func TestModel_StaleClearKeepsNewerToast(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	first := m.commandInput.SetResult("first", false)
	m.commandInput.SetResult("second", false)

	m.Update(clearResultMsg{id: first})
	assert.Equal(t, "second", m.commandInput.Result)

	m.Update(clearResultMsg{id: m.commandInput.ResultID})
	assert.Empty(t, m.commandInput.Result)
}

func TestModel_QuitTearsDown(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	press(m, col(0, 60), trackRow)

	cmd := key(m, "q")
	require.NotNil(t, cmd)
	assert.False(t, m.Alive())
	assert.False(t, m.drags.Dragging())
	assert.True(t, m.sync.Closed())
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t, Options{Title: "Kickoff"})
	out := m.View()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 1+components.TimelineHeight+2)
	assert.Contains(t, lines[0], "Kickoff")
	assert.Contains(t, lines[timelineTop], "Trim")

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Contains(t, m.View(), "Terminal too narrow")

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	key(m, "?")
	assert.Contains(t, m.View(), "Keybindings")
}

func TestModel_OfflinePlayerMarksDisconnected(t *testing.T) {
	m, p := newTestModel(t, Options{})
	p.offline = true
	m.Update(tickMsg{})
	assert.False(t, m.connected)
	assert.Contains(t, m.View(), "no player")
}
