// Package tui hosts the trim timeline in a bubbletea program.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/user/trimline-cli/api"
	"github.com/user/trimline-cli/config"
	"github.com/user/trimline-cli/drag"
	"github.com/user/trimline-cli/logging"
	"github.com/user/trimline-cli/playback"
	"github.com/user/trimline-cli/resolver"
	"github.com/user/trimline-cli/trim"
	"github.com/user/trimline-cli/tui/components"
)

const (
	// tickInterval is the interval for polling mpv status.
	tickInterval = 100 * time.Millisecond
	// resultDisplayDuration is how long to show command results.
	resultDisplayDuration = 3 * time.Second
	// resolveTimeout bounds the whole duration fallback chain.
	resolveTimeout = 20 * time.Second
	// commitTimeout bounds a commit request.
	commitTimeout = 10 * time.Second
	// mousePointer is the pointer id of the terminal mouse. Terminals report a single pointer.
	mousePointer = 1
	// timelineTop is the screen row of the timeline's top border.
	timelineTop = 1
	// minTerminalWidth is the narrowest terminal the timeline is drawn in.
	minTerminalWidth = 40
)

// tickMsg is a message sent on every tick interval to update playback status.
type tickMsg time.Time

// clearResultMsg is sent to clear a command result message.
type clearResultMsg struct{ id int }

// durationResolvedMsg carries a resolver result back to the event loop.
type durationResolvedMsg struct {
	session int
	result  resolver.Result
}

// commitDoneMsg carries the outcome of a commit request.
type commitDoneMsg struct {
	session  int
	rng      trim.Range
	accepted *api.TrimAccepted
	err      error
}

// DurationResolver finds an asset's duration. *resolver.Resolver satisfies it.
type DurationResolver interface {
	Resolve(ctx context.Context, assetID string) resolver.Result
}

// Committer queues a cut of an asset. *api.Client satisfies it.
type Committer interface {
	CommitTrim(ctx context.Context, assetID string, start, end float64) (*api.TrimAccepted, error)
}

// Options configures a Model.
type Options struct {
	AssetID   string
	Title     string
	Player    playback.Player
	Resolver  DurationResolver
	Committer Committer
	Timeline  config.TimelineConfig
	Logger    *zerolog.Logger
}

// Model is the Bubbletea model for the trim timeline.
// It implements the tea.Model interface with Init, Update, and View methods.
type Model struct {
	// asset being trimmed
	assetID string
	title   string
	// trim range and its playback binding
	trim *trim.Model
	sync *playback.Sync
	// pointer capture for the three handles
	drags *drag.Dispatcher
	// external collaborators; either may be nil
	resolver  DurationResolver
	committer Committer
	// player is polled every tick
	player playback.Player
	// timeline interaction settings
	minGapCells int
	nudgeStep   float64
	// durationSource names where the current duration came from
	durationSource string
	// connected reports whether the last poll reached the player
	connected bool
	// session is bumped whenever pending async results must be discarded
	session int
	// alive is false once the model has been torn down
	alive bool
	// committing is true while a commit request is in flight
	committing bool
	// quitting flag to signal shutdown
	quitting bool
	// terminal width
	width int
	// terminal height
	height int
	// command input state, also used for toasts
	commandInput components.CommandInputState
	// showHelp indicates if the help overlay is visible
	showHelp bool
	logger   zerolog.Logger
}

// NewModel creates a model for one asset. The duration starts as the configured
// placeholder until the resolver or the player reports the real one.
func NewModel(opts Options) *Model {
	logger := logging.WithComponent("tui")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str(logging.FieldAssetID, opts.AssetID).Logger()

	// An unset timeline section gets the defaults; a loaded one has been validated,
	// so a zero restart epsilon is taken as configured.
	tl := opts.Timeline
	if tl == (config.TimelineConfig{}) {
		tl = config.Default().Timeline
	}
	placeholder := tl.PlaceholderDuration
	if placeholder <= 0 {
		placeholder = trim.PlaceholderDuration
	}
	nudge := tl.NudgeStep
	if nudge <= 0 {
		nudge = 0.1
	}
	epsilon := tl.RestartEpsilon

	model := trim.New(placeholder, true)
	return &Model{
		assetID:        opts.AssetID,
		title:          opts.Title,
		trim:           model,
		sync:           playback.New(model, opts.Player, playback.WithRestartEpsilon(epsilon), playback.WithLogger(logger)),
		drags:          drag.NewDispatcher(logger),
		resolver:       opts.Resolver,
		committer:      opts.Committer,
		player:         opts.Player,
		minGapCells:    tl.MinGapCells,
		nudgeStep:      nudge,
		durationSource: resolver.SourcePlaceholder,
		alive:          true,
		logger:         logger,
	}
}

// Init starts polling the player and resolving the duration.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.resolveCmd())
}

// tickCmd returns a command that sends a tickMsg after the tick interval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clearResultCmd(id int) tea.Cmd {
	return tea.Tick(resultDisplayDuration, func(time.Time) tea.Msg {
		return clearResultMsg{id: id}
	})
}

// resolveCmd runs the duration fallback chain off the event loop.
func (m *Model) resolveCmd() tea.Cmd {
	if m.resolver == nil {
		return nil
	}
	session, r, id := m.session, m.resolver, m.assetID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()
		return durationResolvedMsg{session: session, result: r.Resolve(ctx, id)}
	}
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.alive {
			return m, nil
		}
		m.poll()
		return m, tickCmd()

	case clearResultMsg:
		m.commandInput.ClearResult(msg.id)
		return m, nil

	case durationResolvedMsg:
		m.applyDuration(msg)
		return m, nil

	case commitDoneMsg:
		return m, m.finishCommit(msg)

	case tea.BlurMsg:
		// Focus loss is the only signal that a release may never arrive.
		if n := m.drags.CancelAll(); n > 0 {
			m.logger.Debug().Int("sessions", n).Msg("drags cancelled on focus loss")
		}
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.commandInput.Active {
			return m.handleCommandInput(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// poll samples the player and replays the sample into the sync.
func (m *Model) poll() {
	if m.player == nil {
		return
	}
	obs := playback.Observe(m.player)
	m.connected = obs.HasTime || obs.HasPaused
	wasPlaceholder := m.trim.IsPlaceholder()
	if m.sync.Apply(obs) {
		m.logger.Debug().Float64(logging.FieldTime, obs.Time).Msg("paused at range end")
	}
	if wasPlaceholder && !m.trim.IsPlaceholder() {
		m.durationSource = "player"
	}
}

// applyDuration takes a resolver result. The first real duration wins, whether it
// comes from the resolver or from the player's metadata.
func (m *Model) applyDuration(msg durationResolvedMsg) {
	if !m.alive || msg.session != m.session {
		m.logger.Debug().Msg("discarding stale duration result")
		return
	}
	res := msg.result
	if res.Placeholder {
		if m.trim.IsPlaceholder() {
			m.sync.SetDuration(res.Duration, true)
		}
		return
	}
	if !m.trim.IsPlaceholder() {
		m.logger.Debug().
			Str(logging.FieldSource, res.Source).
			Float64(logging.FieldDuration, res.Duration).
			Msg("duration already known, ignoring resolver result")
		return
	}
	m.sync.SetDuration(res.Duration, false)
	m.durationSource = res.Source
	m.logger.Info().
		Str(logging.FieldSource, res.Source).
		Float64(logging.FieldDuration, res.Duration).
		Msg("duration resolved")
}

// Close tears the model down: drags are released, the sync stops reacting and any
// async result still in flight is dropped when it lands.
func (m *Model) Close() {
	if !m.alive {
		return
	}
	m.alive = false
	m.session++
	m.drags.CancelAll()
	m.sync.Close()
}

// Alive reports whether Close has not been called.
func (m *Model) Alive() bool { return m.alive }

// Range returns the current trim range.
func (m *Model) Range() trim.Range { return m.trim.Range() }

// Cursor returns the playback cursor.
func (m *Model) Cursor() playback.Cursor { return m.sync.Cursor() }

func (m *Model) toast(msg string, isError bool) tea.Cmd {
	id := m.commandInput.SetResult(msg, isError)
	return clearResultCmd(id)
}

// Run starts the Bubbletea program for the given options.
// It returns an error if the program fails to start or run.
func Run(opts Options) error {
	model := NewModel(opts)
	defer model.Close()
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}
