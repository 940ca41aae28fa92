package playback

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/trimline-cli/trim"
)

// fakePlayer records commands. CurrentTime deliberately lags: it only changes when
// the test reports a time, like a real player would.
type fakePlayer struct {
	calls    []string
	seeks    []float64
	playing  bool
	playErr  error
	pauseErr error
	seekErr  error
	duration float64
}

func (f *fakePlayer) Play() error {
	f.calls = append(f.calls, "play")
	if f.playErr != nil {
		return f.playErr
	}
	f.playing = true
	return nil
}

func (f *fakePlayer) Pause() error {
	f.calls = append(f.calls, "pause")
	if f.pauseErr != nil {
		return f.pauseErr
	}
	f.playing = false
	return nil
}

func (f *fakePlayer) Seek(seconds float64) error {
	f.calls = append(f.calls, "seek")
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakePlayer) CurrentTime() (float64, error) { return 0, nil }

func (f *fakePlayer) Duration() (float64, error) { return f.duration, nil }

func (f *fakePlayer) Paused() (bool, error) { return !f.playing, nil }

func newSync(t *testing.T, start, end, duration float64) (*Sync, *fakePlayer) {
	t.Helper()
	m := trim.New(duration, false)
	m.SetEnd(end, 0, 0)
	m.SetStart(start, 0, 0)
	require.Equal(t, trim.Range{Start: start, End: end}, m.Range())
	p := &fakePlayer{}
	return New(m, p), p
}

func TestSync_ToggleFromPausedInsideRangeResumes(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(15)

	require.NoError(t, s.TogglePlayback())
	assert.Equal(t, Playing, s.State())
	assert.Equal(t, []float64{15}, p.seeks)
	assert.Equal(t, []string{"seek", "play"}, p.calls)
	assert.True(t, s.Cursor().IsPlaying)
}

func TestSync_ToggleBeforeStartStartsAtStart(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(3)

	require.NoError(t, s.TogglePlayback())
	assert.Equal(t, []float64{10}, p.seeks)
	assert.Equal(t, 10.0, s.Cursor().CurrentTime)
}

func TestSync_ToggleNearEndRestarts(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(20 - 0.05)

	require.NoError(t, s.TogglePlayback())
	assert.Equal(t, []float64{10}, p.seeks, "within epsilon of end restarts from start")
}

func TestSync_ToggleJustOutsideEpsilonResumes(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(19.8)

	require.NoError(t, s.TogglePlayback())
	assert.Equal(t, []float64{19.8}, p.seeks)
}

func TestSync_CustomEpsilon(t *testing.T) {
	m := trim.New(60, false)
	p := &fakePlayer{}
	s := New(m, p, WithRestartEpsilon(2))
	s.OnExternalTimeUpdate(58.5)

	require.NoError(t, s.TogglePlayback())
	assert.Equal(t, []float64{0}, p.seeks)
}

func TestSync_ToggleWhilePlayingPauses(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	require.NoError(t, s.TogglePlayback())
	require.NoError(t, s.TogglePlayback())

	assert.Equal(t, Paused, s.State())
	assert.Equal(t, "pause", p.calls[len(p.calls)-1])
}

func TestSync_ToggleErrorsKeepState(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	p.playErr = errors.New("socket gone")

	err := s.TogglePlayback()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "socket gone")
	assert.Equal(t, Paused, s.State())

	p.playErr = nil
	require.NoError(t, s.TogglePlayback())
	p.pauseErr = errors.New("socket gone")
	require.Error(t, s.TogglePlayback())
	assert.Equal(t, Playing, s.State())
}

func TestSync_ToggleWithoutRange(t *testing.T) {
	s := New(trim.New(0, true), &fakePlayer{})
	assert.ErrorIs(t, s.TogglePlayback(), ErrNoRange)
}

func TestSync_TimeUpdatePastEndPausesImmediately(t *testing.T) {
	for _, reported := range []float64{20, 20.01, 45} {
		s, p := newSync(t, 10, 20, 60)
		require.NoError(t, s.TogglePlayback())

		assert.False(t, s.OnExternalTimeUpdate(19.9))
		assert.True(t, s.Cursor().IsPlaying)

		assert.True(t, s.OnExternalTimeUpdate(reported))
		assert.False(t, s.Cursor().IsPlaying)
		assert.Equal(t, Paused, s.State())
		assert.Equal(t, reported, s.Cursor().CurrentTime)
		assert.False(t, p.playing)
	}
}

func TestSync_TimeUpdatePastEndWhilePausedDoesNotSpamPause(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	assert.False(t, s.OnExternalTimeUpdate(25))
	assert.Empty(t, p.calls)
}

func TestSync_AutonomousPlaybackIsAlsoContained(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalPlay()
	assert.True(t, s.OnExternalTimeUpdate(21))
	assert.Equal(t, []string{"pause"}, p.calls)
}

func TestSync_AutoPauseFailureKeepsPlaying(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	require.NoError(t, s.TogglePlayback())
	p.pauseErr = errors.New("busy")

	assert.False(t, s.OnExternalTimeUpdate(20))
	assert.Equal(t, Playing, s.State())

	p.pauseErr = nil
	assert.True(t, s.OnExternalTimeUpdate(20.1), "the next report past the end retries")
	assert.Equal(t, Paused, s.State())
}

func TestSync_TimeUpdateNaNRetainsLastValue(t *testing.T) {
	s, _ := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(12)
	s.OnExternalTimeUpdate(math.NaN())
	assert.Equal(t, 12.0, s.Cursor().CurrentTime)
}

func TestSync_SetStartSnapsPlayheadForward(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(15)

	r := s.SetStart(18, 1, 300)
	assert.LessOrEqual(t, r.Start, 19.5)
	assert.Equal(t, 18.0, r.Start)
	assert.Equal(t, 18.0, s.Cursor().CurrentTime)
	assert.Equal(t, []float64{18}, p.seeks)
}

func TestSync_SetStartBehindPlayheadDoesNotSeek(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(15)

	s.SetStart(12, 12, 300)
	assert.Equal(t, 15.0, s.Cursor().CurrentTime)
	assert.Empty(t, p.seeks)
}

func TestSync_SetEndSnapsPlayheadBack(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(18)

	r := s.SetEnd(14, 12, 300)
	assert.Equal(t, 14.0, r.End)
	assert.Equal(t, 14.0, s.Cursor().CurrentTime)
	assert.Equal(t, []float64{14}, p.seeks)
}

func TestSync_ScrubOwnsCursor(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(12)

	s.BeginScrub()
	assert.True(t, s.Scrubbing())
	assert.Equal(t, 16.0, s.ScrubTo(16))
	assert.Equal(t, 20.0, s.ScrubTo(55), "scrub is confined to the trim window")
	assert.Equal(t, 10.0, s.ScrubTo(1))

	// A stale player report during the scrub loses.
	s.OnExternalTimeUpdate(12)
	assert.Equal(t, 10.0, s.Cursor().CurrentTime)
	assert.Equal(t, []float64{16, 20, 10}, p.seeks)

	s.EndScrub()
	s.OnExternalTimeUpdate(10.4)
	assert.Equal(t, 10.4, s.Cursor().CurrentTime)
}

func TestSync_ScrubStillPausesPastEnd(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(12)
	require.NoError(t, s.TogglePlayback())

	s.BeginScrub()
	s.ScrubTo(19.9)

	assert.False(t, s.OnExternalTimeUpdate(19.95), "inside the range nothing happens")
	assert.True(t, s.Cursor().IsPlaying)

	assert.True(t, s.OnExternalTimeUpdate(20.5))
	assert.False(t, s.Cursor().IsPlaying)
	assert.Equal(t, Paused, s.State())
	assert.Equal(t, 19.9, s.Cursor().CurrentTime, "the scrub keeps the cursor")
	assert.Equal(t, []string{"seek", "play", "seek", "pause"}, p.calls)

	assert.False(t, s.OnExternalTimeUpdate(25), "already paused")
	assert.Equal(t, "pause", p.calls[len(p.calls)-1])
	assert.Len(t, p.calls, 4)
}

func TestSync_LoadedMetadataReplacesPlaceholder(t *testing.T) {
	m := trim.NewPlaceholder()
	m.SetStart(5, 0, 0)
	s := New(m, &fakePlayer{})

	assert.True(t, s.OnExternalLoadedMetadata(93.2))
	assert.Equal(t, trim.Range{Start: 0, End: 93.2}, m.Range())
	assert.False(t, m.IsPlaceholder())

	assert.False(t, s.OnExternalLoadedMetadata(10), "real duration is final")
	assert.Equal(t, 93.2, m.Duration())
}

func TestSync_LoadedMetadataIgnoresZero(t *testing.T) {
	m := trim.NewPlaceholder()
	s := New(m, &fakePlayer{})
	assert.False(t, s.OnExternalLoadedMetadata(0))
	assert.True(t, m.IsPlaceholder())
}

func TestSync_LoadedMetadataClampsCursor(t *testing.T) {
	m := trim.NewPlaceholder()
	s := New(m, &fakePlayer{})
	s.OnExternalTimeUpdate(50)

	s.OnExternalLoadedMetadata(30)
	assert.Equal(t, 30.0, s.Cursor().CurrentTime)
}

func TestSync_SetDuration(t *testing.T) {
	m := trim.NewPlaceholder()
	s := New(m, &fakePlayer{})
	s.OnExternalTimeUpdate(45)

	assert.True(t, s.SetDuration(40, false))
	assert.Equal(t, 40.0, s.Cursor().CurrentTime)
	assert.False(t, m.IsPlaceholder())
}

func TestSync_ClosedIgnoresEverything(t *testing.T) {
	s, p := newSync(t, 10, 20, 60)
	s.OnExternalTimeUpdate(12)
	s.Close()

	assert.False(t, s.OnExternalTimeUpdate(30))
	assert.False(t, s.OnExternalLoadedMetadata(90))
	s.OnExternalPlay()
	assert.ErrorIs(t, s.TogglePlayback(), ErrClosed)
	assert.Equal(t, 12.0, s.Cursor().CurrentTime)
	assert.Equal(t, Paused, s.State())
	assert.Empty(t, p.calls)
}

func TestSync_ExternalPlayPause(t *testing.T) {
	s, _ := newSync(t, 10, 20, 60)
	s.OnExternalPlay()
	assert.Equal(t, Playing, s.State())
	s.OnExternalPause()
	assert.Equal(t, Paused, s.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "playing", Playing.String())
}
