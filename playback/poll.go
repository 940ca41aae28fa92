package playback

// Observation is one sample of the player's observable state. Players that only
// expose properties (no event stream) are sampled on a timer and the sample is
// replayed into the Sync as the equivalent events.
type Observation struct {
	Time        float64
	HasTime     bool
	Duration    float64
	HasDuration bool
	Paused      bool
	HasPaused   bool
}

// Observe samples p. Properties the player cannot report yet (nothing loaded,
// connection hiccup) are left unset so the last known values are retained.
func Observe(p Player) Observation {
	var obs Observation
	if paused, err := p.Paused(); err == nil {
		obs.Paused, obs.HasPaused = paused, true
	}
	if d, err := p.Duration(); err == nil && d > 0 {
		obs.Duration, obs.HasDuration = d, true
	}
	if t, err := p.CurrentTime(); err == nil {
		obs.Time, obs.HasTime = t, true
	}
	return obs
}

// Apply replays an observation as player events in the order a media element would
// emit them: play/pause, loadedmetadata, timeupdate. It reports whether the time
// update triggered an automatic pause at the range end.
func (s *Sync) Apply(obs Observation) bool {
	if s.closed {
		return false
	}
	if obs.HasPaused {
		if obs.Paused {
			s.OnExternalPause()
		} else {
			s.OnExternalPlay()
		}
	}
	if obs.HasDuration {
		s.OnExternalLoadedMetadata(obs.Duration)
	}
	if obs.HasTime {
		return s.OnExternalTimeUpdate(obs.Time)
	}
	return false
}
