package mpv

// Player adapts a Client to the playback.Player capability. Calls made while mpv
// is unreachable try to reconnect once before failing.
type Player struct {
	client *Client
}

// NewPlayer wraps client.
func NewPlayer(client *Client) *Player {
	return &Player{client: client}
}

// Client returns the wrapped IPC client.
func (p *Player) Client() *Client { return p.client }

func (p *Player) ensure() error {
	if p.client.IsConnected() {
		return nil
	}
	return p.client.Connect()
}

// Play resumes playback.
func (p *Player) Play() error {
	if err := p.ensure(); err != nil {
		return err
	}
	return p.client.SetPaused(false)
}

// Pause pauses playback.
func (p *Player) Pause() error {
	if err := p.ensure(); err != nil {
		return err
	}
	return p.client.SetPaused(true)
}

// Seek jumps to an absolute position.
func (p *Player) Seek(seconds float64) error {
	if err := p.ensure(); err != nil {
		return err
	}
	return p.client.SeekAbsolute(seconds)
}

// CurrentTime returns mpv's time-pos.
func (p *Player) CurrentTime() (float64, error) {
	if err := p.ensure(); err != nil {
		return 0, err
	}
	return p.client.GetTimePos()
}

// Duration returns mpv's duration, or ErrPropertyUnavailable before the file has loaded.
func (p *Player) Duration() (float64, error) {
	if err := p.ensure(); err != nil {
		return 0, err
	}
	return p.client.GetDuration()
}

// Paused reports mpv's pause property.
func (p *Player) Paused() (bool, error) {
	if err := p.ensure(); err != nil {
		return false, err
	}
	return p.client.GetPaused()
}
