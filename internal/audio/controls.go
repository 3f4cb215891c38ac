package audio

import "context"

// Controls is the caller-side state of an audio control panel. It remembers
// the last non-zero volume so unmuting restores it. Not safe for concurrent use.
type Controls struct {
	sb         *Switchboard
	lastVolume float64
}

// NewControls returns Controls driving sb.
func NewControls(sb *Switchboard) *Controls {
	return &Controls{sb: sb, lastVolume: sb.State().Volume}
}

// TogglePlayPause pauses when playing and plays otherwise.
func (c *Controls) TogglePlayPause(ctx context.Context) error {
	if c.sb.State().IsPlaying {
		c.sb.Pause()
		return nil
	}
	return c.sb.Play(ctx)
}

// ToggleMute mutes, storing the current volume, or unmutes and restores it.
func (c *Controls) ToggleMute() {
	st := c.sb.State()
	if st.IsMuted {
		c.sb.SetMuted(false)
		c.sb.SetVolume(c.lastVolume)
		return
	}
	if st.Volume > 0 {
		c.lastVolume = st.Volume
	}
	c.sb.SetMuted(true)
}

// ChangeVolume sets a new volume and remembers it for the next unmute.
func (c *Controls) ChangeVolume(v float64) {
	v = clamp01(v)
	if v > 0 {
		c.lastVolume = v
	}
	c.sb.SetVolume(v)
}

// LastVolume returns the volume ToggleMute restores on unmute.
func (c *Controls) LastVolume() float64 {
	return c.lastVolume
}
