package sim

// Clock tracks simulated seconds since start. A paused clock swallows time.
type Clock struct {
	elapsed float64
	frames  uint64
	paused  bool
}

// Tick advances the clock by dt and returns the time that actually passed.
func (c *Clock) Tick(dt float64) float64 {
	c.frames++
	if c.paused || dt <= 0 {
		return 0
	}
	c.elapsed += dt
	return dt
}

// Elapsed returns simulated seconds since start.
func (c *Clock) Elapsed() float64 { return c.elapsed }

// Frames returns the number of ticks, paused ones included.
func (c *Clock) Frames() uint64 { return c.frames }

// Paused reports whether time is frozen.
func (c *Clock) Paused() bool { return c.paused }

// SetPaused freezes or resumes time.
func (c *Clock) SetPaused(paused bool) { c.paused = paused }
