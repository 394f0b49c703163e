package room

import (
	"time"

	"github.com/sabca0328/chess-ai-game/internal/engine"
)

// DefaultClockSeconds is the per-side budget of a fresh game.
const DefaultClockSeconds = 600

// Clock holds per-side remaining time. There is no background ticker:
// elapsed wall time is charged lazily to the active side at the next state
// transition (an accepted move, a status poll, or the registry's flag-fall
// sweep).
type Clock struct {
	White      time.Duration
	Black      time.Duration
	Active     engine.Color
	Running    bool
	LastUpdate time.Time
}

func newClock(seconds int) Clock {
	if seconds <= 0 {
		seconds = DefaultClockSeconds
	}
	d := time.Duration(seconds) * time.Second
	return Clock{White: d, Black: d, Active: engine.White}
}

func (c *Clock) start(now time.Time) {
	c.Active = engine.White
	c.Running = true
	c.LastUpdate = now
}

func (c *Clock) stop() {
	c.Running = false
}

// charge books the wall time since LastUpdate against the active side,
// clamping at zero. It reports whether the active side's flag fell.
func (c *Clock) charge(now time.Time) bool {
	if !c.Running {
		return false
	}
	elapsed := now.Sub(c.LastUpdate)
	if elapsed < 0 {
		elapsed = 0
	}
	rem := c.remaining(c.Active) - elapsed
	if rem < 0 {
		rem = 0
	}
	c.setRemaining(c.Active, rem)
	c.LastUpdate = now
	return rem == 0
}

// flip hands the clock to the other side after an accepted move.
func (c *Clock) flip(now time.Time) {
	c.Active = c.Active.Other()
	c.LastUpdate = now
}

func (c *Clock) remaining(col engine.Color) time.Duration {
	if col == engine.White {
		return c.White
	}
	return c.Black
}

func (c *Clock) setRemaining(col engine.Color, d time.Duration) {
	if col == engine.White {
		c.White = d
	} else {
		c.Black = d
	}
}
