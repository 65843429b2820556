package macro

import (
	"time"

	"github.com/dshills/deckmacro/internal/input/replay"
)

// RampWindow is the longest pause between gestures that still ramps up.
const RampWindow = 100 * time.Millisecond

// rampState is the per-instance acceleration record.
type rampState struct {
	lastInvocationAt time.Time
	lastDirection    replay.Direction
	multiplier       uint32
}

// RampController computes accelerated wheel distances per binding instance.
type RampController struct {
	states *Registry[rampState]
	now    func() time.Time
}

// NewRampController creates a controller. A nil clock uses time.Now.
func NewRampController(now func() time.Time) *RampController {
	if now == nil {
		now = time.Now
	}
	return &RampController{
		states: NewRegistry(func() rampState { return rampState{multiplier: 1} }),
		now:    now,
	}
}

// Next returns the number of wheel clicks for a gesture on id.
//
// If the previous gesture finished less than RampWindow ago and went the
// same direction, the multiplier grows by one up to maxMultiplier; otherwise
// it drops back to 1. The result is baseClicks times the multiplier.
func (c *RampController) Next(id InstanceID, dir replay.Direction, baseClicks, maxMultiplier uint32) uint32 {
	baseClicks = max(baseClicks, 1)
	maxMultiplier = max(maxMultiplier, 1)
	now := c.now()

	var clicks uint32
	c.states.With(id, func(s *rampState) {
		if now.Sub(s.lastInvocationAt) < RampWindow && dir == s.lastDirection {
			s.multiplier = min(s.multiplier+1, maxMultiplier)
		} else {
			s.multiplier = 1
		}
		s.lastDirection = dir
		clicks = baseClicks * s.multiplier
	})
	return clicks
}

// Finish records that a gesture on id has emitted its last click.
// The ramp window for the next gesture starts here.
func (c *RampController) Finish(id InstanceID) {
	now := c.now()
	c.states.With(id, func(s *rampState) {
		s.lastInvocationAt = now
	})
}

// Multiplier returns the current multiplier for id.
func (c *RampController) Multiplier(id InstanceID) uint32 {
	m := uint32(1)
	c.states.Peek(id, func(s *rampState) {
		m = s.multiplier
	})
	return m
}
