package player

import "blockstride.dev/internal/sim/physics"

// Swimming is a pure marker state; vertical motion in water is handled
// outside the jump mechanism.
type Swimming struct {
	baseState
}

func NewSwimming() *Swimming {
	return &Swimming{}
}

func (s *Swimming) Name() string { return "swimming" }

func (s *Swimming) Enter(h Host) {
	h.SetSwimming(true)
	h.SetCrouching(false)
	h.SetJumping(false)
}

func (s *Swimming) Exit(h Host) {
	h.SetSwimming(false)
}

func (s *Swimming) HandleWaterChange(h Host, inWater bool) State {
	if !inWater {
		return NewGrounded()
	}
	return nil
}

func (s *Swimming) SpeedMultiplier() float64 {
	return physics.SwimSpeedMultiplier
}
