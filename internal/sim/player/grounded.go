package player

import "blockstride.dev/internal/sim/physics"

// Grounded is the default locomotion state. Crouching is a sub-state flag,
// not a separate state object.
type Grounded struct {
	baseState
	crouching bool
}

func NewGrounded() *Grounded {
	return &Grounded{}
}

func (g *Grounded) Name() string {
	if g.crouching {
		return "crouching"
	}
	return "grounded"
}

func (g *Grounded) Enter(h Host) {
	h.SetJumpVelocity(0)
	h.SetJumpProgress(0)
	h.SetJumping(false)
	h.SetSwimming(false)
	h.SyncGroundReference()
}

func (g *Grounded) Exit(h Host) {
	g.crouching = false
	h.SetCrouching(false)
}

func (g *Grounded) HandleJump(h Host) State {
	if g.crouching {
		return nil
	}
	return NewJumping(physics.JumpVelocity)
}

func (g *Grounded) HandleCrouch(h Host, crouching bool) {
	g.crouching = crouching
	h.SetCrouching(crouching)
}

func (g *Grounded) HandleWaterChange(h Host, inWater bool) State {
	if inWater {
		return NewSwimming()
	}
	return nil
}

func (g *Grounded) SpeedMultiplier() float64 {
	if g.crouching {
		return physics.CrouchSpeedMultiplier
	}
	return 1
}

func (g *Grounded) CanJump() bool   { return !g.crouching }
func (g *Grounded) CanCrouch() bool { return true }

func (g *Grounded) Crouching() bool { return g.crouching }
