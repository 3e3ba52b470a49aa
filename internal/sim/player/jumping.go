package player

import (
	"math"

	"blockstride.dev/internal/sim/physics"
)

// Jumping covers both jumps and falls: a launch velocity of 0 (or below) is a
// pure gravity drop. baseY is the altitude the mover must come back to on a
// true jump; for drops it is the NoBaseY sentinel so only the tracked terrain
// height decides the landing. terrainY is refreshed by the host every frame.
type Jumping struct {
	baseState
	velocity float64
	baseY    float64
	terrainY float64
}

func NewJumping(velocity float64) *Jumping {
	return &Jumping{
		velocity: velocity,
		baseY:    physics.NoBaseY,
		terrainY: physics.NoBaseY,
	}
}

// Name reflects the current velocity sign, re-evaluated on every query.
func (j *Jumping) Name() string {
	if j.velocity > 0 {
		return "jumping"
	}
	return "falling"
}

func (j *Jumping) Enter(h Host) {
	if j.velocity > 0 {
		_, y, _ := h.Position()
		j.baseY = y
	}
	h.SetJumping(true)
	h.SetCrouching(false)
	h.SetJumpVelocity(j.velocity)
}

func (j *Jumping) Update(h Host, dt float64) State {
	_, y, _ := h.Position()
	y += physics.VerticalMovement(j.velocity, dt)
	j.velocity = physics.ApplyGravity(j.velocity, dt)
	h.SetJumpVelocity(j.velocity)
	h.SetJumpProgress(physics.JumpProgress(y, j.baseY))

	landingY := math.Max(j.baseY, j.terrainY)
	if physics.HasLanded(y, landingY, j.velocity) {
		h.SetY(landingY)
		h.LandingSquash()
		return NewGrounded()
	}
	h.SetY(y)
	return nil
}

func (j *Jumping) HandleWaterChange(h Host, inWater bool) State {
	if inWater {
		// Splashing down cuts the jump short.
		return NewSwimming()
	}
	return nil
}

// UpdateBaseY raises the fallback reference altitude, never lowers it, so a
// mover drifting up a slope mid-jump does not land inside it.
func (j *Jumping) UpdateBaseY(y float64) {
	if y > j.baseY {
		j.baseY = y
	}
}

func (j *Jumping) UpdateTerrainY(y float64) {
	j.terrainY = y
}

// CeilingHit clamps an ascending mover under the obstruction and replaces the
// velocity with a small downward push instead of zeroing it, so the mover
// starts falling at once.
func (j *Jumping) CeilingHit(h Host, maxY float64) {
	if j.velocity <= 0 {
		return
	}
	h.SetY(maxY)
	j.velocity = physics.CeilingBounceVelocity
	h.SetJumpVelocity(j.velocity)
}

func (j *Jumping) JumpVelocity() float64 { return j.velocity }
func (j *Jumping) InAir() bool           { return true }
func (j *Jumping) BaseY() float64        { return j.baseY }
func (j *Jumping) TerrainY() float64     { return j.terrainY }
