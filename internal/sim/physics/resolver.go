package physics

import "math"

// State is the read-only mover snapshot a Resolver call works against. The
// resolver never mutates it; results come back as values.
type State struct {
	X, Y, Z      float64
	Jumping      bool
	Swimming     bool
	Crouching    bool
	JumpVelocity float64
}

// MovementResult is the outcome of a TryMove call. Callers must check Moved
// before applying the new coordinates.
type MovementResult struct {
	NewX, NewY, NewZ float64
	Moved            bool
	ShouldFall       bool
	Block            *Block
}

// Resolver performs collision-aware horizontal movement against a World. It
// is stateless per call apart from the tunable water surface offset.
type Resolver struct {
	world        World
	waterYOffset float64
}

func NewResolver(w World) *Resolver {
	return &Resolver{world: w}
}

// SetWaterYOffset adjusts the swim surface altitude at runtime. Debug tuning
// hook; writes must come from the owning loop.
func (r *Resolver) SetWaterYOffset(off float64) {
	r.waterYOffset = off
}

func (r *Resolver) WaterYOffset() float64 {
	return r.waterYOffset
}

// TryMove resolves a desired horizontal delta against terrain. The full
// diagonal move is attempted first; if blocked, each axis is retried alone so
// the mover slides along walls. A blocked move returns the current position
// with Moved=false.
func (r *Resolver) TryMove(st State, dx, dz float64) MovementResult {
	if res, ok := r.resolveStep(st, st.X+dx, st.Z+dz); ok {
		return res
	}
	if dx != 0 {
		if res, ok := r.resolveStep(st, st.X+dx, st.Z); ok {
			return res
		}
	}
	if dz != 0 {
		if res, ok := r.resolveStep(st, st.X, st.Z+dz); ok {
			return res
		}
	}
	return MovementResult{NewX: st.X, NewY: st.Y, NewZ: st.Z}
}

// resolveStep checks a single candidate destination. ok is false when the
// move is blocked by collision or vetoed by the crouch edge guard.
func (r *Resolver) resolveStep(st State, tx, tz float64) (MovementResult, bool) {
	// Swimmers sample the raw surface height so shorelines stay reachable;
	// walkers use the player-clipped height so overhangs are not climbable.
	var h float64
	if st.Swimming {
		h = r.world.HeightAt(tx, tz)
	} else {
		h = r.world.HeightAtForPlayer(tx, tz, st.Y)
	}

	blk, haveBlock := r.world.BlockAt(tx, h, tz)
	isWater := haveBlock && blk.Liquid

	targetY := h + 1
	if isWater {
		targetY = h + WaterSurfaceHeight + r.waterYOffset
	}
	heightDiff := targetY - st.Y

	// Dropping into a hole or already airborne: check collision at the current
	// altitude, not the target, so walls around the hole do not read as a hit.
	collisionY := targetY
	if heightDiff < StepDownThreshold || st.Jumping {
		collisionY = st.Y
	}
	if r.world.CheckCollision(tx, collisionY, tz, PlayerWidth, PlayerHeight) {
		return MovementResult{}, false
	}

	shouldFall := heightDiff < -FallThreshold && !st.Jumping && !st.Swimming

	newY := targetY
	if st.Crouching && shouldFall && !isWater {
		if !r.world.CanStandAt(tx, st.Y, tz) {
			// Sneaking over a ledge with no corner support: veto the move.
			return MovementResult{}, false
		}
		// A corner still carries the mover: lean over the edge at the current
		// altitude instead of dropping.
		newY = st.Y
		shouldFall = false
	}

	res := MovementResult{
		NewX:       tx,
		NewY:       newY,
		NewZ:       tz,
		Moved:      true,
		ShouldFall: shouldFall,
	}
	if haveBlock {
		b := blk
		res.Block = &b
	}
	return res, true
}

// TargetY computes the altitude a mover would settle at over (x, z).
func (r *Resolver) TargetY(x, z, playerY float64, swimming bool) float64 {
	var h float64
	if swimming {
		h = r.world.HeightAt(x, z)
	} else {
		h = r.world.HeightAtForPlayer(x, z, playerY)
	}
	if blk, ok := r.world.BlockAt(x, h, z); ok && blk.Liquid {
		return h + WaterSurfaceHeight + r.waterYOffset
	}
	return h + 1
}

// IsOverWater reports whether the column surface under (x, z) is liquid.
func (r *Resolver) IsOverWater(x, z float64) bool {
	h := r.world.HeightAt(x, z)
	blk, ok := r.world.BlockAt(x, h, z)
	return ok && blk.Liquid
}

// IsInWater reports whether a mover at the given position sits at or below
// the local water surface.
func (r *Resolver) IsInWater(x, y, z float64) bool {
	if !r.IsOverWater(x, z) {
		return false
	}
	surface := r.world.HeightAt(x, z) + WaterSurfaceHeight + r.waterYOffset
	return y <= surface+WaterEpsilon
}

func (r *Resolver) CanStand(x, y, z float64) bool {
	return r.world.CanStandAt(x, y, z)
}

// BlockAtFeet returns the block directly under the mover, or nil over air.
func (r *Resolver) BlockAtFeet(st State) *Block {
	blk, ok := r.world.BlockAt(st.X, st.Y-1, st.Z)
	if !ok {
		return nil
	}
	return &blk
}

// ApplyGravity returns the vertical velocity after dt of free fall.
func ApplyGravity(velocity, dt float64) float64 {
	return velocity - Gravity*dt
}

// VerticalMovement returns the altitude change for dt at the given velocity.
func VerticalMovement(velocity, dt float64) float64 {
	return velocity * dt
}

// CheckCeiling reports a head collision at the given position together with
// the highest altitude the mover can occupy below the obstruction.
func (r *Resolver) CheckCeiling(x, y, z float64) (bool, float64) {
	if !r.world.CheckHeadCollision(x, y, z, PlayerWidth, PlayerHeight) {
		return false, 0
	}
	blockBottom := math.Floor(y + PlayerHeight)
	return true, blockBottom - PlayerHeight
}

// JumpProgress maps an altitude gained over baseY to [0, 1] against the
// canonical jump arc. The denominator always uses the default launch velocity
// so progress measures the standard arc regardless of how the jump started.
func JumpProgress(currentY, baseY float64) float64 {
	maxHeight := JumpVelocity * JumpVelocity / (2 * Gravity)
	p := (currentY - baseY) / maxHeight
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// HasLanded reports whether a mover descending past targetY has touched down.
func HasLanded(currentY, targetY, velocity float64) bool {
	return currentY <= targetY && velocity < 0
}

// SpeedMultiplier returns the horizontal speed factor for the given movement
// flags. Swimming takes priority over crouching.
func SpeedMultiplier(crouching, swimming bool) float64 {
	if swimming {
		return SwimSpeedMultiplier
	}
	if crouching {
		return CrouchSpeedMultiplier
	}
	return 1
}
