package physics

const (
	// JumpVelocity is the launch velocity of a standing jump, in blocks/s.
	JumpVelocity = float64(10.0)
	// Gravity is the downward acceleration applied to airborne movers, in blocks/s^2.
	Gravity = float64(25.0)

	CrouchSpeedMultiplier = float64(0.3)
	SwimSpeedMultiplier   = float64(0.7)

	// WaterSurfaceHeight is where a swimmer floats inside a water block,
	// measured from the block bottom.
	WaterSurfaceHeight = float64(7.0) / 9.0

	PlayerWidth  = float64(0.6)
	PlayerHeight = float64(1.8)

	// FallThreshold is the drop below which leaving a block edge still counts
	// as walking; anything deeper starts a fall.
	FallThreshold = float64(0.5)
	// StepDownThreshold marks the height difference under which a move is
	// resolved as a step down rather than level ground.
	StepDownThreshold = float64(-0.1)

	// CeilingBounceVelocity replaces an ascending jump velocity on head
	// contact so the mover visibly drops instead of hovering under the block.
	CeilingBounceVelocity = float64(-0.5)

	// NoBaseY is the fallback reference altitude for falls that have no jump
	// origin; far below any generated terrain so only tracked terrain height
	// decides the landing.
	NoBaseY = float64(-1000.0)

	// WaterEpsilon pads the in-water check so a mover bobbing exactly at the
	// surface still counts as submerged.
	WaterEpsilon = float64(0.05)
)
