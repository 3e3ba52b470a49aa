package player

// Host is the narrow capability surface a state mutates on its owner. The
// avatar (or any other mover entity) implements it; states never see the full
// host object.
type Host interface {
	Position() (x, y, z float64)
	SetY(y float64)

	SetJumpVelocity(v float64)
	SetJumpProgress(p float64)
	SetJumping(jumping bool)
	SetSwimming(swimming bool)
	SetCrouching(crouching bool)

	// SyncGroundReference aligns the host's landing/shadow reference altitude
	// with the current position.
	SyncGroundReference()

	// LandingSquash fires the touch-down cue consumed by animation and sound.
	LandingSquash()
}

// State is one locomotion mode. Handlers return the next state to transition
// to, or nil to stay. The jump-only hooks have no-op defaults via baseState so
// the machine never needs to inspect the concrete type.
type State interface {
	Name() string
	Enter(h Host)
	Exit(h Host)
	Update(h Host, dt float64) State
	HandleJump(h Host) State
	HandleCrouch(h Host, crouching bool)
	HandleWaterChange(h Host, inWater bool) State

	SpeedMultiplier() float64
	CanJump() bool
	CanCrouch() bool
	InAir() bool

	// Jump-only hooks; meaningful only while Jumping.
	UpdateTerrainY(y float64)
	UpdateBaseY(y float64)
	CeilingHit(h Host, maxY float64)
	JumpVelocity() float64
}

// baseState supplies the no-op defaults shared by every state.
type baseState struct{}

func (baseState) Exit(Host)                          {}
func (baseState) Update(Host, float64) State         { return nil }
func (baseState) HandleJump(Host) State              { return nil }
func (baseState) HandleCrouch(Host, bool)            {}
func (baseState) HandleWaterChange(Host, bool) State { return nil }
func (baseState) SpeedMultiplier() float64           { return 1 }
func (baseState) CanJump() bool                      { return false }
func (baseState) CanCrouch() bool                    { return false }
func (baseState) InAir() bool                        { return false }
func (baseState) UpdateTerrainY(float64)             {}
func (baseState) UpdateBaseY(float64)                {}
func (baseState) CeilingHit(Host, float64)           {}
func (baseState) JumpVelocity() float64              { return 0 }
