package player

// StateMachine owns the active locomotion state for one mover and mediates
// every transition. Exactly one state is active at any time; a transition
// always runs exit on the old state before enter on the new one.
type StateMachine struct {
	host  Host
	state State
}

// NewStateMachine builds a machine for the host and enters the initial state.
// A nil initial state defaults to Grounded.
func NewStateMachine(h Host, initial State) *StateMachine {
	if initial == nil {
		initial = NewGrounded()
	}
	m := &StateMachine{host: h, state: initial}
	initial.Enter(h)
	return m
}

func (m *StateMachine) transition(next State) {
	m.state.Exit(m.host)
	m.state = next
	next.Enter(m.host)
}

// Update advances the active state by dt and performs the transition it
// requests, if any.
func (m *StateMachine) Update(dt float64) {
	if next := m.state.Update(m.host, dt); next != nil {
		m.transition(next)
	}
}

// HandleJump forwards a jump request. Reports whether a transition happened;
// false means the jump was denied (crouching, airborne, or swimming).
func (m *StateMachine) HandleJump() bool {
	next := m.state.HandleJump(m.host)
	if next == nil {
		return false
	}
	m.transition(next)
	return true
}

// HandleCrouch forwards the crouch flag; never causes a transition.
func (m *StateMachine) HandleCrouch(crouching bool) {
	m.state.HandleCrouch(m.host, crouching)
}

// HandleWaterChange reports whether entering or leaving water changed state.
func (m *StateMachine) HandleWaterChange(inWater bool) bool {
	next := m.state.HandleWaterChange(m.host, inWater)
	if next == nil {
		return false
	}
	m.transition(next)
	return true
}

// HandleFall forces a pure gravity drop when walking off an edge. Only valid
// from Grounded; reports whether it fired.
func (m *StateMachine) HandleFall() bool {
	if _, ok := m.state.(*Grounded); !ok {
		return false
	}
	m.transition(NewJumping(0))
	return true
}

// ForceState performs an unconditional transition for authoritative overrides.
func (m *StateMachine) ForceState(next State) {
	m.transition(next)
}

// UpdateTerrainY refreshes the tracked ground height below the mover. No-op
// outside Jumping.
func (m *StateMachine) UpdateTerrainY(y float64) {
	m.state.UpdateTerrainY(y)
}

// UpdateBaseY raises the jump's fallback reference altitude. No-op outside
// Jumping.
func (m *StateMachine) UpdateBaseY(y float64) {
	m.state.UpdateBaseY(y)
}

// HandleCeilingHit clamps an ascending jump under an obstruction. No-op
// outside Jumping.
func (m *StateMachine) HandleCeilingHit(maxY float64) {
	m.state.CeilingHit(m.host, maxY)
}

// JumpVelocity returns the current vertical velocity, 0 outside Jumping.
func (m *StateMachine) JumpVelocity() float64 {
	return m.state.JumpVelocity()
}

func (m *StateMachine) SpeedMultiplier() float64 { return m.state.SpeedMultiplier() }
func (m *StateMachine) CanJump() bool            { return m.state.CanJump() }
func (m *StateMachine) CanCrouch() bool          { return m.state.CanCrouch() }
func (m *StateMachine) StateName() string        { return m.state.Name() }
func (m *StateMachine) InAir() bool              { return m.state.InAir() }
