package player

import (
	"math"
	"testing"

	"blockstride.dev/internal/sim/physics"
)

type fakeHost struct {
	x, y, z      float64
	jumpVelocity float64
	jumpProgress float64
	jumping      bool
	swimming     bool
	crouching    bool
	groundRef    float64
	squashes     int
}

func (h *fakeHost) Position() (float64, float64, float64) { return h.x, h.y, h.z }
func (h *fakeHost) SetY(y float64)                        { h.y = y }
func (h *fakeHost) SetJumpVelocity(v float64)             { h.jumpVelocity = v }
func (h *fakeHost) SetJumpProgress(p float64)             { h.jumpProgress = p }
func (h *fakeHost) SetJumping(v bool)                     { h.jumping = v }
func (h *fakeHost) SetSwimming(v bool)                    { h.swimming = v }
func (h *fakeHost) SetCrouching(v bool)                   { h.crouching = v }
func (h *fakeHost) SyncGroundReference()                  { h.groundRef = h.y }
func (h *fakeHost) LandingSquash()                        { h.squashes++ }

func newMachine(y float64) (*StateMachine, *fakeHost) {
	h := &fakeHost{y: y}
	return NewStateMachine(h, nil), h
}

func TestInitialStateIsGrounded(t *testing.T) {
	m, h := newMachine(64)
	if got := m.StateName(); got != "grounded" {
		t.Fatalf("initial state = %q", got)
	}
	if h.jumping || h.swimming {
		t.Fatalf("grounded enter left flags set: jumping=%v swimming=%v", h.jumping, h.swimming)
	}
	if h.groundRef != 64 {
		t.Fatalf("ground reference = %v, want 64", h.groundRef)
	}
	if m.InAir() {
		t.Fatalf("grounded reports in air")
	}
}

func TestJumpAndNoDoubleJump(t *testing.T) {
	m, h := newMachine(64)
	if !m.HandleJump() {
		t.Fatalf("grounded jump denied")
	}
	if got := m.StateName(); got != "jumping" {
		t.Fatalf("state after jump = %q", got)
	}
	if h.jumpVelocity != physics.JumpVelocity {
		t.Fatalf("launch velocity = %v", h.jumpVelocity)
	}
	if !h.jumping {
		t.Fatalf("jumping flag not set on host")
	}

	before := h.jumpVelocity
	if m.HandleJump() {
		t.Fatalf("air jump accepted")
	}
	if h.jumpVelocity != before {
		t.Fatalf("denied jump reset velocity: %v -> %v", before, h.jumpVelocity)
	}
}

func TestCrouchDeniesJump(t *testing.T) {
	m, h := newMachine(64)
	m.HandleCrouch(true)
	if !h.crouching {
		t.Fatalf("crouch flag not forwarded to host")
	}
	if m.StateName() != "crouching" {
		t.Fatalf("state name while crouching = %q", m.StateName())
	}
	if m.CanJump() {
		t.Fatalf("CanJump true while crouching")
	}
	if m.HandleJump() {
		t.Fatalf("jump accepted while crouching")
	}
	if m.StateName() != "crouching" {
		t.Fatalf("denied jump changed state to %q", m.StateName())
	}
	if got := m.SpeedMultiplier(); got != physics.CrouchSpeedMultiplier {
		t.Fatalf("crouch speed multiplier = %v", got)
	}
}

func TestCrouchIgnoredInAirAndWater(t *testing.T) {
	m, h := newMachine(64)
	m.HandleJump()
	m.HandleCrouch(true)
	if h.crouching {
		t.Fatalf("crouch applied mid-air")
	}
	m.HandleWaterChange(true)
	m.HandleCrouch(true)
	if h.crouching {
		t.Fatalf("crouch applied while swimming")
	}
}

func TestWaterTransitions(t *testing.T) {
	m, h := newMachine(64)
	if !m.HandleWaterChange(true) {
		t.Fatalf("grounded -> swimming denied")
	}
	if m.StateName() != "swimming" || !h.swimming {
		t.Fatalf("state=%q swimming=%v after entering water", m.StateName(), h.swimming)
	}
	if got := m.SpeedMultiplier(); got != physics.SwimSpeedMultiplier {
		t.Fatalf("swim speed multiplier = %v", got)
	}
	if m.HandleJump() {
		t.Fatalf("jump accepted from water")
	}
	if m.HandleWaterChange(true) {
		t.Fatalf("redundant water change transitioned")
	}
	if !m.HandleWaterChange(false) {
		t.Fatalf("swimming -> grounded denied")
	}
	if m.StateName() != "grounded" || h.swimming {
		t.Fatalf("state=%q swimming=%v after leaving water", m.StateName(), h.swimming)
	}
}

func TestJumpingIntoWaterCutsJumpShort(t *testing.T) {
	m, h := newMachine(64)
	m.HandleJump()
	if !m.HandleWaterChange(true) {
		t.Fatalf("jumping -> swimming denied")
	}
	if m.StateName() != "swimming" {
		t.Fatalf("state = %q", m.StateName())
	}
	if h.jumping {
		t.Fatalf("jumping flag survived splash-down")
	}
}

func TestJumpArcSymmetry(t *testing.T) {
	m, h := newMachine(64)
	m.HandleJump()

	const dt = 0.001
	peak := 0.0
	peakProgress := 0.0
	for i := 0; i < 10000 && m.InAir(); i++ {
		m.UpdateTerrainY(64)
		m.Update(dt)
		if h.y-64 > peak {
			peak = h.y - 64
			peakProgress = h.jumpProgress
		}
	}
	if m.InAir() {
		t.Fatalf("jump never landed")
	}

	want := physics.JumpVelocity * physics.JumpVelocity / (2 * physics.Gravity)
	if math.Abs(peak-want) > 0.05 {
		t.Fatalf("peak height = %v, want ~%v", peak, want)
	}
	if peakProgress < 0.99 {
		t.Fatalf("progress at peak = %v, want ~1", peakProgress)
	}
	if h.y != 64 {
		t.Fatalf("landing altitude = %v, want exactly 64", h.y)
	}
	if h.squashes != 1 {
		t.Fatalf("landing squash fired %d times", h.squashes)
	}
}

func TestLandingSnapsToHigherTerrain(t *testing.T) {
	m, h := newMachine(64)
	m.HandleJump()
	// Terrain rose under the arc; landing must snap to the higher of the jump
	// origin and the tracked ground.
	const dt = 0.005
	for i := 0; i < 5000 && m.InAir(); i++ {
		m.UpdateTerrainY(65)
		m.Update(dt)
	}
	if m.InAir() {
		t.Fatalf("never landed on raised terrain")
	}
	if h.y != 65 {
		t.Fatalf("landed at %v, want 65", h.y)
	}
}

func TestHandleFallScenario(t *testing.T) {
	m, h := newMachine(64)
	if !m.HandleFall() {
		t.Fatalf("grounded HandleFall denied")
	}
	if m.StateName() != "falling" {
		t.Fatalf("state after HandleFall = %q", m.StateName())
	}
	if m.HandleFall() {
		t.Fatalf("HandleFall accepted while already falling")
	}

	const dt = 0.005
	for i := 0; i < 5000 && m.InAir(); i++ {
		m.UpdateTerrainY(64)
		m.Update(dt)
	}
	if m.InAir() {
		t.Fatalf("fall never landed")
	}
	if h.y != 64 {
		t.Fatalf("landed at %v, want 64", h.y)
	}
	if m.StateName() != "grounded" {
		t.Fatalf("state after landing = %q", m.StateName())
	}
}

func TestCeilingBounce(t *testing.T) {
	m, h := newMachine(64)
	m.HandleJump()
	m.Update(0.01)
	m.HandleCeilingHit(65.2)
	if h.y != 65.2 {
		t.Fatalf("position after ceiling hit = %v, want 65.2", h.y)
	}
	if got := m.JumpVelocity(); got != physics.CeilingBounceVelocity {
		t.Fatalf("velocity after ceiling hit = %v, want %v", got, physics.CeilingBounceVelocity)
	}
	if m.StateName() != "falling" {
		t.Fatalf("state after ceiling hit = %q", m.StateName())
	}

	// Descending movers ignore further ceiling hits.
	m.HandleCeilingHit(70)
	if h.y != 65.2 {
		t.Fatalf("descending ceiling hit moved position to %v", h.y)
	}
}

func TestDisplayNameFollowsVelocitySign(t *testing.T) {
	j := NewJumping(3)
	if got := j.Name(); got != "jumping" {
		t.Fatalf("velocity 3 name = %q", got)
	}
	j = NewJumping(-1)
	if got := j.Name(); got != "falling" {
		t.Fatalf("velocity -1 name = %q", got)
	}
}

func TestFallUsesBaseYSentinel(t *testing.T) {
	h := &fakeHost{y: 64}
	j := NewJumping(0)
	j.Enter(h)
	if j.BaseY() != physics.NoBaseY {
		t.Fatalf("fall baseY = %v, want sentinel %v", j.BaseY(), physics.NoBaseY)
	}

	h2 := &fakeHost{y: 64}
	j2 := NewJumping(physics.JumpVelocity)
	j2.Enter(h2)
	if j2.BaseY() != 64 {
		t.Fatalf("jump baseY = %v, want 64", j2.BaseY())
	}
}

func TestUpdateBaseYOnlyRaises(t *testing.T) {
	h := &fakeHost{y: 64}
	j := NewJumping(physics.JumpVelocity)
	j.Enter(h)
	j.UpdateBaseY(66)
	if j.BaseY() != 66 {
		t.Fatalf("baseY after raise = %v", j.BaseY())
	}
	j.UpdateBaseY(60)
	if j.BaseY() != 66 {
		t.Fatalf("baseY lowered to %v", j.BaseY())
	}
}

func TestJumpHooksAreNoOpsOutsideJumping(t *testing.T) {
	m, h := newMachine(64)
	m.UpdateTerrainY(70)
	m.UpdateBaseY(70)
	m.HandleCeilingHit(70)
	if m.JumpVelocity() != 0 {
		t.Fatalf("grounded jump velocity = %v", m.JumpVelocity())
	}
	if h.y != 64 {
		t.Fatalf("grounded hooks moved position to %v", h.y)
	}
	m.HandleWaterChange(true)
	m.UpdateTerrainY(70)
	m.HandleCeilingHit(70)
	if h.y != 64 {
		t.Fatalf("swimming hooks moved position to %v", h.y)
	}
}

func TestForceState(t *testing.T) {
	m, h := newMachine(64)
	m.ForceState(NewSwimming())
	if m.StateName() != "swimming" || !h.swimming {
		t.Fatalf("ForceState(Swimming): state=%q swimming=%v", m.StateName(), h.swimming)
	}
	m.ForceState(NewGrounded())
	if m.StateName() != "grounded" || h.swimming {
		t.Fatalf("ForceState(Grounded): state=%q swimming=%v", m.StateName(), h.swimming)
	}
}

func TestExitClearsCrouch(t *testing.T) {
	m, h := newMachine(64)
	m.HandleCrouch(true)
	m.HandleWaterChange(true)
	if h.crouching {
		t.Fatalf("crouch flag survived Grounded exit")
	}
	m.HandleWaterChange(false)
	if m.StateName() != "grounded" {
		t.Fatalf("state = %q", m.StateName())
	}
	// Fresh Grounded must not remember the old crouch sub-state.
	if m.SpeedMultiplier() != 1 {
		t.Fatalf("speed multiplier after re-entering grounded = %v", m.SpeedMultiplier())
	}
}

// Every handler sequence must leave exactly one well-known state active.
func TestStateExclusivity(t *testing.T) {
	m, _ := newMachine(64)
	steps := []func(){
		func() { m.HandleJump() },
		func() { m.Update(0.01) },
		func() { m.HandleCrouch(true) },
		func() { m.HandleWaterChange(true) },
		func() { m.HandleJump() },
		func() { m.HandleWaterChange(false) },
		func() { m.HandleFall() },
		func() { m.UpdateTerrainY(64); m.Update(0.01) },
		func() { m.HandleCrouch(false) },
	}
	valid := map[string]bool{
		"grounded": true, "crouching": true,
		"jumping": true, "falling": true,
		"swimming": true,
	}
	for i, step := range steps {
		step()
		if !valid[m.StateName()] {
			t.Fatalf("step %d left unknown state %q", i, m.StateName())
		}
	}
}
