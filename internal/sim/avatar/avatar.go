package avatar

import (
	"math"

	"blockstride.dev/internal/sim/physics"
	"blockstride.dev/internal/sim/player"
)

// Input is one tick's worth of control state. MoveX/MoveZ are direction
// components in [-1, 1]; speed scaling happens here, not in the sender.
type Input struct {
	MoveX  float64
	MoveZ  float64
	Jump   bool
	Crouch bool
}

// EventKind names the movement cues the animation/sound layer consumes.
type EventKind string

const (
	EventJump    EventKind = "jump"
	EventLand    EventKind = "land"
	EventFall    EventKind = "fall"
	EventSplash  EventKind = "splash"
	EventSurface EventKind = "surface"
)

type Event struct {
	Kind EventKind
	Tick uint64
}

// Stats accumulate over a session for the read-model index.
type Stats struct {
	Ticks    uint64
	Distance float64
	Jumps    uint64
	Falls    uint64
	Landings uint64
	Splashes uint64
}

// Avatar is the host entity: it owns the live position and movement flags,
// and drives the state machine and physics resolver once per tick in the
// order the two expect (state update first, then horizontal resolution).
type Avatar struct {
	world    physics.World
	resolver *physics.Resolver
	machine  *player.StateMachine

	x, y, z float64

	moveSpeed float64

	jumpVelocity float64
	jumpProgress float64
	jumping      bool
	swimming     bool
	crouching    bool
	groundRefY   float64

	tick      uint64
	lastBlock string
	events    []Event
	stats     Stats
}

// New places an avatar standing at (x, spawnY, z). moveSpeed is the walk
// speed in blocks/s before state multipliers.
func New(w physics.World, x, y, z, moveSpeed float64) *Avatar {
	a := &Avatar{
		world:     w,
		resolver:  physics.NewResolver(w),
		x:         x,
		y:         y,
		z:         z,
		moveSpeed: moveSpeed,
	}
	a.machine = player.NewStateMachine(a, nil)
	return a
}

// Step advances the avatar one frame. Frame order: jump/crouch input, terrain
// refresh, vertical state update, ceiling check, horizontal resolution,
// fall/water transitions.
func (a *Avatar) Step(dt float64, in Input) {
	a.tick++
	a.stats.Ticks++

	if in.Jump {
		if a.machine.HandleJump() {
			a.emit(EventJump)
			a.stats.Jumps++
		}
	}
	if in.Crouch != a.crouching && a.machine.CanCrouch() {
		a.machine.HandleCrouch(in.Crouch)
	}

	// Landing detection tracks terrain that changes under the arc.
	a.machine.UpdateTerrainY(a.world.HeightAt(a.x, a.z) + 1)

	a.machine.Update(dt)

	if a.jumping && a.machine.JumpVelocity() > 0 {
		if hit, maxY := a.resolver.CheckCeiling(a.x, a.y, a.z); hit {
			a.machine.HandleCeilingHit(maxY)
		}
	}

	a.moveHorizontal(dt, in)
	a.syncWaterState()
}

func (a *Avatar) moveHorizontal(dt float64, in Input) {
	if in.MoveX == 0 && in.MoveZ == 0 {
		return
	}
	mag := math.Hypot(in.MoveX, in.MoveZ)
	if mag > 1 {
		in.MoveX /= mag
		in.MoveZ /= mag
	}
	speed := a.moveSpeed * a.machine.SpeedMultiplier()
	dx := in.MoveX * speed * dt
	dz := in.MoveZ * speed * dt

	res := a.resolver.TryMove(a.snapshot(), dx, dz)
	if !res.Moved {
		return
	}

	a.stats.Distance += math.Hypot(res.NewX-a.x, res.NewZ-a.z)
	a.x = res.NewX
	a.z = res.NewZ
	switch {
	case a.machine.InAir():
		// Vertical is owned by the jump integration; drifting over rising
		// terrain only raises the landing reference.
		a.machine.UpdateBaseY(res.NewY)
	case res.ShouldFall:
		// Keep the current altitude; the fall below brings gravity in.
	default:
		a.y = res.NewY
	}
	if res.Block != nil {
		a.lastBlock = res.Block.Name
	}

	if res.ShouldFall {
		if a.machine.HandleFall() {
			a.emit(EventFall)
			a.stats.Falls++
		}
	}
}

func (a *Avatar) syncWaterState() {
	inWater := a.resolver.IsInWater(a.x, a.y, a.z)
	wasSwimming := a.swimming
	if a.machine.HandleWaterChange(inWater) {
		if inWater && !wasSwimming {
			a.emit(EventSplash)
			a.stats.Splashes++
			// Settle at the swim surface.
			a.y = a.resolver.TargetY(a.x, a.z, a.y, true)
		} else if !inWater && wasSwimming {
			a.emit(EventSurface)
		}
	}
}

func (a *Avatar) snapshot() physics.State {
	return physics.State{
		X:            a.x,
		Y:            a.y,
		Z:            a.z,
		Jumping:      a.jumping,
		Swimming:     a.swimming,
		Crouching:    a.crouching,
		JumpVelocity: a.jumpVelocity,
	}
}

// DrainEvents returns the events emitted since the last drain.
func (a *Avatar) DrainEvents() []Event {
	ev := a.events
	a.events = nil
	return ev
}

func (a *Avatar) emit(kind EventKind) {
	a.events = append(a.events, Event{Kind: kind, Tick: a.tick})
}

// SetWaterYOffset forwards a debug-tuning write to the resolver.
func (a *Avatar) SetWaterYOffset(off float64) {
	a.resolver.SetWaterYOffset(off)
}

func (a *Avatar) Position() (float64, float64, float64) { return a.x, a.y, a.z }
func (a *Avatar) Tick() uint64                          { return a.tick }
func (a *Avatar) StateName() string                     { return a.machine.StateName() }
func (a *Avatar) InAir() bool                           { return a.machine.InAir() }
func (a *Avatar) JumpVelocity() float64                 { return a.jumpVelocity }
func (a *Avatar) JumpProgress() float64                 { return a.jumpProgress }
func (a *Avatar) Crouching() bool                       { return a.crouching }
func (a *Avatar) Swimming() bool                        { return a.swimming }
func (a *Avatar) SpeedMultiplier() float64              { return a.machine.SpeedMultiplier() }
func (a *Avatar) GroundBlock() string                   { return a.lastBlock }
func (a *Avatar) Stats() Stats                          { return a.stats }

// Machine exposes the state machine for authoritative overrides.
func (a *Avatar) Machine() *player.StateMachine { return a.machine }

// player.Host implementation. States mutate the avatar only through these.

func (a *Avatar) SetY(y float64)            { a.y = y }
func (a *Avatar) SetJumpVelocity(v float64) { a.jumpVelocity = v }
func (a *Avatar) SetJumpProgress(p float64) { a.jumpProgress = p }
func (a *Avatar) SetJumping(v bool)         { a.jumping = v }
func (a *Avatar) SetSwimming(v bool)        { a.swimming = v }
func (a *Avatar) SetCrouching(v bool)       { a.crouching = v }
func (a *Avatar) SyncGroundReference()      { a.groundRefY = a.y }

func (a *Avatar) LandingSquash() {
	a.emit(EventLand)
	a.stats.Landings++
}
