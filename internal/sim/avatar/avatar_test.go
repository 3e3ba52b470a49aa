package avatar

import (
	"math"
	"testing"

	"blockstride.dev/internal/sim/physics"
	"blockstride.dev/internal/sim/terrain"
)

const dt = 1.0 / 60.0

func flatAvatar(t *testing.T) (*Avatar, *terrain.World) {
	t.Helper()
	w := terrain.NewFlat(63)
	a := New(w, 10.5, w.SpawnY(10.5, 10.5), 10.5, 4.0)
	return a, w
}

func stepN(a *Avatar, n int, in Input) {
	for i := 0; i < n; i++ {
		a.Step(dt, in)
	}
}

func kinds(evs []Event) []EventKind {
	out := make([]EventKind, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Kind)
	}
	return out
}

func TestWalkOnFlatGround(t *testing.T) {
	a, _ := flatAvatar(t)
	stepN(a, 60, Input{MoveX: 1})
	x, y, _ := a.Position()
	if math.Abs(x-14.5) > 0.01 {
		t.Fatalf("x after 1s walk = %v, want ~14.5", x)
	}
	if y != 64 {
		t.Fatalf("y drifted to %v", y)
	}
	if a.StateName() != "grounded" {
		t.Fatalf("state = %q", a.StateName())
	}
	if a.Stats().Distance < 3.9 {
		t.Fatalf("distance stat = %v", a.Stats().Distance)
	}
	if a.GroundBlock() != "GRASS" {
		t.Fatalf("ground block = %q", a.GroundBlock())
	}
}

func TestJumpLifecycle(t *testing.T) {
	a, _ := flatAvatar(t)
	a.Step(dt, Input{Jump: true})
	if a.StateName() != "jumping" {
		t.Fatalf("state after jump input = %q", a.StateName())
	}
	evs := kinds(a.DrainEvents())
	if len(evs) != 1 || evs[0] != EventJump {
		t.Fatalf("events after jump = %v", evs)
	}

	stepN(a, 120, Input{})
	if a.InAir() {
		t.Fatalf("still airborne 2s after jump")
	}
	_, y, _ := a.Position()
	if y != 64 {
		t.Fatalf("landing y = %v, want 64", y)
	}
	evs = kinds(a.DrainEvents())
	if len(evs) != 1 || evs[0] != EventLand {
		t.Fatalf("events after landing = %v", evs)
	}
	st := a.Stats()
	if st.Jumps != 1 || st.Landings != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestHeldJumpDoesNotDoubleJump(t *testing.T) {
	a, _ := flatAvatar(t)
	stepN(a, 30, Input{Jump: true})
	if got := a.Stats().Jumps; got != 1 {
		t.Fatalf("held jump launched %d times", got)
	}
}

func TestWalkOffEdgeFallsAndLands(t *testing.T) {
	w := terrain.NewFlat(63)
	// Cliff: everything past x=12 drops to height 58.
	for x := 13; x <= 30; x++ {
		for z := 0; z <= 30; z++ {
			w.SetColumn(x, z, 58, terrain.Stone)
		}
	}
	a := New(w, 12.5, 64, 10.5, 4.0)

	stepN(a, 30, Input{MoveX: 1})
	found := false
	for _, e := range kinds(a.DrainEvents()) {
		if e == EventFall {
			found = true
		}
	}
	if !found {
		t.Fatalf("cliff walk-off emitted no fall event")
	}

	stepN(a, 180, Input{})
	if a.InAir() {
		t.Fatalf("never landed at cliff bottom")
	}
	_, y, _ := a.Position()
	if y != 59 {
		t.Fatalf("landed at %v, want 59", y)
	}
	if a.Stats().Falls != 1 || a.Stats().Landings != 1 {
		t.Fatalf("stats = %+v", a.Stats())
	}
}

func TestCrouchUnderhangPreventsFall(t *testing.T) {
	w := terrain.NewFlat(63)
	for x := 13; x <= 30; x++ {
		for z := 0; z <= 30; z++ {
			w.SetColumn(x, z, 50, terrain.Stone)
		}
	}
	a := New(w, 12.5, 64, 10.5, 4.0)
	stepN(a, 1, Input{Crouch: true})
	if a.StateName() != "crouching" {
		t.Fatalf("state = %q", a.StateName())
	}

	stepN(a, 300, Input{MoveX: 1, Crouch: true})
	if a.InAir() {
		t.Fatalf("crouch walked off the ledge")
	}
	x, y, _ := a.Position()
	if y != 64 {
		t.Fatalf("crouch dropped to %v", y)
	}
	// The edge guard lets the hitbox lean past the rim but never beyond
	// corner support.
	if x > 13.5 {
		t.Fatalf("crouch leaned to x=%v, past any corner support", x)
	}
	if a.Stats().Falls != 0 {
		t.Fatalf("crouch fell: %+v", a.Stats())
	}
}

func TestSwimAndSurface(t *testing.T) {
	w := terrain.NewFlat(63)
	// Pool from x=13 onward: ground 58, water surface block at 62.
	for x := 13; x <= 40; x++ {
		for z := 0; z <= 30; z++ {
			w.SetWaterColumn(x, z, 58, 62)
		}
	}
	a := New(w, 12.5, 64, 10.5, 4.0)

	stepN(a, 240, Input{MoveX: 1})
	if a.StateName() != "swimming" {
		t.Fatalf("state after wading in = %q", a.StateName())
	}
	_, y, _ := a.Position()
	want := 62 + physics.WaterSurfaceHeight
	if math.Abs(y-want) > 0.2 {
		t.Fatalf("swim altitude = %v, want ~%v", y, want)
	}
	if a.Stats().Splashes != 1 {
		t.Fatalf("splashes = %d", a.Stats().Splashes)
	}
	if got := a.SpeedMultiplier(); got != physics.SwimSpeedMultiplier {
		t.Fatalf("swim speed multiplier = %v", got)
	}

	// Jump is denied in water.
	before := a.Stats().Jumps
	a.Step(dt, Input{Jump: true})
	if a.Stats().Jumps != before {
		t.Fatalf("jump accepted while swimming")
	}

	// Swim back to shore and climb out.
	stepN(a, 400, Input{MoveX: -1})
	if a.StateName() != "grounded" {
		t.Fatalf("state after reaching shore = %q", a.StateName())
	}
	_, y, _ = a.Position()
	if y != 64 {
		t.Fatalf("shore altitude = %v, want 64", y)
	}
}

func TestCeilingStopsJump(t *testing.T) {
	w := terrain.NewFlat(63)
	for x := 9; x <= 12; x++ {
		for z := 9; z <= 12; z++ {
			w.PlaceBlock(x, 66, z, terrain.Stone)
		}
	}
	a := New(w, 10.5, 64, 10.5, 4.0)

	a.Step(dt, Input{Jump: true})
	maxY := 64.0
	for i := 0; i < 240 && a.InAir(); i++ {
		a.Step(dt, Input{})
		_, y, _ := a.Position()
		if y > maxY {
			maxY = y
		}
	}
	if a.InAir() {
		t.Fatalf("never landed after ceiling hit")
	}
	// Free arc would peak at 66; the ceiling at 66 caps the hitbox below it.
	if maxY > 66-physics.PlayerHeight+1e-9 {
		t.Fatalf("peak %v clipped into ceiling at 66", maxY)
	}
	_, y, _ := a.Position()
	if y != 64 {
		t.Fatalf("post-bounce landing y = %v", y)
	}
}

func TestWaterOffsetTuning(t *testing.T) {
	w := terrain.NewFlat(63)
	for x := 0; x <= 30; x++ {
		for z := 0; z <= 30; z++ {
			w.SetWaterColumn(x, z, 58, 62)
		}
	}
	a := New(w, 10.5, 62+physics.WaterSurfaceHeight, 10.5, 4.0)
	a.SetWaterYOffset(-0.2)
	a.Step(dt, Input{MoveX: 1})
	if a.StateName() != "swimming" {
		t.Fatalf("state = %q", a.StateName())
	}
	_, y, _ := a.Position()
	want := 62 + physics.WaterSurfaceHeight - 0.2
	if math.Abs(y-want) > 0.05 {
		t.Fatalf("tuned swim altitude = %v, want ~%v", y, want)
	}
}
