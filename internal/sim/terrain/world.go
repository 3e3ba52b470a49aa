package terrain

import (
	"math"
	"sync"

	"blockstride.dev/internal/sim/physics"
)

type colKey struct {
	X, Z int
}

// World is a chunked column store plus a sparse overlay of placed blocks. The
// overlay is what makes bridges, overhangs, and ceilings above the base
// heightmap possible. Safe for concurrent use: every session tick goroutine
// queries the same instance, and even reads can generate chunks lazily, so a
// single mutex guards both maps.
type World struct {
	mu      sync.Mutex
	gen     Gen
	chunks  map[ChunkKey]*Chunk
	overlay map[colKey]map[int]Block
}

func New(gen Gen) *World {
	return &World{
		gen:     gen,
		chunks:  map[ChunkKey]*Chunk{},
		overlay: map[colKey]map[int]Block{},
	}
}

// NewFlat returns a world of uniform land height, for tests and scripted
// scenarios.
func NewFlat(height int) *World {
	return New(Gen{
		BaseHeight: height,
		Amplitude:  0,
		SeaLevel:   height - 64,
	})
}

func (w *World) inBounds(ix, iz int) bool {
	if w.gen.BoundaryR <= 0 {
		return true
	}
	return ix >= -w.gen.BoundaryR && ix <= w.gen.BoundaryR && iz >= -w.gen.BoundaryR && iz <= w.gen.BoundaryR
}

func (w *World) getOrGenChunk(cx, cz int) *Chunk {
	key := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := w.chunks[key]; ok {
		return ch
	}
	ch := newChunk(cx, cz)
	w.gen.generateChunk(ch)
	w.chunks[key] = ch
	return ch
}

func (w *World) column(ix, iz int) (ground, top int, surface Block, ok bool) {
	if !w.inBounds(ix, iz) {
		return veryLow, veryLow, Air, false
	}
	ch := w.getOrGenChunk(floorDiv(ix, chunkSize), floorDiv(iz, chunkSize))
	lx := mod(ix, chunkSize)
	lz := mod(iz, chunkSize)
	return ch.ground(lx, lz), ch.top(lx, lz), ch.surface(lx, lz), true
}

// SetColumn overrides one column, generating its chunk if needed. Test and
// editor hook.
func (w *World) SetColumn(ix, iz, ground int, surface Block) {
	if !w.inBounds(ix, iz) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := w.getOrGenChunk(floorDiv(ix, chunkSize), floorDiv(iz, chunkSize))
	ch.setColumn(mod(ix, chunkSize), mod(iz, chunkSize), ground, ground, surface)
}

// SetWaterColumn overrides one column with water from above the solid ground
// up to waterTop.
func (w *World) SetWaterColumn(ix, iz, ground, waterTop int) {
	if !w.inBounds(ix, iz) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := w.getOrGenChunk(floorDiv(ix, chunkSize), floorDiv(iz, chunkSize))
	ch.setColumn(mod(ix, chunkSize), mod(iz, chunkSize), ground, waterTop, Water)
}

// PlaceBlock puts a block into the overlay, above or detached from the base
// column.
func (w *World) PlaceBlock(ix, iy, iz int, b Block) {
	if !w.inBounds(ix, iz) || b == Air {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	key := colKey{X: ix, Z: iz}
	col := w.overlay[key]
	if col == nil {
		col = map[int]Block{}
		w.overlay[key] = col
	}
	col[iy] = b
}

// BreakBlock removes an overlay block. Base terrain is not diggable through
// this path.
func (w *World) BreakBlock(ix, iy, iz int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := colKey{X: ix, Z: iz}
	col := w.overlay[key]
	if col == nil {
		return
	}
	delete(col, iy)
	if len(col) == 0 {
		delete(w.overlay, key)
	}
}

func (w *World) overlayAt(ix, iy, iz int) (Block, bool) {
	col := w.overlay[colKey{X: ix, Z: iz}]
	if col == nil {
		return Air, false
	}
	b, ok := col[iy]
	return b, ok
}

// overlayTop returns the highest overlay block in the column no higher than
// limit. found is false when the column has none.
func (w *World) overlayTop(ix, iz, limit int) (int, Block, bool) {
	col := w.overlay[colKey{X: ix, Z: iz}]
	if col == nil {
		return 0, Air, false
	}
	best := 0
	var blk Block
	found := false
	for y, b := range col {
		if y > limit {
			continue
		}
		if !found || y > best {
			best = y
			blk = b
			found = true
		}
	}
	return best, blk, found
}

const noClip = 1 << 30

// HeightAt returns the Y index of the topmost non-air block in the column.
func (w *World) HeightAt(x, z float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	ix := int(math.Floor(x))
	iz := int(math.Floor(z))
	_, top, _, ok := w.column(ix, iz)
	if !ok {
		return veryLow
	}
	if oy, _, found := w.overlayTop(ix, iz, noClip); found && oy > top {
		top = oy
	}
	return float64(top)
}

// HeightAtForPlayer ignores blocks the mover at playerY could not step onto,
// so wall tops and overhangs above reach never read as ground.
func (w *World) HeightAtForPlayer(x, z, playerY float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	ix := int(math.Floor(x))
	iz := int(math.Floor(z))
	ground, top, _, ok := w.column(ix, iz)
	if !ok {
		return veryLow
	}
	limit := int(math.Floor(playerY + 1))
	h := top
	if h > limit {
		// Clip into the column: everything at or below ground is solid, so
		// the highest reachable solid is min(ground, limit).
		h = ground
		if h > limit {
			h = limit
		}
	}
	if oy, _, found := w.overlayTop(ix, iz, limit); found && oy > h {
		h = oy
	}
	return float64(h)
}

// SolidAt reports whether the cell containing the point is solid.
func (w *World) SolidAt(x, y, z float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.solidCell(int(math.Floor(x)), int(math.Floor(y)), int(math.Floor(z)))
}

func (w *World) solidCell(ix, iy, iz int) bool {
	if b, ok := w.overlayAt(ix, iy, iz); ok && b.Solid() {
		return true
	}
	ground, _, _, ok := w.column(ix, iz)
	if !ok {
		return false
	}
	return iy <= ground
}

// BlockAt returns the block cell containing the point.
func (w *World) BlockAt(x, y, z float64) (physics.Block, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ix := int(math.Floor(x))
	iy := int(math.Floor(y))
	iz := int(math.Floor(z))

	if b, ok := w.overlayAt(ix, iy, iz); ok {
		return toPhysicsBlock(b), true
	}
	ground, top, surface, ok := w.column(ix, iz)
	if !ok || iy > top {
		return physics.Block{}, false
	}
	switch {
	case iy > ground:
		return toPhysicsBlock(Water), true
	case iy == ground:
		if surface == Water {
			// Lake bed under the water column.
			return toPhysicsBlock(Sand), true
		}
		return toPhysicsBlock(surface), true
	default:
		return toPhysicsBlock(Stone), true
	}
}

func toPhysicsBlock(b Block) physics.Block {
	return physics.Block{
		Name:   b.String(),
		Solid:  b.Solid(),
		Liquid: b.Liquid(),
	}
}

// hitboxHits checks every block cell a hitbox with feet at (x, y, z)
// occupies between vertical levels y and y+height.
func (w *World) hitboxHits(x, y, z, width, height float64) bool {
	half := width / 2
	const inset = 0.001
	xs := []float64{x - half, x + half}
	zs := []float64{z - half, z + half}
	for ly := int(math.Floor(y + inset)); ly <= int(math.Floor(y+height-inset)); ly++ {
		for _, cx := range xs {
			for _, cz := range zs {
				if w.solidCell(int(math.Floor(cx)), ly, int(math.Floor(cz))) {
					return true
				}
			}
		}
	}
	return false
}

// CheckCollision reports whether the hitbox intersects any solid block.
func (w *World) CheckCollision(x, y, z, width, height float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hitboxHits(x, y, z, width, height)
}

// CheckHeadCollision reports a solid block in the band just above the hitbox.
func (w *World) CheckHeadCollision(x, y, z, width, height float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	half := width / 2
	ly := int(math.Floor(y + height))
	for _, cx := range []float64{x - half, x + half} {
		for _, cz := range []float64{z - half, z + half} {
			if w.solidCell(int(math.Floor(cx)), ly, int(math.Floor(cz))) {
				return true
			}
		}
	}
	return false
}

// CanStandAt reports whether any corner of the hitbox footprint has solid
// ground beneath it.
func (w *World) CanStandAt(x, y, z float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	half := physics.PlayerWidth / 2
	for _, cx := range []float64{x - half, x + half} {
		for _, cz := range []float64{z - half, z + half} {
			if w.solidCell(int(math.Floor(cx)), int(math.Floor(y-0.5)), int(math.Floor(cz))) {
				return true
			}
		}
	}
	return false
}

// SpawnY returns a safe standing altitude over the column.
func (w *World) SpawnY(x, z float64) float64 {
	return w.HeightAt(x, z) + 1
}

// LoadedChunks reports how many chunks have been generated so far.
func (w *World) LoadedChunks() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.chunks)
}

// Seed returns the generation seed.
func (w *World) Seed() int64 {
	return w.gen.Seed
}
