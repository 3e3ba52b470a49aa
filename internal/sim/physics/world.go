package physics

// Block describes the terrain block returned by World queries. Resolver only
// reads the attribute flags; names travel through untouched for feeds and logs.
type Block struct {
	Name   string
	Solid  bool
	Liquid bool
}

// World answers terrain and collision queries for the movement resolver. All
// methods are pure reads; implementations must resolve out-of-range or not yet
// loaded coordinates to a safe default (a very low height, no collision)
// instead of failing.
type World interface {
	// HeightAt returns the Y index of the topmost non-air block in the column.
	// A mover stands at HeightAt+1.
	HeightAt(x, z float64) float64

	// HeightAtForPlayer is HeightAt restricted to blocks the mover could
	// actually step onto from playerY; tops of walls and overhangs above reach
	// are ignored so walking never climbs them.
	HeightAtForPlayer(x, z, playerY float64) float64

	// CheckCollision reports whether a hitbox of the given width and height
	// with its feet at (x, y, z) intersects any solid block.
	CheckCollision(x, y, z, width, height float64) bool

	// CheckHeadCollision reports whether the band just above the hitbox head
	// touches a solid block.
	CheckHeadCollision(x, y, z, width, height float64) bool

	// CanStandAt reports whether at least one corner of the hitbox footprint
	// has solid ground beneath it.
	CanStandAt(x, y, z float64) bool

	// SolidAt reports whether the block cell containing the point is solid.
	SolidAt(x, y, z float64) bool

	// BlockAt returns the block cell containing the point. ok is false for
	// air or out-of-range coordinates.
	BlockAt(x, y, z float64) (Block, bool)
}
