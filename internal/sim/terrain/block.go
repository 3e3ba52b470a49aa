package terrain

// Block is a palette index. The palette is fixed; attribute methods replace a
// catalog lookup.
type Block uint16

const (
	Air Block = iota
	Grass
	Dirt
	Sand
	Stone
	Gravel
	Water
)

func (b Block) String() string {
	switch b {
	case Air:
		return "AIR"
	case Grass:
		return "GRASS"
	case Dirt:
		return "DIRT"
	case Sand:
		return "SAND"
	case Stone:
		return "STONE"
	case Gravel:
		return "GRAVEL"
	case Water:
		return "WATER"
	default:
		return "UNKNOWN"
	}
}

func (b Block) Solid() bool {
	return b != Air && b != Water
}

func (b Block) Liquid() bool {
	return b == Water
}
