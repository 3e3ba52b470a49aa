package terrain

const chunkSize = 16

// veryLow is the height reported for columns outside the world boundary so
// movers never find footing there.
const veryLow = -1000

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk holds one 16x16 patch of columns. Per column: Top is the Y index of
// the topmost non-air block (water surface included), Ground the topmost
// solid block, Surface the block sitting at Top. For land columns
// Top == Ground.
type Chunk struct {
	CX, CZ  int
	Top     []int16
	Ground  []int16
	Surface []Block
}

func newChunk(cx, cz int) *Chunk {
	return &Chunk{
		CX:      cx,
		CZ:      cz,
		Top:     make([]int16, chunkSize*chunkSize),
		Ground:  make([]int16, chunkSize*chunkSize),
		Surface: make([]Block, chunkSize*chunkSize),
	}
}

func (c *Chunk) index(x, z int) int {
	// x fastest, then z
	return x + z*chunkSize
}

func (c *Chunk) top(x, z int) int       { return int(c.Top[c.index(x, z)]) }
func (c *Chunk) ground(x, z int) int    { return int(c.Ground[c.index(x, z)]) }
func (c *Chunk) surface(x, z int) Block { return c.Surface[c.index(x, z)] }

func (c *Chunk) setColumn(x, z, ground, top int, surface Block) {
	i := c.index(x, z)
	c.Ground[i] = int16(ground)
	c.Top[i] = int16(top)
	c.Surface[i] = surface
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
