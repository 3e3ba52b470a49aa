package terrain

// Gen drives deterministic column generation. Heights come from bilinear
// value noise on a coarse lattice; columns below sea level fill with water up
// to the sea surface.
type Gen struct {
	Seed      int64
	BoundaryR int // blocks; 0 disables the boundary

	BaseHeight int // mean terrain height
	Amplitude  int // peak-to-trough height swing
	HillGrid   int // lattice spacing for the height noise
	SeaLevel   int // water fills up to this Y where ground dips below it

	SprinkleStonePermille  int
	SprinkleGravelPermille int
}

// DefaultGen returns the generation parameters used by the live world.
func DefaultGen(seed int64) Gen {
	return Gen{
		Seed:                   seed,
		BoundaryR:              4000,
		BaseHeight:             63,
		Amplitude:              8,
		HillGrid:               16,
		SeaLevel:               61,
		SprinkleStonePermille:  12,
		SprinkleGravelPermille: 6,
	}
}

func (g Gen) hillGrid() int {
	if g.HillGrid <= 0 {
		return 16
	}
	return g.HillGrid
}

// latticeValue returns noise in [0, 1) at a lattice point.
func (g Gen) latticeValue(gx, gz int) float64 {
	return float64(hash2(g.Seed, gx, gz)%1000) / 1000.0
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// groundHeight returns the solid terrain height for a world column.
func (g Gen) groundHeight(wx, wz int) int {
	grid := g.hillGrid()
	gx := floorDiv(wx, grid)
	gz := floorDiv(wz, grid)
	tx := smoothstep(float64(mod(wx, grid)) / float64(grid))
	tz := smoothstep(float64(mod(wz, grid)) / float64(grid))

	v00 := g.latticeValue(gx, gz)
	v10 := g.latticeValue(gx+1, gz)
	v01 := g.latticeValue(gx, gz+1)
	v11 := g.latticeValue(gx+1, gz+1)

	v := v00*(1-tx)*(1-tz) + v10*tx*(1-tz) + v01*(1-tx)*tz + v11*tx*tz
	return g.BaseHeight - g.Amplitude/2 + int(v*float64(g.Amplitude)+0.5)
}

func clampPermille(v int) int {
	if v < 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return v
}

func (g Gen) generateChunk(ch *Chunk) {
	for z := 0; z < chunkSize; z++ {
		for x := 0; x < chunkSize; x++ {
			wx := ch.CX*chunkSize + x
			wz := ch.CZ*chunkSize + z

			ground := g.groundHeight(wx, wz)
			top := ground
			surface := Grass

			switch {
			case ground < g.SeaLevel:
				top = g.SeaLevel
				surface = Water
			case ground == g.SeaLevel || ground == g.SeaLevel+1:
				// Shoreline band.
				surface = Sand
			default:
				roll := hash2(g.Seed+999, wx, wz) % 1000
				stone := uint64(clampPermille(g.SprinkleStonePermille))
				gravel := uint64(clampPermille(g.SprinkleGravelPermille))
				switch {
				case roll < stone:
					surface = Stone
				case roll < stone+gravel:
					surface = Gravel
				}
			}

			ch.setColumn(x, z, ground, top, surface)
		}
	}
}
