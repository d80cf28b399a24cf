package world

import (
	"math"
)

// Palette names the states a Generator places: Floor at y=0, Fill below the
// surface and Surface on top.
type Palette struct {
	Floor   ChunkBlockState
	Fill    ChunkBlockState
	Surface ChunkBlockState
}

// Generator fills chunk volumes from a noise heightmap. It exists to produce
// realistic bake inputs for the demo and for benchmarks.
type Generator struct {
	noise      heightNoise
	scale      float64
	baseHeight int
	amp        float64
}

// NewGenerator creates a generator with default terrain settings.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		noise:      newHeightNoise(seed),
		scale:      1.0 / 64.0,
		baseHeight: 32,
		amp:        32,
	}
}

// HeightAt computes the surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	n := g.noise.At(x, z)
	height := float64(g.baseHeight) + n*g.amp
	if height < 0 {
		height = 0
	}
	if height > ChunkHeight-1 {
		height = ChunkHeight - 1
	}
	return int(math.Floor(height))
}

// Populate fills the chunk at pos with terrain built from palette.
func (g *Generator) Populate(p *ArrayProvider, pos ChunkPos, palette Palette) {
	ox, _, oz := pos.Origin()
	for lz := range ChunkWidth {
		for lx := range ChunkWidth {
			top := g.HeightAt(ox+lx, oz+lz)
			for ly := 0; ly < top; ly++ {
				if ly == 0 {
					p.SetState(lx, ly, lz, palette.Floor)
				} else {
					p.SetState(lx, ly, lz, palette.Fill)
				}
			}
			if top == 0 {
				p.SetState(lx, top, lz, palette.Floor)
			} else {
				p.SetState(lx, top, lz, palette.Surface)
			}
		}
	}
}

// PopulateStore generates every chunk within radius (in chunks) of the origin.
func (g *Generator) PopulateStore(cs *ChunkStore, radius int, palette Palette) {
	for cz := -radius; cz <= radius; cz++ {
		for cx := -radius; cx <= radius; cx++ {
			pos := ChunkPos{X: cx, Z: cz}
			g.Populate(cs.GetChunk(pos, true), pos, palette)
		}
	}
}
