package world

const (
	// Chunk dimensions
	ChunkWidth  = 16
	ChunkArea   = ChunkWidth * ChunkWidth
	ChunkHeight = 256
	ChunkVolume = ChunkArea * ChunkHeight

	// Section dimensions
	ChunkSectionHeight = 16
	ChunkSections      = ChunkHeight / ChunkSectionHeight
	SectionVolume      = ChunkArea * ChunkSectionHeight
)

// ChunkPos is the (x, z) grid position of a chunk.
type ChunkPos struct {
	X, Z int
}

// Origin returns the world-space block coordinates of the chunk's (0, 0, 0) cell.
func (p ChunkPos) Origin() (int, int, int) {
	return p.X * ChunkWidth, 0, p.Z * ChunkWidth
}

// ChunkPosAt returns the position of the chunk containing world block (x, z).
func ChunkPosAt(x, z int) ChunkPos {
	return ChunkPos{X: floorDiv(x, ChunkWidth), Z: floorDiv(z, ChunkWidth)}
}

// section is a 16x16x16 slab of block states. A nil section is empty.
type section struct {
	states []ChunkBlockState
	count  int // non-absent cells
}

// ArrayProvider is the chunk-array-backed BlockStateProvider: it stores one
// chunk's states in lazily allocated sections.
type ArrayProvider struct {
	sections [ChunkSections]*section
}

// NewArrayProvider creates an empty chunk volume.
func NewArrayProvider() *ArrayProvider {
	return &ArrayProvider{}
}

// indexInSection converts local section coordinates (x, localY, z) to a flat
// index, x fastest then z then y, matching the bake traversal order.
func indexInSection(x, localY, z int) int {
	return localY*ChunkArea + z*ChunkWidth + x
}

func inChunk(x, y, z int) bool {
	return x >= 0 && x < ChunkWidth && y >= 0 && y < ChunkHeight && z >= 0 && z < ChunkWidth
}

// GetState returns the state at local coordinates, or absent outside the chunk.
func (p *ArrayProvider) GetState(x, y, z int) ChunkBlockState {
	if !inChunk(x, y, z) {
		return Absent()
	}
	sec := p.sections[y/ChunkSectionHeight]
	if sec == nil {
		return Absent()
	}
	return sec.states[indexInSection(x, y%ChunkSectionHeight, z)]
}

// SetState stores a state at local coordinates. Out-of-range writes are ignored.
func (p *ArrayProvider) SetState(x, y, z int, state ChunkBlockState) {
	if !inChunk(x, y, z) {
		return
	}
	secIdx := y / ChunkSectionHeight
	idx := indexInSection(x, y%ChunkSectionHeight, z)
	sec := p.sections[secIdx]

	if state.IsAbsent() {
		if sec == nil || sec.states[idx].IsAbsent() {
			return
		}
		sec.states[idx] = Absent()
		sec.count--
		if sec.count == 0 {
			p.sections[secIdx] = nil
		}
		return
	}

	if sec == nil {
		sec = &section{states: make([]ChunkBlockState, SectionVolume)}
		p.sections[secIdx] = sec
	}
	if sec.states[idx].IsAbsent() {
		sec.count++
	}
	sec.states[idx] = state
}

// Fill sets every cell in the box [x0,x1)×[y0,y1)×[z0,z1) to state.
func (p *ArrayProvider) Fill(x0, y0, z0, x1, y1, z1 int, state ChunkBlockState) {
	for y := y0; y < y1; y++ {
		for z := z0; z < z1; z++ {
			for x := x0; x < x1; x++ {
				p.SetState(x, y, z, state)
			}
		}
	}
}

// IsSectionEmpty reports whether a section holds no states at all.
func (p *ArrayProvider) IsSectionEmpty(index int) bool {
	if index < 0 || index >= ChunkSections {
		return true
	}
	return p.sections[index] == nil
}

// Count returns the number of non-absent cells.
func (p *ArrayProvider) Count() int {
	n := 0
	for _, sec := range p.sections {
		if sec != nil {
			n += sec.count
		}
	}
	return n
}
