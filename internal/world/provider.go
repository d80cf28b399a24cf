package world

// BlockStateProvider answers block-state queries for one chunk during a bake.
//
// GetState must accept any coordinate the baker may probe, including one cell
// outside the chunk on every side, and return Absent for anything it cannot
// resolve. IsSectionEmpty may only return true when the section produces no
// geometry at all; when unsure it returns false.
type BlockStateProvider interface {
	GetState(x, y, z int) ChunkBlockState
	IsSectionEmpty(index int) bool
}

// UniformProvider reports the same state for every cell of the box
// [0,SizeX)×[0,SizeY)×[0,SizeZ) and Absent elsewhere. A 1×1×1 box renders a
// single isolated block.
type UniformProvider struct {
	State               ChunkBlockState
	SizeX, SizeY, SizeZ int
}

// NewUniformProvider fills a box of the given size with state.
func NewUniformProvider(state ChunkBlockState, sizeX, sizeY, sizeZ int) *UniformProvider {
	return &UniformProvider{State: state, SizeX: sizeX, SizeY: sizeY, SizeZ: sizeZ}
}

// NewSingleBlockProvider is a uniform provider holding exactly one block at the origin.
func NewSingleBlockProvider(state ChunkBlockState) *UniformProvider {
	return NewUniformProvider(state, 1, 1, 1)
}

func (p *UniformProvider) GetState(x, y, z int) ChunkBlockState {
	if x < 0 || y < 0 || z < 0 || x >= p.SizeX || y >= p.SizeY || z >= p.SizeZ {
		return Absent()
	}
	return p.State
}

func (p *UniformProvider) IsSectionEmpty(index int) bool {
	if p.State.IsAbsent() || p.SizeX <= 0 || p.SizeZ <= 0 {
		return true
	}
	return index*ChunkSectionHeight >= p.SizeY || index < 0
}
