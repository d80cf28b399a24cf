package world

import "fmt"

// BlockStateKey identifies one renderable variant of a block: the block type
// index plus the augment that picks among its rotations, connections and
// model choices.
type BlockStateKey struct {
	Block   uint16
	Augment uint16
}

func (k BlockStateKey) String() string {
	return fmt.Sprintf("%d:%d", k.Block, k.Augment)
}

// ChunkBlockState is what a provider reports for a cell. The zero value is
// the absent state.
type ChunkBlockState struct {
	key     BlockStateKey
	present bool
}

// Absent returns the "nothing here" sentinel.
func Absent() ChunkBlockState {
	return ChunkBlockState{}
}

// State wraps a key into a present state.
func State(key BlockStateKey) ChunkBlockState {
	return ChunkBlockState{key: key, present: true}
}

// Key returns the state key and whether the state is present.
func (s ChunkBlockState) Key() (BlockStateKey, bool) {
	return s.key, s.present
}

func (s ChunkBlockState) IsAbsent() bool {
	return !s.present
}

func (s ChunkBlockState) String() string {
	if !s.present {
		return "absent"
	}
	return s.key.String()
}
