package registry

import (
	"fmt"

	"mc-bake/pkg/blockmodel"
)

// BlockSpec names a block to register from assets.
type BlockSpec struct {
	Name        string
	Transparent bool
}

// DefaultBlocks are the blocks the terrain generator and demo rely on.
var DefaultBlocks = []BlockSpec{
	{Name: "stone"},
	{Name: "dirt"},
	{Name: "grass"},
	{Name: "bedrock"},
	{Name: "glass", Transparent: true},
	{Name: "anvil", Transparent: true},
}

// BlockStateSource loads blockstate definitions by block name.
// *blockmodel.Loader implements it.
type BlockStateSource interface {
	LoadBlockState(name string) (*blockmodel.BlockState, error)
}

// RegisterFromAssets registers every spec whose blockstate can be loaded and
// returns the assigned indices by name. Blocks whose blockstate is missing or
// invalid are skipped with a warning; the error lists how many were skipped.
func RegisterFromAssets(m *BlockManager, states BlockStateSource, specs []BlockSpec) (map[string]uint16, error) {
	indices := make(map[string]uint16, len(specs))
	skipped := 0
	for _, spec := range specs {
		bs, err := states.LoadBlockState(spec.Name)
		if err != nil {
			logger.Printf("Warning: Failed to load blockstate for %s: %v", spec.Name, err)
			skipped++
			continue
		}
		idx, err := m.RegisterBlock(BlockDefinition{Name: spec.Name, Transparent: spec.Transparent, State: bs})
		if err != nil {
			logger.Printf("Warning: Failed to register %s: %v", spec.Name, err)
			skipped++
			continue
		}
		indices[spec.Name] = idx
	}
	if skipped > 0 {
		return indices, fmt.Errorf("%d of %d blocks could not be registered", skipped, len(specs))
	}
	return indices, nil
}

// DefaultState builds the block's default attribute set and returns its key
// parts. Lookups by unknown name fail with ErrBlockNotFound.
func DefaultState(r Registry, name string, overrides map[string]string) (uint16, uint16, error) {
	block, ok := r.LookupBlockIndex(name)
	if !ok {
		return 0, 0, fmt.Errorf("block %q: %w", name, ErrBlockNotFound)
	}
	_, augment, err := r.BuildModel(block, overrides)
	if err != nil {
		return 0, 0, err
	}
	return block, augment, nil
}
