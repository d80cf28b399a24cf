package terrain

import (
	"fmt"
	"sync"

	"mc-bake/internal/graphics"
	"mc-bake/internal/meshing"
	"mc-bake/internal/registry"
	"mc-bake/internal/world"
)

type namedLayer struct {
	name  string
	layer meshing.Layer
}

// Chunk is a positioned container for baked layers. Baking replaces all
// layers at once; readers never see a half-baked set.
type Chunk struct {
	Pos world.ChunkPos

	mu     sync.RWMutex
	layers []namedLayer
}

// NewChunk returns an unbaked chunk.
func NewChunk(pos world.ChunkPos) *Chunk {
	return &Chunk{Pos: pos}
}

// BakeResult summarizes one chunk bake.
type BakeResult struct {
	Pos    world.ChunkPos
	Layers map[string]meshing.BakeStats
}

// Vertices sums the vertices of every layer.
func (r BakeResult) Vertices() int {
	n := 0
	for _, s := range r.Layers {
		n += s.Vertices
	}
	return n
}

// Bake runs every layer definition against provider and replaces the
// chunk's layers with the results, in defs order.
func (c *Chunk) Bake(defs []LayerDef, reg registry.Resolver, provider world.BlockStateProvider) BakeResult {
	reg = pin(reg)
	baked := make([]namedLayer, 0, len(defs))
	res := BakeResult{Pos: c.Pos, Layers: make(map[string]meshing.BakeStats, len(defs))}
	for _, def := range defs {
		layer, stats := def.Bake(reg, c.Pos, provider)
		baked = append(baked, namedLayer{name: def.Name(), layer: layer})
		res.Layers[def.Name()] = stats
	}

	c.mu.Lock()
	c.layers = baked
	c.mu.Unlock()
	return res
}

// pin returns a registry view that stays fixed for the whole bake, even if
// blocks are built concurrently.
func pin(reg registry.Resolver) registry.Resolver {
	if s, ok := reg.(interface{ Snapshot() *registry.Snapshot }); ok {
		return s.Snapshot()
	}
	return reg
}

// Layer returns the baked layer with the given name.
func (c *Chunk) Layer(name string) (meshing.Layer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.layers {
		if l.name == name {
			return l.layer, true
		}
	}
	return nil, false
}

// LayerNames lists baked layers in bake order.
func (c *Chunk) LayerNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.layers))
	for i, l := range c.layers {
		names[i] = l.name
	}
	return names
}

// Upload uploads every layer. Must run on the device's thread. On failure
// nothing stays allocated.
func (c *Chunk) Upload(device graphics.Device) (map[string]*graphics.WorldBuffers, error) {
	c.mu.RLock()
	layers := c.layers
	c.mu.RUnlock()

	out := make(map[string]*graphics.WorldBuffers, len(layers))
	for _, l := range layers {
		label := fmt.Sprintf("chunk[%d,%d].%s", c.Pos.X, c.Pos.Z, l.name)
		wb, err := l.layer.Upload(device, label)
		if err != nil {
			for _, done := range out {
				done.Release()
			}
			return nil, err
		}
		out[l.name] = wb
	}
	return out, nil
}
