// Package meshing turns block states into baked vertex layers.
package meshing

import (
	"mc-bake/internal/profiling"
	"mc-bake/internal/registry"
	"mc-bake/internal/world"
)

// VertexMapper converts a model-space vertex of the block at world
// coordinates (x, y, z) into the caller's vertex format. It must be pure.
type VertexMapper[T any] func(v *registry.Vertex, x, y, z float32) T

// StateFilter selects which cells a bake emits geometry for. Neighbors are
// never filtered: a cell rejected here still hides faces next to it.
type StateFilter func(state world.ChunkBlockState) bool

// AllStates accepts every state.
func AllStates(world.ChunkBlockState) bool { return true }

// BakeStats describes one bake.
type BakeStats struct {
	Cells           int // cells queried
	SkippedSections int
	Filtered        int // present states rejected by the filter
	Unresolved      int // present states the registry does not know
	Vertices        int
}

// Bake walks every cell of the chunk at pos in index order (x fastest, then
// z, then y) and returns the visible geometry. Cube faces are culled against
// neighbors that are opaque cubes; complex and multipart geometry always goes
// to Other.
func Bake[T any](reg registry.Resolver, pos world.ChunkPos, mapper VertexMapper[T], filter StateFilter, provider world.BlockStateProvider) *BakedLayer[T] {
	layer, _ := BakeWithStats(reg, pos, mapper, filter, provider)
	return layer
}

// BakeWithStats is Bake plus counters for metrics.
func BakeWithStats[T any](reg registry.Resolver, pos world.ChunkPos, mapper VertexMapper[T], filter StateFilter, provider world.BlockStateProvider) (*BakedLayer[T], BakeStats) {
	defer profiling.Track("meshing.Bake")()

	if filter == nil {
		filter = AllStates
	}
	ox, _, oz := pos.Origin()
	layer := NewBakedLayer[T]()
	var stats BakeStats

	for i := 0; i < world.ChunkVolume; i++ {
		if i%world.SectionVolume == 0 && provider.IsSectionEmpty(i/world.SectionVolume) {
			stats.SkippedSections++
			i += world.SectionVolume - 1
			continue
		}

		x := i % world.ChunkWidth
		y := i / world.ChunkArea
		z := (i % world.ChunkArea) / world.ChunkWidth
		stats.Cells++

		state := provider.GetState(x, y, z)
		key, ok := state.Key()
		if !ok {
			continue
		}
		if !filter(state) {
			stats.Filtered++
			continue
		}
		attrs, variant, ok := reg.Resolve(key)
		if !ok || variant == nil {
			stats.Unresolved++
			continue
		}

		wx, wy, wz := float32(ox+x), float32(y), float32(oz+z)

		if variant.Kind.IsMultipart() {
			for _, rule := range variant.Kind.Multipart.Generate(attrs) {
				layer.Other = appendShape(layer.Other, rule.Shape, mapper, wx, wy, wz)
			}
			continue
		}

		shape := variant.Kind.Shape
		if !shape.IsCube() {
			layer.Other = appendShape(layer.Other, shape, mapper, wx, wy, wz)
			continue
		}

		for _, d := range world.Directions {
			face := shape.Cube.Face(d)
			if len(face) == 0 {
				continue
			}
			dx, dy, dz := d.Offset()
			if !faceVisible(reg, provider.GetState(x+dx, y+dy, z+dz)) {
				continue
			}
			for j := range face {
				layer.Faces[d] = append(layer.Faces[d], mapper(&face[j], wx, wy, wz))
			}
		}
	}

	stats.Vertices = layer.VertexCount()
	return layer, stats
}

// faceVisible reports whether a face renders against neighbor. Anything the
// registry cannot resolve counts as transparent.
func faceVisible(reg registry.Resolver, neighbor world.ChunkBlockState) bool {
	key, ok := neighbor.Key()
	if !ok {
		return true
	}
	_, variant, ok := reg.Resolve(key)
	if !ok || variant == nil {
		return true
	}
	return variant.TransparentOrComplex
}

func appendShape[T any](dst []T, shape registry.Shape, mapper VertexMapper[T], x, y, z float32) []T {
	shape.EachVertex(func(v *registry.Vertex) {
		dst = append(dst, mapper(v, x, y, z))
	})
	return dst
}
