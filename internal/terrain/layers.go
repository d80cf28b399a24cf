// Package terrain owns chunks and their baked render layers.
package terrain

import (
	"mc-bake/internal/meshing"
	"mc-bake/internal/registry"
	"mc-bake/internal/world"
)

// ChunkVertex is the vertex format of the stock layers: 36 bytes, position
// in world space.
type ChunkVertex struct {
	Position [3]float32
	UV       [2]float32
	Normal   [3]float32
	Texture  uint32
}

// MapChunkVertex places a model vertex at world coordinates (x, y, z).
func MapChunkVertex(v *registry.Vertex, x, y, z float32) ChunkVertex {
	return ChunkVertex{
		Position: [3]float32{v.Position.X() + x, v.Position.Y() + y, v.Position.Z() + z},
		UV:       [2]float32{v.UV.X(), v.UV.Y()},
		Normal:   [3]float32{v.Normal.X(), v.Normal.Y(), v.Normal.Z()},
		Texture:  v.Texture,
	}
}

// FilterFunc decides whether a layer bakes a cell. It gets the registry
// snapshot the bake runs against.
type FilterFunc func(reg registry.Resolver, state world.ChunkBlockState) bool

// LayerDef is one render pass: which states it bakes and into what vertex format.
type LayerDef interface {
	Name() string
	Bake(reg registry.Resolver, pos world.ChunkPos, provider world.BlockStateProvider) (meshing.Layer, meshing.BakeStats)
}

type layerDef[T any] struct {
	name   string
	filter FilterFunc
	mapper meshing.VertexMapper[T]
}

// NewLayer defines a layer. A nil filter bakes every state.
func NewLayer[T any](name string, filter FilterFunc, mapper meshing.VertexMapper[T]) LayerDef {
	return &layerDef[T]{name: name, filter: filter, mapper: mapper}
}

func (l *layerDef[T]) Name() string { return l.name }

func (l *layerDef[T]) Bake(reg registry.Resolver, pos world.ChunkPos, provider world.BlockStateProvider) (meshing.Layer, meshing.BakeStats) {
	var filter meshing.StateFilter
	if l.filter != nil {
		filter = func(s world.ChunkBlockState) bool { return l.filter(reg, s) }
	}
	return meshing.BakeWithStats(reg, pos, l.mapper, filter, provider)
}

// Opaque accepts states that fully hide their neighbors.
func Opaque(reg registry.Resolver, state world.ChunkBlockState) bool {
	v, ok := resolveVariant(reg, state)
	return ok && !v.TransparentOrComplex
}

// TransparentOrComplex accepts everything Opaque rejects that the registry knows.
func TransparentOrComplex(reg registry.Resolver, state world.ChunkBlockState) bool {
	v, ok := resolveVariant(reg, state)
	return ok && v.TransparentOrComplex
}

func resolveVariant(reg registry.Resolver, state world.ChunkBlockState) (*registry.BlockVariant, bool) {
	key, ok := state.Key()
	if !ok {
		return nil, false
	}
	_, v, ok := reg.Resolve(key)
	return v, ok && v != nil
}

const (
	TerrainLayerName     = "terrain"
	TransparentLayerName = "transparent"
)

// DefaultLayers are the opaque terrain pass followed by the transparent pass.
func DefaultLayers() []LayerDef {
	return []LayerDef{
		NewLayer(TerrainLayerName, Opaque, MapChunkVertex),
		NewLayer(TransparentLayerName, TransparentOrComplex, MapChunkVertex),
	}
}
