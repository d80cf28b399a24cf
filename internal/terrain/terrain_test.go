package terrain

import (
	"context"
	"errors"
	"testing"
	"unsafe"

	"mc-bake/internal/assettest"
	"mc-bake/internal/assettest/testassets"
	"mc-bake/internal/graphics"
	"mc-bake/internal/meshing"
	"mc-bake/internal/registry"
	"mc-bake/internal/world"
	"mc-bake/pkg/blockmodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBlocks struct {
	reg   *registry.BlockManager
	stone world.ChunkBlockState
	glass world.ChunkBlockState
	slab  world.ChunkBlockState
}

func newTestRegistry(t *testing.T) *testBlocks {
	t.Helper()
	loader := blockmodel.NewLoader(testassets.Dir(t))
	reg := registry.NewBlockManager(loader)
	specs := []registry.BlockSpec{{Name: "stone"}, {Name: "glass", Transparent: true}, {Name: "slab"}, {Name: "anvil"}}
	_, err := registry.RegisterFromAssets(reg, loader, specs)
	require.NoError(t, err)

	state := func(name string) world.ChunkBlockState {
		block, augment, err := registry.DefaultState(reg, name, nil)
		require.NoError(t, err)
		return world.State(world.BlockStateKey{Block: block, Augment: augment})
	}
	return &testBlocks{reg: reg, stone: state("stone"), glass: state("glass"), slab: state("slab")}
}

func (b *testBlocks) anvil(t *testing.T, facing string) world.ChunkBlockState {
	t.Helper()
	block, augment, err := registry.DefaultState(b.reg, "anvil", map[string]string{"facing": facing})
	require.NoError(t, err)
	return world.State(world.BlockStateKey{Block: block, Augment: augment})
}

func TestSingleAnvilEndToEnd(t *testing.T) {
	blocks := newTestRegistry(t)
	device := graphics.NewMemoryDevice(0)

	bake := func(facing string) (*Chunk, map[string]*graphics.WorldBuffers) {
		c := NewChunk(world.ChunkPos{})
		c.Bake(DefaultLayers(), blocks.reg, world.NewSingleBlockProvider(blocks.anvil(t, facing)))
		buffers, err := c.Upload(device)
		require.NoError(t, err)
		return c, buffers
	}

	north, northBuffers := bake("north")
	layer, ok := north.Layer(TransparentLayerName)
	require.True(t, ok)
	assert.Equal(t, assettest.AnvilBase+assettest.AnvilTopNorth, layer.OtherLen())
	for _, d := range world.Directions {
		assert.Zero(t, layer.Len(d), d.String())
	}

	other := northBuffers[TransparentLayerName].Other()
	assert.Equal(t, layer.OtherLen(), other.VertexCount)
	assert.Equal(t, layer.OtherLen()*int(unsafe.Sizeof(ChunkVertex{})), other.Buffer.Size())

	terrain, ok := north.Layer(TerrainLayerName)
	require.True(t, ok)
	assert.Zero(t, terrain.VertexCount(), "anvils are not opaque")
	assert.Zero(t, northBuffers[TerrainLayerName].VertexCount())

	south, _ := bake("south")
	southLayer, _ := south.Layer(TransparentLayerName)
	assert.Equal(t, assettest.AnvilBase+assettest.AnvilTopSouth, southLayer.OtherLen())
	assert.NotEqual(t, layer.OtherLen(), southLayer.OtherLen())
}

func TestDefaultLayersSplitOpaqueAndTransparent(t *testing.T) {
	blocks := newTestRegistry(t)
	p := world.NewArrayProvider()
	p.SetState(0, 0, 0, blocks.stone)
	p.SetState(1, 0, 0, blocks.glass)
	p.SetState(3, 0, 0, blocks.slab)

	c := NewChunk(world.ChunkPos{X: 1, Z: 1})
	res := c.Bake(DefaultLayers(), blocks.reg, p)
	assert.Equal(t, []string{TerrainLayerName, TransparentLayerName}, c.LayerNames())

	terrain, _ := c.Layer(TerrainLayerName)
	transparent, _ := c.Layer(TransparentLayerName)

	// stone: east face shows through the glass
	assert.Equal(t, 6*assettest.VerticesPerFace, terrain.VertexCount())
	// glass: west face hidden by stone; slab: complex, all faces in other
	assert.Equal(t, 5*assettest.VerticesPerFace, transparent.VertexCount()-transparent.OtherLen())
	assert.Equal(t, 6*assettest.VerticesPerFace, transparent.OtherLen())
	assert.Equal(t, terrain.VertexCount()+transparent.VertexCount(), res.Vertices())
}

func TestChunkVertexInWorldSpace(t *testing.T) {
	blocks := newTestRegistry(t)
	layer := meshing.Bake(blocks.reg.Snapshot(), world.ChunkPos{X: -1, Z: 2}, MapChunkVertex, nil,
		world.NewSingleBlockProvider(blocks.stone))

	for _, v := range layer.Bucket(world.Up) {
		assert.Equal(t, float32(1), v.Position[1])
		assert.GreaterOrEqual(t, v.Position[0], float32(-16))
		assert.LessOrEqual(t, v.Position[0], float32(-15))
		assert.GreaterOrEqual(t, v.Position[2], float32(32))
		assert.LessOrEqual(t, v.Position[2], float32(33))
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
	}
}

func TestRebakeReplacesLayers(t *testing.T) {
	blocks := newTestRegistry(t)
	provider := world.NewSingleBlockProvider(blocks.stone)
	c := NewChunk(world.ChunkPos{})

	c.Bake(DefaultLayers(), blocks.reg, provider)
	require.Len(t, c.LayerNames(), 2)

	c.Bake([]LayerDef{NewLayer("everything", nil, MapChunkVertex)}, blocks.reg, provider)
	assert.Equal(t, []string{"everything"}, c.LayerNames())
	_, ok := c.Layer(TerrainLayerName)
	assert.False(t, ok)
}

func TestNeighborChunksCullSharedFaces(t *testing.T) {
	blocks := newTestRegistry(t)
	store := world.NewChunkStore()
	left := world.ChunkPos{X: 0, Z: 0}
	right := world.ChunkPos{X: 1, Z: 0}
	store.GetChunk(left, true).Fill(0, 0, 0, world.ChunkWidth, 1, world.ChunkWidth, blocks.stone)

	east := func() int {
		c := NewChunk(left)
		c.Bake(DefaultLayers(), blocks.reg, store.Provider(left))
		l, _ := c.Layer(TerrainLayerName)
		return l.Len(world.East)
	}

	assert.Equal(t, world.ChunkWidth*assettest.VerticesPerFace, east(), "unloaded neighbor counts as transparent")

	store.GetChunk(right, true).Fill(0, 0, 0, world.ChunkWidth, 1, world.ChunkWidth, blocks.stone)
	assert.Zero(t, east())
}

func TestUploadFailureReleasesEverything(t *testing.T) {
	blocks := newTestRegistry(t)
	p := world.NewArrayProvider()
	p.SetState(0, 0, 0, blocks.stone)
	p.SetState(5, 0, 0, blocks.slab)

	c := NewChunk(world.ChunkPos{})
	c.Bake(DefaultLayers(), blocks.reg, p)

	device := graphics.NewMemoryDevice(100)
	_, err := c.Upload(device)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graphics.ErrOutOfDeviceMemory))
	assert.Zero(t, device.Live())
}

func TestBakeAll(t *testing.T) {
	blocks := newTestRegistry(t)
	store := world.NewChunkStore()
	world.NewGenerator(1).PopulateStore(store, 1, world.Palette{Floor: blocks.stone, Fill: blocks.stone, Surface: blocks.glass})

	positions := store.Positions()
	chunks := make([]*Chunk, len(positions))
	for i, pos := range positions {
		chunks[i] = NewChunk(pos)
	}

	results, err := BakeAll(context.Background(), chunks, DefaultLayers(), blocks.reg, store.Provider, 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 9)
	for i, res := range results {
		assert.Equal(t, positions[i], res.Pos)
		assert.NotZero(t, res.Vertices(), res.Pos)
		assert.Equal(t, []string{TerrainLayerName, TransparentLayerName}, chunks[i].LayerNames())
	}
}

func TestBakeAllCancelled(t *testing.T) {
	blocks := newTestRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := []*Chunk{NewChunk(world.ChunkPos{}), NewChunk(world.ChunkPos{X: 1})}
	_, err := BakeAll(ctx, chunks, DefaultLayers(), blocks.reg, func(world.ChunkPos) world.BlockStateProvider {
		return world.NewSingleBlockProvider(blocks.stone)
	}, 2, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, chunks[0].LayerNames())
}
