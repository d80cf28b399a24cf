package meshing

import (
	"bytes"
	"math/rand"
	"testing"

	"mc-bake/internal/registry"
	"mc-bake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVertex struct {
	X, Y, Z float32
	Texture uint32
}

func testMapper(v *registry.Vertex, x, y, z float32) testVertex {
	return testVertex{X: v.Position.X() + x, Y: v.Position.Y() + y, Z: v.Position.Z() + z, Texture: v.Texture}
}

type fakeEntry struct {
	attrs   registry.Attributes
	variant *registry.BlockVariant
}

// fakeRegistry resolves a fixed set of keys.
type fakeRegistry map[world.BlockStateKey]fakeEntry

func (r fakeRegistry) Resolve(key world.BlockStateKey) (registry.Attributes, *registry.BlockVariant, bool) {
	e, ok := r[key]
	if !ok {
		return nil, nil, false
	}
	return e.attrs, e.variant, true
}

func quad(tex uint32) []registry.Vertex {
	verts := make([]registry.Vertex, 6)
	for i := range verts {
		verts[i] = registry.Vertex{Position: mgl32.Vec3{float32(i%2) * 0.5, 0.25, 0}, Texture: tex}
	}
	return verts
}

func cubeShape(skip ...world.Direction) registry.Shape {
	cube := &registry.CubeModel{}
	for _, d := range world.Directions {
		cube.Faces[d] = quad(uint32(d))
	}
	for _, d := range skip {
		cube.Faces[d] = nil
	}
	return registry.Shape{Cube: cube}
}

func complexShape(groups int) registry.Shape {
	s := registry.Shape{Complex: make([]registry.FaceGroup, groups)}
	for g := range s.Complex {
		s.Complex[g].Faces[world.North] = quad(100)
		s.Complex[g].Faces[world.Up] = quad(101)
	}
	return s
}

var (
	stoneKey   = world.BlockStateKey{Block: 1}
	glassKey   = world.BlockStateKey{Block: 2}
	slabKey    = world.BlockStateKey{Block: 3}
	holeKey    = world.BlockStateKey{Block: 4}
	anvilNKey  = world.BlockStateKey{Block: 5, Augment: 0}
	anvilSKey  = world.BlockStateKey{Block: 5, Augment: 1}
	unknownKey = world.BlockStateKey{Block: 99}
)

func newFakeRegistry() fakeRegistry {
	anvil := &registry.Multipart{Rules: []registry.MultipartRule{
		{Shape: complexShape(1)},
		{When: registry.When(map[string]string{"facing": "north"}), Shape: complexShape(3)},
		{When: registry.When(map[string]string{"facing": "south|east"}), Shape: cubeShape(world.Up, world.Down)},
	}}
	anvilVariant := &registry.BlockVariant{TransparentOrComplex: true, Kind: registry.Kind{Multipart: anvil}}
	return fakeRegistry{
		stoneKey:  {variant: &registry.BlockVariant{Kind: registry.Kind{Shape: cubeShape()}}},
		glassKey:  {variant: &registry.BlockVariant{TransparentOrComplex: true, Kind: registry.Kind{Shape: cubeShape()}}},
		slabKey:   {variant: &registry.BlockVariant{TransparentOrComplex: true, Kind: registry.Kind{Shape: complexShape(1)}}},
		holeKey:   {variant: &registry.BlockVariant{Kind: registry.Kind{Shape: cubeShape(world.North)}}},
		anvilNKey: {attrs: registry.Attributes{"facing": "north"}, variant: anvilVariant},
		anvilSKey: {attrs: registry.Attributes{"facing": "south"}, variant: anvilVariant},
	}
}

func TestFullChunkOnlyBoundaryFaces(t *testing.T) {
	p := world.NewArrayProvider()
	p.Fill(0, 0, 0, world.ChunkWidth, world.ChunkHeight, world.ChunkWidth, world.State(stoneKey))

	layer := Bake(newFakeRegistry(), world.ChunkPos{}, testMapper, nil, p)

	horizontal := world.ChunkArea * 6
	vertical := world.ChunkWidth * world.ChunkHeight * 6
	assert.Equal(t, horizontal, layer.Len(world.Up))
	assert.Equal(t, horizontal, layer.Len(world.Down))
	for _, d := range []world.Direction{world.North, world.South, world.East, world.West} {
		assert.Equal(t, vertical, layer.Len(d), d.String())
	}
	assert.Zero(t, layer.OtherLen())

	for _, v := range layer.Bucket(world.Up) {
		assert.Equal(t, float32(world.ChunkHeight-1)+0.25, v.Y)
	}
	for _, v := range layer.Bucket(world.West) {
		assert.Less(t, v.X, float32(1))
	}
}

func TestSingleCubeGetsEveryFace(t *testing.T) {
	p := world.NewArrayProvider()
	p.SetState(5, 40, 7, world.State(stoneKey))

	pos := world.ChunkPos{X: 2, Z: -1}
	layer, stats := BakeWithStats(newFakeRegistry(), pos, testMapper, nil, p)

	for _, d := range world.Directions {
		bucket := layer.Bucket(d)
		require.Len(t, bucket, 6, d.String())
		assert.Equal(t, uint32(d), bucket[0].Texture)
		assert.Equal(t, float32(2*16+5), bucket[0].X)
		assert.Equal(t, float32(40)+0.25, bucket[0].Y)
		assert.Equal(t, float32(-16+7), bucket[0].Z)
	}
	assert.Zero(t, layer.OtherLen())
	assert.Equal(t, 36, stats.Vertices)
	assert.Equal(t, world.ChunkSections-1, stats.SkippedSections)
	assert.Equal(t, world.SectionVolume, stats.Cells)
}

func TestNilFaceNeverRenders(t *testing.T) {
	for _, neighbor := range []world.ChunkBlockState{world.Absent(), world.State(glassKey), world.State(stoneKey)} {
		p := world.NewArrayProvider()
		p.SetState(3, 3, 3, world.State(holeKey))
		p.SetState(3, 3, 2, neighbor)

		layer := Bake(newFakeRegistry(), world.ChunkPos{}, testMapper, nil, p)
		for _, v := range layer.Bucket(world.North) {
			assert.NotEqual(t, float32(3), v.Z, "hole block north face emitted next to %s", neighbor)
		}
		assert.Len(t, layer.Bucket(world.South), 6, neighbor.String())
	}
}

func TestCullingAgainstNeighbors(t *testing.T) {
	p := world.NewArrayProvider()
	p.SetState(1, 1, 1, world.State(stoneKey))
	p.SetState(2, 1, 1, world.State(stoneKey))   // opaque: hides east face
	p.SetState(0, 1, 1, world.State(glassKey))   // transparent: west face renders
	p.SetState(1, 2, 1, world.State(slabKey))    // complex: up face renders
	p.SetState(1, 0, 1, world.State(unknownKey)) // unresolvable: down face renders

	reg := newFakeRegistry()
	layer, stats := BakeWithStats(reg, world.ChunkPos{}, testMapper, func(s world.ChunkBlockState) bool {
		k, _ := s.Key()
		return k == stoneKey
	}, p)

	count := func(d world.Direction, x float32) int {
		n := 0
		for _, v := range layer.Bucket(d) {
			if v.X >= x && v.X < x+1 && v.Y >= 1 && v.Y < 2 {
				n++
			}
		}
		return n
	}
	assert.Zero(t, count(world.East, 1))
	assert.Equal(t, 6, count(world.West, 1))
	assert.Equal(t, 6, count(world.Up, 1))
	assert.Equal(t, 6, count(world.Down, 1))
	assert.Zero(t, count(world.West, 2), "second stone's west face is hidden by the first")
	assert.Zero(t, layer.OtherLen(), "filtered cells contribute nothing")
	assert.Equal(t, 3, stats.Filtered)
	assert.Zero(t, stats.Unresolved, "the unknown cell was filtered before resolving")
}

func TestFilteredNeighborStillOccludes(t *testing.T) {
	p := world.NewArrayProvider()
	p.SetState(4, 4, 4, world.State(glassKey))
	p.SetState(5, 4, 4, world.State(stoneKey))

	onlyGlass := func(s world.ChunkBlockState) bool {
		k, ok := s.Key()
		return ok && k == glassKey
	}
	layer := Bake(newFakeRegistry(), world.ChunkPos{}, testMapper, onlyGlass, p)
	assert.Empty(t, layer.Bucket(world.East))
	assert.Len(t, layer.Bucket(world.West), 6)
}

func TestUnresolvedCellsAreSkipped(t *testing.T) {
	p := world.NewArrayProvider()
	p.SetState(0, 0, 0, world.State(unknownKey))
	p.SetState(1, 0, 0, world.State(stoneKey))

	layer, stats := BakeWithStats(newFakeRegistry(), world.ChunkPos{}, testMapper, nil, p)
	assert.Equal(t, 1, stats.Unresolved)
	assert.Len(t, layer.Bucket(world.West), 6, "unknown neighbor counts as transparent")
	assert.Equal(t, 36, layer.VertexCount())
}

func TestComplexGeometryIsNeverCulled(t *testing.T) {
	p := world.NewArrayProvider()
	p.Fill(0, 0, 0, 3, 3, 3, world.State(stoneKey))
	p.SetState(1, 1, 1, world.State(slabKey))

	layer := Bake(newFakeRegistry(), world.ChunkPos{}, testMapper, nil, p)
	assert.Equal(t, complexShape(1).VertexCount(), layer.OtherLen())

	// The six stones around the slab show their faces toward it
	inner := 0
	for _, d := range world.Directions {
		for _, v := range layer.Bucket(d) {
			if v.X >= 0 && v.X < 3 && v.Y >= 0 && v.Y < 3 && v.Z >= 0 && v.Z < 3 {
				inner++
			}
		}
	}
	outer := 9 * 6 * 6 // nine cells per side, six sides, six vertices
	assert.Equal(t, outer+6*6, inner)
}

func TestMultipartFollowsAttributes(t *testing.T) {
	reg := newFakeRegistry()
	bake := func(key world.BlockStateKey) *BakedLayer[testVertex] {
		return Bake(reg, world.ChunkPos{}, testMapper, nil, world.NewSingleBlockProvider(world.State(key)))
	}

	north := bake(anvilNKey)
	south := bake(anvilSKey)

	assert.Equal(t, complexShape(1).VertexCount()+complexShape(3).VertexCount(), north.OtherLen())
	assert.Equal(t, complexShape(1).VertexCount()+cubeShape(world.Up, world.Down).VertexCount(), south.OtherLen())
	assert.NotEqual(t, north.OtherLen(), south.OtherLen())
	for _, d := range world.Directions {
		assert.Zero(t, north.Len(d), "multipart cube parts go to other")
		assert.Zero(t, south.Len(d))
	}
}

func TestSectionSkipping(t *testing.T) {
	p := world.NewArrayProvider()
	p.SetState(0, 100, 0, world.State(stoneKey))

	layer, stats := BakeWithStats(newFakeRegistry(), world.ChunkPos{}, testMapper, nil, p)
	assert.Equal(t, world.ChunkSections-1, stats.SkippedSections)
	assert.Equal(t, 36, layer.VertexCount())

	empty, stats := BakeWithStats(newFakeRegistry(), world.ChunkPos{}, testMapper, nil, world.NewArrayProvider())
	assert.Zero(t, empty.VertexCount())
	assert.Zero(t, stats.Cells)
}

func randomProvider(seed int64) *world.ArrayProvider {
	rng := rand.New(rand.NewSource(seed))
	keys := []world.BlockStateKey{stoneKey, glassKey, slabKey, holeKey, anvilNKey, anvilSKey, unknownKey}
	p := world.NewArrayProvider()
	for y := 0; y < 64; y++ {
		for z := 0; z < world.ChunkWidth; z++ {
			for x := 0; x < world.ChunkWidth; x++ {
				if rng.Intn(3) == 0 {
					continue
				}
				p.SetState(x, y, z, world.State(keys[rng.Intn(len(keys))]))
			}
		}
	}
	return p
}

func TestBakeIsDeterministic(t *testing.T) {
	reg := newFakeRegistry()
	p := randomProvider(42)

	a := Bake(reg, world.ChunkPos{X: 3, Z: 4}, testMapper, nil, p)
	b := Bake(reg, world.ChunkPos{X: 3, Z: 4}, testMapper, nil, p)

	require.NotZero(t, a.VertexCount())
	for i := 0; i < BucketCount; i++ {
		assert.True(t, bytes.Equal(a.Bytes(i), b.Bytes(i)), BucketNames[i])
	}
}

func BenchmarkBakeRandomChunk(b *testing.B) {
	reg := newFakeRegistry()
	p := randomProvider(7)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Bake(reg, world.ChunkPos{}, testMapper, nil, p)
	}
}
