package meshing

import (
	"fmt"
	"unsafe"

	"mc-bake/internal/graphics"
	"mc-bake/internal/profiling"
	"mc-bake/internal/world"
)

// BucketCount is the six directions plus Other.
const BucketCount = world.DirectionCount + 1

// BucketNames labels the buckets in Buckets order.
var BucketNames = [BucketCount]string{"top", "bottom", "north", "south", "east", "west", "other"}

// Layer is the type-erased view of a BakedLayer.
type Layer interface {
	Len(d world.Direction) int
	OtherLen() int
	VertexCount() int
	Upload(device graphics.Device, label string) (*graphics.WorldBuffers, error)
}

// BakedLayer holds baked vertices split by the direction their cube face
// points. Other collects everything that is never culled: complex and
// multipart geometry. T must be plain fixed-size data; its memory is
// uploaded as is.
type BakedLayer[T any] struct {
	Faces [world.DirectionCount][]T
	Other []T
}

// NewBakedLayer returns an empty layer.
func NewBakedLayer[T any]() *BakedLayer[T] {
	return &BakedLayer[T]{}
}

// Bucket returns the vertices of one direction.
func (l *BakedLayer[T]) Bucket(d world.Direction) []T {
	return l.Faces[d]
}

// Buckets returns all seven buckets: directions in world.Directions order, then Other.
func (l *BakedLayer[T]) Buckets() [BucketCount][]T {
	var out [BucketCount][]T
	copy(out[:world.DirectionCount], l.Faces[:])
	out[world.DirectionCount] = l.Other
	return out
}

func (l *BakedLayer[T]) Len(d world.Direction) int {
	return len(l.Faces[d])
}

func (l *BakedLayer[T]) OtherLen() int {
	return len(l.Other)
}

// VertexCount sums all buckets.
func (l *BakedLayer[T]) VertexCount() int {
	n := len(l.Other)
	for _, f := range l.Faces {
		n += len(f)
	}
	return n
}

// Merge appends other's buckets onto l's, keeping order, and returns l.
// other is left untouched.
func (l *BakedLayer[T]) Merge(other *BakedLayer[T]) *BakedLayer[T] {
	if other == nil {
		return l
	}
	for d := range l.Faces {
		l.Faces[d] = append(l.Faces[d], other.Faces[d]...)
	}
	l.Other = append(l.Other, other.Other...)
	return l
}

// Clone returns a deep copy.
func (l *BakedLayer[T]) Clone() *BakedLayer[T] {
	out := &BakedLayer[T]{}
	for d := range l.Faces {
		if l.Faces[d] != nil {
			out.Faces[d] = append([]T(nil), l.Faces[d]...)
		}
	}
	if l.Other != nil {
		out.Other = append([]T(nil), l.Other...)
	}
	return out
}

// Bytes returns the raw memory of bucket i (see Buckets). The slice aliases
// the layer.
func (l *BakedLayer[T]) Bytes(i int) []byte {
	return asBytes(l.Buckets()[i])
}

func asBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// Upload creates one vertex buffer per bucket. Empty buckets get empty
// buffers. On failure every buffer created so far is released.
func (l *BakedLayer[T]) Upload(device graphics.Device, label string) (*graphics.WorldBuffers, error) {
	defer profiling.Track("meshing.Upload")()

	out := &graphics.WorldBuffers{}
	for i, bucket := range l.Buckets() {
		buf, err := device.CreateVertexBuffer(label+"."+BucketNames[i], asBytes(bucket))
		if err != nil {
			out.Release()
			return nil, fmt.Errorf("upload %s: %w", label, err)
		}
		sized := graphics.SizedBuffer{Buffer: buf, VertexCount: len(bucket)}
		if i < world.DirectionCount {
			out.Directions[i] = sized
		} else {
			out.Rest = sized
		}
	}
	return out, nil
}
