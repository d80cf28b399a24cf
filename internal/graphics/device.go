// Package graphics is the GPU side of baked layers: a minimal device
// abstraction that turns raw vertex bytes into vertex buffers.
package graphics

import (
	"errors"
	"fmt"
	"sync"

	"mc-bake/internal/world"
)

var (
	// ErrOutOfDeviceMemory means the device could not hold the buffer.
	ErrOutOfDeviceMemory = errors.New("graphics: out of device memory")
	// ErrBufferCreation covers every other buffer creation failure.
	ErrBufferCreation = errors.New("graphics: buffer creation failed")
)

// Buffer is a device vertex buffer.
type Buffer interface {
	Size() int
	Release()
}

// Device creates vertex buffers. Implementations may require being called
// from the thread that owns the graphics context.
type Device interface {
	CreateVertexBuffer(label string, contents []byte) (Buffer, error)
}

// SizedBuffer is a buffer tagged with the number of vertices it holds.
type SizedBuffer struct {
	Buffer      Buffer
	VertexCount int
}

// Empty reports whether there is nothing to draw.
func (b SizedBuffer) Empty() bool {
	return b.VertexCount == 0
}

// WorldBuffers is one uploaded layer: a buffer per direction plus one for
// geometry without a facing.
type WorldBuffers struct {
	Directions [world.DirectionCount]SizedBuffer
	Rest       SizedBuffer
}

// Bucket returns the buffer of one direction.
func (w *WorldBuffers) Bucket(d world.Direction) SizedBuffer {
	return w.Directions[d]
}

func (w *WorldBuffers) Top() SizedBuffer    { return w.Directions[world.Up] }
func (w *WorldBuffers) Bottom() SizedBuffer { return w.Directions[world.Down] }
func (w *WorldBuffers) North() SizedBuffer  { return w.Directions[world.North] }
func (w *WorldBuffers) South() SizedBuffer  { return w.Directions[world.South] }
func (w *WorldBuffers) East() SizedBuffer   { return w.Directions[world.East] }
func (w *WorldBuffers) West() SizedBuffer   { return w.Directions[world.West] }
func (w *WorldBuffers) Other() SizedBuffer  { return w.Rest }

// VertexCount sums all seven buffers.
func (w *WorldBuffers) VertexCount() int {
	n := w.Rest.VertexCount
	for _, b := range w.Directions {
		n += b.VertexCount
	}
	return n
}

// Release frees every buffer. Safe to call more than once.
func (w *WorldBuffers) Release() {
	for i := range w.Directions {
		if w.Directions[i].Buffer != nil {
			w.Directions[i].Buffer.Release()
			w.Directions[i].Buffer = nil
		}
	}
	if w.Rest.Buffer != nil {
		w.Rest.Buffer.Release()
		w.Rest.Buffer = nil
	}
}

// MemoryDevice keeps buffers in host memory. It backs headless runs and
// tests; a non-zero Budget makes it fail like a full GPU.
type MemoryDevice struct {
	Budget int

	mu        sync.Mutex
	allocated int
	live      int
}

// NewMemoryDevice creates a device that refuses allocations beyond budget
// bytes. A budget of zero is unlimited.
func NewMemoryDevice(budget int) *MemoryDevice {
	return &MemoryDevice{Budget: budget}
}

func (d *MemoryDevice) CreateVertexBuffer(label string, contents []byte) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Budget > 0 && d.allocated+len(contents) > d.Budget {
		return nil, fmt.Errorf("%s: %d bytes with %d of %d in use: %w", label, len(contents), d.allocated, d.Budget, ErrOutOfDeviceMemory)
	}
	d.allocated += len(contents)
	d.live++
	return &MemoryBuffer{Label: label, data: append([]byte(nil), contents...), device: d}, nil
}

// Allocated returns the bytes held by live buffers.
func (d *MemoryDevice) Allocated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocated
}

// Live returns the number of buffers not yet released.
func (d *MemoryDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// MemoryBuffer is a MemoryDevice buffer.
type MemoryBuffer struct {
	Label    string
	data     []byte
	device   *MemoryDevice
	released bool
}

func (b *MemoryBuffer) Size() int { return len(b.data) }

// Bytes returns the buffer contents.
func (b *MemoryBuffer) Bytes() []byte { return b.data }

func (b *MemoryBuffer) Release() {
	b.device.mu.Lock()
	defer b.device.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.device.allocated -= len(b.data)
	b.device.live--
}
