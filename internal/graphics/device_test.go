package graphics

import (
	"errors"
	"testing"

	"mc-bake/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeviceBudget(t *testing.T) {
	d := NewMemoryDevice(8)

	a, err := d.CreateVertexBuffer("a", make([]byte, 6))
	require.NoError(t, err)
	assert.Equal(t, 6, a.Size())

	_, err = d.CreateVertexBuffer("b", make([]byte, 3))
	assert.True(t, errors.Is(err, ErrOutOfDeviceMemory))
	assert.False(t, errors.Is(err, ErrBufferCreation))

	empty, err := d.CreateVertexBuffer("empty", nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Size())

	a.Release()
	a.Release()
	assert.Zero(t, d.Allocated())
	assert.Equal(t, 1, d.Live())

	_, err = d.CreateVertexBuffer("b", make([]byte, 3))
	assert.NoError(t, err)
}

func TestMemoryBufferCopiesContents(t *testing.T) {
	d := NewMemoryDevice(0)
	src := []byte{1, 2, 3}
	b, err := d.CreateVertexBuffer("copy", src)
	require.NoError(t, err)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, b.(*MemoryBuffer).Bytes())
}

func TestWorldBuffersRelease(t *testing.T) {
	d := NewMemoryDevice(0)
	var wb WorldBuffers
	for i := range wb.Directions {
		b, err := d.CreateVertexBuffer(world.Direction(i).String(), make([]byte, 4))
		require.NoError(t, err)
		wb.Directions[i] = SizedBuffer{Buffer: b, VertexCount: 1}
	}
	rest, err := d.CreateVertexBuffer("other", nil)
	require.NoError(t, err)
	wb.Rest = SizedBuffer{Buffer: rest}

	assert.Equal(t, 6, wb.VertexCount())
	assert.Equal(t, 1, wb.North().VertexCount)
	assert.True(t, wb.Other().Empty())
	assert.Equal(t, 7, d.Live())

	wb.Release()
	wb.Release()
	assert.Zero(t, d.Live())
	assert.Zero(t, d.Allocated())
}

func TestGraphicsLoggerPrefix(t *testing.T) {
	assert.Equal(t, "[graphics] ", logger.Prefix())
}
