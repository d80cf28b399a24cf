package graphics

import (
	"fmt"
	"log"
	"os"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var logger = log.New(os.Stderr, "[graphics] ", log.LstdFlags)

// GLDevice creates OpenGL vertex buffers. gl.Init must have been called and
// every method must run on the thread that owns the context.
type GLDevice struct {
	// MaxBytes caps the total size of live buffers; zero means no cap.
	MaxBytes  int
	allocated int
}

// NewGLDevice returns a device bound to the current GL context.
func NewGLDevice(maxBytes int) *GLDevice {
	return &GLDevice{MaxBytes: maxBytes}
}

// Allocated returns the bytes held by live buffers.
func (d *GLDevice) Allocated() int {
	return d.allocated
}

func (d *GLDevice) CreateVertexBuffer(label string, contents []byte) (Buffer, error) {
	if d.MaxBytes > 0 && d.allocated+len(contents) > d.MaxBytes {
		return nil, fmt.Errorf("%s: need %d bytes, %d/%d in use: %w", label, len(contents), d.allocated, d.MaxBytes, ErrOutOfDeviceMemory)
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return nil, fmt.Errorf("%s: glGenBuffers returned 0: %w", label, ErrBufferCreation)
	}

	var data unsafe.Pointer
	if len(contents) > 0 {
		data = gl.Ptr(contents)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(contents), data, gl.STATIC_DRAW)
	code := gl.GetError()
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	switch code {
	case gl.NO_ERROR:
	case gl.OUT_OF_MEMORY:
		gl.DeleteBuffers(1, &vbo)
		return nil, fmt.Errorf("%s: %d bytes: %w", label, len(contents), ErrOutOfDeviceMemory)
	default:
		gl.DeleteBuffers(1, &vbo)
		logger.Printf("gl error %s: 0x%x", label, code)
		return nil, fmt.Errorf("%s: gl error 0x%x: %w", label, code, ErrBufferCreation)
	}

	d.allocated += len(contents)
	return &glBuffer{id: vbo, size: len(contents), device: d}, nil
}

type glBuffer struct {
	id     uint32
	size   int
	device *GLDevice
}

func (b *glBuffer) Size() int { return b.size }

// ID is the GL buffer name for binding.
func (b *glBuffer) ID() uint32 { return b.id }

func (b *glBuffer) Release() {
	if b.id == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
	b.device.allocated -= b.size
}
