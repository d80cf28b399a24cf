package main

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"mc-bake/internal/graphics"
)

// setupGL opens a hidden window so buffers can be created on a real context.
// The returned func destroys the window and terminates glfw.
func setupGL(budget int) (*graphics.GLDevice, func(), error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(64, 64, "bake-demo", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, nil, err
	}

	release := func() {
		window.Destroy()
		glfw.Terminate()
	}
	return graphics.NewGLDevice(budget), release, nil
}
