// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device is a headless rendering device. Implementations confine their
// driver calls as the driver requires; callers use a Device from one
// goroutine at a time.
type Device interface {
	// AdapterInfo describes the adapter backing the device.
	AdapterInfo() gpucontext.AdapterInfo

	// Resize sets the default viewport to width x height.
	Resize(width, height int) error

	// NewBuffer uploads interleaved quad vertices (x, y, u, v per vertex).
	NewBuffer(vertices []float32) (Buffer, error)

	// CompileProgram compiles and links a vertex and fragment stage. Compile
	// and link failures are returned as *CompileError.
	CompileProgram(vertex, fragment string) (Program, error)

	// NewTexture creates a 2-D texture. pixels holds tightly packed rows in
	// desc.Format, bottom row first, or nil for an uninitialized texture.
	NewTexture(desc TextureDesc, pixels []byte) (Texture, error)

	// NewFramebuffer creates a framebuffer with one color attachment per
	// target, in attachment order.
	NewFramebuffer(targets ...Texture) (Framebuffer, error)

	// NewVertexArray binds buf to the position and texcoord attributes of
	// prog.
	NewVertexArray(prog Program, buf Buffer) (VertexArray, error)

	// Destroy releases the device and every resource still alive on it.
	Destroy()
}

// DeviceFactory creates a device with an initial surface size.
type DeviceFactory func(width, height int) (Device, error)

// TextureDesc describes a texture.
type TextureDesc struct {
	Width, Height int
	Format        gputypes.TextureFormat
	Filter        gputypes.FilterMode
}

// Buffer is a vertex buffer.
type Buffer interface {
	Release()
}

// Program is a linked shader program.
type Program interface {
	// HasUniform reports whether the program declares an active uniform
	// with the given name.
	HasUniform(name string) bool

	// SetUniformInt sets an int or sampler uniform. Unknown names are ignored.
	SetUniformInt(name string, v int32)

	// SetUniformFloats sets a float or vecN uniform from len(v) components.
	// Unknown names are ignored.
	SetUniformFloats(name string, v ...float32)

	// Use makes the program current.
	Use()

	Release()
}

// Texture is a 2-D texture.
type Texture interface {
	// Bind binds the texture to a texture unit.
	Bind(unit int)
	Release()
}

// Framebuffer is a render target with one or more color attachments.
type Framebuffer interface {
	// Bind makes the framebuffer the draw target with every attachment enabled.
	Bind()

	// Clear fills every attachment with c.
	Clear(c gputypes.Color)

	// Read returns the RGBA8 pixels of a color attachment, bottom row first.
	Read(attachment int) ([]byte, error)

	Release()
}

// VertexArray binds a program's vertex attributes to a buffer.
type VertexArray interface {
	// Draw issues a draw call of count vertices starting at first.
	Draw(topology gputypes.PrimitiveTopology, first, count int) error
	Release()
}

// QuadVertices is a full-screen quad as a triangle strip, interleaved as
// position (x, y) and texture coordinate (u, v).
var QuadVertices = []float32{
	-1, -1, 0, 0,
	1, -1, 1, 0,
	-1, 1, 0, 1,
	1, 1, 1, 1,
}

// QuadVertexCount is the number of vertices in QuadVertices.
const QuadVertexCount = 4
