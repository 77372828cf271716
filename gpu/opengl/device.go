// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package opengl implements gpu.Device on OpenGL 3.3 core, using a hidden
// GLFW window as the headless context.
//
// Importing the package registers the "opengl" render backend:
//
//	import _ "github.com/gogpu/blendpack/gpu/opengl"
package opengl

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/internal/glsl"
	"github.com/gogpu/blendpack/internal/logging"
)

// ErrDestroyed is returned by calls on a destroyed device.
var ErrDestroyed = errors.New("opengl: device destroyed")

// glfw is initialized once per process and terminated with the last device.
var (
	glfwMu   sync.Mutex
	glfwRefs int
)

// Device is an OpenGL 3.3 core device.
type Device struct {
	th     *thread
	window *glfw.Window
	info   gpucontext.AdapterInfo

	mu        sync.Mutex
	destroyed bool
}

var _ gpu.Device = (*Device)(nil)

// NewDevice creates a hidden window of width x height with an OpenGL 3.3
// core context. It implements gpu.DeviceFactory.
func NewDevice(width, height int) (gpu.Device, error) {
	d := &Device{th: newThread()}
	var err error
	d.th.do(func() { err = d.init(width, height) })
	if err != nil {
		d.th.stop()
		return nil, err
	}
	logging.Logger().Info("opengl: context created",
		"renderer", d.info.Name, "type", d.info.Type.String())
	return d, nil
}

func (d *Device) init(width, height int) error {
	glfwMu.Lock()
	defer glfwMu.Unlock()

	if glfwRefs == 0 {
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("opengl: glfw init: %w", err)
		}
	}
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(max(width, 1), max(height, 1), "blendpack", nil, nil)
	if err != nil {
		if glfwRefs == 0 {
			glfw.Terminate()
		}
		return fmt.Errorf("opengl: create window: %w", err)
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		win.Destroy()
		if glfwRefs == 0 {
			glfw.Terminate()
		}
		return fmt.Errorf("opengl: load functions: %w", err)
	}
	glfwRefs++

	d.window = win
	name := gl.GoStr(gl.GetString(gl.RENDERER))
	d.info = gpucontext.AdapterInfo{Name: name, Type: classify(name)}
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	return nil
}

// classify guesses the adapter type from the GL_RENDERER string.
func classify(renderer string) gpucontext.AdapterType {
	r := strings.ToLower(renderer)
	switch {
	case r == "":
		return gpucontext.AdapterTypeUnknown
	case strings.Contains(r, "llvmpipe"), strings.Contains(r, "softpipe"),
		strings.Contains(r, "swiftshader"), strings.Contains(r, "software"):
		return gpucontext.AdapterTypeSoftware
	case strings.Contains(r, "intel"), strings.Contains(r, "apple"):
		return gpucontext.AdapterTypeIntegrated
	case strings.Contains(r, "nvidia"), strings.Contains(r, "geforce"),
		strings.Contains(r, "radeon"), strings.Contains(r, "amd"):
		return gpucontext.AdapterTypeDiscrete
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// AdapterInfo implements gpu.Device.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return d.info
}

// run executes f on the device thread unless the device is destroyed.
func (d *Device) run(f func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}
	var err error
	d.th.do(func() { err = f() })
	return err
}

// Resize implements gpu.Device.
func (d *Device) Resize(width, height int) error {
	return d.run(func() error {
		d.window.SetSize(max(width, 1), max(height, 1))
		gl.Viewport(0, 0, int32(width), int32(height))
		return glError("resize")
	})
}

// Destroy implements gpu.Device.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.th.do(func() {
		glfwMu.Lock()
		defer glfwMu.Unlock()
		d.window.Destroy()
		glfw.DetachCurrentContext()
		glfwRefs--
		if glfwRefs == 0 {
			glfw.Terminate()
		}
	})
	d.th.stop()
}

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(vertices []float32) (gpu.Buffer, error) {
	b := &buffer{d: d}
	err := d.run(func() error {
		gl.GenBuffers(1, &b.id)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		return glError("buffer")
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(desc gpu.TextureDesc, pixels []byte) (gpu.Texture, error) {
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("opengl: unsupported texture format %v", desc.Format)
	}
	if pixels != nil && len(pixels) != desc.Width*desc.Height*4 {
		return nil, fmt.Errorf("opengl: texture data is %d bytes, want %d", len(pixels), desc.Width*desc.Height*4)
	}
	filter := int32(gl.LINEAR)
	if desc.Filter == gputypes.FilterModeNearest {
		filter = gl.NEAREST
	}

	t := &texture{d: d, w: desc.Width, h: desc.Height}
	err := d.run(func() error {
		gl.GenTextures(1, &t.id)
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		ptr := gl.Ptr(nil)
		if len(pixels) > 0 {
			ptr = gl.Ptr(pixels)
		}
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, ptr)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return glError("texture")
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewFramebuffer implements gpu.Device.
func (d *Device) NewFramebuffer(targets ...gpu.Texture) (gpu.Framebuffer, error) {
	if len(targets) == 0 {
		return nil, errors.New("opengl: framebuffer needs at least one target")
	}
	fb := &framebuffer{d: d}
	for _, t := range targets {
		tex, ok := t.(*texture)
		if !ok {
			return nil, fmt.Errorf("opengl: foreign texture %T", t)
		}
		fb.targets = append(fb.targets, tex)
	}
	fb.w, fb.h = fb.targets[0].w, fb.targets[0].h

	err := d.run(func() error {
		gl.GenFramebuffers(1, &fb.id)
		gl.BindFramebuffer(gl.FRAMEBUFFER, fb.id)
		for i, t := range fb.targets {
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, t.id, 0)
		}
		status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		if status != gl.FRAMEBUFFER_COMPLETE {
			gl.DeleteFramebuffers(1, &fb.id)
			return fmt.Errorf("opengl: framebuffer incomplete: 0x%x", status)
		}
		return glError("framebuffer")
	})
	if err != nil {
		return nil, err
	}
	return fb, nil
}

// NewVertexArray implements gpu.Device.
func (d *Device) NewVertexArray(prog gpu.Program, buf gpu.Buffer) (gpu.VertexArray, error) {
	p, ok := prog.(*program)
	if !ok {
		return nil, fmt.Errorf("opengl: foreign program %T", prog)
	}
	b, ok := buf.(*buffer)
	if !ok {
		return nil, fmt.Errorf("opengl: foreign buffer %T", buf)
	}

	va := &vertexArray{d: d}
	err := d.run(func() error {
		gl.GenVertexArrays(1, &va.id)
		gl.BindVertexArray(va.id)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
		const stride = 4 * 4
		attrs := []struct {
			name   string
			offset uintptr
		}{
			{glsl.AttribPosition, 0},
			{glsl.AttribTexCoord, 2 * 4},
		}
		for _, a := range attrs {
			loc := gl.GetAttribLocation(p.id, gl.Str(a.name+"\x00"))
			if loc < 0 {
				continue
			}
			gl.EnableVertexAttribArray(uint32(loc))
			gl.VertexAttribPointerWithOffset(uint32(loc), 2, gl.FLOAT, false, stride, a.offset)
		}
		gl.BindVertexArray(0)
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		return glError("vertex array")
	})
	if err != nil {
		return nil, err
	}
	return va, nil
}

// glError drains the GL error queue and reports the first error.
func glError(op string) error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return fmt.Errorf("opengl: %s: GL error 0x%x", op, first)
	}
	return nil
}
