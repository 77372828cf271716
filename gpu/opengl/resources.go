// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"
)

type buffer struct {
	d  *Device
	id uint32
}

func (b *buffer) Release() {
	_ = b.d.run(func() error {
		gl.DeleteBuffers(1, &b.id)
		return nil
	})
}

type texture struct {
	d    *Device
	id   uint32
	w, h int
}

func (t *texture) Bind(unit int) {
	_ = t.d.run(func() error {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		return nil
	})
}

func (t *texture) Release() {
	_ = t.d.run(func() error {
		gl.DeleteTextures(1, &t.id)
		return nil
	})
}

type framebuffer struct {
	d       *Device
	id      uint32
	w, h    int
	targets []*texture
}

func (f *framebuffer) Bind() {
	_ = f.d.run(func() error {
		gl.BindFramebuffer(gl.FRAMEBUFFER, f.id)
		bufs := make([]uint32, len(f.targets))
		for i := range bufs {
			bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
		}
		gl.DrawBuffers(int32(len(bufs)), &bufs[0])
		gl.Viewport(0, 0, int32(f.w), int32(f.h))
		return nil
	})
}

func (f *framebuffer) Clear(c gputypes.Color) {
	v := [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
	_ = f.d.run(func() error {
		gl.BindFramebuffer(gl.FRAMEBUFFER, f.id)
		for i := range f.targets {
			gl.ClearBufferfv(gl.COLOR, int32(i), &v[0])
		}
		return nil
	})
}

func (f *framebuffer) Read(attachment int) ([]byte, error) {
	if attachment < 0 || attachment >= len(f.targets) {
		return nil, fmt.Errorf("opengl: no color attachment %d", attachment)
	}
	pix := make([]byte, f.w*f.h*4)
	err := f.d.run(func() error {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, f.id)
		gl.ReadBuffer(gl.COLOR_ATTACHMENT0 + uint32(attachment))
		gl.ReadPixels(0, 0, int32(f.w), int32(f.h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
		return glError("read pixels")
	})
	if err != nil {
		return nil, err
	}
	return pix, nil
}

func (f *framebuffer) Release() {
	_ = f.d.run(func() error {
		gl.DeleteFramebuffers(1, &f.id)
		return nil
	})
}

type vertexArray struct {
	d  *Device
	id uint32
}

var topologies = map[gputypes.PrimitiveTopology]uint32{
	gputypes.PrimitiveTopologyPointList:     gl.POINTS,
	gputypes.PrimitiveTopologyLineList:      gl.LINES,
	gputypes.PrimitiveTopologyLineStrip:     gl.LINE_STRIP,
	gputypes.PrimitiveTopologyTriangleList:  gl.TRIANGLES,
	gputypes.PrimitiveTopologyTriangleStrip: gl.TRIANGLE_STRIP,
}

func (v *vertexArray) Draw(topology gputypes.PrimitiveTopology, first, count int) error {
	mode, ok := topologies[topology]
	if !ok {
		return fmt.Errorf("opengl: unsupported topology %v", topology)
	}
	return v.d.run(func() error {
		gl.BindVertexArray(v.id)
		gl.DrawArrays(mode, int32(first), int32(count))
		gl.BindVertexArray(0)
		return glError("draw")
	})
}

func (v *vertexArray) Release() {
	_ = v.d.run(func() error {
		gl.DeleteVertexArrays(1, &v.id)
		return nil
	})
}
