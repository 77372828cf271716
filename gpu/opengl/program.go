// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package opengl

import (
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/blendpack/gpu"
)

// uniform is an active uniform of a linked program.
type uniform struct {
	loc  int32
	typ  uint32
	size int32
}

type program struct {
	d        *Device
	id       uint32
	uniforms map[string]uniform
}

// CompileProgram implements gpu.Device.
func (d *Device) CompileProgram(vertex, fragment string) (gpu.Program, error) {
	p := &program{d: d}
	err := d.run(func() error {
		vs, err := compileShader(gl.VERTEX_SHADER, gpu.StageVertex, vertex)
		if err != nil {
			return err
		}
		defer gl.DeleteShader(vs)
		fs, err := compileShader(gl.FRAGMENT_SHADER, gpu.StageFragment, fragment)
		if err != nil {
			return err
		}
		defer gl.DeleteShader(fs)

		id := gl.CreateProgram()
		gl.AttachShader(id, vs)
		gl.AttachShader(id, fs)
		gl.LinkProgram(id)

		var status int32
		gl.GetProgramiv(id, gl.LINK_STATUS, &status)
		if status == gl.FALSE {
			log := programLog(id)
			gl.DeleteProgram(id)
			return &gpu.CompileError{Stage: gpu.StageLink, Log: log}
		}
		p.id = id
		p.uniforms = activeUniforms(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func compileShader(kind uint32, stage, src string) (uint32, error) {
	sh := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		log := readLog(n, func(buf *uint8) { gl.GetShaderInfoLog(sh, n, nil, buf) })
		gl.DeleteShader(sh)
		return 0, &gpu.CompileError{Stage: stage, Log: log}
	}
	return sh, nil
}

func programLog(id uint32) string {
	var n int32
	gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &n)
	return readLog(n, func(buf *uint8) { gl.GetProgramInfoLog(id, n, nil, buf) })
}

func readLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return "no info log"
	}
	buf := make([]uint8, n+1)
	read(&buf[0])
	return strings.TrimRight(gl.GoStr(&buf[0]), "\x00\n ")
}

// activeUniforms lists the uniforms the linker kept, keyed by name without
// an array suffix.
func activeUniforms(id uint32) map[string]uniform {
	var count, maxLen int32
	gl.GetProgramiv(id, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(id, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	out := make(map[string]uniform, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var typ uint32
		gl.GetActiveUniform(id, uint32(i), maxLen+1, &length, &size, &typ, &buf[0])
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		loc := gl.GetUniformLocation(id, gl.Str(name+"\x00"))
		if loc < 0 {
			continue
		}
		out[name] = uniform{loc: loc, typ: typ, size: size}
	}
	return out
}

func (p *program) HasUniform(name string) bool {
	_, ok := p.uniforms[name]
	return ok
}

func (p *program) SetUniformInt(name string, v int32) {
	u, ok := p.uniforms[name]
	if !ok {
		return
	}
	_ = p.d.run(func() error {
		gl.UseProgram(p.id)
		gl.Uniform1i(u.loc, v)
		return nil
	})
}

// components returns the vector width of a float uniform type, or 0.
func components(typ uint32) int {
	switch typ {
	case gl.FLOAT:
		return 1
	case gl.FLOAT_VEC2:
		return 2
	case gl.FLOAT_VEC3:
		return 3
	case gl.FLOAT_VEC4:
		return 4
	default:
		return 0
	}
}

// SetUniformFloats sets a float uniform. Values are padded with zeros or
// truncated to the declared vector width; float arrays take as many whole
// elements as v holds.
func (p *program) SetUniformFloats(name string, v ...float32) {
	u, ok := p.uniforms[name]
	if !ok || len(v) == 0 {
		return
	}
	n := components(u.typ)
	if n == 0 {
		return
	}
	count := max(1, min(int(u.size), len(v)/n))
	vals := make([]float32, count*n)
	copy(vals, v)

	_ = p.d.run(func() error {
		gl.UseProgram(p.id)
		switch n {
		case 1:
			gl.Uniform1fv(u.loc, int32(count), &vals[0])
		case 2:
			gl.Uniform2fv(u.loc, int32(count), &vals[0])
		case 3:
			gl.Uniform3fv(u.loc, int32(count), &vals[0])
		case 4:
			gl.Uniform4fv(u.loc, int32(count), &vals[0])
		}
		return nil
	})
}

func (p *program) Use() {
	_ = p.d.run(func() error {
		gl.UseProgram(p.id)
		return nil
	})
}

func (p *program) Release() {
	_ = p.d.run(func() error {
		gl.DeleteProgram(p.id)
		return nil
	})
}
