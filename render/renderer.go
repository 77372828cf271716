// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/internal/glsl"
	"github.com/gogpu/blendpack/internal/logging"
)

// Result is the output of one render call.
type Result struct {
	// Frames holds unit-range RGB frames.
	Frames *frames.Sequence
	// Masks holds unit-range single-channel frames, one per output frame.
	Masks *frames.Sequence

	// Shader is the key of the program that ran. It differs from the
	// requested key when the default program was substituted.
	Shader   string
	Strategy glsl.Strategy
	Plan     Plan
}

// Renderer renders transitions on a gpu.Context.
type Renderer struct {
	ctx *gpu.Context
	lib gpu.ProgramSource
}

// NewRenderer creates a Renderer. lib supplies the uniform defaults of each
// program and is normally the library ctx compiles from.
func NewRenderer(ctx *gpu.Context, lib gpu.ProgramSource) *Renderer {
	return &Renderer{ctx: ctx, lib: lib}
}

// Context returns the GPU context the renderer draws with.
func (r *Renderer) Context() *gpu.Context {
	return r.ctx
}

func slogger() *slog.Logger { return logging.Logger() }

// Render composites a and b according to p.
//
// Context creation failures are returned as *gpu.ContextError and program
// failures as *gpu.CompileError. Failures after that are returned as
// *RenderError. GPU resources created by the call are released on every
// path.
func (r *Renderer) Render(a, b *frames.Sequence, p Params) (*Result, error) {
	res, w, h, err := prepare(a, b, p)
	if err != nil || res.Frames.N > 0 {
		return res, err
	}
	plan := res.Plan
	if plan.Rendered() == 0 {
		for _, st := range plan.Steps {
			appendBypass(res, st, a, b)
		}
		return res, nil
	}

	if err := r.ctx.Acquire(w, h); err != nil {
		return nil, err
	}
	prog, err := r.ctx.Program(p.Key)
	if err != nil {
		return nil, err
	}
	res.Shader, res.Strategy = prog.Key, prog.Strategy

	ps, err := r.newPass(prog, w, h)
	if err != nil {
		return nil, &RenderError{Frame: SetupFrame, Err: err}
	}
	defer ps.release()

	def, _ := r.lib.Lookup(prog.Key)
	ps.uniforms = bindings(prog, def.Uniforms, p.Uniforms)
	ps.intensity = float32(p.Intensity)

	slogger().Debug("render: start",
		"shader", prog.Key, "frames", plan.Len(), "rendered", plan.Rendered(),
		"width", w, "height", h)

	for i, st := range plan.Steps {
		if st.Bypass() {
			appendBypass(res, st, a, b)
			continue
		}
		color, mask, err := ps.draw(st, a, b)
		if err != nil {
			return nil, &RenderError{Frame: i, Err: err}
		}
		res.Frames.Append(color)
		res.Masks.Append(mask)
		slogger().Debug("render: frame", "index", i, "progress", st.Eased)
	}
	return res, nil
}

// prepare validates the inputs, resolves the output size and plans the
// frames. An empty plan yields a finished result holding one black frame
// and an all-zero mask; otherwise the result is empty and ready to append.
func prepare(a, b *frames.Sequence, p Params) (res *Result, w, h int, err error) {
	if err := a.Validate(); err != nil {
		return nil, 0, 0, fmt.Errorf("render: clip A: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, 0, 0, fmt.Errorf("render: clip B: %w", err)
	}
	w, h = p.Width, p.Height
	if w <= 0 || h <= 0 {
		w, h = max(a.W, b.W), max(a.H, b.H)
	}

	plan := NewPlan(a.N, b.N, p)
	if plan.Len() == 0 {
		return &Result{
			Frames: frames.New(1, h, w, 3),
			Masks:  frames.New(1, h, w, 1),
			Shader: p.Key,
			Plan:   plan,
		}, w, h, nil
	}
	return &Result{
		Frames: &frames.Sequence{H: h, W: w, C: 3},
		Masks:  &frames.Sequence{H: h, W: w, C: 1},
		Shader: p.Key,
		Plan:   plan,
	}, w, h, nil
}

// appendBypass copies the source frame of a bypassed step.
func appendBypass(res *Result, st Step, a, b *frames.Sequence) {
	src, idx, m := a, st.A, float32(0)
	if st.Phase == PhaseClipB {
		src, idx, m = b, st.B, 1
	}
	h, w := res.Frames.H, res.Frames.W
	res.Frames.Append(frames.Resample(src.Unit(idx), src.H, src.W, 3, h, w))
	res.Masks.Append(frames.Filled(1, h, w, 1, m).Data)
}

// pass holds the per-call GPU resources.
type pass struct {
	dev  gpu.Device
	prog *gpu.CompiledProgram
	w, h int

	color, mask gpu.Texture
	fb          gpu.Framebuffer
	va          gpu.VertexArray

	uniforms  []binding
	intensity float32
	released  bool
}

func (r *Renderer) newPass(prog *gpu.CompiledProgram, w, h int) (_ *pass, err error) {
	ps := &pass{dev: r.ctx.Device(), prog: prog, w: w, h: h}
	if ps.dev == nil {
		return nil, gpu.ErrNotAcquired
	}
	defer func() {
		if err != nil {
			ps.release()
		}
	}()

	target := gpu.TextureDesc{
		Width:  w,
		Height: h,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Filter: gputypes.FilterModeLinear,
	}
	if ps.color, err = ps.dev.NewTexture(target, nil); err != nil {
		return nil, fmt.Errorf("color target: %w", err)
	}
	if ps.mask, err = ps.dev.NewTexture(target, nil); err != nil {
		return nil, fmt.Errorf("mask target: %w", err)
	}
	if ps.fb, err = ps.dev.NewFramebuffer(ps.color, ps.mask); err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}
	if ps.va, err = r.ctx.VertexArray(prog); err != nil {
		return nil, fmt.Errorf("vertex array: %w", err)
	}
	return ps, nil
}

// release frees the pass resources once.
func (ps *pass) release() {
	if ps.released {
		return
	}
	ps.released = true
	if ps.va != nil {
		ps.va.Release()
	}
	if ps.fb != nil {
		ps.fb.Release()
	}
	if ps.mask != nil {
		ps.mask.Release()
	}
	if ps.color != nil {
		ps.color.Release()
	}
}

// upload creates a texture from frame i of s at the pass size.
func (ps *pass) upload(s *frames.Sequence, i int) (gpu.Texture, error) {
	pix := frames.RGBA8(s.ResampleFrame(i, ps.h, ps.w), ps.h, ps.w, s.C, s.Range)
	return ps.dev.NewTexture(gpu.TextureDesc{
		Width:  ps.w,
		Height: ps.h,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Filter: gputypes.FilterModeLinear,
	}, pix)
}

// draw renders one transition frame and returns its color and mask.
func (ps *pass) draw(st Step, a, b *frames.Sequence) (color, mask []float32, err error) {
	ta, err := ps.upload(a, st.A)
	if err != nil {
		return nil, nil, fmt.Errorf("upload A[%d]: %w", st.A, err)
	}
	defer ta.Release()
	tb, err := ps.upload(b, st.B)
	if err != nil {
		return nil, nil, fmt.Errorf("upload B[%d]: %w", st.B, err)
	}
	defer tb.Release()

	ta.Bind(0)
	tb.Bind(1)

	prog := ps.prog
	prog.Use()
	prog.SetUniformInt(glsl.UniformTexA, 0)
	prog.SetUniformInt(glsl.UniformTexB, 1)
	prog.SetUniformFloats(glsl.UniformProgress, float32(st.Eased))
	prog.SetUniformFloats(glsl.UniformIntensity, ps.intensity)
	prog.SetUniformFloats(glsl.UniformTime, float32(st.Linear))
	prog.SetUniformFloats(glsl.UniformResolution, float32(ps.w), float32(ps.h))
	for _, u := range ps.uniforms {
		prog.SetUniformFloats(u.name, u.value...)
	}

	ps.fb.Bind()
	ps.fb.Clear(gputypes.ColorTransparent)
	if err := ps.va.Draw(gputypes.PrimitiveTopologyTriangleStrip, 0, gpu.QuadVertexCount); err != nil {
		return nil, nil, err
	}

	colorPix, err := ps.fb.Read(0)
	if err != nil {
		return nil, nil, fmt.Errorf("read color: %w", err)
	}
	maskPix, err := ps.fb.Read(1)
	if err != nil {
		return nil, nil, fmt.Errorf("read mask: %w", err)
	}
	if len(colorPix) != ps.w*ps.h*4 || len(maskPix) != ps.w*ps.h*4 {
		return nil, nil, errors.New("readback size mismatch")
	}
	return frames.FromRGBA8(colorPix, ps.h, ps.w, 3), frames.FromRGBA8(maskPix, ps.h, ps.w, 1), nil
}
