// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/blendpack/easing"
	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/internal/glsl"
	"github.com/gogpu/blendpack/internal/gputest"
	"github.com/gogpu/blendpack/render"
	"github.com/gogpu/blendpack/shader"
)

const byteTol = 2.0 / 255

// clip builds an RGB unit-range clip whose frame i is filled with value(i).
func clip(n, h, w int, value func(i int) float32) *frames.Sequence {
	s := &frames.Sequence{H: h, W: w, C: 3}
	for i := 0; i < n; i++ {
		s.Append(frames.Filled(1, h, w, 3, value(i)).Data)
	}
	return s
}

func constant(v float32) func(int) float32 {
	return func(int) float32 { return v }
}

func newRenderer(t *testing.T, f *gputest.Factory, lib gpu.ProgramSource) *render.Renderer {
	t.Helper()
	ctx := gpu.NewContext(f.New, lib)
	t.Cleanup(ctx.Close)
	return render.NewRenderer(ctx, lib)
}

func assertFrame(t *testing.T, s *frames.Sequence, i int, want float32, msg string) {
	t.Helper()
	for _, v := range s.Frame(i) {
		if !assert.InDelta(t, want, v, byteTol, "%s frame %d", msg, i) {
			return
		}
	}
}

func TestRenderTransitionOnly(t *testing.T) {
	f := &gputest.Factory{}
	r := newRenderer(t, f, shader.Stock())
	curve := easing.Default()

	a := clip(3, 4, 4, constant(0))
	b := clip(3, 4, 4, constant(1))
	res, err := r.Render(a, b, render.Params{Key: "wipe_left", Frames: 10, Curve: curve, Intensity: 1})
	require.NoError(t, err)

	require.Equal(t, 10, res.Frames.N)
	require.Equal(t, 10, res.Masks.N)
	assert.Equal(t, 3, res.Frames.C)
	assert.Equal(t, 1, res.Masks.C)
	assert.Equal(t, "wipe_left", res.Shader)
	assert.Equal(t, glsl.StrategyDirect, res.Strategy)

	for i := 0; i < 10; i++ {
		eased := float32(curve.Ease(float64(i) / 9))
		assertFrame(t, res.Masks, i, eased, "mask")
		assertFrame(t, res.Frames, i, eased, "color")
	}
	assertFrame(t, res.Masks, 0, float32(curve.Ease(0)), "first mask")
	assertFrame(t, res.Masks, 9, float32(curve.Ease(1)), "last mask")

	dev := f.Last()
	assert.Len(t, dev.Draws(), 10)
	assert.Zero(t, dev.Live("texture"), "per-frame and target textures released")
	assert.Zero(t, dev.Live("framebuffer"))
	assert.Zero(t, dev.Live("vertexarray"))
}

func TestRenderFullVideo(t *testing.T) {
	f := &gputest.Factory{}
	r := newRenderer(t, f, shader.Stock())

	a := clip(5, 2, 2, func(i int) float32 { return 0.1 * float32(i) })
	b := clip(5, 2, 2, func(i int) float32 { return 0.5 + 0.1*float32(i) })
	res, err := r.Render(a, b, render.Params{
		Key:              "wipe_left",
		FullVideo:        true,
		TransitionFrames: 2,
		Curve:            easing.Default(),
	})
	require.NoError(t, err)
	require.Equal(t, 12, res.Frames.N)
	assert.Equal(t, "ClipA(5) + Transition(2) + ClipB(5)", res.Plan.Structure())

	wantColor := []float32{0, 0.1, 0.2, 0.3, 0.4, 0.4, 0.6, 0.7, 0.8, 0.9, 0.9, 0.9}
	wantMask := []float32{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	for i := range wantColor {
		assertFrame(t, res.Frames, i, wantColor[i], "color")
		assertFrame(t, res.Masks, i, wantMask[i], "mask")
	}
	assert.Len(t, f.Last().Draws(), 2, "only transition frames are drawn")
}

func TestRenderUnknownKeyUsesDefault(t *testing.T) {
	f := &gputest.Factory{}
	r := newRenderer(t, f, shader.Stock())

	res, err := r.Render(clip(1, 2, 2, constant(0)), clip(1, 2, 2, constant(1)),
		render.Params{Key: "no_such_shader", Frames: 2, Curve: easing.Linear()})
	require.NoError(t, err)
	assert.Equal(t, shader.DefaultKey, res.Shader)
	assertFrame(t, res.Frames, 1, 1, "color")
}

func TestRenderZeroFrames(t *testing.T) {
	f := &gputest.Factory{}
	r := newRenderer(t, f, shader.Stock())

	res, err := r.Render(clip(2, 4, 4, constant(0.5)), clip(2, 4, 4, constant(0.5)),
		render.Params{Key: "wipe_left", Width: 6, Height: 3})
	require.NoError(t, err)
	require.Equal(t, 1, res.Frames.N)
	require.Equal(t, 1, res.Masks.N)
	assert.Equal(t, 6, res.Frames.W)
	assert.Equal(t, 3, res.Frames.H)
	assertFrame(t, res.Frames, 0, 0, "black")
	assertFrame(t, res.Masks, 0, 0, "mask")
	assert.Zero(t, f.Created(), "no device for an empty render")
}

func TestRenderResizesToTarget(t *testing.T) {
	f := &gputest.Factory{}
	r := newRenderer(t, f, shader.Stock())

	a := clip(1, 2, 2, constant(0.2))
	b := clip(1, 8, 4, constant(0.8))
	res, err := r.Render(a, b, render.Params{Key: "wipe_left", Frames: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Frames.H, "default size is the per-axis maximum")
	assert.Equal(t, 4, res.Frames.W)

	res, err = r.Render(a, b, render.Params{Key: "wipe_left", Frames: 2, Width: 16, Height: 16})
	require.NoError(t, err)
	assert.Equal(t, 16, res.Frames.H)
	assert.Equal(t, 1, f.Created(), "the device is resized, not recreated")
	assert.Equal(t, 1, f.Last().Resizes())
}

func TestRenderBindsUniforms(t *testing.T) {
	reg := shader.NewRegistry()
	reg.Add(shader.Definition{
		Key: "test_tint",
		Fragment: `uniform float uSoftness;
uniform float scale;
uniform vec3 uTint;
void main() {
    vec4 a = texture2D(uTexA, vUv);
    vec4 b = texture2D(uTexB, vUv);
    gl_FragColor = mix(a, b, uProgress);
}`,
		Uniforms: map[string]shader.Value{
			"uSoftness": shader.Scalar(0.02),
			"scale":     shader.Scalar(2),
		},
	})
	lib := shader.NewLibrary(reg, nil)
	f := &gputest.Factory{}
	r := newRenderer(t, f, lib)

	_, err := r.Render(clip(1, 2, 2, constant(0)), clip(1, 2, 2, constant(1)), render.Params{
		Key:       "test_tint",
		Frames:    2,
		Intensity: 0.75,
		Width:     4,
		Height:    2,
		Curve:     easing.Linear(),
		Uniforms: map[string]shader.Value{
			"softness": shader.Scalar(0.5),
			"tint":     shader.Vector(1, 0.5, 0),
			"unknown":  shader.Scalar(3),
		},
	})
	require.NoError(t, err)

	draws := f.Last().Draws()
	require.Len(t, draws, 2)
	d := draws[1]
	assert.Equal(t, int32(0), d.Ints[glsl.UniformTexA])
	assert.Equal(t, int32(1), d.Ints[glsl.UniformTexB])
	assert.Equal(t, []float32{1}, d.Floats[glsl.UniformProgress])
	assert.Equal(t, []float32{1}, d.Floats[glsl.UniformTime])
	assert.Equal(t, []float32{0.75}, d.Floats[glsl.UniformIntensity])
	assert.Equal(t, []float32{4, 2}, d.Floats[glsl.UniformResolution])
	assert.Equal(t, []float32{0.5}, d.Floats["uSoftness"])
	assert.Equal(t, []float32{2}, d.Floats["scale"])
	assert.Equal(t, []float32{1, 0.5, 0}, d.Floats["uTint"])
	assert.NotContains(t, d.Floats, "uUnknown")
}

func TestRenderDrawFailureReleasesResources(t *testing.T) {
	f := &gputest.Factory{FailDrawAt: 2}
	r := newRenderer(t, f, shader.Stock())

	res, err := r.Render(clip(4, 2, 2, constant(0)), clip(4, 2, 2, constant(1)),
		render.Params{Key: "wipe_left", Frames: 4})
	require.Error(t, err)
	assert.Nil(t, res, "no partial output")

	var re *render.RenderError
	require.True(t, errors.As(err, &re), "Render() = %v, want *RenderError", err)
	assert.Equal(t, 1, re.Frame)
	assert.ErrorIs(t, err, gputest.ErrDraw)

	dev := f.Last()
	assert.Zero(t, dev.Live("texture"))
	assert.Zero(t, dev.Live("framebuffer"))
	assert.Zero(t, dev.Live("vertexarray"))
}

func TestRenderContextFailure(t *testing.T) {
	f := &gputest.Factory{Err: gputest.ErrCreate}
	r := newRenderer(t, f, shader.Stock())

	_, err := r.Render(clip(1, 2, 2, constant(0)), clip(1, 2, 2, constant(1)),
		render.Params{Key: "wipe_left", Frames: 2})
	var ce *gpu.ContextError
	require.True(t, errors.As(err, &ce), "Render() = %v, want *gpu.ContextError", err)
	assert.ErrorIs(t, err, gputest.ErrCreate)
}

func TestRenderRejectsEmptyClip(t *testing.T) {
	r := newRenderer(t, &gputest.Factory{}, shader.Stock())

	_, err := r.Render(&frames.Sequence{}, clip(1, 2, 2, constant(1)), render.Params{Frames: 2})
	assert.ErrorIs(t, err, frames.ErrEmptySequence)

	bad := &frames.Sequence{N: 1, H: 1, W: 1, C: 2, Data: make([]float32, 2)}
	_, err = r.Render(clip(1, 2, 2, constant(1)), bad, render.Params{Frames: 2})
	assert.ErrorIs(t, err, frames.ErrChannels)
}

func TestRenderErrorMessage(t *testing.T) {
	tests := []struct {
		err  *render.RenderError
		want string
	}{
		{&render.RenderError{Frame: 3, Err: gputest.ErrDraw}, "render: frame 3: gputest: draw failed"},
		{&render.RenderError{Frame: render.SetupFrame, Err: gputest.ErrDraw}, "render: setup: gputest: draw failed"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
