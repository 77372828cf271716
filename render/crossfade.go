// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/internal/parallel"
	"github.com/gogpu/blendpack/shader"
)

// Crossfade renders the plan of p on the CPU without a device. Transition
// frames blend A into B by the eased progress and carry it as a constant
// mask; bypassed frames are copied like the GPU path does. p.Key and
// p.Uniforms are ignored and the result reports the default program.
func Crossfade(a, b *frames.Sequence, p Params) (*Result, error) {
	res, w, h, err := prepare(a, b, p)
	if err != nil || res.Frames.N > 0 {
		if res != nil {
			res.Shader = shader.DefaultKey
		}
		return res, err
	}
	res.Shader = shader.DefaultKey

	// Frames are computed on the shared pool and appended in plan order.
	steps := res.Plan.Steps
	color := make([][]float32, len(steps))
	mask := make([][]float32, len(steps))
	parallel.Shared().For(len(steps), func(i int) {
		color[i], mask[i] = crossfadeFrame(steps[i], a, b, w, h)
	})
	for i := range steps {
		res.Frames.Append(color[i])
		res.Masks.Append(mask[i])
	}
	return res, nil
}

func crossfadeFrame(st Step, a, b *frames.Sequence, w, h int) (color, mask []float32) {
	switch st.Phase {
	case PhaseClipA:
		return frames.Resample(a.Unit(st.A), a.H, a.W, 3, h, w), make([]float32, h*w)
	case PhaseClipB:
		return frames.Resample(b.Unit(st.B), b.H, b.W, 3, h, w), frames.Filled(1, h, w, 1, 1).Data
	}
	fa := frames.Resample(a.Unit(st.A), a.H, a.W, 3, h, w)
	fb := frames.Resample(b.Unit(st.B), b.H, b.W, 3, h, w)
	t := float32(st.Eased)
	for i := range fa {
		fa[i] += (fb[i] - fa[i]) * t
	}
	return fa, frames.Filled(1, h, w, 1, t).Data
}
