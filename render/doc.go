// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render composites two frame sequences through a transition
// program on a gpu.Context.
//
// # Frame Plan
//
// NewPlan maps every output frame onto a phase, a linear and an eased
// progress, and one source frame from each clip. In transition-only mode
// every frame is rendered by the shader. In full-video mode the output is
// clip A, then the transition, then clip B; frames outside the transition
// bypass the shader and copy the source frame with a constant mask.
//
// # Rendering
//
// A Renderer renders a plan frame by frame:
//
//	ctx := gpu.NewContext(opengl.NewDevice, lib)
//	defer ctx.Close()
//
//	r := render.NewRenderer(ctx, lib)
//	res, err := r.Render(clipA, clipB, render.Params{
//		Key:    "wipe_left",
//		Frames: 30,
//		Curve:  easing.Default(),
//		Width:  640,
//		Height: 360,
//	})
//
// Each shader frame uploads both source frames as RGBA8 textures, draws the
// full-screen quad into a framebuffer with a color and a mask target, and
// reads both targets back. The mask is the red channel of the mask target.
//
// Thread Safety: a Renderer is not safe for concurrent use.
package render
