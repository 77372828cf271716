// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu manages the headless rendering device used to run transition
// programs.
//
// A [Context] owns exactly one [Device], created lazily by a [DeviceFactory]
// on the first [Context.Acquire], plus the full-screen quad shared by all
// programs and a cache of compiled programs keyed by shader key. The device
// is never recreated: a change of output size only resizes it.
//
// Programs are composed from the fixed [glsl.VertexShader], the prelude and
// shared code of the loaded library, and the transpiled variant body. When
// a variant fails to compile the Context substitutes the built-in crossfade
// program for that key from then on.
//
// Device implementations live in sub-packages:
//
//	import _ "github.com/gogpu/blendpack/gpu/opengl" // OpenGL 3.3 core via GLFW
//
// [glsl.VertexShader]: https://pkg.go.dev/github.com/gogpu/blendpack/internal/glsl#VertexShader
package gpu
