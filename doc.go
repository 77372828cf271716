// Package blendpack renders GPU transitions between two frame clips.
//
// # Overview
//
// A transition is a GLSL fragment program from a shader library. The stock
// library is embedded; custom corpora load with [shader.LoadDir]. Programs
// are transpiled to GLSL 3.30 core, compiled once per context and run on
// an offscreen OpenGL device. Every output frame carries a mask describing
// how far the transition has progressed at that frame.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/blendpack"
//		"github.com/gogpu/blendpack/frames"
//		"github.com/gogpu/blendpack/settings"
//		_ "github.com/gogpu/blendpack/gpu/opengl" // registers the OpenGL backend
//	)
//
//	a, _ := frames.LoadClip("clip_a.gif")
//	b, _ := frames.LoadClip("clip_b/")
//	s, _ := settings.Load("blend.yaml")
//
//	j := blendpack.NewJoiner()
//	defer j.Close()
//	out, err := j.Blend(a, b, s)
//
// # Backends
//
// Rendering goes through the best registered backend: "opengl" when
// gpu/opengl is imported, otherwise "software", a CPU crossfade. When a GPU
// backend fails the Joiner retries on the software backend and records the
// fallback in [Info].
//
// # Architecture
//
// The library is organized into:
//   - Public API: Joiner, Output, Info
//   - shader: corpus loading, shared-code resolution, the registry
//   - internal/glsl: transpilation to GLSL 3.30 core
//   - gpu, gpu/opengl: context management and the OpenGL device
//   - render: frame planning, uniform binding, readback
//   - backend: backend registry and selection
//   - settings, easing, frames: configuration, timing curves, frame data
package blendpack

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
