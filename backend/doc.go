// Package backend provides a pluggable transition backend abstraction.
//
// The backend package allows blendpack to composite frames on different
// implementations: a GPU device running the transition programs, or the
// CPU crossfade used as a fallback.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import; GPU backends
// register from their device package:
//
//	import _ "github.com/gogpu/blendpack/gpu/opengl"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get("software")
//
// # Usage
//
//	b, err := backend.InitDefault(shader.Stock())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	res, err := b.Render(clipA, clipB, render.Params{Key: "wipe_left", Frames: 30})
//
// # Available Backends
//
// - "opengl": OpenGL 3.3 core via a hidden GLFW window (gpu/opengl)
// - "software": CPU crossfade (always available)
package backend
