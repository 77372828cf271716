package blendpack

import (
	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/shader"
)

// Option configures a Joiner during creation.
// Use functional options to customize Joiner behavior.
//
// Example:
//
//	// Best registered backend, stock shader library
//	j := blendpack.NewJoiner()
//
//	// Custom corpus on the CPU backend
//	j := blendpack.NewJoiner(
//		blendpack.WithLibrary(shader.LoadDir("shaders/")),
//		blendpack.WithBackend(backend.BackendSoftware),
//	)
type Option func(*options)

// options holds optional configuration for Joiner creation.
type options struct {
	backend  string
	library  *shader.Library
	assets   map[string]string
	fallback bool
}

// defaultOptions returns the default joiner options.
func defaultOptions() options {
	return options{
		backend:  "", // Resolved to backend.DefaultName() on first use
		library:  nil,
		assets:   map[string]string{},
		fallback: true,
	}
}

// WithBackend selects a registered backend by name instead of the best
// available one.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithLibrary sets the shader library programs are looked up in.
// The default is shader.Stock().
func WithLibrary(lib *shader.Library) Option {
	return func(o *options) {
		o.library = lib
	}
}

// WithAssetDirs sets the directories pre-rendered frame references are
// resolved against. Empty arguments leave that asset type unset.
func WithAssetDirs(temp, input string) Option {
	return func(o *options) {
		if temp != "" {
			o.assets[frames.AssetTemp] = temp
		}
		if input != "" {
			o.assets[frames.AssetInput] = input
		}
	}
}

// WithSoftwareFallback controls whether a failed GPU render is retried on
// the software backend. It is enabled by default.
func WithSoftwareFallback(enabled bool) Option {
	return func(o *options) {
		o.fallback = enabled
	}
}
