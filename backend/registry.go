package backend

import (
	"slices"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/blendpack/gpu"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() RenderBackend

// backends holds registered backends.
// Priority order for backend selection (first available wins):
// OpenGL > Software (Software is the fallback).
var backends = gpucontext.NewRegistry[RenderBackend](
	gpucontext.WithPriority(BackendOpenGL, BackendSoftware),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory BackendFactory) {
	backends.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	names := backends.Available()
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return backends.Has(name)
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) RenderBackend {
	return backends.Get(name)
}

// Default returns the best available backend based on priority.
// Priority order: opengl > software
// Returns nil if no backends are registered.
func Default() RenderBackend {
	return backends.Best()
}

// DefaultName returns the name Default would pick, or "".
func DefaultName() string {
	return backends.BestName()
}

// InitDefault initializes the default backend for lib.
func InitDefault(lib gpu.ProgramSource) (RenderBackend, error) {
	return Init(DefaultName(), lib)
}

// Init creates and initializes the named backend.
func Init(name string, lib gpu.ProgramSource) (RenderBackend, error) {
	b := Get(name)
	if b == nil {
		return nil, ErrBackendNotAvailable
	}

	if err := b.Init(lib); err != nil {
		return nil, err
	}

	return b, nil
}
