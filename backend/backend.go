package backend

import (
	"errors"

	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// RenderBackend is the interface for transition backends.
// It abstracts where frames are composited, allowing the library to
// render on a GPU device or on the CPU.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type RenderBackend interface {
	// Name returns the backend identifier (e.g., "opengl", "software").
	Name() string

	// Init prepares the backend to render programs from lib.
	// It must be called before Render. GPU backends create their device
	// lazily, so device failures surface from Render.
	Init(lib gpu.ProgramSource) error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// Render composites clip a into clip b.
	Render(a, b *frames.Sequence, p render.Params) (*render.Result, error)
}
