package backend

import (
	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/render"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU crossfade backend.
	BackendSoftware = "software"
	// BackendOpenGL is the name of the OpenGL 3.3 backend (gpu/opengl).
	BackendOpenGL = "opengl"
)

// SoftwareBackend is a CPU-based rendering backend.
// It ignores the requested program and crossfades the clips with the
// eased progress, which is also the mask. It never fails on valid input,
// so it is the fallback when a GPU backend cannot render.
type SoftwareBackend struct {
	initialized bool
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() RenderBackend {
		return &SoftwareBackend{}
	})
}

// NewSoftwareBackend creates a new software rendering backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend. The library is not needed.
func (b *SoftwareBackend) Init(gpu.ProgramSource) error {
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *SoftwareBackend) Close() {
	b.initialized = false
}

// Render crossfades a into b following the plan of p.
func (b *SoftwareBackend) Render(a, bb *frames.Sequence, p render.Params) (*render.Result, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	return render.Crossfade(a, bb, p)
}
