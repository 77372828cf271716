package backend

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/render"
)

// GPUBackend renders transition programs on devices from a
// gpu.DeviceFactory. Device packages register one under their name:
//
//	backend.Register(backend.BackendOpenGL, func() backend.RenderBackend {
//		return backend.NewGPUBackend(backend.BackendOpenGL, NewDevice)
//	})
type GPUBackend struct {
	name    string
	factory gpu.DeviceFactory

	ctx      *gpu.Context
	renderer *render.Renderer
}

// NewGPUBackend creates a backend named name that draws on devices made
// by factory.
func NewGPUBackend(name string, factory gpu.DeviceFactory) *GPUBackend {
	return &GPUBackend{name: name, factory: factory}
}

// Name returns the backend identifier.
func (b *GPUBackend) Name() string {
	return b.name
}

// Init creates the GPU context for lib. The device itself is created on
// the first Render.
func (b *GPUBackend) Init(lib gpu.ProgramSource) error {
	if b.ctx != nil {
		b.ctx.Close()
	}
	b.ctx = gpu.NewContext(b.factory, lib)
	b.renderer = render.NewRenderer(b.ctx, lib)
	return nil
}

// Close releases the context, its programs and its device.
func (b *GPUBackend) Close() {
	if b.ctx != nil {
		b.ctx.Close()
		b.ctx = nil
		b.renderer = nil
	}
}

// Render composites a into b with the program selected by p.Key.
func (b *GPUBackend) Render(a, bb *frames.Sequence, p render.Params) (*render.Result, error) {
	if b.renderer == nil {
		return nil, ErrNotInitialized
	}
	return b.renderer.Render(a, bb, p)
}

// Adapter describes the device, once one has been created.
func (b *GPUBackend) Adapter() (gpucontext.AdapterInfo, bool) {
	if b.ctx == nil {
		return gpucontext.AdapterInfo{}, false
	}
	dev := b.ctx.Device()
	if dev == nil {
		return gpucontext.AdapterInfo{}, false
	}
	return dev.AdapterInfo(), true
}

// Stats returns the program cache statistics of the context.
func (b *GPUBackend) Stats() gpu.Stats {
	if b.ctx == nil {
		return gpu.Stats{}
	}
	return b.ctx.Stats()
}
