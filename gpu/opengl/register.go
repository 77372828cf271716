// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package opengl

import (
	"github.com/gogpu/blendpack/backend"
)

// init registers the OpenGL backend on package import.
// This enables automatic backend selection when using backend.Default().
func init() {
	backend.Register(backend.BackendOpenGL, func() backend.RenderBackend {
		return backend.NewGPUBackend(backend.BackendOpenGL, NewDevice)
	})
}
