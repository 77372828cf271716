// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// SetupFrame is the RenderError frame index for failures before the first
// frame, while creating the framebuffer and vertex array.
const SetupFrame = -1

// RenderError reports a failure inside the render loop. No partial output
// is returned with it.
type RenderError struct {
	Frame int
	Err   error
}

func (e *RenderError) Error() string {
	if e.Frame == SetupFrame {
		return fmt.Sprintf("render: setup: %v", e.Err)
	}
	return fmt.Sprintf("render: frame %d: %v", e.Frame, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
