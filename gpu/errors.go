// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrDefaultProgram is wrapped by the error returned when the built-in
	// default program fails to compile. Nothing can be rendered after that.
	ErrDefaultProgram = errors.New("gpu: default program failed to compile")

	// ErrContextClosed is returned by a Context used after Close.
	ErrContextClosed = errors.New("gpu: context closed")

	// ErrNoDevice is returned when a Context has no device factory.
	ErrNoDevice = errors.New("gpu: no device factory")
)

// Shader stages reported by CompileError.
const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
	StageLink     = "link"
)

// CompileError reports a program that failed to compile or link.
type CompileError struct {
	Key   string // shader key; empty when compiled outside a Context
	Stage string // StageVertex, StageFragment or StageLink
	Log   string // driver info log
	Err   error  // optional cause
}

func (e *CompileError) Error() string {
	key := e.Key
	if key == "" {
		key = "program"
	}
	return fmt.Sprintf("gpu: compile %s (%s): %s", key, e.Stage, e.Log)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ContextError reports a failure to create the rendering device.
type ContextError struct {
	Err error
}

func (e *ContextError) Error() string {
	return "gpu: create context: " + e.Err.Error()
}

func (e *ContextError) Unwrap() error {
	return e.Err
}
