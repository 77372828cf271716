// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/blendpack/internal/glsl"
	"github.com/gogpu/blendpack/shader"
)

// ErrNotAcquired is returned when programs or resources are requested
// before the first Acquire.
var ErrNotAcquired = errors.New("gpu: context not acquired")

// ProgramSource supplies shader definitions and the shared code compiled
// into every program. *shader.Library implements it.
type ProgramSource interface {
	Lookup(key string) (shader.Definition, bool)
	CommonCode() string
}

// CompiledProgram is a cached program together with the key it was compiled
// from. Key differs from the requested key when the default program was
// substituted.
type CompiledProgram struct {
	Program
	Key      string
	Strategy glsl.Strategy
}

// Stats describes program cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Fallbacks uint64
	Programs  int // distinct programs alive on the device
}

// HitRate returns the cache hit rate (0.0 to 1.0), or 0 with no requests.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Context owns one headless device, the shared quad and the program cache.
//
// The device is created on the first Acquire and never recreated; later
// calls with a different size only resize it. Each shader key is compiled
// at most once. A key whose program fails to compile is permanently mapped
// to the default program.
//
// A Context is meant for a single renderer; its mutex only guards against
// accidental concurrent use.
type Context struct {
	mu sync.Mutex

	factory DeviceFactory
	lib     ProgramSource

	device Device
	quad   Buffer
	header string

	programs map[string]*CompiledProgram
	fallback *CompiledProgram

	width, height int
	closed        bool

	hits      uint64
	misses    uint64
	fallbacks uint64
}

// NewContext creates a Context. No device is created until Acquire.
func NewContext(factory DeviceFactory, lib ProgramSource) *Context {
	return &Context{
		factory:  factory,
		lib:      lib,
		programs: make(map[string]*CompiledProgram),
	}
}

// Acquire makes sure the device exists and is sized width x height.
// Device creation failures are returned as *ContextError.
func (c *Context) Acquire(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrContextClosed
	}
	if c.device != nil {
		if width == c.width && height == c.height {
			return nil
		}
		if err := c.device.Resize(width, height); err != nil {
			return fmt.Errorf("gpu: resize to %dx%d: %w", width, height, err)
		}
		c.width, c.height = width, height
		slogger().Debug("gpu: context resized", "width", width, "height", height)
		return nil
	}

	if c.factory == nil {
		return &ContextError{Err: ErrNoDevice}
	}
	dev, err := c.factory(width, height)
	if err != nil {
		return &ContextError{Err: err}
	}
	quad, err := dev.NewBuffer(QuadVertices)
	if err != nil {
		dev.Destroy()
		return &ContextError{Err: fmt.Errorf("quad buffer: %w", err)}
	}

	c.device, c.quad = dev, quad
	c.width, c.height = width, height
	info := dev.AdapterInfo()
	slogger().Info("gpu: device created",
		"adapter", info.Name, "type", info.Type.String(),
		"width", width, "height", height)
	return nil
}

// Device returns the device, or nil before the first Acquire.
func (c *Context) Device() Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

// Size returns the current surface size.
func (c *Context) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Program returns the compiled program for key, compiling it on first use.
//
// When the key is unknown or its program fails to compile, the default
// program is returned instead and remembered for the key. An error is
// returned only when the default program itself cannot be built; it wraps
// ErrDefaultProgram.
func (c *Context) Program(key string) (*CompiledProgram, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrContextClosed
	}
	if c.device == nil {
		return nil, ErrNotAcquired
	}
	if p, ok := c.programs[key]; ok {
		c.hits++
		return p, nil
	}
	c.misses++

	def, ok := c.lib.Lookup(key)
	if !ok {
		slogger().Warn("gpu: unknown shader, using default", "key", key)
		return c.substitute(key)
	}

	if c.header == "" {
		c.header = glsl.Header(c.lib.CommonCode())
	}
	p, err := c.compile(key, c.header, def.Fragment)
	if err != nil {
		slogger().Warn("gpu: shader failed to compile, using default", "key", key, "err", err)
		return c.substitute(key)
	}
	c.programs[key] = p
	return p, nil
}

// substitute maps key to the default program. Callers hold c.mu.
func (c *Context) substitute(key string) (*CompiledProgram, error) {
	p, err := c.defaultProgram()
	if err != nil {
		return nil, err
	}
	c.fallbacks++
	c.programs[key] = p
	return p, nil
}

// defaultProgram compiles the built-in crossfade against the built-in
// header, independent of the loaded library. Callers hold c.mu.
func (c *Context) defaultProgram() (*CompiledProgram, error) {
	if c.fallback != nil {
		return c.fallback, nil
	}
	def := shader.Default()
	p, err := c.compile(def.Key, glsl.Header(glsl.BuiltinCommon), def.Fragment)
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Err = ErrDefaultProgram
			return nil, ce
		}
		return nil, fmt.Errorf("%w: %w", ErrDefaultProgram, err)
	}
	c.fallback = p
	return p, nil
}

func (c *Context) compile(key, header, body string) (*CompiledProgram, error) {
	src, strategy := glsl.Fragment(header, body)
	slogger().Debug("gpu: compiling program", "key", key, "strategy", strategy.String())

	prog, err := c.device.CompileProgram(glsl.VertexShader, src)
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) && ce.Key == "" {
			ce.Key = key
		}
		return nil, err
	}
	return &CompiledProgram{Program: prog, Key: key, Strategy: strategy}, nil
}

// VertexArray binds the shared quad to p's attributes.
func (c *Context) VertexArray(p *CompiledProgram) (VertexArray, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil, ErrNotAcquired
	}
	return c.device.NewVertexArray(p.Program, c.quad)
}

// Stats returns program cache statistics.
func (c *Context) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Fallbacks: c.fallbacks,
		Programs:  len(c.distinct()),
	}
}

// distinct returns every live program once. Callers hold c.mu.
func (c *Context) distinct() []*CompiledProgram {
	seen := make(map[*CompiledProgram]bool, len(c.programs)+1)
	var out []*CompiledProgram
	add := func(p *CompiledProgram) {
		if p != nil && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range c.programs {
		add(p)
	}
	add(c.fallback)
	return out
}

// Close releases every program, the quad and the device. It is safe to call
// more than once.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for _, p := range c.distinct() {
		p.Release()
	}
	c.programs = nil
	c.fallback = nil
	if c.quad != nil {
		c.quad.Release()
		c.quad = nil
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
}
