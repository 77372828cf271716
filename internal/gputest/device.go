// Package gputest provides an in-memory gpu.Device for tests.
//
// The fake "runs" every program the same way: the color target receives
// mix(texture(uTexA), texture(uTexB), uProgress) and, when the fragment
// source writes the mask output, the mask target receives uProgress as an
// opaque grey. That is exactly what the built-in crossfade computes without
// easing, which is enough to check frame bookkeeping and readback.
package gputest

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/blendpack/gpu"
	"github.com/gogpu/blendpack/internal/glsl"
)

// Injected failures.
var (
	ErrCreate = errors.New("gputest: device creation failed")
	ErrDraw   = errors.New("gputest: draw failed")
)

// Factory creates fake devices and records them.
type Factory struct {
	mu sync.Mutex

	// Err, when set, makes every creation fail with it.
	Err error
	// FailCompile lists fragment substrings that make CompileProgram fail.
	FailCompile []string
	// FailDrawAt makes the n-th draw call (1-based) of each device fail.
	FailDrawAt int

	devices []*Device
}

// New implements gpu.DeviceFactory.
func (f *Factory) New(width, height int) (gpu.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	d := &Device{
		failCompile: f.FailCompile,
		failDrawAt:  f.FailDrawAt,
		width:       width,
		height:      height,
		units:       map[int]*texture{},
		live:        map[string]int{},
	}
	f.devices = append(f.devices, d)
	return d, nil
}

// Created returns the number of devices created so far.
func (f *Factory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.devices)
}

// Last returns the most recently created device, or nil.
func (f *Factory) Last() *Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.devices) == 0 {
		return nil
	}
	return f.devices[len(f.devices)-1]
}

// Draw records the uniform state of one draw call.
type Draw struct {
	Ints   map[string]int32
	Floats map[string][]float32
}

// Device is a fake gpu.Device.
type Device struct {
	mu sync.Mutex

	failCompile []string
	failDrawAt  int

	width, height int
	resizes       int
	destroyed     bool

	units   map[int]*texture
	fb      *framebuffer
	current *program

	live    map[string]int
	sources []string
	draws   []Draw
}

var _ gpu.Device = (*Device)(nil)

// AdapterInfo implements gpu.Device.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "gputest", Type: gpucontext.AdapterTypeSoftware}
}

// Resize implements gpu.Device.
func (d *Device) Resize(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
	d.resizes++
	return nil
}

// Size returns the current surface size.
func (d *Device) Size() (width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// Resizes returns how often Resize was called.
func (d *Device) Resizes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resizes
}

// Destroyed reports whether Destroy was called.
func (d *Device) Destroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// Live returns the number of unreleased resources of a kind: "buffer",
// "program", "texture", "framebuffer" or "vertexarray".
func (d *Device) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live[kind]
}

// Sources returns the fragment sources compiled successfully, in order.
func (d *Device) Sources() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sources...)
}

// Draws returns every draw call issued so far.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// Destroy implements gpu.Device.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = true
}

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(vertices []float32) (gpu.Buffer, error) {
	if len(vertices) == 0 || len(vertices)%4 != 0 {
		return nil, fmt.Errorf("gputest: %d floats is not a whole number of vertices", len(vertices))
	}
	d.acquire("buffer")
	return &buffer{d: d}, nil
}

var uniformDecl = regexp.MustCompile(`uniform\s+\w+\s+(\w+)\s*;`)

// CompileProgram implements gpu.Device.
func (d *Device) CompileProgram(vertex, fragment string) (gpu.Program, error) {
	for _, s := range d.failCompile {
		if strings.Contains(fragment, s) {
			return nil, &gpu.CompileError{Stage: gpu.StageFragment, Log: "0:1: injected failure on " + s}
		}
	}
	if !strings.Contains(fragment, "void main") || !strings.Contains(vertex, "void main") {
		return nil, &gpu.CompileError{Stage: gpu.StageLink, Log: "missing main"}
	}

	p := &program{
		d:        d,
		uniforms: map[string]bool{},
		ints:     map[string]int32{},
		floats:   map[string][]float32{},
		mask:     strings.Contains(fragment, glsl.MaskOutput+" ="),
	}
	for _, m := range uniformDecl.FindAllStringSubmatch(fragment, -1) {
		p.uniforms[m[1]] = true
	}

	d.mu.Lock()
	d.sources = append(d.sources, fragment)
	d.mu.Unlock()
	d.acquire("program")
	return p, nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(desc gpu.TextureDesc, pixels []byte) (gpu.Texture, error) {
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("gputest: unsupported format %v", desc.Format)
	}
	n := desc.Width * desc.Height * 4
	if pixels != nil && len(pixels) != n {
		return nil, fmt.Errorf("gputest: got %d bytes, want %d", len(pixels), n)
	}
	t := &texture{d: d, w: desc.Width, h: desc.Height, pix: make([]byte, n)}
	copy(t.pix, pixels)
	d.acquire("texture")
	return t, nil
}

// NewFramebuffer implements gpu.Device.
func (d *Device) NewFramebuffer(targets ...gpu.Texture) (gpu.Framebuffer, error) {
	fb := &framebuffer{d: d}
	for _, t := range targets {
		tex, ok := t.(*texture)
		if !ok {
			return nil, fmt.Errorf("gputest: foreign texture %T", t)
		}
		fb.targets = append(fb.targets, tex)
	}
	d.acquire("framebuffer")
	return fb, nil
}

// NewVertexArray implements gpu.Device.
func (d *Device) NewVertexArray(prog gpu.Program, buf gpu.Buffer) (gpu.VertexArray, error) {
	p, ok := prog.(*program)
	if !ok {
		return nil, fmt.Errorf("gputest: foreign program %T", prog)
	}
	if _, ok := buf.(*buffer); !ok {
		return nil, fmt.Errorf("gputest: foreign buffer %T", buf)
	}
	d.acquire("vertexarray")
	return &vertexArray{d: d, prog: p}, nil
}

func (d *Device) acquire(kind string) {
	d.mu.Lock()
	d.live[kind]++
	d.mu.Unlock()
}

func (d *Device) release(kind string) {
	d.mu.Lock()
	d.live[kind]--
	d.mu.Unlock()
}

type buffer struct {
	d        *Device
	released bool
}

func (b *buffer) Release() {
	if !b.released {
		b.released = true
		b.d.release("buffer")
	}
}

type program struct {
	d        *Device
	uniforms map[string]bool
	ints     map[string]int32
	floats   map[string][]float32
	mask     bool
	released bool
}

func (p *program) HasUniform(name string) bool { return p.uniforms[name] }

func (p *program) SetUniformInt(name string, v int32) {
	if p.uniforms[name] {
		p.ints[name] = v
	}
}

func (p *program) SetUniformFloats(name string, v ...float32) {
	if p.uniforms[name] {
		p.floats[name] = append([]float32(nil), v...)
	}
}

func (p *program) Use() {
	p.d.mu.Lock()
	p.d.current = p
	p.d.mu.Unlock()
}

func (p *program) Release() {
	if !p.released {
		p.released = true
		p.d.release("program")
	}
}

type texture struct {
	d        *Device
	w, h     int
	pix      []byte
	released bool
}

func (t *texture) Bind(unit int) {
	t.d.mu.Lock()
	t.d.units[unit] = t
	t.d.mu.Unlock()
}

func (t *texture) Release() {
	if !t.released {
		t.released = true
		t.d.release("texture")
	}
}

type framebuffer struct {
	d        *Device
	targets  []*texture
	released bool
}

func (f *framebuffer) Bind() {
	f.d.mu.Lock()
	f.d.fb = f
	f.d.mu.Unlock()
}

func (f *framebuffer) Clear(c gputypes.Color) {
	px := [4]byte{unit(c.R), unit(c.G), unit(c.B), unit(c.A)}
	for _, t := range f.targets {
		for i := 0; i < len(t.pix); i += 4 {
			copy(t.pix[i:i+4], px[:])
		}
	}
}

func (f *framebuffer) Read(attachment int) ([]byte, error) {
	if attachment < 0 || attachment >= len(f.targets) {
		return nil, fmt.Errorf("gputest: no attachment %d", attachment)
	}
	return append([]byte(nil), f.targets[attachment].pix...), nil
}

func (f *framebuffer) Release() {
	if !f.released {
		f.released = true
		f.d.release("framebuffer")
	}
}

type vertexArray struct {
	d        *Device
	prog     *program
	released bool
}

func (v *vertexArray) Draw(topology gputypes.PrimitiveTopology, first, count int) error {
	d := v.d
	d.mu.Lock()
	defer d.mu.Unlock()

	d.draws = append(d.draws, Draw{Ints: cloneInts(v.prog.ints), Floats: cloneFloats(v.prog.floats)})
	if d.failDrawAt > 0 && len(d.draws) == d.failDrawAt {
		return ErrDraw
	}
	if topology != gputypes.PrimitiveTopologyTriangleStrip || first != 0 || count != gpu.QuadVertexCount {
		return fmt.Errorf("gputest: unexpected draw %v %d+%d", topology, first, count)
	}
	if d.current != v.prog {
		return errors.New("gputest: program not in use")
	}
	if d.fb == nil || len(d.fb.targets) == 0 {
		return errors.New("gputest: no framebuffer bound")
	}

	a := d.units[int(v.prog.ints[glsl.UniformTexA])]
	b := d.units[int(v.prog.ints[glsl.UniformTexB])]
	color := d.fb.targets[0]
	if a == nil || b == nil {
		return errors.New("gputest: input textures not bound")
	}
	if len(a.pix) != len(color.pix) || len(b.pix) != len(color.pix) {
		return errors.New("gputest: input and target sizes differ")
	}

	var t float64
	if p := v.prog.floats[glsl.UniformProgress]; len(p) > 0 {
		t = float64(p[0])
	}
	for i := range color.pix {
		color.pix[i] = byte(math.Round(float64(a.pix[i])*(1-t) + float64(b.pix[i])*t))
	}
	if v.prog.mask && len(d.fb.targets) > 1 {
		m := unit(t)
		mask := d.fb.targets[1]
		for i := 0; i < len(mask.pix); i += 4 {
			mask.pix[i], mask.pix[i+1], mask.pix[i+2], mask.pix[i+3] = m, m, m, 255
		}
	}
	return nil
}

func (v *vertexArray) Release() {
	if !v.released {
		v.released = true
		v.d.release("vertexarray")
	}
}

func unit(v float64) byte {
	return byte(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func cloneInts(m map[string]int32) map[string]int32 {
	out := make(map[string]int32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFloats(m map[string][]float32) map[string][]float32 {
	out := make(map[string][]float32, len(m))
	for k, v := range m {
		out[k] = append([]float32(nil), v...)
	}
	return out
}
