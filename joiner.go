package blendpack

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/google/uuid"

	"github.com/gogpu/blendpack/backend"
	"github.com/gogpu/blendpack/easing"
	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/internal/logging"
	"github.com/gogpu/blendpack/render"
	"github.com/gogpu/blendpack/settings"
	"github.com/gogpu/blendpack/shader"
)

// ErrClosed is returned by a Joiner used after Close.
var ErrClosed = errors.New("blendpack: joiner closed")

// Output is the result of one Blend call.
type Output struct {
	// Frames holds unit-range RGB frames.
	Frames *frames.Sequence
	// ClipB is clip B as given, for chaining another transition.
	ClipB *frames.Sequence
	// Masks holds one unit-range single-channel frame per output frame.
	Masks *frames.Sequence
	Info  Info
	// FPS is the rate the output was timed at.
	FPS float64
}

// Joiner blends clips with the programs of a shader library.
//
// Backends are initialized on first use and kept until Close. Joiner is
// safe for concurrent use; Blend calls are serialized.
type Joiner struct {
	mu       sync.Mutex
	opts     options
	backends map[string]backend.RenderBackend
	closed   bool
}

// NewJoiner creates a Joiner.
func NewJoiner(opts ...Option) *Joiner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.library == nil {
		o.library = shader.Stock()
	}
	return &Joiner{opts: o, backends: map[string]backend.RenderBackend{}}
}

func slogger() *slog.Logger { return logging.Logger() }

// Library returns the shader library programs are looked up in.
func (j *Joiner) Library() *shader.Library {
	return j.opts.library
}

// Close releases every backend the Joiner initialized.
func (j *Joiner) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, name := range slices.Sorted(maps.Keys(j.backends)) {
		j.backends[name].Close()
	}
	clear(j.backends)
	j.closed = true
}

// Blend renders the transition from a to b described by s.
//
// When s carries pre-rendered frames they are decoded instead of rendered.
// Otherwise the engine and variant are mapped onto a program and rendered
// on the configured backend, falling back to the software backend when
// that fails and the fallback is enabled.
func (j *Joiner) Blend(a, b frames.Clip, s settings.Settings) (*Output, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil, ErrClosed
	}
	if err := b.Frames.Validate(); err != nil {
		return nil, fmt.Errorf("blendpack: clip B: %w", err)
	}

	start := time.Now()
	info := Info{
		RunID:        newRunID(),
		Engine:       s.Engine,
		Variant:      s.Variant,
		Intensity:    s.Intensity,
		FPS:          s.FPS,
		UseSourceFPS: s.UseSourceFPS,
		SourceFPSA:   a.FPS,
		SourceFPSB:   b.FPS,
		SourceB:      sourceLabel(b.Frames),
	}

	var (
		out *Output
		err error
	)
	if len(s.PreRenderedFrames) > 0 {
		out = j.preRendered(a, b, s, &info)
	} else {
		out, err = j.render(a, b, s, &info)
	}
	if err != nil {
		return nil, err
	}

	info.FrameCount = out.Frames.N
	info.OutputRes = sizeLabel(out.Frames.W, out.Frames.H)
	info.Elapsed = time.Since(start).Round(time.Millisecond).String()
	out.Info = info

	slogger().Info("blendpack: blend finished",
		"run", info.RunID, "backend", info.Backend, "shader", info.ShaderUsed,
		"frames", info.FrameCount, "size", info.OutputRes, "elapsed", info.Elapsed)
	return out, nil
}

// preRendered decodes frames rendered elsewhere. Clip A may be empty.
func (j *Joiner) preRendered(a, b frames.Clip, s settings.Settings, info *Info) *Output {
	ref := b.Frames
	if a.Frames.Validate() == nil {
		ref = a.Frames
		info.SourceA = sourceLabel(a.Frames)
	}
	w, h := s.Target(ref.W, ref.H, b.Frames.W, b.Frames.H)

	dec := frames.PreRendered{Assets: j.opts.assets, Width: w, Height: h}
	seq, errs := dec.Decode(s.PreRenderedFrames)

	info.Backend = BackendPreRendered
	info.ResolutionMode = string(s.ResolutionMode)
	info.TargetRes = sizeLabel(w, h)
	info.DecodeErrors = len(errs)

	return &Output{
		Frames: seq,
		ClipB:  b.Frames,
		Masks:  curveMasks(seq.N, seq.H, seq.W, s.Curve()),
		FPS:    s.FPS,
	}
}

func (j *Joiner) render(a, b frames.Clip, s settings.Settings, info *Info) (*Output, error) {
	if err := a.Frames.Validate(); err != nil {
		return nil, fmt.Errorf("blendpack: clip A: %w", err)
	}
	fa, fb := a.Frames, b.Frames
	info.SourceA = sourceLabel(fa)

	fps, fromSource := s.FrameRate(a.FPS, b.FPS)
	if s.UseSourceFPS && !fromSource {
		slogger().Warn("blendpack: source frame rate unavailable",
			"fps_a", a.FPS, "fps_b", b.FPS, "using", fps)
	}
	info.FPS, info.SourceFPSUsed = fps, fromSource
	trans := s.TransitionFrames(fps)

	info.ShaderRequested = shader.Key(s.Engine, s.Variant)
	key, ok := j.opts.library.Registry.Match(s.Engine, s.Variant)
	if !ok {
		slogger().Warn("blendpack: no program matches, using default",
			"engine", s.Engine, "variant", s.Variant, "key", key)
	}

	w, h := s.Target(fa.W, fa.H, fb.W, fb.H)
	info.ResolutionMode = string(s.ResolutionMode)
	info.TargetRes = sizeLabel(w, h)

	p := render.Params{
		Key:       key,
		Frames:    trans,
		Intensity: s.Intensity,
		Curve:     s.Curve(),
		Width:     w,
		Height:    h,
		Uniforms:  s.Uniforms,
	}
	if s.ExportFullVideos {
		p.FullVideo, p.TransitionFrames = true, trans
		info.ExportMode = ExportFullVideos
		info.Duration = seconds(float64(fa.N)/fps + s.Duration + float64(fb.N)/fps)
		info.TransitionDuration = seconds(s.Duration)
	} else {
		p.StartA, p.StartB = s.StartFrames(fps, fa.N, fb.N)
		info.ExportMode = ExportTransitionOnly
		info.Duration = seconds(s.Duration)
	}

	res, err := j.renderOn(fa, fb, p, info)
	if err != nil {
		return nil, err
	}
	info.ShaderUsed = res.Shader
	if res.Strategy != 0 {
		info.Strategy = res.Strategy.String()
	}
	if res.Plan.FullVideo {
		info.Structure = res.Plan.Structure()
	}
	return &Output{Frames: res.Frames, ClipB: fb, Masks: res.Masks, FPS: fps}, nil
}

// renderOn renders on the configured backend and, when that fails, on the
// software backend.
func (j *Joiner) renderOn(a, b *frames.Sequence, p render.Params, info *Info) (*render.Result, error) {
	name := j.opts.backend
	if name == "" {
		name = backend.DefaultName()
	}

	rb, err := j.backend(name)
	if err == nil {
		var res *render.Result
		if res, err = rb.Render(a, b, p); err == nil {
			info.Backend = name
			info.Adapter = adapterName(rb)
			return res, nil
		}
	}
	if !j.opts.fallback || name == backend.BackendSoftware {
		return nil, fmt.Errorf("blendpack: %s backend: %w", name, err)
	}

	slogger().Warn("blendpack: falling back to software backend", "backend", name, "err", err)
	sw, serr := j.backend(backend.BackendSoftware)
	if serr != nil {
		return nil, fmt.Errorf("blendpack: %s backend: %w", name, err)
	}
	res, serr := sw.Render(a, b, p)
	if serr != nil {
		return nil, fmt.Errorf("blendpack: software fallback: %w", serr)
	}
	info.Backend = backend.BackendSoftware
	info.Fallback = true
	info.FallbackReason = err.Error()
	return res, nil
}

// backend returns the initialized backend named name.
func (j *Joiner) backend(name string) (backend.RenderBackend, error) {
	if rb, ok := j.backends[name]; ok {
		return rb, nil
	}
	rb, err := backend.Init(name, j.opts.library)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, name)
	}
	slogger().Info("blendpack: backend initialized", "backend", name)
	j.backends[name] = rb
	return rb, nil
}

type adapterReporter interface {
	Adapter() (gpucontext.AdapterInfo, bool)
}

func adapterName(rb backend.RenderBackend) string {
	if ar, ok := rb.(adapterReporter); ok {
		if info, ok := ar.Adapter(); ok {
			return info.Name
		}
	}
	return ""
}

// curveMasks returns n constant masks valued Bezier(i/(n-1)).
func curveMasks(n, h, w int, curve easing.CubicBezier) *frames.Sequence {
	masks := &frames.Sequence{H: h, W: w, C: 1, Data: make([]float32, 0, n*h*w)}
	den := float64(max(n-1, 1))
	for i := 0; i < n; i++ {
		masks.Append(frames.Filled(1, h, w, 1, float32(curve.Ease(float64(i)/den))).Data)
	}
	return masks
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
