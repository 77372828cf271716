// Package settings decodes and validates blend settings documents.
//
// A settings document is a YAML or JSON object. Known keys configure the
// transition; every other key overrides a shader uniform. Documents are
// validated against an embedded CUE schema before decoding.
package settings

import (
	"errors"
	"math"

	"github.com/gogpu/blendpack/easing"
	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/shader"
)

// ErrInvalid is returned for documents that fail decoding or validation.
var ErrInvalid = errors.New("settings: invalid document")

// ResolutionMode selects the output size.
type ResolutionMode string

const (
	// ResolutionAuto uses the size of clip A.
	ResolutionAuto ResolutionMode = "auto"
	// ResolutionMax uses the per-axis maximum of both clips.
	ResolutionMax ResolutionMode = "max"
	// ResolutionCustom uses CustomWidth x CustomHeight.
	ResolutionCustom ResolutionMode = "custom"
)

// Custom size limits.
const (
	MinSize     = 64
	MaxSize     = 4096
	DefaultSize = 512
	sizeStep    = 8
)

// Settings configures one blend.
type Settings struct {
	Engine    string  `yaml:"engine"`
	Variant   string  `yaml:"variant"`
	Duration  float64 `yaml:"duration"` // seconds
	FPS       float64 `yaml:"fps"`
	Intensity float64 `yaml:"intensity"`

	// Clip start offsets in seconds, used in transition-only mode.
	ClipAStart float64 `yaml:"clipAStart"`
	ClipBStart float64 `yaml:"clipBStart"`

	ExportFullVideos bool `yaml:"exportFullVideos"`
	UseSourceFPS     bool `yaml:"use_source_fps"`

	CurveP0 easing.Point `yaml:"curveP0"`
	CurveC0 easing.Point `yaml:"curveC0"`
	CurveC1 easing.Point `yaml:"curveC1"`
	CurveP1 easing.Point `yaml:"curveP1"`

	// PreRenderedFrames replace GPU rendering when present.
	PreRenderedFrames []frames.FrameRef `yaml:"-"`

	ResolutionMode ResolutionMode `yaml:"resolution_mode"`
	CustomWidth    int            `yaml:"custom_width"`
	CustomHeight   int            `yaml:"custom_height"`

	// Uniforms holds every key that is not a setting.
	Uniforms map[string]shader.Value `yaml:"-"`
}

// Default returns the settings used for missing keys.
func Default() Settings {
	curve := easing.Default()
	return Settings{
		Engine:         "Dissolve",
		Variant:        "powder",
		Duration:       2.0,
		FPS:            30,
		Intensity:      1.0,
		CurveP0:        curve.P0,
		CurveC0:        curve.C0,
		CurveC1:        curve.C1,
		CurveP1:        curve.P1,
		ResolutionMode: ResolutionAuto,
		CustomWidth:    DefaultSize,
		CustomHeight:   DefaultSize,
		Uniforms:       map[string]shader.Value{},
	}
}

// Curve returns the timing curve.
func (s Settings) Curve() easing.CubicBezier {
	return easing.CubicBezier{P0: s.CurveP0, C0: s.CurveC0, C1: s.CurveC1, P1: s.CurveP1}
}

// FrameRate returns the rate to render at. With UseSourceFPS set, the rate
// of clip A is used when known (above 1), else that of clip B; fromSource
// reports whether either was used.
func (s Settings) FrameRate(fpsA, fpsB float64) (fps float64, fromSource bool) {
	if s.UseSourceFPS {
		switch {
		case fpsA > 1:
			return fpsA, true
		case fpsB > 1:
			return fpsB, true
		}
	}
	return s.FPS, false
}

// TransitionFrames returns the transition length at fps, at least two frames.
func (s Settings) TransitionFrames(fps float64) int {
	return max(2, int(math.Ceil(s.Duration*fps)))
}

// StartFrames converts the clip start offsets to frame indices clamped to
// clips of lenA and lenB frames.
func (s Settings) StartFrames(fps float64, lenA, lenB int) (a, b int) {
	return startFrame(s.ClipAStart, fps, lenA), startFrame(s.ClipBStart, fps, lenB)
}

func startFrame(sec, fps float64, n int) int {
	return min(max(0, int(sec*fps)), n-1)
}

// Target returns the output size for clips of size aw x ah and bw x bh.
// Custom sizes are clamped to [MinSize, MaxSize] and rounded to a multiple
// of 8.
func (s Settings) Target(aw, ah, bw, bh int) (w, h int) {
	switch s.ResolutionMode {
	case ResolutionMax:
		return max(aw, bw), max(ah, bh)
	case ResolutionCustom:
		return customSize(s.CustomWidth), customSize(s.CustomHeight)
	default:
		return aw, ah
	}
}

func customSize(v int) int {
	if v <= 0 {
		v = DefaultSize
	}
	v = (v + sizeStep/2) / sizeStep * sizeStep
	return min(max(v, MinSize), MaxSize)
}
