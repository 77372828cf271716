package blendpack

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/blendpack/frames"
)

// Export modes reported in Info.ExportMode.
const (
	ExportTransitionOnly = "transition_only"
	ExportFullVideos     = "full_videos"
)

// BackendPreRendered is reported in Info.Backend when the output was
// decoded from pre-rendered frames instead of being rendered.
const BackendPreRendered = "prerendered"

// Info describes one Blend call.
type Info struct {
	RunID string `json:"run_id"`

	Engine          string  `json:"engine"`
	Variant         string  `json:"variant"`
	ShaderRequested string  `json:"shader_requested,omitempty"`
	ShaderUsed      string  `json:"shader_used,omitempty"`
	Strategy        string  `json:"strategy,omitempty"`
	Intensity       float64 `json:"intensity"`

	FPS           float64 `json:"fps"`
	UseSourceFPS  bool    `json:"use_source_fps"`
	SourceFPSUsed bool    `json:"source_fps_used"`
	SourceFPSA    float64 `json:"source_fps_a"`
	SourceFPSB    float64 `json:"source_fps_b"`
	SourceA       string  `json:"source_a,omitempty"`
	SourceB       string  `json:"source_b,omitempty"`

	Backend string `json:"render_backend"`
	Adapter string `json:"adapter,omitempty"`
	// Fallback is set when the configured backend failed and the output
	// was rendered by the software backend instead.
	Fallback       bool   `json:"fallback,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	ResolutionMode     string `json:"resolution_mode,omitempty"`
	TargetRes          string `json:"target_res,omitempty"`
	ExportMode         string `json:"export_mode,omitempty"`
	Duration           string `json:"duration,omitempty"`
	TransitionDuration string `json:"transition_duration,omitempty"`
	Structure          string `json:"structure,omitempty"`

	FrameCount   int    `json:"frame_count"`
	OutputRes    string `json:"output_res"`
	DecodeErrors int    `json:"decode_errors,omitempty"`
	Elapsed      string `json:"elapsed"`
}

// JSON renders the info as indented JSON.
func (i Info) JSON() ([]byte, error) {
	return json.MarshalIndent(i, "", "  ")
}

func sizeLabel(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}

func sourceLabel(s *frames.Sequence) string {
	return fmt.Sprintf("%dx%d (%d frames)", s.W, s.H, s.N)
}

func seconds(v float64) string {
	return fmt.Sprintf("%.2fs", v)
}
