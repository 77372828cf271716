package settings

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/internal/logging"
	"github.com/gogpu/blendpack/shader"
)

//go:embed schema.cue
var schemaSrc string

// reserved lists keys that never become uniform overrides.
var reserved = map[string]bool{
	"engine": true, "variant": true, "duration": true, "fps": true,
	"intensity": true, "easing": true, "isRealPreview": true,
	"clipAStart": true, "clipBStart": true, "clip_a_start": true, "clip_b_start": true,
	"use_source_fps": true, "exportFullVideos": true, "preRenderedFrames": true,
	"curveP0": true, "curveC0": true, "curveC1": true, "curveP1": true,
	"resolution_mode": true, "custom_width": true, "custom_height": true,
}

// IsReserved reports whether key is a setting rather than a uniform.
func IsReserved(key string) bool {
	return reserved[key]
}

// schema is compiled once; cue values are not safe for concurrent use.
var schema struct {
	once sync.Once
	mu   sync.Mutex
	ctx  *cue.Context
	def  cue.Value
	err  error
}

func validate(doc map[string]any) error {
	schema.once.Do(func() {
		schema.ctx = cuecontext.New()
		v := schema.ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schema.err = err
			return
		}
		schema.def = v.LookupPath(cue.ParsePath("#Settings"))
	})
	if schema.err != nil {
		return fmt.Errorf("settings: schema: %w", schema.err)
	}

	schema.mu.Lock()
	defer schema.mu.Unlock()
	v := schema.ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Parse decodes a YAML or JSON settings document over the defaults.
func Parse(data []byte) (Settings, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return FromMap(doc)
}

// Load reads and parses a settings file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// FromMap validates and decodes an already parsed document.
func FromMap(doc map[string]any) (Settings, error) {
	s := Default()
	if len(doc) == 0 {
		return s, nil
	}
	if err := validate(doc); err != nil {
		return Settings{}, err
	}

	// Round-trip through YAML to reuse the struct tags for known keys.
	data, err := yaml.Marshal(doc)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	// Snake-case offsets win over their camel-case spellings.
	if v, ok := number(doc["clip_a_start"]); ok {
		s.ClipAStart = v
	}
	if v, ok := number(doc["clip_b_start"]); ok {
		s.ClipBStart = v
	}
	if refs, ok := doc["preRenderedFrames"].([]any); ok {
		s.PreRenderedFrames = frameRefs(refs)
	}

	s.Uniforms = make(map[string]shader.Value)
	for k, raw := range doc {
		if reserved[k] {
			continue
		}
		v, err := Uniform(raw)
		if err != nil {
			logging.Logger().Debug("settings: ignoring key", "key", k, "err", err)
			continue
		}
		s.Uniforms[k] = v
	}
	return s, nil
}

func frameRefs(items []any) []frames.FrameRef {
	refs := make([]frames.FrameRef, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			refs = append(refs, frames.FrameRef{Data: v})
		case map[string]any:
			ref := frames.FrameRef{Type: frames.AssetTemp}
			ref.Name, _ = v["name"].(string)
			if sub, ok := v["subfolder"].(string); ok {
				ref.Subfolder = sub
			}
			if typ, ok := v["type"].(string); ok && typ != "" {
				ref.Type = typ
			}
			refs = append(refs, ref)
		}
	}
	return refs
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
