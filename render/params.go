// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"maps"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/blendpack/easing"
	"github.com/gogpu/blendpack/shader"
)

// Params configures one render call.
type Params struct {
	// Key selects the transition program. Unknown keys render with the
	// default crossfade.
	Key string

	// Frames is the number of output frames in transition-only mode.
	Frames int

	// Intensity is bound as uIntensity.
	Intensity float64

	// StartA and StartB offset the first sampled frame of each clip in
	// transition-only mode.
	StartA, StartB int

	// Curve maps linear progress to uProgress. The zero curve is the
	// identity; use easing.Default for the stock ease-in-out.
	Curve easing.CubicBezier

	// Width and Height set the output size. When either is zero the output
	// takes the per-axis maximum of both clips.
	Width, Height int

	// FullVideo renders clip A, the transition and clip B back to back.
	// TransitionFrames is the length of the transition in that mode.
	FullVideo        bool
	TransitionFrames int

	// Uniforms override the program's default uniform values by name.
	Uniforms map[string]shader.Value
}

// UniformProgram is the part of a program uniform lookup needs.
type UniformProgram interface {
	HasUniform(name string) bool
}

var upper = cases.Upper(language.Und)

// UniformName resolves a settings name to a uniform of p: the name itself
// when p declares it, else "u" followed by the name with its first letter
// capitalized. It reports false when neither exists.
func UniformName(p UniformProgram, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if p.HasUniform(name) {
		return name, true
	}
	r, size := utf8.DecodeRuneInString(name)
	prefixed := "u" + upper.String(string(r)) + name[size:]
	if p.HasUniform(prefixed) {
		return prefixed, true
	}
	return "", false
}

// binding is a resolved uniform assignment.
type binding struct {
	name  string
	value shader.Value
}

// bindings resolves defaults and then overrides against p, so an override
// replaces the default of the uniform it resolves to even when spelled
// differently. Names the program does not declare are dropped. The result
// is ordered by uniform name.
func bindings(p UniformProgram, defaults, overrides map[string]shader.Value) []binding {
	resolved := make(map[string]shader.Value, len(defaults)+len(overrides))
	for _, src := range []map[string]shader.Value{defaults, overrides} {
		for _, name := range slices.Sorted(maps.Keys(src)) {
			v := src[name]
			if len(v) == 0 {
				continue
			}
			if u, ok := UniformName(p, name); ok {
				resolved[u] = v
			}
		}
	}

	out := make([]binding, 0, len(resolved))
	for _, u := range slices.Sorted(maps.Keys(resolved)) {
		out = append(out, binding{name: u, value: resolved[u]})
	}
	return out
}
