// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"testing"

	"github.com/gogpu/blendpack/easing"
	"github.com/gogpu/blendpack/shader"
)

func TestNewPlanTransitionOnly(t *testing.T) {
	plan := NewPlan(20, 20, Params{Frames: 10, StartA: 3, StartB: 15, Curve: easing.Linear()})

	if plan.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", plan.Len())
	}
	if plan.FullVideo {
		t.Error("FullVideo = true, want false")
	}
	for i, st := range plan.Steps {
		if st.Phase != PhaseTransition || st.Bypass() {
			t.Errorf("step %d: phase %v, want transition", i, st.Phase)
		}
		if want := float64(i) / 9; math.Abs(st.Linear-want) > 1e-12 || math.Abs(st.Eased-want) > 1e-12 {
			t.Errorf("step %d: linear %v eased %v, want %v", i, st.Linear, st.Eased, want)
		}
		if st.A != 3+i {
			t.Errorf("step %d: A = %d, want %d", i, st.A, 3+i)
		}
		if want := min(15+i, 19); st.B != want {
			t.Errorf("step %d: B = %d, want %d", i, st.B, want)
		}
	}
}

func TestNewPlanEasesProgress(t *testing.T) {
	curve := easing.Default()
	plan := NewPlan(4, 4, Params{Frames: 5, Curve: curve})
	for i, st := range plan.Steps {
		if want := curve.Ease(st.Linear); st.Eased != want {
			t.Errorf("step %d: Eased = %v, want %v", i, st.Eased, want)
		}
	}
}

func TestNewPlanSingleFrame(t *testing.T) {
	plan := NewPlan(3, 3, Params{Frames: 1})
	if plan.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", plan.Len())
	}
	if plan.Steps[0].Linear != 0 {
		t.Errorf("Linear = %v, want 0", plan.Steps[0].Linear)
	}
}

func TestNewPlanZeroFrames(t *testing.T) {
	if n := NewPlan(3, 3, Params{Frames: 0}).Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
	if n := NewPlan(3, 3, Params{Frames: -4}).Len(); n != 0 {
		t.Errorf("Len() with negative frames = %d, want 0", n)
	}
}

func TestNewPlanFullVideo(t *testing.T) {
	plan := NewPlan(5, 5, Params{FullVideo: true, TransitionFrames: 2, Frames: 99, Curve: easing.Default()})

	if plan.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", plan.Len())
	}
	type want struct {
		phase  Phase
		linear float64
		a, b   int
	}
	wants := []want{
		{PhaseClipA, 0, 0, 0},
		{PhaseClipA, 0, 1, 0},
		{PhaseClipA, 0, 2, 0},
		{PhaseClipA, 0, 3, 0},
		{PhaseClipA, 0, 4, 0},
		{PhaseTransition, 0, 4, 0},
		{PhaseTransition, 1, 4, 1},
		{PhaseClipB, 1, 4, 2},
		{PhaseClipB, 1, 4, 3},
		{PhaseClipB, 1, 4, 4},
		{PhaseClipB, 1, 4, 4},
		{PhaseClipB, 1, 4, 4},
	}
	for i, w := range wants {
		st := plan.Steps[i]
		if st.Phase != w.phase || st.Linear != w.linear || st.A != w.a || st.B != w.b {
			t.Errorf("step %d = %+v, want %+v", i, st, w)
		}
	}
	if got := plan.Rendered(); got != 2 {
		t.Errorf("Rendered() = %d, want 2", got)
	}
	if got := plan.Steps[11].Eased; got != 1 {
		t.Errorf("clip B Eased = %v, want 1", got)
	}
}

func TestNewPlanFullVideoNeedsTransitionFrames(t *testing.T) {
	plan := NewPlan(5, 5, Params{FullVideo: true, Frames: 3})
	if plan.FullVideo || plan.Len() != 3 {
		t.Errorf("NewPlan() = full %v len %d, want transition-only of 3", plan.FullVideo, plan.Len())
	}
}

func TestPlanStructure(t *testing.T) {
	tests := []struct {
		plan Plan
		want string
	}{
		{NewPlan(5, 5, Params{FullVideo: true, TransitionFrames: 2}), "ClipA(5) + Transition(2) + ClipB(5)"},
		{NewPlan(5, 5, Params{Frames: 60}), "Transition(60)"},
	}
	for _, tt := range tests {
		if got := tt.plan.Structure(); got != tt.want {
			t.Errorf("Structure() = %q, want %q", got, tt.want)
		}
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		p    Phase
		want string
	}{
		{PhaseTransition, "transition"},
		{PhaseClipA, "clip-a"},
		{PhaseClipB, "clip-b"},
		{Phase(9), "Phase(9)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Phase.String() = %q, want %q", got, tt.want)
		}
	}
}

type uniformSet map[string]bool

func (u uniformSet) HasUniform(name string) bool { return u[name] }

func TestUniformName(t *testing.T) {
	prog := uniformSet{"uSoftness": true, "scale": true, "uNoiseScale": true, "uÉclat": true}
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"scale", "scale", true},
		{"uSoftness", "uSoftness", true},
		{"softness", "uSoftness", true},
		{"noiseScale", "uNoiseScale", true},
		{"éclat", "uÉclat", true},
		{"NoiseScale", "uNoiseScale", true},
		{"missing", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := UniformName(prog, tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("UniformName(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBindingsOverridesWin(t *testing.T) {
	prog := uniformSet{"uSoftness": true, "scale": true}
	defaults := map[string]shader.Value{
		"uSoftness": shader.Scalar(0.02),
		"scale":     shader.Scalar(2),
	}
	overrides := map[string]shader.Value{
		"softness": shader.Scalar(0.5),
		"missing":  shader.Scalar(1),
		"empty":    nil,
	}
	got := bindings(prog, defaults, overrides)
	if len(got) != 2 {
		t.Fatalf("bindings() = %v, want 2 entries", got)
	}
	if got[0].name != "scale" || got[0].value[0] != 2 {
		t.Errorf("bindings()[0] = %+v, want scale=2", got[0])
	}
	if got[1].name != "uSoftness" || got[1].value[0] != 0.5 {
		t.Errorf("bindings()[1] = %+v, want uSoftness=0.5", got[1])
	}
}
