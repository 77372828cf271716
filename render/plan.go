// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/blendpack/easing"
)

// Phase is the part of the output a frame belongs to.
type Phase uint8

const (
	// PhaseTransition frames are rendered by the transition program.
	PhaseTransition Phase = iota
	// PhaseClipA frames copy clip A with an all-zero mask.
	PhaseClipA
	// PhaseClipB frames copy clip B with an all-one mask.
	PhaseClipB
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseTransition:
		return "transition"
	case PhaseClipA:
		return "clip-a"
	case PhaseClipB:
		return "clip-b"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// Step describes one output frame.
type Step struct {
	Phase  Phase
	Linear float64 // linear progress, also bound as uTime
	Eased  float64 // eased progress, bound as uProgress
	A, B   int     // source frame indices
}

// Bypass reports whether the frame is copied without running the shader.
func (s Step) Bypass() bool {
	return s.Phase != PhaseTransition
}

// Plan is the frame-index mapping of one render call.
type Plan struct {
	Steps []Step

	// FullVideo is set when the output carries both clips around the
	// transition.
	FullVideo bool
	// Phase lengths. ClipA and ClipB are zero in transition-only mode.
	ClipA, Transition, ClipB int
}

// NewPlan maps the output frames of p onto clips of lenA and lenB frames.
//
// Full-video mode applies when p.FullVideo is set and p.TransitionFrames is
// positive; the output then has lenA + p.TransitionFrames + lenB frames.
// Otherwise the output has p.Frames transition frames sampled from the
// clip start offsets.
func NewPlan(lenA, lenB int, p Params) Plan {
	if p.FullVideo && p.TransitionFrames > 0 {
		return fullPlan(lenA, lenB, p.TransitionFrames, p.Curve)
	}
	return transitionPlan(lenA, lenB, max(p.Frames, 0), p.StartA, p.StartB, p.Curve)
}

func transitionPlan(lenA, lenB, n, startA, startB int, curve easing.CubicBezier) Plan {
	plan := Plan{Steps: make([]Step, n), Transition: n}
	den := float64(max(n-1, 1))
	for i := range plan.Steps {
		t := float64(i) / den
		plan.Steps[i] = Step{
			Phase:  PhaseTransition,
			Linear: t,
			Eased:  curve.Ease(t),
			A:      clampIndex(startA+i, lenA),
			B:      clampIndex(startB+i, lenB),
		}
	}
	return plan
}

func fullPlan(lenA, lenB, trans int, curve easing.CubicBezier) Plan {
	plan := Plan{
		Steps:      make([]Step, 0, lenA+trans+lenB),
		FullVideo:  true,
		ClipA:      lenA,
		Transition: trans,
		ClipB:      lenB,
	}
	for i := 0; i < lenA; i++ {
		plan.Steps = append(plan.Steps, Step{Phase: PhaseClipA, A: clampIndex(i, lenA)})
	}
	den := float64(max(trans-1, 1))
	for i := 0; i < trans; i++ {
		t := float64(i) / den
		plan.Steps = append(plan.Steps, Step{
			Phase:  PhaseTransition,
			Linear: t,
			Eased:  curve.Ease(t),
			// A keeps playing past its end, which pins it to its last frame.
			A: clampIndex(lenA+i, lenA),
			B: clampIndex(i, lenB),
		})
	}
	for i := 0; i < lenB; i++ {
		plan.Steps = append(plan.Steps, Step{
			Phase:  PhaseClipB,
			Linear: 1,
			Eased:  1,
			A:      clampIndex(lenA-1, lenA),
			B:      clampIndex(trans+i, lenB),
		})
	}
	return plan
}

// Len returns the number of output frames.
func (p Plan) Len() int {
	return len(p.Steps)
}

// Rendered returns the number of frames that run the shader.
func (p Plan) Rendered() int {
	n := 0
	for _, s := range p.Steps {
		if !s.Bypass() {
			n++
		}
	}
	return n
}

// Structure describes the phase layout, for example
// "ClipA(5) + Transition(2) + ClipB(5)".
func (p Plan) Structure() string {
	if !p.FullVideo {
		return fmt.Sprintf("Transition(%d)", p.Transition)
	}
	return fmt.Sprintf("ClipA(%d) + Transition(%d) + ClipB(%d)", p.ClipA, p.Transition, p.ClipB)
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}
