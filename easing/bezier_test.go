package easing

import (
	"math"
	"testing"
)

func TestEaseIdentity(t *testing.T) {
	curves := []CubicBezier{
		Linear(),
		{P0: Pt(0, 0), C0: Pt(0.25, 0.25), C1: Pt(0.75, 0.75), P1: Pt(1, 1)},
		{P0: Pt(0, 0), C0: Pt(0, 0), C1: Pt(1, 1), P1: Pt(1, 1)},
	}
	for _, c := range curves {
		for i := 0; i <= 100; i++ {
			x := float64(i) / 100
			if got := c.Ease(x); got != x {
				t.Fatalf("%+v.Ease(%v) = %v, want %v", c, x, got, x)
			}
		}
	}
}

func TestEaseEndpoints(t *testing.T) {
	curves := []CubicBezier{
		Default(),
		{P0: Pt(0, 0), C0: Pt(0.42, 0), C1: Pt(1, 1), P1: Pt(1, 1)},
		{P0: Pt(0, 0), C0: Pt(0, 0), C1: Pt(0.58, 1), P1: Pt(1, 1)},
		{P0: Pt(0, 0), C0: Pt(0.1, 0.9), C1: Pt(0.2, 1.2), P1: Pt(1, 1)},
		{P0: Pt(0, 0.1), C0: Pt(0.3, 0.2), C1: Pt(0.7, 0.7), P1: Pt(1, 0.9)},
	}
	for _, c := range curves {
		if got := c.Ease(0); math.Abs(got-c.P0.Y) > 1e-3 {
			t.Errorf("%+v.Ease(0) = %v, want %v", c, got, c.P0.Y)
		}
		if got := c.Ease(1); math.Abs(got-c.P1.Y) > 1e-3 {
			t.Errorf("%+v.Ease(1) = %v, want %v", c, got, c.P1.Y)
		}
	}
}

func TestEaseDefaultShape(t *testing.T) {
	c := Default()
	if got := c.Ease(0.5); math.Abs(got-0.5) > 1e-3 {
		t.Errorf("Default().Ease(0.5) = %v, want 0.5 (symmetric curve)", got)
	}
	if got := c.Ease(0.25); got >= 0.25 {
		t.Errorf("Default().Ease(0.25) = %v, want < 0.25 (slow start)", got)
	}
	if got := c.Ease(0.75); got <= 0.75 {
		t.Errorf("Default().Ease(0.75) = %v, want > 0.75 (slow end)", got)
	}

	prev := -1.0
	for i := 0; i <= 50; i++ {
		got := c.Ease(float64(i) / 50)
		if got < prev-1e-4 {
			t.Fatalf("Default().Ease not monotonic at step %d: %v < %v", i, got, prev)
		}
		prev = got
	}
}

func TestSolveClamped(t *testing.T) {
	c := Default()
	for _, x := range []float64{-0.5, 0, 0.3, 1, 1.5} {
		got := c.Solve(x)
		if got < 0 || got > 1 {
			t.Errorf("Solve(%v) = %v, want value in [0,1]", x, got)
		}
	}
}

func TestSolveFlatDerivative(t *testing.T) {
	// dx/dt is zero at t=0 so the solver must stop immediately.
	c := CubicBezier{P0: Pt(0, 0), C0: Pt(0, 1), C1: Pt(1, 0), P1: Pt(1, 1)}
	if got := c.Solve(0); got != 0 {
		t.Errorf("Solve(0) = %v, want 0", got)
	}
}

func TestEval(t *testing.T) {
	c := Default()
	tests := []struct {
		t    float64
		want Point
	}{
		{0, Pt(0, 0)},
		{1, Pt(1, 1)},
		{0.5, Pt(0.5, 0.5)},
	}
	for _, tt := range tests {
		got := c.Eval(tt.t)
		if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
			t.Errorf("Eval(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
