// Package easing maps linear transition progress onto a timing curve.
//
// The curve is a cubic Bezier in the unit square, the same shape CSS uses for
// cubic-bezier() timing functions: x is time, y is progress. Ease solves for
// the curve parameter whose x matches the input and returns the y there.
package easing

import "math"

// Newton solver limits.
const (
	maxIterations = 8
	xTolerance    = 1e-4
	minDerivative = 1e-6
)

// Point is a 2-D control point.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// CubicBezier is a timing curve with endpoints P0, P1 and control points
// C0, C1. Endpoints are conventionally (0,0) and (1,1) but are used as given.
type CubicBezier struct {
	P0, C0, C1, P1 Point
}

// Default returns the stock ease-in-out curve used when no curve is configured.
func Default() CubicBezier {
	return CubicBezier{
		P0: Pt(0, 0),
		C0: Pt(0.4, 0),
		C1: Pt(0.6, 1),
		P1: Pt(1, 1),
	}
}

// Linear returns the identity curve.
func Linear() CubicBezier {
	return CubicBezier{P0: Pt(0, 0), C0: Pt(1.0/3, 1.0/3), C1: Pt(2.0/3, 2.0/3), P1: Pt(1, 1)}
}

// IsIdentity reports whether every point lies on y = x, in which case Ease
// returns its input unchanged.
func (c CubicBezier) IsIdentity() bool {
	return c.P0.X == c.P0.Y && c.C0.X == c.C0.Y && c.C1.X == c.C1.Y && c.P1.X == c.P1.Y
}

// Eval evaluates the curve at parameter t.
func (c CubicBezier) Eval(t float64) Point {
	mt := 1.0 - t
	mt2 := mt * mt
	mt3 := mt2 * mt
	t2 := t * t
	t3 := t2 * t

	// (1-t)^3 * P0 + 3(1-t)^2*t * C0 + 3(1-t)*t^2 * C1 + t^3 * P1
	return Point{
		X: mt3*c.P0.X + 3*mt2*t*c.C0.X + 3*mt*t2*c.C1.X + t3*c.P1.X,
		Y: mt3*c.P0.Y + 3*mt2*t*c.C0.Y + 3*mt*t2*c.C1.Y + t3*c.P1.Y,
	}
}

// derivX returns dx/dt at parameter t.
func (c CubicBezier) derivX(t float64) float64 {
	mt := 1.0 - t
	return 3*mt*mt*(c.C0.X-c.P0.X) + 6*mt*t*(c.C1.X-c.C0.X) + 3*t*t*(c.P1.X-c.C1.X)
}

// Solve returns the curve parameter t in [0, 1] whose x-coordinate is
// closest to x, using at most eight Newton-Raphson steps from t = x.
func (c CubicBezier) Solve(x float64) float64 {
	t := x
	for i := 0; i < maxIterations; i++ {
		dx := c.derivX(t)
		if math.Abs(dx) < minDerivative {
			break
		}
		diff := c.Eval(t).X - x
		if math.Abs(diff) < xTolerance {
			break
		}
		t -= diff / dx
	}
	return math.Max(0, math.Min(1, t))
}

// Ease maps linear progress x to eased progress.
func (c CubicBezier) Ease(x float64) float64 {
	if c.IsIdentity() {
		return x
	}
	return c.Eval(c.Solve(x)).Y
}
