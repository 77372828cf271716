package frames

import "math"

// Resample scales one frame of h x w x c samples to th x tw using bilinear
// interpolation with half-pixel centers, matching texture sampling with
// edge clamping. Equal sizes return an exact copy.
func Resample(src []float32, h, w, c, th, tw int) []float32 {
	if h == th && w == tw {
		return append([]float32(nil), src...)
	}
	dst := make([]float32, th*tw*c)
	sx := float64(w) / float64(tw)
	sy := float64(h) / float64(th)

	for y := 0; y < th; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		ty := float32(fy - float64(y0))
		y1 := clampIndex(y0+1, h)
		y0 = clampIndex(y0, h)

		for x := 0; x < tw; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			tx := float32(fx - float64(x0))
			x1 := clampIndex(x0+1, w)
			x0 = clampIndex(x0, w)

			i00 := (y0*w + x0) * c
			i10 := (y0*w + x1) * c
			i01 := (y1*w + x0) * c
			i11 := (y1*w + x1) * c
			o := (y*tw + x) * c
			for ch := 0; ch < c; ch++ {
				dst[o+ch] = lerp2D(src[i00+ch], src[i10+ch], src[i01+ch], src[i11+ch], tx, ty)
			}
		}
	}
	return dst
}

// ResampleFrame returns frame i of s at th x tw, in the range and channel
// layout of s.
func (s *Sequence) ResampleFrame(i, th, tw int) []float32 {
	return Resample(s.Frame(i), s.H, s.W, s.C, th, tw)
}

// Resized returns a copy of s with every frame resampled to th x tw.
func (s *Sequence) Resized(th, tw int) *Sequence {
	out := &Sequence{H: th, W: tw, C: s.C, Range: s.Range, Data: make([]float32, 0, s.N*th*tw*s.C)}
	for i := 0; i < s.N; i++ {
		out.Append(s.ResampleFrame(i, th, tw))
	}
	return out
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n-1 {
		return n - 1
	}
	return v
}

func lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

func lerp2D(v00, v10, v01, v11, tx, ty float32) float32 {
	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty)
}
