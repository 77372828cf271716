package frames

// RGBA8 converts one frame of h x w x c samples in range r to tightly packed
// RGBA8 rows ordered bottom-up, the layout GPU textures expect. Grey frames
// are replicated to RGB; frames without alpha are opaque.
func RGBA8(frame []float32, h, w, c int, r Range) []byte {
	out := make([]byte, h*w*4)
	for y := 0; y < h; y++ {
		dst := out[(h-1-y)*w*4:]
		for x := 0; x < w; x++ {
			p := frame[(y*w+x)*c:]
			d := dst[x*4 : x*4+4]
			switch c {
			case 1:
				v := toByte(p[0], r)
				d[0], d[1], d[2], d[3] = v, v, v, 255
			case 3:
				d[0], d[1], d[2], d[3] = toByte(p[0], r), toByte(p[1], r), toByte(p[2], r), 255
			default:
				d[0], d[1], d[2], d[3] = toByte(p[0], r), toByte(p[1], r), toByte(p[2], r), toByte(p[3], r)
			}
		}
	}
	return out
}

// FromRGBA8 converts bottom-up RGBA8 rows read back from a render target into
// a top-down unit-range frame keeping the first c channels.
func FromRGBA8(pix []byte, h, w, c int) []float32 {
	out := make([]float32, h*w*c)
	for y := 0; y < h; y++ {
		src := pix[(h-1-y)*w*4:]
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				out[(y*w+x)*c+ch] = float32(src[x*4+ch]) / 255
			}
		}
	}
	return out
}

func toByte(v float32, r Range) byte {
	if r == RangeUnit {
		v *= 255
	}
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v)
	}
}
