// Package frames holds the frame-sequence types exchanged with the renderer,
// together with resampling, upload conversion and image decoding.
package frames

import (
	"errors"
	"fmt"
)

// Sentinel errors for sequence validation.
var (
	// ErrEmptySequence is returned when a sequence has no frames or no pixels.
	ErrEmptySequence = errors.New("frames: empty sequence")

	// ErrChannels is returned for channel counts other than 1, 3 or 4.
	ErrChannels = errors.New("frames: unsupported channel count")
)

// Range describes how sample values map to intensity.
type Range uint8

const (
	// RangeUnit samples are floats in [0, 1]; values outside are clamped.
	RangeUnit Range = iota
	// RangeByte samples are in [0, 255].
	RangeByte
)

// String returns a string representation of the range.
func (r Range) String() string {
	switch r {
	case RangeUnit:
		return "unit"
	case RangeByte:
		return "byte"
	default:
		return "unknown"
	}
}

// Sequence is a stack of N frames of H rows, W columns and C channels,
// stored frame-major then row-major with interleaved channels.
type Sequence struct {
	N, H, W, C int
	Range      Range
	Data       []float32
}

// New allocates a zeroed unit-range sequence.
func New(n, h, w, c int) *Sequence {
	return &Sequence{N: n, H: h, W: w, C: c, Data: make([]float32, n*h*w*c)}
}

// Filled allocates a unit-range sequence with every sample set to v.
func Filled(n, h, w, c int, v float32) *Sequence {
	s := New(n, h, w, c)
	if v != 0 {
		for i := range s.Data {
			s.Data[i] = v
		}
	}
	return s
}

// Validate checks dimensions, channel count and buffer length.
func (s *Sequence) Validate() error {
	if s == nil || s.N <= 0 || s.H <= 0 || s.W <= 0 {
		return ErrEmptySequence
	}
	switch s.C {
	case 1, 3, 4:
	default:
		return fmt.Errorf("%w: %d", ErrChannels, s.C)
	}
	if want := s.N * s.H * s.W * s.C; len(s.Data) != want {
		return fmt.Errorf("frames: data length %d, want %d for %dx%dx%dx%d",
			len(s.Data), want, s.N, s.H, s.W, s.C)
	}
	return nil
}

// FrameLen returns the number of samples in one frame.
func (s *Sequence) FrameLen() int {
	return s.H * s.W * s.C
}

// Frame returns frame i as a slice aliasing the sequence data.
func (s *Sequence) Frame(i int) []float32 {
	n := s.FrameLen()
	return s.Data[i*n : (i+1)*n : (i+1)*n]
}

// Clamp returns i limited to the valid frame indices of s.
func (s *Sequence) Clamp(i int) int {
	return max(0, min(i, s.N-1))
}

// Unit returns frame i as an RGB frame in [0, 1]. Grey frames are
// replicated and alpha is dropped.
func (s *Sequence) Unit(i int) []float32 {
	src := s.Frame(i)
	out := make([]float32, s.H*s.W*3)
	for p := 0; p < s.H*s.W; p++ {
		for ch := 0; ch < 3; ch++ {
			k := ch
			if s.C == 1 {
				k = 0
			}
			out[p*3+ch] = s.normalize(src[p*s.C+k])
		}
	}
	return out
}

func (s *Sequence) normalize(v float32) float32 {
	if s.Range == RangeByte {
		v /= 255
	}
	return clamp01(v)
}

// Append adds frame, which must hold FrameLen samples in the range of s.
func (s *Sequence) Append(frame []float32) {
	s.Data = append(s.Data, frame...)
	s.N++
}

// Stack builds a unit-range sequence from equally sized frames.
func Stack(h, w, c int, frames [][]float32) *Sequence {
	s := &Sequence{H: h, W: w, C: c, Data: make([]float32, 0, len(frames)*h*w*c)}
	for _, f := range frames {
		s.Append(f)
	}
	return s
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
