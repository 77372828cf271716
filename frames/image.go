package frames

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("frames: empty image data")

// Decode decodes a PNG, JPEG, GIF or WebP image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("frames: decode: %w", err)
	}
	return img, nil
}

// DecodeBytes decodes an image held in memory.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// LoadImage decodes the image file at path.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("frames: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// FromImage converts img to a unit-range RGB frame and returns it with its
// height and width. Alpha is discarded.
func FromImage(img image.Image) (frame []float32, h, w int) {
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.Draw(nrgba, nrgba.Rect, img, b.Min, xdraw.Src)
	}

	frame = make([]float32, h*w*3)
	for y := range h {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := range w {
			o := (y*w + x) * 3
			frame[o] = float32(row[x*4]) / 255
			frame[o+1] = float32(row[x*4+1]) / 255
			frame[o+2] = float32(row[x*4+2]) / 255
		}
	}
	return frame, h, w
}

// Scale resizes img to w x h with bilinear filtering. Images already at that
// size are returned unchanged.
func Scale(img image.Image, w, h int) image.Image {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Rect, img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// ToImage converts frame i of s to an 8-bit image. Single-channel frames
// become grey images.
func (s *Sequence) ToImage(i int) image.Image {
	src := s.Frame(i)
	rect := image.Rect(0, 0, s.W, s.H)
	if s.C == 1 {
		g := image.NewGray(rect)
		for y := range s.H {
			for x := range s.W {
				g.SetGray(x, y, color.Gray{Y: toByte(src[y*s.W+x], s.Range)})
			}
		}
		return g
	}

	img := image.NewNRGBA(rect)
	for y := range s.H {
		for x := range s.W {
			p := src[(y*s.W+x)*s.C:]
			a := byte(255)
			if s.C == 4 {
				a = toByte(p[3], s.Range)
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(p[0], s.Range),
				G: toByte(p[1], s.Range),
				B: toByte(p[2], s.Range),
				A: a,
			})
		}
	}
	return img
}

// SavePNG writes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("frames: create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("frames: encode PNG: %w", err)
	}
	return f.Close()
}

// WritePNGs writes every frame of s to dir as prefix_00000.png,
// prefix_00001.png and so on.
func WritePNGs(dir, prefix string, s *Sequence) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("frames: %w", err)
	}
	for i := 0; i < s.N; i++ {
		name := filepath.Join(dir, fmt.Sprintf("%s_%05d.png", prefix, i))
		if err := SavePNG(name, s.ToImage(i)); err != nil {
			return err
		}
	}
	return nil
}
