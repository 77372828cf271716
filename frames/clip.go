package frames

import (
	"fmt"
	"image"
	"image/gif"
	"os"
	"path/filepath"
	"slices"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Clip is a frame sequence with its native frame rate. FPS is zero when the
// source carries no timing.
type Clip struct {
	Frames *Sequence
	FPS    float64
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// LoadClip reads a clip from path: a directory of still images taken in
// name order, an animated GIF or a single still image.
func LoadClip(path string) (Clip, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Clip{}, fmt.Errorf("frames: %w", err)
	}
	if info.IsDir() {
		return loadDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		return loadGIF(path)
	}
	img, err := LoadImage(path)
	if err != nil {
		return Clip{}, err
	}
	return Clip{Frames: stackImages([]image.Image{img})}, nil
}

func loadDir(dir string) (Clip, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Clip{}, fmt.Errorf("frames: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && slices.Contains(imageExts, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	if len(names) == 0 {
		return Clip{}, fmt.Errorf("%w: no images in %s", ErrEmptySequence, dir)
	}

	imgs := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := LoadImage(filepath.Join(dir, name))
		if err != nil {
			return Clip{}, fmt.Errorf("frames: %s: %w", name, err)
		}
		imgs = append(imgs, img)
	}
	return Clip{Frames: stackImages(imgs)}, nil
}

// loadGIF composes every GIF frame onto a persistent canvas and derives the
// frame rate from the mean frame delay.
func loadGIF(path string) (Clip, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Clip{}, fmt.Errorf("frames: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return Clip{}, fmt.Errorf("frames: decode GIF: %w", err)
	}
	if len(g.Image) == 0 {
		return Clip{}, ErrEmptySequence
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(bounds)
	imgs := make([]image.Image, 0, len(g.Image))
	delay := 0
	for i, p := range g.Image {
		xdraw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, xdraw.Over)
		imgs = append(imgs, cloneNRGBA(canvas))
		if i < len(g.Delay) {
			delay += g.Delay[i]
		}
	}

	clip := Clip{Frames: stackImages(imgs)}
	if delay > 0 {
		clip.FPS = 100 * float64(len(g.Image)) / float64(delay)
	}
	return clip, nil
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// stackImages converts images to a unit-range RGB sequence sized after the
// first image.
func stackImages(imgs []image.Image) *Sequence {
	b := imgs[0].Bounds()
	h, w := b.Dy(), b.Dx()
	s := &Sequence{H: h, W: w, C: 3, Data: make([]float32, 0, len(imgs)*h*w*3)}
	for _, img := range imgs {
		frame, _, _ := FromImage(Scale(img, w, h))
		s.Append(frame)
	}
	return s
}
