package frames

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, encodePNG(t, img), 0o600))
}

func TestFromImage(t *testing.T) {
	frame, h, w := FromImage(solid(3, 2, color.NRGBA{R: 255, G: 51, B: 0, A: 255}))

	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
	require.Len(t, frame, 18)
	assert.InDeltaSlice(t, []float32{1, 0.2, 0}, frame[:3], 1e-6)
}

func TestFromImageOffsetBounds(t *testing.T) {
	img := solid(4, 4, color.NRGBA{G: 255, A: 255}).SubImage(image.Rect(1, 1, 3, 3))
	frame, h, w := FromImage(img)

	assert.Equal(t, 2, h)
	assert.Equal(t, 2, w)
	assert.Equal(t, float32(1), frame[1])
}

func TestScale(t *testing.T) {
	img := solid(4, 4, color.NRGBA{R: 10, A: 255})
	assert.Same(t, img, Scale(img, 4, 4))

	got := Scale(img, 2, 3)
	assert.Equal(t, image.Rect(0, 0, 2, 3), got.Bounds())
}

func TestWritePNGs(t *testing.T) {
	dir := t.TempDir()
	s := Filled(2, 2, 3, 3, 1)
	require.NoError(t, WritePNGs(dir, "frame", s))

	img, err := LoadImage(filepath.Join(dir, "frame_00001.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	mask := Filled(1, 2, 2, 1, 0.5)
	require.NoError(t, WritePNGs(dir, "mask", mask))
	m, err := LoadImage(filepath.Join(dir, "mask_00000.png"))
	require.NoError(t, err)
	g, ok := m.(*image.Gray)
	require.True(t, ok, "mask decoded as %T", m)
	assert.Equal(t, uint8(127), g.GrayAt(0, 0).Y)
}

func TestLoadClipDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), solid(4, 2, color.NRGBA{B: 255, A: 255}))
	writePNG(t, filepath.Join(dir, "a.png"), solid(4, 2, color.NRGBA{R: 255, A: 255}))
	writePNG(t, filepath.Join(dir, "c.png"), solid(8, 4, color.NRGBA{G: 255, A: 255}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	clip, err := LoadClip(dir)
	require.NoError(t, err)
	require.NoError(t, clip.Frames.Validate())

	assert.Equal(t, 3, clip.Frames.N)
	assert.Equal(t, 2, clip.Frames.H)
	assert.Equal(t, 4, clip.Frames.W)
	assert.Zero(t, clip.FPS)
	assert.Equal(t, float32(1), clip.Frames.Frame(0)[0], "a.png comes first")
	assert.Equal(t, float32(1), clip.Frames.Frame(1)[2], "b.png comes second")
	assert.Equal(t, float32(1), clip.Frames.Frame(2)[1], "c.png is resized into place")
}

func TestLoadClipEmptyDirectory(t *testing.T) {
	_, err := LoadClip(t.TempDir())
	assert.ErrorIs(t, err, ErrEmptySequence)
}

func TestLoadClipGIF(t *testing.T) {
	pal := color.Palette{color.Black, color.White}
	frame := func(c uint8) *image.Paletted {
		p := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
		for i := range p.Pix {
			p.Pix[i] = c
		}
		return p
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{frame(0), frame(1), frame(0), frame(1)},
		Delay: []int{4, 4, 4, 4},
	}))
	path := filepath.Join(t.TempDir(), "anim.gif")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	clip, err := LoadClip(path)
	require.NoError(t, err)
	assert.Equal(t, 4, clip.Frames.N)
	assert.InDelta(t, 25.0, clip.FPS, 1e-9)
	assert.Equal(t, float32(0), clip.Frames.Frame(0)[0])
	assert.Equal(t, float32(1), clip.Frames.Frame(1)[0])
}

func TestLoadClipSingleImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	writePNG(t, path, solid(5, 3, color.NRGBA{R: 255, A: 255}))

	clip, err := LoadClip(path)
	require.NoError(t, err)
	assert.Equal(t, 1, clip.Frames.N)
	assert.Equal(t, 3, clip.Frames.H)
}

func TestPreRenderedDecode(t *testing.T) {
	temp := t.TempDir()
	writePNG(t, filepath.Join(temp, "exports", "f0.png"), solid(4, 4, color.NRGBA{R: 255, A: 255}))
	require.NoError(t, os.WriteFile(filepath.Join(temp, "broken.png"), []byte("not an image"), 0o600))

	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString(
		encodePNG(t, solid(2, 2, color.NRGBA{G: 255, A: 255})))

	p := PreRendered{Assets: map[string]string{AssetTemp: temp}, Width: 4, Height: 2}
	seq, errs := p.Decode([]FrameRef{
		{Name: "f0.png", Subfolder: "exports"},
		{Name: "missing.png"},
		{Name: "broken.png", Type: AssetTemp},
		{Data: inline},
		{Name: "../escape.png"},
	})

	require.NoError(t, seq.Validate())
	assert.Equal(t, 3, seq.N, "missing and escaping refs are omitted, broken is duplicated")
	assert.Equal(t, 2, seq.H)
	assert.Equal(t, 4, seq.W)
	assert.Equal(t, seq.Frame(0), seq.Frame(1))
	assert.Equal(t, float32(1), seq.Frame(2)[1])

	require.Len(t, errs, 3)
	assert.Equal(t, 1, errs[0].Index)
	assert.False(t, errs[0].Duplicated)
	assert.Equal(t, 2, errs[1].Index)
	assert.True(t, errs[1].Duplicated)
	assert.Equal(t, 4, errs[2].Index)
	assert.ErrorIs(t, errs[2], errOutsideAssets)
}

func TestPreRenderedNothingDecodes(t *testing.T) {
	seq, errs := PreRendered{}.Decode([]FrameRef{{Data: "short"}})

	require.NoError(t, seq.Validate())
	assert.Equal(t, 1, seq.N)
	assert.Equal(t, fallbackSize, seq.H)
	assert.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrEmptyData)
	for _, v := range seq.Data {
		if v != 0 {
			t.Fatalf("fallback frame is not black")
		}
	}
}

func TestPreRenderedBareBase64(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: uint8(x * y), A: 255})
		}
	}
	raw := base64.StdEncoding.EncodeToString(encodePNG(t, img))
	require.Greater(t, len(raw), minInlineLen)

	seq, errs := PreRendered{}.Decode([]FrameRef{{Data: raw}})
	assert.Empty(t, errs)
	assert.Equal(t, 16, seq.W)
	assert.Equal(t, 16, seq.H)
	assert.InDelta(t, 16.0/255, seq.Frame(0)[3], 1e-6)
}
