package frames

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/blendpack/internal/logging"
)

// FrameRef points at one pre-rendered frame: either a file stored under an
// asset directory (Name, Subfolder, Type) or inline image data (Data), a
// data URL or bare base64 text.
type FrameRef struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Subfolder string `json:"subfolder,omitempty" yaml:"subfolder,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Data      string `json:"-" yaml:"-"`
}

// Asset directory types.
const (
	AssetTemp  = "temp"
	AssetInput = "input"
)

// minInlineLen is the shortest string accepted as bare base64 without a
// data: prefix.
const minInlineLen = 100

// fallbackSize is the edge of the black frame returned when nothing decodes
// and no target size is set.
const fallbackSize = 64

var errOutsideAssets = errors.New("frames: path escapes asset directory")

// DecodeError reports a pre-rendered frame that could not be used.
type DecodeError struct {
	Index int
	// Duplicated is set when the previous frame was repeated in its place;
	// otherwise the frame was omitted.
	Duplicated bool
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("frames: pre-rendered frame %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PreRendered decodes frames rendered elsewhere.
type PreRendered struct {
	// Assets maps an asset type ("temp", "input") to its directory.
	Assets map[string]string
	// Width and Height resize every frame when both are positive; otherwise
	// frames are resized to the first decoded frame.
	Width, Height int
}

// Decode turns refs into a unit-range RGB sequence.
//
// A reference whose file does not exist is omitted. A reference that exists
// but fails to decode repeats the previous frame, or is omitted when there is
// none. When nothing decodes the result is a single black frame. Every
// omission or repeat is reported in the returned slice.
func (p PreRendered) Decode(refs []FrameRef) (*Sequence, []*DecodeError) {
	var (
		imgs []image.Image
		errs []*DecodeError
	)
	log := logging.Logger()
	for i, ref := range refs {
		img, missing, err := p.decodeOne(ref)
		if err == nil {
			imgs = append(imgs, img)
			continue
		}
		de := &DecodeError{Index: i, Err: err}
		if !missing && len(imgs) > 0 {
			imgs = append(imgs, imgs[len(imgs)-1])
			de.Duplicated = true
		}
		log.Warn("pre-rendered frame unusable", "index", i, "duplicated", de.Duplicated, "err", err)
		errs = append(errs, de)
	}

	if len(imgs) == 0 {
		h, w := p.Height, p.Width
		if h <= 0 || w <= 0 {
			h, w = fallbackSize, fallbackSize
		}
		return New(1, h, w, 3), errs
	}

	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		b := imgs[0].Bounds()
		w, h = b.Dx(), b.Dy()
	}
	s := &Sequence{H: h, W: w, C: 3, Data: make([]float32, 0, len(imgs)*h*w*3)}
	for _, img := range imgs {
		frame, _, _ := FromImage(Scale(img, w, h))
		s.Append(frame)
	}
	return s, errs
}

// decodeOne returns the image for ref. missing reports that the reference
// resolved to nothing at all.
func (p PreRendered) decodeOne(ref FrameRef) (img image.Image, missing bool, err error) {
	if ref.Name != "" {
		path, err := p.resolve(ref)
		if err != nil {
			return nil, true, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Is(err, os.ErrNotExist), fmt.Errorf("frames: %w", err)
		}
		img, err := DecodeBytes(data)
		return img, false, err
	}

	data, ok := inlineData(ref.Data)
	if !ok {
		return nil, true, fmt.Errorf("%w: reference has neither a name nor inline data", ErrEmptyData)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, false, fmt.Errorf("frames: base64: %w", err)
	}
	img, err = DecodeBytes(raw)
	return img, false, err
}

func (p PreRendered) resolve(ref FrameRef) (string, error) {
	typ := ref.Type
	if typ == "" {
		typ = AssetTemp
	}
	base, ok := p.Assets[typ]
	if !ok {
		return "", fmt.Errorf("frames: no asset directory for type %q", typ)
	}
	rel := filepath.Join(ref.Subfolder, ref.Name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", errOutsideAssets, rel)
	}
	return filepath.Join(base, rel), nil
}

// inlineData extracts the base64 payload of a data URL, or accepts long bare
// base64 text.
func inlineData(s string) (string, bool) {
	if !strings.HasPrefix(s, "data:") && len(s) <= minInlineLen {
		return "", false
	}
	if _, payload, ok := strings.Cut(s, ","); ok {
		return payload, true
	}
	return s, true
}
