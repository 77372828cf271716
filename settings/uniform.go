package settings

import (
	"errors"
	"fmt"

	"github.com/mazznoer/csscolorparser"

	"github.com/gogpu/blendpack/shader"
)

// Uniform converts a settings value to a uniform value: a number becomes a
// scalar, a list of numbers a vector, a CSS color string an RGBA vector and
// a bool 0 or 1.
func Uniform(raw any) (shader.Value, error) {
	if n, ok := number(raw); ok {
		return shader.Scalar(float32(n)), nil
	}
	switch v := raw.(type) {
	case bool:
		if v {
			return shader.Scalar(1), nil
		}
		return shader.Scalar(0), nil
	case string:
		c, err := csscolorparser.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("settings: %q is not a color: %w", v, err)
		}
		return shader.Vector(float32(c.R), float32(c.G), float32(c.B), float32(c.A)), nil
	case []any:
		if len(v) == 0 {
			return nil, errors.New("settings: empty vector")
		}
		out := make([]float32, len(v))
		for i, e := range v {
			n, ok := number(e)
			if !ok {
				return nil, fmt.Errorf("settings: vector element %d is %T, want a number", i, e)
			}
			out[i] = float32(n)
		}
		return shader.Vector(out...), nil
	}
	return nil, fmt.Errorf("settings: unsupported uniform value %T", raw)
}
