package shader

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultKey names the built-in crossfade program every lookup falls back to.
const DefaultKey = "crossfade"

// Origin records which extraction pass produced a definition.
type Origin uint8

const (
	OriginBuiltin Origin = iota
	OriginGroupedObject
	OriginGroupedFactory
	OriginLooseFactory
	OriginLooseObject
)

// String returns a string representation of the origin.
func (o Origin) String() string {
	switch o {
	case OriginBuiltin:
		return "builtin"
	case OriginGroupedObject:
		return "grouped-object"
	case OriginGroupedFactory:
		return "grouped-factory"
	case OriginLooseFactory:
		return "loose-factory"
	case OriginLooseObject:
		return "loose-object"
	default:
		return "unknown"
	}
}

// Value is a uniform default: one component for a scalar, more for a vector.
type Value []float32

// Scalar returns a one-component value.
func Scalar(v float32) Value { return Value{v} }

// Vector returns a multi-component value.
func Vector(v ...float32) Value { return append(Value(nil), v...) }

// IsScalar reports whether v has exactly one component.
func (v Value) IsScalar() bool { return len(v) == 1 }

// Definition is one shader variant: fragment body plus uniform defaults.
// Definitions are immutable once registered; callers must not modify
// Uniforms.
type Definition struct {
	Key      string
	Engine   string
	Variant  string
	Fragment string
	Uniforms map[string]Value
	Origin   Origin
	Source   string
}

// UniformNames returns the uniform names in sorted order.
func (d Definition) UniformNames() []string {
	return slices.Sorted(maps.Keys(d.Uniforms))
}

// Key builds the canonical registry key for an engine and variant: both
// lowercased, joined by an underscore, with a variant that already carries
// the engine prefix stripped of it first.
func Key(engine, variant string) string {
	e := lower(strings.TrimSpace(engine))
	v := lower(strings.TrimSpace(variant))
	v = strings.TrimPrefix(v, e+"_")
	return e + "_" + v
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// builtinFragment is the default crossfade. It only references helpers from
// the built-in header so it compiles whatever the loaded corpus contains.
const builtinFragment = `void main() {
    vec4 colorA = texture2D(uTexA, vUv);
    vec4 colorB = texture2D(uTexB, vUv);
    float t = easeInOutCubic(uProgress);
    gl_FragColor = mix(colorA, colorB, t);
}`

// Default returns the built-in crossfade definition.
func Default() Definition {
	return Definition{
		Key:      DefaultKey,
		Engine:   DefaultKey,
		Fragment: builtinFragment,
		Uniforms: map[string]Value{},
		Origin:   OriginBuiltin,
	}
}
