package shader

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commonSrc = "export const SHADER_COMMON = `float common() { return 0.0; }`;\n"

func loadMap(t *testing.T, files map[string]string) *Library {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys["shaders/"+name] = &fstest.MapFile{Data: []byte(src)}
	}
	return NewLoader(fsys, "shaders").Load()
}

func TestKey(t *testing.T) {
	tests := []struct {
		engine, variant, want string
	}{
		{"dissolve", "powder", "dissolve_powder"},
		{"Pixelate", "pixelate_8bit", "pixelate_8bit"},
		{"pixelate", "PIXELATE_Block", "pixelate_block"},
		{"ZOOM", "In", "zoom_in"},
		{"morph", "smooth", "morph_smooth"},
	}
	for _, tt := range tests {
		if got := Key(tt.engine, tt.variant); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.engine, tt.variant, got, tt.want)
		}
	}
}

func TestLoadGroupedObjects(t *testing.T) {
	lib := loadMap(t, map[string]string{
		"common.glsl.js": commonSrc,
		"pixelate.glsl.js": "import { SHADER_COMMON } from './common.glsl.js';\n" +
			"export const PIXELATE_VARIANTS = {\n" +
			"    pixelate_8bit: {\n" +
			"        uniforms: { uSize: 8, uTint: [1.0, 0.5, 0.25], uName: 'x', uShift: -2 },\n" +
			"        fragment: `\n            ${SHADER_COMMON}\n            void main() { gl_FragColor = vec4(1.0); }\n        `\n" +
			"    },\n" +
			"    Block: { fragment: `void main() {}` },\n" +
			"    notAVariant: { uniforms: { uX: 1 } },\n" +
			"};\nexport default PIXELATE_VARIANTS;\n",
	})

	assert.Equal(t, []string{"crossfade", "pixelate_8bit", "pixelate_block"}, lib.Registry.Keys())

	d, ok := lib.Lookup("pixelate_8bit")
	require.True(t, ok)
	assert.Equal(t, "void main() { gl_FragColor = vec4(1.0); }", d.Fragment)
	assert.Equal(t, "pixelate", d.Engine)
	assert.Equal(t, "8bit", d.Variant)
	assert.Equal(t, OriginGroupedObject, d.Origin)
	assert.Equal(t, Value{8}, d.Uniforms["uSize"])
	assert.Equal(t, Value{1, 0.5, 0.25}, d.Uniforms["uTint"])
	assert.Equal(t, Value{-2}, d.Uniforms["uShift"])
	assert.NotContains(t, d.Uniforms, "uName")
	assert.Equal(t, []string{"uShift", "uSize", "uTint"}, d.UniformNames())
}

func TestLoadFactoryShorthand(t *testing.T) {
	lib := loadMap(t, map[string]string{
		"foo.glsl.js": "export const FOO_SHADERS = {\n" +
			"    a: makeShader(`gl_FragColor = texture2D(uTexA, vUv);`),\n" +
			"    b: { fragment: `void main() { gl_FragColor = vec4(0.0); }` },\n" +
			"};\n" +
			"const extras = {\n" +
			"    a: makeShader(`gl_FragColor = vec4(0.5);`),\n" +
			"    'c': makeShader(`gl_FragColor = vec4(1.0);`),\n" +
			"};\n",
	})

	a, ok := lib.Lookup("foo_a")
	require.True(t, ok)
	assert.Equal(t, OriginGroupedFactory, a.Origin)
	assert.Equal(t, "void main() {\ngl_FragColor = texture2D(uTexA, vUv);\n}", a.Fragment)

	c, ok := lib.Lookup("foo_c")
	require.True(t, ok)
	assert.Equal(t, OriginLooseFactory, c.Origin)
	assert.Equal(t, "void main() {\ngl_FragColor = vec4(1.0);\n}", c.Fragment)

	b, ok := lib.Lookup("foo_b")
	require.True(t, ok)
	assert.Equal(t, OriginGroupedObject, b.Origin)
}

func TestLoadCustomFactoryName(t *testing.T) {
	fsys := fstest.MapFS{
		"bar.glsl.js": {Data: []byte("const X = { v: shade(`gl_FragColor = vec4(1.0);`) };")},
	}
	reg := NewLoader(fsys, ".", WithFactoryName("shade")).LoadAll()
	assert.True(t, reg.Has("bar_v"))
}

func TestLoadLooseObjectsProximity(t *testing.T) {
	padding := "// " + strings.Repeat("x", 600) + "\n"
	lib := loadMap(t, map[string]string{
		"wipe.glsl.js": "const shared = { uniforms: { uAmount: 0.5 } };\n" +
			"const near = { left: { fragment: `void main() {}` } };\n" +
			padding +
			"const far = { right: { fragment: `void main() {}` } };\n" +
			"const own = { up: { uniforms: { uOwn: 2 }, fragment: `void main() {}` } };\n",
	})

	left, ok := lib.Lookup("wipe_left")
	require.True(t, ok)
	assert.Equal(t, OriginLooseObject, left.Origin)
	assert.Equal(t, map[string]Value{"uAmount": {0.5}}, left.Uniforms)

	right, ok := lib.Lookup("wipe_right")
	require.True(t, ok)
	assert.Empty(t, right.Uniforms)

	up, ok := lib.Lookup("wipe_up")
	require.True(t, ok)
	assert.Equal(t, map[string]Value{"uOwn": {2}}, up.Uniforms)
}

func TestLoadFirstWriterWins(t *testing.T) {
	lib := loadMap(t, map[string]string{
		"foo.glsl.js": "export const FOO_VARIANTS = { a: { fragment: `void main() { /* grouped */ }` } };\n" +
			"const loose = { a: makeShader(`/* loose */`) };\n",
	})
	d, ok := lib.Lookup("foo_a")
	require.True(t, ok)
	assert.Contains(t, d.Fragment, "grouped")
}

func TestLoadExpandsLocalConstants(t *testing.T) {
	lib := loadMap(t, map[string]string{
		"common.glsl.js": commonSrc,
		"blur.glsl.js": "const HELPER = `float h() { return 1.0; }`;\n" +
			"export const BLUR_VARIANTS = {\n" +
			"    soft: { fragment: `\n${SHADER_COMMON}\n${HELPER}\nvoid main() {}\n` },\n" +
			"    odd: { fragment: `${NOT_DEFINED}void main() {}` },\n" +
			"};\n",
	})
	soft, ok := lib.Lookup("blur_soft")
	require.True(t, ok)
	assert.Equal(t, "float h() { return 1.0; }\nvoid main() {}", soft.Fragment)

	odd, ok := lib.Lookup("blur_odd")
	require.True(t, ok)
	assert.Equal(t, "void main() {}", odd.Fragment)
}

func TestLoadSkipsMalformedFile(t *testing.T) {
	lib := loadMap(t, map[string]string{
		"good.glsl.js": "export const GOOD_VARIANTS = { one: { fragment: `void main() {}` } };",
		"bad.glsl.js":  "export const BAD_VARIANTS = { one: { fragment: `void main() {}` };",
		"ugly.glsl.js": "export const UGLY_VARIANTS = { one: { fragment: `void main() {",
		"notes.txt":    "ignored",
	})
	assert.Equal(t, []string{"crossfade", "good_one"}, lib.Registry.Keys())
}

func TestParseFileError(t *testing.T) {
	l := NewLoader(fstest.MapFS{}, ".")
	_, err := l.ParseFile("bad.glsl.js", []byte("// one\n// two\nexport const BAD_VARIANTS = { a: `x"), nil)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.glsl.js", pe.File)
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, pe.Error(), "bad.glsl.js:3")
}

func TestLoadMissingDirectory(t *testing.T) {
	reg := NewLoader(fstest.MapFS{}, "nowhere").LoadAll()
	assert.Equal(t, []string{DefaultKey}, reg.Keys())
}

func TestStockCorpus(t *testing.T) {
	lib := Stock()
	reg := lib.Registry

	assert.Equal(t, 114, reg.Len())

	keyShape := regexp.MustCompile(`^[a-z0-9]+_[a-z0-9_]+$`)
	for _, k := range reg.Keys() {
		if k == DefaultKey {
			continue
		}
		assert.Regexp(t, keyShape, k)
		d, _ := reg.Lookup(k)
		assert.False(t, strings.HasPrefix(d.Variant, d.Engine+"_"), "key %q repeats its engine prefix", k)
		assert.NotContains(t, d.Fragment, "${", "key %q has an unexpanded placeholder", k)
		assert.Contains(t, d.Fragment, "void main", "key %q", k)
	}

	for _, k := range []string{
		"dissolve_powder", "pixelate_8bit", "blur_gaussian", "morph_bulge",
		"rotate_cw", "zoom_in", "wipe_left", "crossfade_standard", "light_soft_leak",
	} {
		assert.True(t, reg.Has(k), "stock corpus should define %q", k)
	}

	blur, _ := reg.Lookup("blur_gaussian")
	assert.Contains(t, blur.Fragment, "vec4 blur9(")

	leak, _ := reg.Lookup("light_soft_leak")
	assert.Equal(t, Value{1.0, 0.9, 0.7}, leak.Uniforms["uLeakColor"])
	assert.Equal(t, Value{0.4}, leak.Uniforms["uBloomIntensity"])

	powder, _ := reg.Lookup("dissolve_powder")
	assert.Equal(t, Value{0.8}, powder.Uniforms["uNoiseScale"])
}

func TestRegistryFirstWriterWins(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Add(Definition{Key: "a_b", Fragment: "first"}))
	assert.False(t, r.Add(Definition{Key: "a_b", Fragment: "second"}))
	d, _ := r.Lookup("a_b")
	assert.Equal(t, "first", d.Fragment)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryMatch(t *testing.T) {
	r := NewRegistry()
	for _, k := range []string{"crossfade", "dissolve_powder", "glitch_scan_jitter_micro", "zoom_in", "zoom_in_fast", "wipe_left"} {
		r.Add(Definition{Key: k})
	}
	tests := []struct {
		engine, variant string
		want            string
		found           bool
	}{
		{"dissolve", "powder", "dissolve_powder", true},
		{"Dissolve", "Powder", "dissolve_powder", true},
		{"Zoom", "in", "zoom_in", true},
		{"GlitchClean", "scan-jitter-micro", "glitch_scan_jitter_micro", true},
		{"Wipe Engine", "left", "wipe_left", true},
		{"zoom", "fast", "zoom_in_fast", true},
		{"nothing", "matches", "crossfade", false},
		{"dissolve", "", "crossfade", false},
	}
	for _, tt := range tests {
		got, found := r.Match(tt.engine, tt.variant)
		if got != tt.want || found != tt.found {
			t.Errorf("Match(%q, %q) = (%q, %v), want (%q, %v)", tt.engine, tt.variant, got, found, tt.want, tt.found)
		}
	}
}
