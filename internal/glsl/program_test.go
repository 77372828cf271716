package glsl

import (
	"strings"
	"testing"
)

func TestStripDeclarations(t *testing.T) {
	common := strings.Join([]string{
		"precision mediump float;",
		"uniform float uProgress;",
		"  varying vec2 vUv;",
		"in vec2 vUv;",
		"float f(in vec2 p) { return p.x; }",
		"float g() { return 1.0; }",
	}, "\n")

	got := StripDeclarations(common)
	want := "float f(in vec2 p) { return p.x; }\nfloat g() { return 1.0; }"
	if got != want {
		t.Errorf("StripDeclarations() = %q, want %q", got, want)
	}
}

func TestHeader(t *testing.T) {
	h := Header("uniform float uTime;\nfloat k() { return texture2D(uTexA, vUv).r; }")

	if !strings.HasPrefix(h, Prelude) {
		t.Fatalf("Header() does not start with the prelude")
	}
	rest := strings.TrimPrefix(h, Prelude)
	if strings.Contains(rest, "uniform") {
		t.Errorf("Header() kept a uniform declaration: %q", rest)
	}
	if !strings.Contains(rest, "texture(uTexA, vUv)") {
		t.Errorf("Header() did not normalize shared code: %q", rest)
	}
}

func TestFragment(t *testing.T) {
	header := Header(BuiltinCommon)
	src, strategy := Fragment(header, "void main() { gl_FragColor = mix(texture(uTexA, vUv), texture(uTexB, vUv), uProgress); }")

	if strategy != StrategyDirect {
		t.Errorf("Fragment() strategy = %v, want %v", strategy, StrategyDirect)
	}
	if !strings.HasPrefix(src, header+"\n") {
		t.Errorf("Fragment() does not start with the header")
	}
	if n := strings.Count(src, "#version"); n != 1 {
		t.Errorf("Fragment() has %d #version lines, want 1", n)
	}
	if strings.Contains(src, LegacyOutput) {
		t.Errorf("Fragment() still writes %s", LegacyOutput)
	}
}

func TestBuiltinCommonHasNoDeclarations(t *testing.T) {
	if got := StripDeclarations(BuiltinCommon); got != BuiltinCommon {
		t.Errorf("BuiltinCommon contains declarations the prelude already provides")
	}
}
