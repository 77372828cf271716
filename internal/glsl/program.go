package glsl

import "strings"

// Standard uniform names every program can read.
const (
	UniformTexA       = "uTexA"
	UniformTexB       = "uTexB"
	UniformProgress   = "uProgress"
	UniformIntensity  = "uIntensity"
	UniformTime       = "uTime"
	UniformResolution = "uResolution"
)

// Vertex attribute names of the full-screen quad.
const (
	AttribPosition = "aPosition"
	AttribTexCoord = "aTexCoord"
)

// VertexShader passes quad texture coordinates through as vUv.
const VertexShader = `#version 330
in vec2 aPosition;
in vec2 aTexCoord;
out vec2 vUv;
void main() {
    vUv = aTexCoord;
    gl_Position = vec4(aPosition, 0.0, 1.0);
}
`

// Prelude opens every fragment program: version, the two render targets and
// the standard uniforms.
const Prelude = `#version 330
layout(location = 0) out vec4 fragColor;
layout(location = 1) out vec4 fragMask;

uniform sampler2D uTexA;
uniform sampler2D uTexB;
uniform float uProgress;
uniform float uIntensity;
uniform float uTime;
uniform vec2 uResolution;
in vec2 vUv;
`

// BuiltinCommon is the shared code used for the default program, so that it
// compiles even when the loaded corpus is broken.
const BuiltinCommon = `
float easeLinear(float t) { return t; }
float easeInQuad(float t) { return t * t; }
float easeOutQuad(float t) { return 1.0 - (1.0 - t) * (1.0 - t); }
float easeInOutQuad(float t) { return t < 0.5 ? 2.0 * t * t : 1.0 - pow(-2.0 * t + 2.0, 2.0) / 2.0; }
float easeInCubic(float t) { return t * t * t; }
float easeOutCubic(float t) { return 1.0 - pow(1.0 - t, 3.0); }
float easeInOutCubic(float t) { return t < 0.5 ? 4.0 * t * t * t : 1.0 - pow(-2.0 * t + 2.0, 3.0) / 2.0; }
float easeInSine(float t) { return 1.0 - cos(t * 3.14159265 / 2.0); }
float easeOutSine(float t) { return sin(t * 3.14159265 / 2.0); }

float hash(vec2 p) { return fract(sin(dot(p, vec2(127.1, 311.7))) * 43758.5453); }
float noise(vec2 p) {
    vec2 i = floor(p);
    vec2 f = fract(p);
    f = f * f * (3.0 - 2.0 * f);
    float a = hash(i);
    float b = hash(i + vec2(1.0, 0.0));
    float c = hash(i + vec2(0.0, 1.0));
    float d = hash(i + vec2(1.0, 1.0));
    return mix(mix(a, b, f.x), mix(c, d, f.x), f.y);
}
float fbm(vec2 p, int octaves) {
    float value = 0.0;
    float amplitude = 0.5;
    float frequency = 1.0;
    for (int i = 0; i < 8; i++) {
        if (i >= octaves) break;
        value += amplitude * noise(p * frequency);
        amplitude *= 0.5;
        frequency *= 2.0;
    }
    return value;
}
`

// StripDeclarations removes precision, uniform, varying and `in` variable
// declarations from shared code, since the prelude declares them.
func StripDeclarations(common string) string {
	lines := strings.Split(common, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isDeclaration(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isDeclaration(line string) bool {
	switch {
	case strings.HasPrefix(line, "precision "),
		strings.HasPrefix(line, "uniform "),
		strings.HasPrefix(line, "varying "):
		return true
	case strings.HasPrefix(line, "in "):
		return !strings.Contains(line, "{") && strings.HasSuffix(line, ";") && strings.Contains(line, "vec")
	}
	return false
}

// Header composes the prelude with shared code.
func Header(common string) string {
	return Prelude + normalize(StripDeclarations(common))
}

// Fragment composes a complete fragment program from a header and a
// variant body, and reports which rewrite rule the body went through.
func Fragment(header, body string) (string, Strategy) {
	r := Rewrite(body)
	return header + "\n" + r.Source, r.Strategy
}
