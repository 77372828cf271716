// Package glsl rewrites transition fragment bodies from the single-output
// WebGL dialect of the shader corpus into GLSL 3.30 programs with two render
// targets: the composited color and a greyscale transition mask.
//
// It is not a general GLSL compiler. It recognizes the blend idioms used by
// the corpus and falls back to a plain output rename for everything else.
package glsl
