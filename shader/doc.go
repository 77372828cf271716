// Package shader loads transition shader definitions from a corpus of
// definition files.
//
// A corpus is a directory with one file per engine (dissolve.glsl.js,
// wipe.glsl.js, ...) plus a shared-code file (common.glsl.js) exporting
// GLSL snippets as named template literals. Each engine file declares its
// variants in an object literal:
//
//	export const WIPE_VARIANTS = {
//	    left: {
//	        uniforms: { uSoftness: 0.1 },
//	        fragment: `
//	            ${SHADER_COMMON}
//	            void main() { ... }
//	        `
//	    },
//	};
//
// The loader tokenizes each file and runs four passes in a fixed order:
// grouped blocks, loose factory shorthand, loose object variants, and key
// normalization. A pass only fills keys no earlier pass produced. Files that
// fail to parse are logged and skipped.
//
// Registry keys are "<engine>_<variant>", lowercase. A variant already
// spelled with its engine prefix ("pixelate_8bit" in pixelate.glsl.js) is not
// prefixed twice.
//
// The stock corpus is embedded; use Stock to load it, or LoadDir to load a
// corpus from disk.
package shader
