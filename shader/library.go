package shader

import (
	"embed"
	"io/fs"
	"os"
	"sync"
)

//go:embed corpus/*.glsl.js
var corpusFS embed.FS

// corpusDir is the directory of the embedded corpus within corpusFS.
const corpusDir = "corpus"

// Library bundles a loaded registry with the shared code its programs are
// compiled against.
//
// Library is safe for concurrent use.
type Library struct {
	Registry *Registry

	mu     sync.Mutex
	common *CommonLibrary
}

// NewLibrary wraps an existing registry and shared-code library. common may
// be nil.
func NewLibrary(reg *Registry, common *CommonLibrary) *Library {
	if common == nil {
		common = NewCommonLibrary(nil)
	}
	return &Library{Registry: reg, common: common}
}

// Lookup returns the definition stored under key.
func (lib *Library) Lookup(key string) (Definition, bool) {
	return lib.Registry.Lookup(key)
}

// CommonCode returns the composed shared code.
func (lib *Library) CommonCode() string {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	return lib.common.Code()
}

// Common returns the shared-code library.
func (lib *Library) Common() *CommonLibrary {
	return lib.common
}

// Corpus returns the embedded stock shader corpus.
func Corpus() fs.FS {
	sub, err := fs.Sub(corpusFS, corpusDir)
	if err != nil {
		panic("shader: embedded corpus missing: " + err.Error())
	}
	return sub
}

var stock = sync.OnceValue(func() *Library {
	return NewLoader(corpusFS, corpusDir).Load()
})

// Stock returns the library loaded from the embedded corpus. It is loaded
// once per process.
func Stock() *Library {
	return stock()
}

// LoadDir loads a library from a corpus directory on disk.
func LoadDir(dir string, opts ...LoaderOption) *Library {
	return NewLoader(os.DirFS(dir), ".", opts...).Load()
}
