package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/gogpu/blendpack/internal/logging"
)

// File naming conventions of a shader corpus.
const (
	DefinitionSuffix  = ".glsl.js"
	DefaultCommonFile = "common.glsl.js"
	DefaultFactory    = "makeShader"
	indexFile         = "index.js"

	// uniformWindow bounds how far before a loose variant the loader looks
	// for a uniforms object to associate with it.
	uniformWindow = 500
)

// ParseError reports a definition file the loader could not parse.
type ParseError struct {
	File   string
	Line   int
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("shader: parse %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Loader extracts shader definitions from a directory of definition files.
type Loader struct {
	fsys       fs.FS
	dir        string
	factory    string
	commonFile string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFactoryName sets the name of the shorthand factory whose single
// template argument is a main() body. Default: "makeShader".
func WithFactoryName(name string) LoaderOption {
	return func(l *Loader) {
		if name != "" {
			l.factory = name
		}
	}
}

// WithCommonFile sets the shared-code file name. Default: "common.glsl.js".
func WithCommonFile(name string) LoaderOption {
	return func(l *Loader) {
		if name != "" {
			l.commonFile = name
		}
	}
}

// NewLoader creates a loader reading dir within fsys.
func NewLoader(fsys fs.FS, dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		fsys:       fsys,
		dir:        dir,
		factory:    DefaultFactory,
		commonFile: DefaultCommonFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the shared code and every definition file.
func (l *Loader) Load() *Library {
	common := l.LoadCommon()
	return &Library{
		Registry: l.loadAll(common),
		common:   common,
	}
}

// LoadAll reads every definition file into a new registry. Files that fail
// to parse are logged and skipped. The built-in default is always present.
func (l *Loader) LoadAll() *Registry {
	return l.loadAll(l.LoadCommon())
}

// LoadCommon parses the shared-code file. A missing or unreadable file
// yields an empty library.
func (l *Loader) LoadCommon() *CommonLibrary {
	name := path.Join(l.dir, l.commonFile)
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Logger().Warn("shader: read shared code", "file", name, "err", err)
		}
		return NewCommonLibrary(nil)
	}
	c, err := ParseCommon(string(data))
	if err != nil {
		logging.Logger().Warn("shader: parse shared code", "file", name, "err", err)
		return NewCommonLibrary(nil)
	}
	return c
}

func (l *Loader) loadAll(common *CommonLibrary) *Registry {
	reg := NewRegistry()
	log := logging.Logger()

	entries, err := fs.ReadDir(l.fsys, l.dir)
	if err != nil {
		log.Warn("shader: read corpus directory", "dir", l.dir, "err", err)
	}
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, DefinitionSuffix) {
			continue
		}
		if name == l.commonFile || name == indexFile {
			continue
		}
		data, err := fs.ReadFile(l.fsys, path.Join(l.dir, name))
		if err != nil {
			log.Warn("shader: read definition file", "file", name, "err", err)
			continue
		}
		defs, err := l.ParseFile(name, data, common)
		if err != nil {
			log.Warn("shader: skipping definition file", "file", name, "err", err)
			continue
		}
		added := 0
		for _, d := range defs {
			if reg.Add(d) {
				added++
			}
		}
		log.Debug("shader: loaded definition file", "file", name, "variants", added)
	}

	reg.Add(Default())
	return reg
}

// ParseFile extracts the definitions of one file. The engine name is the file
// name without its suffix. common may be nil.
func (l *Loader) ParseFile(name string, data []byte, common *CommonLibrary) ([]Definition, error) {
	src := string(data)
	toks, err := tokenize(src)
	if err != nil {
		return nil, newParseError(name, src, err)
	}
	fp := &fileParser{
		name:    name,
		src:     src,
		toks:    toks,
		engine:  lower(engineName(name)),
		factory: l.factory,
		seen:    make(map[string]bool),
	}
	fp.collectLocals(common)
	if err := fp.run(); err != nil {
		return nil, newParseError(name, src, err)
	}
	return fp.out, nil
}

func newParseError(name, src string, err error) *ParseError {
	pe := &ParseError{File: name, Err: err}
	var se *scanError
	if errors.As(err, &se) {
		pe.Offset = se.pos
		pe.Line = 1 + strings.Count(src[:min(se.pos, len(src))], "\n")
	}
	return pe
}

func engineName(file string) string {
	base := path.Base(file)
	for _, suffix := range []string{DefinitionSuffix, ".js"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// fileParser runs the extraction passes over one tokenized file.
type fileParser struct {
	name    string
	src     string
	toks    []token
	engine  string
	factory string

	locals   map[string]string
	grouped  [][2]int
	uniforms []uniformBlock

	out  []Definition
	seen map[string]bool
}

// uniformBlock is a parsed `uniforms: {...}` object and its source span.
type uniformBlock struct {
	pos, end int
	values   map[string]Value
}

// collectLocals records file-level `const NAME = <literal>` declarations so
// fragments can splice them in. Names exported by the shared-code library
// are left out: the program header already carries that code.
func (fp *fileParser) collectLocals(common *CommonLibrary) {
	fp.locals = make(map[string]string)
	t := fp.toks
	for i := 0; i+3 < len(t); i++ {
		if !t[i].is(tokIdent, "const") && !t[i].is(tokIdent, "let") && !t[i].is(tokIdent, "var") {
			continue
		}
		name, eq, val := t[i+1], t[i+2], t[i+3]
		if name.kind != tokIdent || !eq.isPunct("=") || (val.kind != tokTemplate && val.kind != tokString) {
			continue
		}
		if common != nil && common.Has(name.text) {
			continue
		}
		if _, dup := fp.locals[name.text]; !dup {
			fp.locals[name.text] = val.text
		}
	}
}

func (fp *fileParser) run() error {
	if err := fp.groupedBlocks(); err != nil {
		return err
	}
	fp.collectUniformBlocks()
	if err := fp.looseFactories(); err != nil {
		return err
	}
	return fp.looseObjects()
}

// groupedBlocks handles `<ENGINE>_SHADERS = {...}` and `<ENGINE>_VARIANTS = {...}`.
func (fp *fileParser) groupedBlocks() error {
	t := fp.toks
	for i := 0; i+2 < len(t); i++ {
		engine, ok := groupEngine(t[i])
		if !ok || !t[i+1].isPunct("=") || !t[i+2].isPunct("{") {
			continue
		}
		p := &parser{toks: t, i: i + 2}
		block, err := p.parseObject()
		if err != nil {
			return err
		}
		fp.grouped = append(fp.grouped, [2]int{i + 2, p.i})

		for _, prop := range block.props {
			if body, ok := fp.factoryBody(prop.value); ok {
				fp.add(engine, prop.name, wrapMain(body), nil, OriginGroupedFactory)
			}
		}
		for _, prop := range block.props {
			frag, ok := prop.value.prop("fragment").literal()
			if !ok {
				continue
			}
			values := parseUniforms(prop.value.prop("uniforms"))
			fp.add(engine, prop.name, frag, values, OriginGroupedObject)
		}
		i = p.i - 1
	}
	return nil
}

// groupEngine reports whether t names a grouped block and returns its
// lowercased engine name.
func groupEngine(t token) (string, bool) {
	if t.kind != tokIdent {
		return "", false
	}
	for _, suffix := range []string{"_SHADERS", "_VARIANTS"} {
		if base, ok := strings.CutSuffix(t.text, suffix); ok && base != "" {
			return lower(base), true
		}
	}
	return "", false
}

// looseFactories handles `name: factory(`...`)` outside grouped blocks.
func (fp *fileParser) looseFactories() error {
	t := fp.toks
	for i := 0; i+3 < len(t); i++ {
		if fp.inGrouped(i) || !isKey(t[i]) || !t[i+1].isPunct(":") {
			continue
		}
		if !t[i+2].is(tokIdent, fp.factory) || !t[i+3].isPunct("(") {
			continue
		}
		p := &parser{toks: t, i: i + 2}
		call, err := p.parseCall()
		if err != nil {
			return err
		}
		if body, ok := fp.factoryBody(call); ok {
			fp.add(fp.engine, t[i].text, wrapMain(body), nil, OriginLooseFactory)
		}
		i = p.i - 1
	}
	return nil
}

// looseObjects handles `name: { ..., fragment: `...` }` outside grouped
// blocks. A variant without its own uniforms borrows the closest uniforms
// object ending before it, if that object starts within uniformWindow bytes.
func (fp *fileParser) looseObjects() error {
	t := fp.toks
	for i := 0; i+2 < len(t); i++ {
		if fp.inGrouped(i) || !isKey(t[i]) || !t[i+1].isPunct(":") || !t[i+2].isPunct("{") {
			continue
		}
		p := &parser{toks: t, i: i + 2}
		obj, err := p.parseObject()
		if err != nil {
			return err
		}
		frag, ok := obj.prop("fragment").literal()
		if !ok {
			continue
		}
		var values map[string]Value
		if u := obj.prop("uniforms"); u != nil {
			values = parseUniforms(u)
		} else {
			values = fp.nearestUniforms(t[i].pos)
		}
		fp.add(fp.engine, t[i].text, frag, values, OriginLooseObject)
		i = p.i - 1
	}
	return nil
}

func (fp *fileParser) collectUniformBlocks() {
	t := fp.toks
	for i := 0; i+2 < len(t); i++ {
		if !t[i].is(tokIdent, "uniforms") || !t[i+1].isPunct(":") || !t[i+2].isPunct("{") {
			continue
		}
		p := &parser{toks: t, i: i + 2}
		obj, err := p.parseObject()
		if err != nil {
			continue
		}
		fp.uniforms = append(fp.uniforms, uniformBlock{pos: t[i].pos, end: obj.end, values: parseUniforms(obj)})
	}
}

func (fp *fileParser) nearestUniforms(pos int) map[string]Value {
	for i := len(fp.uniforms) - 1; i >= 0; i-- {
		u := fp.uniforms[i]
		if u.end > pos {
			continue
		}
		if u.pos >= pos-uniformWindow {
			return u.values
		}
		break
	}
	return nil
}

func (fp *fileParser) inGrouped(i int) bool {
	for _, r := range fp.grouped {
		if i >= r[0] && i < r[1] {
			return true
		}
	}
	return false
}

// factoryBody returns the template argument of a factory call.
func (fp *fileParser) factoryBody(n *node) (string, bool) {
	if n == nil || n.kind != nodeCall || n.callee != fp.factory || len(n.elems) == 0 {
		return "", false
	}
	return n.elems[0].literal()
}

func (fp *fileParser) add(engine, variant, fragment string, uniforms map[string]Value, origin Origin) {
	key := Key(engine, variant)
	if fp.seen[key] {
		return
	}
	fp.seen[key] = true
	if uniforms == nil {
		uniforms = map[string]Value{}
	}
	fp.out = append(fp.out, Definition{
		Key:      key,
		Engine:   engine,
		Variant:  strings.TrimPrefix(key, engine+"_"),
		Fragment: strings.TrimSpace(expand(fragment, fp.locals, map[string]bool{}, dropUnknown)),
		Uniforms: uniforms,
		Origin:   origin,
		Source:   fp.name,
	})
}

func isKey(t token) bool {
	return t.kind == tokIdent || t.kind == tokString
}

func wrapMain(body string) string {
	return "void main() {\n" + body + "\n}"
}

// parseUniforms converts a uniforms object into defaults. Number and
// number-array properties are kept; anything else is skipped.
func parseUniforms(obj *node) map[string]Value {
	values := map[string]Value{}
	if obj == nil || obj.kind != nodeObject {
		return values
	}
	for _, p := range obj.props {
		switch v := p.value; v.kind {
		case nodeNumber:
			values[p.name] = Scalar(float32(v.num))
		case nodeArray:
			vec := make(Value, 0, len(v.elems))
			for _, e := range v.elems {
				if e.kind != nodeNumber {
					vec = nil
					break
				}
				vec = append(vec, float32(e.num))
			}
			if len(vec) > 0 {
				values[p.name] = vec
			}
		}
	}
	return values
}
