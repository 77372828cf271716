package shader

import (
	"slices"
	"strings"
)

// AggregateName is the shared-code constant that already concatenates every
// category. When present it is the whole header.
const AggregateName = "SHADER_COMMON"

// fallbackOrder lists the category constants concatenated when the
// aggregate constant is missing.
var fallbackOrder = []string{
	"FRAGMENT_HEADER",
	"EASING_FUNCTIONS",
	"NOISE_FUNCTIONS",
	"COLOR_FUNCTIONS",
	"BLEND_FUNCTIONS",
	"UTILITY_FUNCTIONS",
}

// CommonLibrary holds the named string exports of the shared-code file and
// resolves ${NAME} placeholders between them.
//
// A CommonLibrary is not safe for concurrent use; Library guards it.
type CommonLibrary struct {
	exports  map[string]string
	names    []string
	resolved map[string]string
}

// NewCommonLibrary creates a library from a name to raw-template table.
func NewCommonLibrary(exports map[string]string) *CommonLibrary {
	c := &CommonLibrary{
		exports:  make(map[string]string, len(exports)),
		resolved: make(map[string]string),
	}
	for name, raw := range exports {
		c.exports[name] = raw
		c.names = append(c.names, name)
	}
	slices.Sort(c.names)
	return c
}

// ParseCommon extracts top-level `export const NAME = <literal>` declarations
// from a shared-code source file. Declarations whose initializer is not a
// single string or template literal are ignored.
func ParseCommon(src string) (*CommonLibrary, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	exports := make(map[string]string)
	for i := 0; i+4 < len(toks); i++ {
		if !toks[i].is(tokIdent, "export") || !toks[i+1].is(tokIdent, "const") {
			continue
		}
		name, eq, val := toks[i+2], toks[i+3], toks[i+4]
		if name.kind != tokIdent || !eq.isPunct("=") {
			continue
		}
		if val.kind != tokTemplate && val.kind != tokString {
			continue
		}
		if t := toks[i+5]; !t.isPunct(";") && t.kind != tokEOF && !t.is(tokIdent, "export") && !t.is(tokIdent, "const") {
			// concatenation or call; not a plain literal
			continue
		}
		if _, dup := exports[name.text]; !dup {
			exports[name.text] = val.text
		}
	}
	return NewCommonLibrary(exports), nil
}

// Names returns the export names in sorted order.
func (c *CommonLibrary) Names() []string {
	return append([]string(nil), c.names...)
}

// Has reports whether name is an export of the library.
func (c *CommonLibrary) Has(name string) bool {
	_, ok := c.exports[name]
	return ok
}

// Raw returns the unresolved template for name.
func (c *CommonLibrary) Raw(name string) (string, bool) {
	raw, ok := c.exports[name]
	return raw, ok
}

// Resolve returns the named export with every placeholder expanded. A
// placeholder met again while it is already being expanded stays as written.
func (c *CommonLibrary) Resolve(name string) (string, bool) {
	if s, ok := c.resolved[name]; ok {
		return s, true
	}
	raw, ok := c.exports[name]
	if !ok {
		return "", false
	}
	s := expand(raw, c.exports, map[string]bool{name: true}, keepUnknown)
	c.resolved[name] = s
	return s, true
}

// Code returns the composed shared code: the resolved aggregate if present,
// otherwise each category constant resolved and joined with newlines.
// A library with none of them yields "".
func (c *CommonLibrary) Code() string {
	if c == nil {
		return ""
	}
	if s, ok := c.Resolve(AggregateName); ok {
		return s
	}
	var parts []string
	for _, name := range fallbackOrder {
		if s, ok := c.Resolve(name); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// unknownPolicy decides what happens to placeholders with no table entry.
type unknownPolicy bool

const (
	keepUnknown unknownPolicy = false
	dropUnknown unknownPolicy = true
)

// expand substitutes ${NAME} placeholders in text from table. active holds
// the names currently being expanded; their placeholders are left verbatim.
func expand(text string, table map[string]string, active map[string]bool, unknown unknownPolicy) string {
	if !strings.Contains(text, "${") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for {
		name, start, end, ok := nextPlaceholder(text)
		if !ok {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:start])
		raw, known := table[name]
		switch {
		case known && !active[name]:
			active[name] = true
			b.WriteString(expand(raw, table, active, unknown))
			delete(active, name)
		case known || unknown == keepUnknown:
			b.WriteString(text[start:end])
		}
		text = text[end:]
	}
}

// nextPlaceholder finds the first ${IDENT} in text. Malformed placeholders
// are skipped over.
func nextPlaceholder(text string) (name string, start, end int, ok bool) {
	from := 0
	for {
		i := strings.Index(text[from:], "${")
		if i < 0 {
			return "", 0, 0, false
		}
		start = from + i
		j := start + 2
		for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
			j++
		}
		k := j
		for k < len(text) && isIdentPart(text[k]) {
			k++
		}
		m := k
		for m < len(text) && (text[m] == ' ' || text[m] == '\t') {
			m++
		}
		if k > j && m < len(text) && text[m] == '}' && isIdentStart(text[j]) {
			return text[j:k], start, m + 1, true
		}
		from = start + 2
	}
}
