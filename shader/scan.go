package shader

import (
	"fmt"
	"strings"
)

// tokenKind classifies lexical tokens of the definition-file dialect.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString   // '...' or "..."
	tokTemplate // `...`
	tokPunct
)

// token is a single lexical token. For string and template tokens text holds
// the literal body without its quotes; for every other kind it holds the
// source text. pos and end are byte offsets into the scanned source.
type token struct {
	kind tokenKind
	text string
	pos  int
	end  int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) isPunct(text string) bool { return t.is(tokPunct, text) }

// tokenize splits src into tokens. Comments and whitespace are dropped.
// Delimiters inside quoted and template literals never produce tokens, which
// is what lets the parser balance braces around embedded GLSL.
func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	n := len(src)
	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++

		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, &scanError{pos: i, msg: "unterminated block comment"}
			}
			i += end + 4

		case c == '\'' || c == '"' || c == '`':
			end, err := scanQuoted(src, i)
			if err != nil {
				return nil, err
			}
			kind := tokString
			if c == '`' {
				kind = tokTemplate
			}
			toks = append(toks, token{kind: kind, text: src[i+1 : end-1], pos: i, end: end})
			i = end

		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start, end: i})

		case isDigit(c) || (c == '.' && i+1 < n && isDigit(src[i+1])):
			start := i
			i = scanNumber(src, i)
			toks = append(toks, token{kind: tokNumber, text: src[start:i], pos: start, end: i})

		default:
			toks = append(toks, token{kind: tokPunct, text: src[i : i+1], pos: i, end: i + 1})
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: n, end: n})
	return toks, nil
}

// scanQuoted returns the offset just past the literal opened at src[start].
// A backslash escapes the following byte.
func scanQuoted(src string, start int) (int, error) {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		case '\n':
			if quote != '`' {
				return 0, &scanError{pos: start, msg: "newline in string literal"}
			}
		}
	}
	return 0, &scanError{pos: start, msg: fmt.Sprintf("unterminated %c literal", quote)}
}

func scanNumber(src string, i int) int {
	n := len(src)
	if src[i] == '0' && i+1 < n && (src[i+1] == 'x' || src[i+1] == 'X') {
		i += 2
		for i < n && isHexDigit(src[i]) {
			i++
		}
		return i
	}
	for i < n && (isDigit(src[i]) || src[i] == '.' || src[i] == '_') {
		i++
	}
	if i < n && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < n && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < n && isDigit(src[j]) {
			i = j
			for i < n && isDigit(src[i]) {
				i++
			}
		}
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// scanError is a lexical or structural error at a byte offset.
type scanError struct {
	pos int
	msg string
}

func (e *scanError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.pos, e.msg)
}
