package glsl

import "strings"

type kind uint8

const (
	kindSpace kind = iota
	kindComment
	kindIdent
	kindNumber
	kindPunct
)

// token is a lexeme of GLSL source. Concatenating the text of every token
// reproduces the input exactly.
type token struct {
	kind kind
	text string
	pos  int
}

func (t token) significant() bool {
	return t.kind != kindSpace && t.kind != kindComment
}

func (t token) isIdent(name string) bool { return t.kind == kindIdent && t.text == name }

func (t token) isPunct(p string) bool { return t.kind == kindPunct && t.text == p }

// operators lists multi-character punctuators, longest first, so that an
// assignment "=" is never confused with "==" or "+=".
var operators = []string{
	"<<=", ">>=",
	"==", "!=", "<=", ">=", "&&", "||", "^^", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
}

// lex splits src into tokens. It never fails: unterminated comments run to
// the end of input and unknown bytes become single-byte punctuators.
func lex(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		start := i
		c := src[i]
		var k kind
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			for i < len(src) && strings.IndexByte(" \t\n\r\f\v", src[i]) >= 0 {
				i++
			}
			k = kindSpace
		case strings.HasPrefix(src[i:], "//"):
			for i < len(src) && src[i] != '\n' {
				i++
			}
			k = kindComment
		case strings.HasPrefix(src[i:], "/*"):
			if end := strings.Index(src[i+2:], "*/"); end >= 0 {
				i += end + 4
			} else {
				i = len(src)
			}
			k = kindComment
		case isIdentStart(c):
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			k = kindIdent
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			i = lexNumber(src, i)
			k = kindNumber
		default:
			i++
			for _, op := range operators {
				if strings.HasPrefix(src[start:], op) {
					i = start + len(op)
					break
				}
			}
			k = kindPunct
		}
		toks = append(toks, token{kind: k, text: src[start:i], pos: start})
	}
	return toks
}

func lexNumber(src string, i int) int {
	for i < len(src) && (isDigit(src[i]) || src[i] == '.' || isIdentPart(src[i])) {
		if (src[i] == 'e' || src[i] == 'E') && i+1 < len(src) && (src[i+1] == '+' || src[i+1] == '-') {
			i++
		}
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// stream is a token slice with helpers that skip whitespace and comments.
type stream []token

// nextSig returns the index of the first significant token at or after i,
// or len(s).
func (s stream) nextSig(i int) int {
	for i < len(s) && !s[i].significant() {
		i++
	}
	return i
}

// prevSig returns the index of the last significant token before i, or -1.
func (s stream) prevSig(i int) int {
	i--
	for i >= 0 && !s[i].significant() {
		i--
	}
	return i
}

// at returns the token at i, or a zero token when i is out of range.
func (s stream) at(i int) token {
	if i < 0 || i >= len(s) {
		return token{kind: kindSpace}
	}
	return s[i]
}

// end returns the byte offset just past token i.
func (s stream) end(i int) int {
	return s[i].pos + len(s[i].text)
}
