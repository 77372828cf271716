package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// nodeKind classifies parsed values.
type nodeKind uint8

const (
	nodeOther nodeKind = iota // any expression the loader does not interpret
	nodeObject
	nodeArray
	nodeNumber
	nodeString
	nodeTemplate
	nodeCall
	nodeIdent
)

// node is a parsed value. Only the shapes the loader needs are modelled;
// everything else is kept as nodeOther with its source span.
type node struct {
	kind   nodeKind
	pos    int
	end    int
	text   string
	num    float64
	props  []property
	elems  []*node
	callee string
}

// property is one key/value pair of an object literal.
type property struct {
	name  string
	pos   int
	value *node
}

// prop returns the value of the named property, or nil.
func (n *node) prop(name string) *node {
	if n == nil || n.kind != nodeObject {
		return nil
	}
	for _, p := range n.props {
		if p.name == name {
			return p.value
		}
	}
	return nil
}

// literal reports whether n is a string or template literal and returns its body.
func (n *node) literal() (string, bool) {
	if n == nil || (n.kind != nodeString && n.kind != nodeTemplate) {
		return "", false
	}
	return n.text, true
}

// parser is a recursive-descent parser over a token slice.
type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) peekAt(off int) token {
	if p.i+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+off]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &scanError{pos: t.pos, msg: fmt.Sprintf(format, args...)}
}

// parseValue parses one value and swallows any trailing operator tokens up to
// the next separator, downgrading the value to nodeOther when it does.
func (p *parser) parseValue() (*node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	trailing := false
	for {
		t := p.peek()
		if t.kind == tokEOF || isSeparator(t) {
			break
		}
		if isOpener(t) {
			if _, err := p.skipBalanced(); err != nil {
				return nil, err
			}
		} else if isCloser(t) {
			break
		} else {
			p.next()
		}
		trailing = true
	}
	if trailing {
		end := p.toks[p.i-1].end
		n = &node{kind: nodeOther, pos: n.pos, end: end}
	}
	return n, nil
}

func (p *parser) parsePrimary() (*node, error) {
	t := p.peek()
	switch {
	case t.kind == tokEOF:
		return nil, p.errorf(t, "unexpected end of input")

	case t.isPunct("{"):
		return p.parseObject()

	case t.isPunct("["):
		return p.parseArray()

	case t.isPunct("("):
		start := t.pos
		end, err := p.skipBalanced()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeOther, pos: start, end: end}, nil

	case (t.isPunct("-") || t.isPunct("+")) && p.peekAt(1).kind == tokNumber:
		p.next()
		num := p.next()
		n := numberNode(num)
		n.pos = t.pos
		if t.text == "-" {
			n.num = -n.num
			n.text = "-" + n.text
		}
		return n, nil

	case t.kind == tokNumber:
		return numberNode(p.next()), nil

	case t.kind == tokString:
		p.next()
		return &node{kind: nodeString, pos: t.pos, end: t.end, text: t.text}, nil

	case t.kind == tokTemplate:
		p.next()
		return &node{kind: nodeTemplate, pos: t.pos, end: t.end, text: t.text}, nil

	case t.kind == tokIdent && p.peekAt(1).isPunct("("):
		return p.parseCall()

	case t.kind == tokIdent:
		p.next()
		return &node{kind: nodeIdent, pos: t.pos, end: t.end, text: t.text}, nil

	case isCloser(t) || isSeparator(t):
		return nil, p.errorf(t, "unexpected %q", t.text)

	default:
		p.next()
		return &node{kind: nodeOther, pos: t.pos, end: t.end}, nil
	}
}

func numberNode(t token) *node {
	n := &node{kind: nodeNumber, pos: t.pos, end: t.end, text: t.text}
	text := strings.ReplaceAll(t.text, "_", "")
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		n.num = v
	} else if v, err := strconv.ParseInt(text, 0, 64); err == nil {
		n.num = float64(v)
	} else {
		n.kind = nodeOther
	}
	return n
}

func (p *parser) parseObject() (*node, error) {
	open := p.next()
	obj := &node{kind: nodeObject, pos: open.pos}
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return nil, p.errorf(open, "unbalanced '{'")
		case t.isPunct("}"):
			p.next()
			obj.end = t.end
			return obj, nil
		case t.isPunct(","):
			p.next()
			continue
		}

		key := p.next()
		switch {
		case key.kind == tokIdent || key.kind == tokString || key.kind == tokNumber:
		case key.isPunct("["):
			// computed key
			p.i--
			if _, err := p.skipBalanced(); err != nil {
				return nil, err
			}
			key = token{kind: tokPunct, pos: key.pos}
		case key.isPunct("."):
			// spread element
			if _, err := p.parseValue(); err != nil {
				return nil, err
			}
			continue
		default:
			return nil, p.errorf(key, "unexpected %q in object literal", key.text)
		}

		nt := p.peek()
		switch {
		case nt.isPunct(":"):
			p.next()
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if key.kind != tokPunct {
				obj.props = append(obj.props, property{name: key.text, pos: key.pos, value: v})
			}
		case nt.isPunct("("):
			// method shorthand: name(args) { body }
			if _, err := p.skipBalanced(); err != nil {
				return nil, err
			}
			if p.peek().isPunct("{") {
				if _, err := p.skipBalanced(); err != nil {
					return nil, err
				}
			}
		case nt.isPunct(",") || nt.isPunct("}"):
			// shorthand property
		default:
			return nil, p.errorf(nt, "unexpected %q after key %q", nt.text, key.text)
		}
	}
}

func (p *parser) parseArray() (*node, error) {
	open := p.next()
	arr := &node{kind: nodeArray, pos: open.pos}
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return nil, p.errorf(open, "unbalanced '['")
		case t.isPunct("]"):
			p.next()
			arr.end = t.end
			return arr, nil
		case t.isPunct(","):
			p.next()
			continue
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.elems = append(arr.elems, v)
		if nt := p.peek(); !nt.isPunct(",") && !nt.isPunct("]") {
			return nil, p.errorf(nt, "unexpected %q in array literal", nt.text)
		}
	}
}

func (p *parser) parseCall() (*node, error) {
	name := p.next()
	open := p.next()
	call := &node{kind: nodeCall, pos: name.pos, callee: name.text}
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return nil, p.errorf(open, "unbalanced '('")
		case t.isPunct(")"):
			p.next()
			call.end = t.end
			return call, nil
		case t.isPunct(","):
			p.next()
			continue
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		call.elems = append(call.elems, v)
		if nt := p.peek(); !nt.isPunct(",") && !nt.isPunct(")") {
			return nil, p.errorf(nt, "unexpected %q in argument list", nt.text)
		}
	}
}

// skipBalanced consumes a bracketed group starting at the current opener and
// returns the end offset of its closer.
func (p *parser) skipBalanced() (int, error) {
	var stack []token
	for {
		t := p.next()
		switch {
		case t.kind == tokEOF:
			if len(stack) == 0 {
				return 0, p.errorf(t, "expected opening bracket")
			}
			return 0, p.errorf(stack[len(stack)-1], "unbalanced %q", stack[len(stack)-1].text)
		case isOpener(t):
			stack = append(stack, t)
		case isCloser(t):
			if len(stack) == 0 {
				return 0, p.errorf(t, "unexpected %q", t.text)
			}
			top := stack[len(stack)-1]
			if closerFor(top.text) != t.text {
				return 0, p.errorf(t, "mismatched %q closing %q", t.text, top.text)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return t.end, nil
			}
		}
	}
}

func isOpener(t token) bool {
	return t.kind == tokPunct && (t.text == "{" || t.text == "[" || t.text == "(")
}

func isCloser(t token) bool {
	return t.kind == tokPunct && (t.text == "}" || t.text == "]" || t.text == ")")
}

func isSeparator(t token) bool {
	return t.kind == tokPunct && (t.text == "," || t.text == ";")
}

func closerFor(open string) string {
	switch open {
	case "{":
		return "}"
	case "[":
		return "]"
	default:
		return ")"
	}
}
