package glsl

import (
	"sort"
	"strings"
)

// Output names of the dual-target fragment program.
const (
	LegacyOutput = "gl_FragColor"
	ColorOutput  = "fragColor"
	MaskOutput   = "fragMask"
)

// Strategy identifies which rewrite rule produced a program.
type Strategy uint8

const (
	// StrategyDirect rewrote `gl_FragColor = mix(a, b, m);`.
	StrategyDirect Strategy = iota + 1
	// StrategyIndirect rewrote `var = mix(a, b, m); ... gl_FragColor = var;`.
	StrategyIndirect
	// StrategyFallback only renamed the output; the mask target keeps its
	// clear value.
	StrategyFallback
)

// String returns a string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyIndirect:
		return "indirect"
	case StrategyFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is the outcome of Rewrite.
type Result struct {
	Source   string
	Strategy Strategy
}

// MaskCaptured reports whether the program writes the mask target.
func (r Result) MaskCaptured() bool {
	return r.Strategy == StrategyDirect || r.Strategy == StrategyIndirect
}

// helpers promote blend inputs to vec4. They are inserted before main.
const helpers = "vec4 tx_toVec4(vec4 v) { return v; }\n" +
	"vec4 tx_toVec4(vec3 v) { return vec4(v, 1.0); }\n" +
	"vec4 tx_toVec4(float v) { return vec4(v, v, v, 1.0); }\n\n"

// Transpile rewrites a single-output fragment body into the dual-output
// form. It is shorthand for Rewrite(src).Source.
func Transpile(src string) string {
	return Rewrite(src).Source
}

// Rewrite converts a fragment body written against gl_FragColor into one that
// writes the blended color to fragColor (location 0) and the blend factor,
// as an opaque grey, to fragMask (location 1).
//
// Rules are tried in order and the first that matches wins:
//
//  1. gl_FragColor = mix(a, b, m);
//  2. [type] v = mix(a, b, m); followed later by gl_FragColor = v;
//     candidates are tried from the last one back and blends whose
//     destination is one of their own color inputs are skipped
//  3. otherwise gl_FragColor is renamed and the mask is left untouched
//
// The legacy dialect is normalized first: varying becomes in, texture2D
// becomes texture and precision statements are removed.
func Rewrite(src string) Result {
	code := insertHelpers(normalize(src))
	s := stream(lex(code))

	if edits, ok := rewriteDirect(code, s); ok {
		return Result{Source: finish(code, s, edits), Strategy: StrategyDirect}
	}
	if edits, ok := rewriteIndirect(code, s); ok {
		return Result{Source: finish(code, s, edits), Strategy: StrategyIndirect}
	}
	return Result{Source: finish(code, s, nil), Strategy: StrategyFallback}
}

// normalize maps legacy keywords onto their GLSL 3.30 spelling and drops
// precision statements.
func normalize(src string) string {
	s := stream(lex(src))
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(s); i++ {
		t := s[i]
		switch {
		case t.isIdent("varying"):
			b.WriteString("in")
		case t.isIdent("texture2D"):
			b.WriteString("texture")
		case t.isIdent("precision"):
			if end, ok := precisionEnd(s, i); ok {
				i = end
				continue
			}
			b.WriteString(t.text)
		default:
			b.WriteString(t.text)
		}
	}
	return b.String()
}

// precisionEnd matches `precision <qualifier> <type> ;` starting at i and
// returns the index of the semicolon.
func precisionEnd(s stream, i int) (int, bool) {
	q := s.nextSig(i + 1)
	typ := s.nextSig(q + 1)
	semi := s.nextSig(typ + 1)
	if s.at(q).kind != kindIdent || s.at(typ).kind != kindIdent || !s.at(semi).isPunct(";") {
		return 0, false
	}
	return semi, true
}

// insertHelpers places the vec4 promotion helpers before `void main`, or at
// the top when the body has no main.
func insertHelpers(code string) string {
	s := stream(lex(code))
	for i := range s {
		if !s[i].isIdent("void") {
			continue
		}
		if j := s.nextSig(i + 1); s.at(j).isIdent("main") {
			return code[:s[i].pos] + helpers + code[s[i].pos:]
		}
	}
	return helpers + code
}

// edit replaces code[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// finish applies edits and renames every remaining legacy output.
func finish(code string, s stream, edits []edit) string {
	for i, t := range s {
		if t.isIdent(LegacyOutput) && !covered(edits, t.pos) {
			edits = append(edits, edit{start: t.pos, end: s.end(i), text: ColorOutput})
		}
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(code) + 256)
	last := 0
	for _, e := range edits {
		b.WriteString(code[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}
	b.WriteString(code[last:])
	return b.String()
}

func covered(edits []edit, pos int) bool {
	for _, e := range edits {
		if pos >= e.start && pos < e.end {
			return true
		}
	}
	return false
}

// blend is a parsed `mix(a, b, m)` call.
type blend struct {
	open, close int // token indices of the parentheses
	args        [3]string
}

// parseBlend parses the mix call whose name token is at i.
func parseBlend(code string, s stream, i int) (blend, bool) {
	open := s.nextSig(i + 1)
	if !s.at(open).isPunct("(") {
		return blend{}, false
	}
	depth := 0
	var commas []int
	for j := open; j < len(s); j++ {
		t := s[j]
		if t.kind != kindPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				if len(commas) != 2 || t.text != ")" {
					return blend{}, false
				}
				b := blend{open: open, close: j}
				bounds := []int{s.end(open), s[commas[0]].pos, s.end(commas[0]), s[commas[1]].pos, s.end(commas[1]), t.pos}
				for k := 0; k < 3; k++ {
					b.args[k] = strings.TrimSpace(code[bounds[2*k]:bounds[2*k+1]])
					if b.args[k] == "" {
						return blend{}, false
					}
				}
				return b, true
			}
		case ",":
			if depth == 1 {
				commas = append(commas, j)
			}
		}
	}
	return blend{}, false
}

// statementEnd returns the index of the semicolon that must directly follow
// the blend's closing parenthesis.
func statementEnd(s stream, b blend) (int, bool) {
	semi := s.nextSig(b.close + 1)
	return semi, s.at(semi).isPunct(";")
}

// indentAt returns the whitespace between the start of the line and pos.
func indentAt(code string, pos int) string {
	start := strings.LastIndexByte(code[:pos], '\n') + 1
	line := code[start:pos]
	if strings.TrimLeft(line, " \t") != "" {
		return ""
	}
	return line
}

func captureLines(b blend) []string {
	return []string{
		"vec4 tx_colA = tx_toVec4(" + b.args[0] + ");",
		"vec4 tx_colB = tx_toVec4(" + b.args[1] + ");",
		"float tx_mask = " + b.args[2] + ";",
	}
}

const maskLine = MaskOutput + " = vec4(vec3(tx_mask), 1.0);"

// rewriteDirect implements rule 1 on the first matching statement.
func rewriteDirect(code string, s stream) ([]edit, bool) {
	for i, t := range s {
		if !t.isIdent(LegacyOutput) {
			continue
		}
		eq := s.nextSig(i + 1)
		mix := s.nextSig(eq + 1)
		if !s.at(eq).isPunct("=") || !s.at(mix).isIdent("mix") {
			continue
		}
		b, ok := parseBlend(code, s, mix)
		if !ok {
			continue
		}
		semi, ok := statementEnd(s, b)
		if !ok {
			continue
		}

		lines := append(captureLines(b),
			ColorOutput+" = mix(tx_colA, tx_colB, tx_mask);",
			maskLine,
		)
		indent := indentAt(code, t.pos)
		text := strings.Join(lines, "\n"+indent)
		if needsBlock(s, i) {
			text = "{ " + strings.Join(lines, " ") + " }"
		}
		return []edit{{start: t.pos, end: s.end(semi), text: text}}, true
	}
	return nil, false
}

// needsBlock reports whether the statement starting at token i is the body
// of an if, else, for or while without braces.
func needsBlock(s stream, i int) bool {
	p := s.at(s.prevSig(i))
	return p.isPunct(")") || p.isIdent("else")
}

// assignment is a `[type] v = mix(...)` candidate for rule 2.
type assignment struct {
	start int // token index of the type, or of v when undeclared
	typ   string
	name  string
	blend blend
	semi  int
}

// rewriteIndirect implements rule 2.
func rewriteIndirect(code string, s stream) ([]edit, bool) {
	cands := blendAssignments(code, s)
	for k := len(cands) - 1; k >= 0; k-- {
		a := cands[k]
		if a.blend.args[0] == a.name || a.blend.args[1] == a.name {
			continue
		}
		outs := outputAssignments(s, a.semi+1, a.name)
		if len(outs) == 0 {
			continue
		}

		typ := a.typ
		if typ == "" {
			typ = declaredType(s, a.start, a.name)
		}
		decl := ""
		if a.typ != "" {
			decl = a.typ + " "
		}
		lines := append(captureLines(a.blend),
			decl+a.name+" = mix(tx_colA, tx_colB, tx_mask)"+swizzleFor(typ)+";",
			maskLine,
		)
		first := s[a.start]
		edits := []edit{{
			start: first.pos,
			end:   s.end(a.semi),
			text:  strings.Join(lines, "\n"+indentAt(code, first.pos)),
		}}
		for _, o := range outs {
			edits = append(edits, edit{start: s[o].pos, end: s.end(o), text: ColorOutput})
		}
		return edits, true
	}
	return nil, false
}

// blendAssignments lists every `[type] v = mix(a, b, m);` in source order.
// Swizzled and indexed destinations are not candidates.
func blendAssignments(code string, s stream) []assignment {
	var out []assignment
	for i, t := range s {
		if !t.isIdent("mix") {
			continue
		}
		eq := s.prevSig(i)
		v := s.prevSig(eq)
		if !s.at(eq).isPunct("=") || s.at(v).kind != kindIdent || s.at(v).text == LegacyOutput {
			continue
		}
		before := s.at(s.prevSig(v))
		if before.isPunct(".") || before.isPunct("]") {
			continue
		}
		b, ok := parseBlend(code, s, i)
		if !ok {
			continue
		}
		semi, ok := statementEnd(s, b)
		if !ok {
			continue
		}
		a := assignment{start: v, name: s[v].text, blend: b, semi: semi}
		if typeNames[before.text] && before.kind == kindIdent {
			a.start = s.prevSig(v)
			a.typ = before.text
		}
		out = append(out, a)
	}
	return out
}

// outputAssignments returns the indices of every `gl_FragColor` token at or
// after from that is assigned exactly `name`.
func outputAssignments(s stream, from int, name string) []int {
	var out []int
	for i := from; i < len(s); i++ {
		if !s[i].isIdent(LegacyOutput) {
			continue
		}
		eq := s.nextSig(i + 1)
		v := s.nextSig(eq + 1)
		semi := s.nextSig(v + 1)
		if s.at(eq).isPunct("=") && s.at(v).isIdent(name) && s.at(semi).isPunct(";") {
			out = append(out, i)
		}
	}
	return out
}

// declaredType finds the type of the closest declaration of name before
// token index before.
func declaredType(s stream, before int, name string) string {
	for i := before - 1; i >= 0; i-- {
		if !s[i].isIdent(name) {
			continue
		}
		p := s.at(s.prevSig(i))
		if p.kind == kindIdent && typeNames[p.text] {
			return p.text
		}
	}
	return ""
}

// swizzleFor narrows the vec4 blend result to the destination type.
func swizzleFor(typ string) string {
	switch typ {
	case "float":
		return ".r"
	case "vec2":
		return ".rg"
	case "vec3":
		return ".rgb"
	default:
		return ""
	}
}

var typeNames = map[string]bool{
	"float": true, "vec2": true, "vec3": true, "vec4": true,
}
