package transpile

import (
	"regexp"
	"strings"

	"github.com/calamity10110/gul/source"
)

// Rewriter turns GUL source into Rust source line by line. Blocks open on
// trailing ':' or '{' and close when indentation drops; every pop emits one
// closing brace plus the frame's suffix. The rewrite is total: malformed
// input degrades to best-effort text, never an error.
type Rewriter struct {
	stack      frameStack
	out        []string
	parenDepth int
}

var (
	structHeadRe = regexp.MustCompile(`^struct\s+(\w+)\s*:$`)
	enumHeadRe   = regexp.MustCompile(`^enum\s+(\w+)\s*:$`)
	implHeadRe   = regexp.MustCompile(`^impl\s+(\w+)\s*:$`)
	fnHeadRe     = regexp.MustCompile(`^fn\s+(\w+)\s*\((.*)\)\s*(?:->\s*(.+?))?\s*:$`)
)

const deriveAttr = "#[derive(Debug, Clone, PartialEq)]"

// Rewrite transpiles one GUL file body to Rust (no prelude).
func Rewrite(src string) string {
	r := &Rewriter{}
	for _, l := range source.Split(src) {
		r.feed(l)
	}
	r.finish()
	return strings.Join(r.out, "\n")
}

func (r *Rewriter) emit(indent int, text string) {
	r.out = append(r.out, strings.Repeat(" ", indent)+text)
}

func (r *Rewriter) closeTo(indent int) {
	for r.stack.depth() > 0 && r.stack.top().indent >= indent {
		f := r.stack.pop()
		r.emit(f.indent, "}"+f.suffix)
	}
}

func (r *Rewriter) finish() {
	for r.stack.depth() > 0 {
		f := r.stack.pop()
		r.emit(f.indent, "}"+f.suffix)
	}
}

// stmtPunct is the trailing punctuation for a plain line in the current
// block.
func (r *Rewriter) stmtPunct() string {
	switch r.stack.kindOf() {
	case kindEnum, kindStruct, kindMatch:
		return ","
	}
	return ";"
}

func (r *Rewriter) feed(l source.Line) {
	if l.Blank() {
		r.out = append(r.out, "")
		return
	}
	if l.IsComment() {
		r.emit(l.Indent, "//"+strings.TrimPrefix(l.Stripped, "#"))
		return
	}

	s := source.StripComment(l.Stripped)
	trailing := ""
	if rest := strings.TrimPrefix(l.Stripped, s); strings.HasPrefix(strings.TrimSpace(rest), "#") {
		trailing = " //" + strings.TrimPrefix(strings.TrimSpace(rest), "#")
	}

	// Continuation of a multi-line argument list: no block bookkeeping.
	if r.parenDepth > 0 {
		r.parenDepth += source.ParenBalance(s)
		text := r.rewriteExpr(s)
		if r.parenDepth <= 0 {
			r.parenDepth = 0
			text += r.stmtPunct()
		}
		r.emit(l.Indent, text+trailing)
		return
	}

	r.closeTo(l.Indent)

	// An explicit closing brace duplicates the dedent close above.
	if s == "}" {
		return
	}

	switch {
	case strings.HasPrefix(s, "@imp "):
		r.emit(l.Indent, importLine(strings.TrimSpace(s[len("@imp"):]))+trailing)

	case structHeadRe.MatchString(s):
		name := structHeadRe.FindStringSubmatch(s)[1]
		r.emit(l.Indent, deriveAttr)
		r.emit(l.Indent, "pub struct "+name+" {"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindStruct})

	case enumHeadRe.MatchString(s):
		name := enumHeadRe.FindStringSubmatch(s)[1]
		r.emit(l.Indent, deriveAttr)
		r.emit(l.Indent, "pub enum "+name+" {"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindEnum})

	case implHeadRe.MatchString(s):
		r.emit(l.Indent, "impl "+implHeadRe.FindStringSubmatch(s)[1]+" {"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindImpl})

	case fnHeadRe.MatchString(s):
		r.emit(l.Indent, r.fnSignature(s)+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindFn})

	case s == "mn:":
		r.emit(l.Indent, "fn main() {"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindMain})

	case strings.HasPrefix(s, "match ") && strings.HasSuffix(s, ":"):
		subject := strings.TrimSpace(strings.TrimSuffix(s[len("match "):], ":"))
		r.emit(l.Indent, "match "+r.rewriteExpr(subject)+" {"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindMatch})

	case r.stack.kindOf() == kindMatch && strings.Contains(s, "=>"):
		r.feedMatchArm(l, s, trailing)

	case isControlHead(s):
		r.feedControl(l, s, trailing)

	case r.stack.kindOf() == kindEnum:
		r.emit(l.Indent, mapAnnotation(strings.TrimSuffix(s, ","))+","+trailing)

	case r.stack.kindOf() == kindStruct:
		r.feedStructField(l, s, trailing)

	case strings.HasPrefix(s, "let ") || strings.HasPrefix(s, "var "):
		r.feedDecl(l, s, trailing)

	case s == "pass":
		// no-op

	case strings.HasPrefix(s, "print(") && strings.HasSuffix(s, ")") && source.ParenBalance(s) == 0:
		r.emit(l.Indent, r.printCall(s)+";"+trailing)

	case strings.HasSuffix(s, "{"):
		r.emit(l.Indent, r.rewriteExpr(strings.TrimSuffix(s, "{"))+"{"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindOther})

	case strings.HasSuffix(s, ":"):
		// Unrecognized block opener: generic braced block.
		r.emit(l.Indent, r.rewriteExpr(strings.TrimSuffix(s, ":"))+" {"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindControl})

	default:
		text := r.rewriteExpr(s)
		if bal := source.ParenBalance(s); bal > 0 {
			r.parenDepth = bal
			r.emit(l.Indent, text+trailing)
			return
		}
		r.emit(l.Indent, text+r.stmtPunct()+trailing)
	}
}

// feedMatchArm emits one arm. Inline bodies stay on the line; an arm that
// ends at '=>' (or '=> {') opens a braced body whose closer carries the
// arm's comma.
func (r *Rewriter) feedMatchArm(l source.Line, s, trailing string) {
	arrow := strings.Index(s, "=>")
	pattern := r.rewritePattern(strings.TrimSpace(s[:arrow]))
	body := strings.TrimSpace(s[arrow+2:])

	if body == "" || body == "{" {
		r.emit(l.Indent, pattern+" => {"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindArm, suffix: ","})
		return
	}
	switch {
	case body == "pass":
		body = "{}"
	case strings.HasPrefix(body, "print(") && strings.HasSuffix(body, ")"):
		body = r.printCall(body)
	default:
		body = r.rewriteExpr(body)
	}
	r.emit(l.Indent, pattern+" => "+body+","+trailing)
}

// rewritePattern maps a match pattern: wildcards stay, enum paths go to ::.
func (r *Rewriter) rewritePattern(p string) string {
	if p == "_" || p == "else" {
		return "_"
	}
	return r.rewriteExpr(p)
}

func isControlHead(s string) bool {
	for _, h := range []string{"if ", "elif ", "while ", "for ", "catch"} {
		if strings.HasPrefix(s, h) {
			return true
		}
	}
	return s == "else:" || strings.HasPrefix(s, "else:") || s == "try:" || strings.HasPrefix(s, "try:")
}

// feedControl handles if/elif/else/while/for/try/catch headers. A non-empty
// inline body becomes a single braced line.
func (r *Rewriter) feedControl(l source.Line, s, trailing string) {
	head := s
	switch {
	case strings.HasPrefix(s, "elif "):
		head = "else if " + s[len("elif "):]
	case strings.HasPrefix(s, "try:"):
		// try has no Rust analogue; the body runs in a plain block.
		r.emit(l.Indent, "{"+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindControl})
		return
	case strings.HasPrefix(s, "catch"):
		// A catch block cannot run in Rust output; keep it for reference.
		r.emit(l.Indent, "// catch"+strings.TrimPrefix(s, "catch")+trailing)
		r.stack.push(frame{indent: l.Indent, kind: kindControl, suffix: " */"})
		r.emit(l.Indent, "/*")
		return
	}

	idx := source.ColonIndex(head)
	if idx < 0 {
		r.emit(l.Indent, r.rewriteExpr(head)+r.stmtPunct()+trailing)
		return
	}
	cond := strings.TrimSpace(head[:idx])
	inline := strings.TrimSpace(head[idx+1:])

	if cond != "else" {
		cond = r.rewriteExpr(cond)
		if strings.HasPrefix(cond, "for ") {
			cond = rangeTwoRe.ReplaceAllString(cond, "$1..$2")
			cond = rangeOneRe.ReplaceAllString(cond, "0..$1")
		}
	}

	if inline != "" {
		var body string
		switch {
		case inline == "pass":
		case strings.HasPrefix(inline, "print(") && strings.HasSuffix(inline, ")"):
			body = r.printCall(inline) + "; "
		default:
			body = r.rewriteExpr(inline) + "; "
		}
		r.emit(l.Indent, cond+" { "+body+"}"+trailing)
		return
	}
	r.emit(l.Indent, cond+" {"+trailing)
	r.stack.push(frame{indent: l.Indent, kind: kindControl})
}

// feedStructField emits `pub name: Type,`.
func (r *Rewriter) feedStructField(l source.Line, s, trailing string) {
	idx := strings.Index(s, ":")
	if idx < 0 {
		r.emit(l.Indent, "pub "+s+": String,"+trailing)
		return
	}
	name := strings.TrimSpace(s[:idx])
	typ := mapAnnotation(strings.TrimSpace(s[idx+1:]))
	r.emit(l.Indent, "pub "+name+": "+typ+","+trailing)
}

// feedDecl handles let/var declarations, mapping the annotation and value
// separately so collection sigils land as Vec<T> on one side and vec![...]
// on the other.
func (r *Rewriter) feedDecl(l source.Line, s, trailing string) {
	kw := "let "
	rest := s[len("let "):]
	if strings.HasPrefix(s, "var ") {
		kw = "let mut "
		rest = s[len("var "):]
	}

	eq := source.AssignIndex(rest)
	if eq < 0 {
		r.emit(l.Indent, kw+r.rewriteExpr(rest)+";"+trailing)
		return
	}

	lhs := strings.TrimSpace(rest[:eq])
	value := r.rewriteExpr(strings.TrimSpace(rest[eq+1:]))

	if ci := strings.Index(lhs, ":"); ci >= 0 {
		name := strings.TrimSpace(lhs[:ci])
		typ := mapAnnotation(strings.TrimSpace(lhs[ci+1:]))
		lhs = name + ": " + typ
	}

	text := kw + lhs + " = " + value
	if bal := source.ParenBalance(s); bal > 0 {
		r.parenDepth = bal
		r.emit(l.Indent, text+trailing)
		return
	}
	r.emit(l.Indent, text+";"+trailing)
}

// fnSignature converts a function header: self receivers, parameter and
// return annotations, trailing brace.
func (r *Rewriter) fnSignature(s string) string {
	m := fnHeadRe.FindStringSubmatch(s)
	name, paramsStr, retType := m[1], m[2], m[3]

	var params []string
	for _, p := range source.SplitTop(paramsStr, ',') {
		switch p {
		case "self", "borrow self", "kept self":
			params = append(params, "&self")
			continue
		case "ref self", "mut self":
			params = append(params, "&mut self")
			continue
		}
		pname := p
		ptype := ""
		if ci := strings.Index(p, ":"); ci >= 0 {
			pname = strings.TrimSpace(p[:ci])
			ptype = mapAnnotation(strings.TrimSpace(p[ci+1:]))
		}
		for _, q := range []string{"ref ", "mut ", "borrow ", "move ", "kept "} {
			pname = strings.TrimPrefix(pname, q)
		}
		if ptype != "" {
			params = append(params, pname+": "+ptype)
		} else {
			params = append(params, pname)
		}
	}

	sig := "fn " + name + "(" + strings.Join(params, ", ") + ")"
	if retType != "" {
		sig += " -> " + mapAnnotation(strings.TrimSpace(retType))
	}
	return sig + " {"
}

// printCall maps print(...) onto println! with one placeholder per
// argument, space separated like the interpreter's output.
func (r *Rewriter) printCall(s string) string {
	inner := strings.TrimSpace(s[len("print(") : len(s)-1])
	if inner == "" {
		return "println!()"
	}
	args := source.SplitTop(inner, ',')
	placeholders := make([]string, len(args))
	for i, a := range args {
		placeholders[i] = "{}"
		args[i] = r.rewriteExpr(strings.TrimSpace(a))
	}
	return "println!(\"" + strings.Join(placeholders, " ") + "\", " + strings.Join(args, ", ") + ")"
}

// importLine turns `@imp a.b.c` into a use declaration. std.* paths map to
// the Rust standard library, everything else into the crate.
func importLine(module string) string {
	path := strings.ReplaceAll(module, ".", "::")
	if strings.HasPrefix(module, "std.") {
		return "use " + path + ";"
	}
	return "use crate::" + path + "::*;"
}

// rewriteExpr converts an expression fragment: f-strings, word operators,
// enum paths, collection values, conversions and method renames. Quoted
// text is never touched.
func (r *Rewriter) rewriteExpr(s string) string {
	s = convertFStrings(s)
	return mapOutsideStrings(s, func(seg string) string {
		seg = wordNot.ReplaceAllString(seg, "!")
		seg = wordAnd.ReplaceAllString(seg, "&&")
		seg = wordOr.ReplaceAllString(seg, "||")
		seg = wordNone.ReplaceAllString(seg, "Option::None")
		seg = enumPathRe.ReplaceAllString(seg, "$1::$2")
		seg = atListValRe.ReplaceAllString(seg, "vec![")
		seg = atDictValRe.ReplaceAllString(seg, "dict!{")
		seg = convertConversions(seg)
		for sigil, rust := range scalarTypes {
			seg = strings.ReplaceAll(seg, sigil, rust)
		}
		seg = strings.ReplaceAll(seg, "@set", "HashSet::new")
		seg = strings.ReplaceAll(seg, "@tuple", "")
		for _, mr := range methodRenames {
			seg = strings.ReplaceAll(seg, mr[0], mr[1])
		}
		return seg
	})
}

// convertConversions rewrites @int(x)/@float(x) into casts and @str(x) into
// format!. Operates on a quote-free segment.
func convertConversions(s string) string {
	for {
		m := atConvRe.FindStringSubmatchIndex(s)
		if m == nil {
			return s
		}
		name := s[m[2]:m[3]]
		open := m[1] - 1
		depth := 0
		close := -1
		for i := open; i < len(s); i++ {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					close = i
				}
			}
			if close >= 0 {
				break
			}
		}
		if close < 0 {
			return s
		}
		inner := s[open+1 : close]
		var repl string
		switch name {
		case "int":
			repl = "(" + inner + " as i64)"
		case "float":
			repl = "(" + inner + " as f64)"
		case "str":
			repl = "format!(\"{}\", " + inner + ")"
		case "bool":
			repl = "(" + inner + ")"
		}
		s = s[:m[0]] + repl + s[close+1:]
	}
}

// convertFStrings turns f"a {x} b" into format!("a {} b", x).
func convertFStrings(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 'f' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\'') &&
			(i == 0 || !isWordByte(s[i-1])) {
			quote := s[i+1]
			j := i + 2
			for j < len(s) && s[j] != quote {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(s) {
				sb.WriteString(s[i:])
				return sb.String()
			}
			sb.WriteString(formatMacro(s[i+2 : j]))
			i = j
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// formatMacro builds the format! call for one f-string body: interpolations
// become {} placeholders with positional arguments.
func formatMacro(body string) string {
	var lit strings.Builder
	var args []string
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				lit.WriteString("{{")
				i++
				continue
			}
			depth := 1
			j := i + 1
			for j < len(body) && depth > 0 {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			args = append(args, strings.TrimSpace(body[i+1:j-1]))
			lit.WriteString("{}")
			i = j - 1
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				lit.WriteString("}}")
				i++
				continue
			}
			lit.WriteByte('}')
		default:
			lit.WriteByte(c)
		}
	}
	out := "format!(\"" + lit.String() + "\""
	for _, a := range args {
		out += ", " + a
	}
	return out + ")"
}
