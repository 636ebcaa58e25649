package interp

import (
	"regexp"
	"strings"

	"github.com/calamity10110/gul/source"
)

// Control-flow signals. return/break/continue travel out of execBlock as
// values, not errors, so try/catch never intercepts them.
type signal int

const (
	sigNone signal = iota
	sigReturn
	sigBreak
	sigContinue
)

type ctrl struct {
	sig signal
	val Value
}

var nothing = ctrl{sig: sigNone}

var (
	fnRe     = regexp.MustCompile(`^fn\s+(?:@\w+\s+)?(\w+)\s*\((.*)\)\s*(?:->\s*.+?)?\s*:$`)
	structRe = regexp.MustCompile(`^struct\s+(\w+)\s*:$`)
	enumRe   = regexp.MustCompile(`^enum\s+(\w+)\s*:$`)
	implRe   = regexp.MustCompile(`^impl\s+(\w+)\s*:$`)
	forRe    = regexp.MustCompile(`^for\s+(\w+)\s+in\s+(.+?)\s*:$`)
	declRe   = regexp.MustCompile(`^(?:let|var)\s+(\w+)\s*(?::\s*\S+)?\s*=\s*(.+)$`)
)

var statementHeads = []string{
	"@imp ", "fn ", "struct ", "enum ", "impl ", "if ", "match ",
	"while ", "for ", "try", "mn:", "return", "break", "continue",
	"pass", "let ", "var ",
}

func isStatementHead(s string) bool {
	for _, h := range statementHeads {
		if strings.HasPrefix(s, h) {
			return true
		}
	}
	return false
}

// execBlock executes lines[start:end], one statement construct at a time.
func (in *Interp) execBlock(lines []source.Line, start, end int) (ctrl, error) {
	i := start
	for i < end {
		l := lines[i]
		if l.Skippable() {
			i++
			continue
		}
		if in.debug {
			log.Debugf("line %d: %s", l.Num, l.Stripped)
		}

		s := source.StripComment(l.Stripped)

		switch {
		case strings.HasPrefix(s, "@imp "):
			path := strings.Split(strings.TrimSpace(s[len("@imp"):]), ".")
			if err := in.loadModule(path); err != nil {
				return nothing, err
			}
			i++

		case strings.HasPrefix(s, "fn "):
			next, err := in.defineFunc(lines, i, s, nil)
			if err != nil {
				return nothing, err
			}
			i = next

		case strings.HasPrefix(s, "struct "):
			next, err := in.defineStruct(lines, i, s)
			if err != nil {
				return nothing, err
			}
			i = next

		case strings.HasPrefix(s, "enum "):
			i = in.defineEnum(lines, i, s)

		case strings.HasPrefix(s, "impl "):
			next, err := in.execImpl(lines, i, s)
			if err != nil {
				return nothing, err
			}
			i = next

		case strings.HasPrefix(s, "if "):
			c, next, err := in.execIf(lines, i, end)
			if err != nil || c.sig != sigNone {
				return c, err
			}
			i = next

		case strings.HasPrefix(s, "match "):
			c, next, err := in.execMatch(lines, i, end, s)
			if err != nil || c.sig != sigNone {
				return c, err
			}
			i = next

		case strings.HasPrefix(s, "while "):
			c, next, err := in.execWhile(lines, i, s)
			if err != nil || c.sig != sigNone {
				return c, err
			}
			i = next

		case strings.HasPrefix(s, "for "):
			c, next, err := in.execFor(lines, i, s)
			if err != nil || c.sig != sigNone {
				return c, err
			}
			i = next

		case s == "try:" || strings.HasPrefix(s, "try:"):
			c, next, err := in.execTry(lines, i, end)
			if err != nil || c.sig != sigNone {
				return c, err
			}
			i = next

		case s == "mn:":
			bodyEnd := source.BlockEnd(lines, i)
			c, err := in.execBlock(lines, i+1, bodyEnd)
			if err != nil || c.sig != sigNone {
				return c, err
			}
			i = bodyEnd

		case s == "return" || strings.HasPrefix(s, "return "):
			val := None()
			if rest := strings.TrimSpace(strings.TrimPrefix(s, "return")); rest != "" {
				v, err := in.evalSource(rest, l.Num)
				if err != nil {
					return nothing, err
				}
				val = v
			}
			return ctrl{sig: sigReturn, val: val}, nil

		case s == "break":
			return ctrl{sig: sigBreak}, nil

		case s == "continue":
			return ctrl{sig: sigContinue}, nil

		case s == "pass":
			i++

		default:
			if err := in.execSimple(l); err != nil {
				return nothing, err
			}
			i++
		}
	}
	return nothing, nil
}

// defineFunc parses a fn header and registers the function. When methods is
// non-nil the function is recorded there instead of the environment, so
// struct and impl bodies never leak into the module namespace.
func (in *Interp) defineFunc(lines []source.Line, start int, head string, methods map[string]*Func) (int, error) {
	m := fnRe.FindStringSubmatch(head)
	if m == nil {
		log.Warningf("line %d: cannot parse function signature: %s", lines[start].Num, head)
		return start + 1, nil
	}
	name, paramsStr := m[1], m[2]

	bodyEnd := source.BlockEnd(lines, start)
	fn := &Func{
		Name:    name,
		Params:  parseParams(paramsStr),
		Body:    lines[start+1 : bodyEnd],
		File:    in.curFile,
		Closure: in.env.Snapshot(),
	}

	if methods != nil {
		methods[name] = fn
	} else {
		in.env.Set(name, FuncVal(fn))
	}
	return bodyEnd, nil
}

// parseParams splits a parameter list, dropping type annotations and
// ownership qualifiers (ref/mut/borrow/move/kept).
func parseParams(s string) []Param {
	var params []Param
	for _, part := range source.SplitTop(s, ',') {
		name := part
		typ := ""
		if idx := strings.Index(part, ":"); idx >= 0 {
			name = strings.TrimSpace(part[:idx])
			typ = strings.TrimSpace(part[idx+1:])
		}
		name = stripQualifiers(name)
		params = append(params, Param{Name: name, Type: typ})
	}
	return params
}

var ownershipQualifiers = []string{"ref", "mut", "borrow", "move", "kept"}

func stripQualifiers(name string) string {
	for changed := true; changed; {
		changed = false
		for _, q := range ownershipQualifiers {
			if strings.HasPrefix(name, q+" ") {
				name = strings.TrimSpace(name[len(q)+1:])
				changed = true
			}
		}
	}
	return name
}

// defineStruct parses a struct body: field declarations plus any methods
// defined inline.
func (in *Interp) defineStruct(lines []source.Line, start int, head string) (int, error) {
	m := structRe.FindStringSubmatch(head)
	if m == nil {
		return start + 1, nil
	}
	name := m[1]

	def := &StructDef{Name: name, Methods: make(map[string]*Func)}
	blockEnd := source.BlockEnd(lines, start)

	i := start + 1
	for i < blockEnd {
		l := lines[i]
		if l.Skippable() {
			i++
			continue
		}
		s := source.StripComment(l.Stripped)
		if strings.HasPrefix(s, "fn ") {
			next, err := in.defineFunc(lines, i, s, def.Methods)
			if err != nil {
				return 0, err
			}
			i = next
			continue
		}
		if idx := strings.Index(s, ":"); idx >= 0 {
			def.Fields = append(def.Fields, strings.TrimSpace(s[:idx]))
		}
		i++
	}

	in.structs[name] = def
	return blockEnd, nil
}

// defineEnum records an enum's variant names. Payload annotations are kept
// out of the name: "Some(@int)" declares the variant Some.
func (in *Interp) defineEnum(lines []source.Line, start int, head string) int {
	m := enumRe.FindStringSubmatch(head)
	if m == nil {
		return start + 1
	}
	name := m[1]

	def := &EnumDef{Name: name}
	blockEnd := source.BlockEnd(lines, start)
	for i := start + 1; i < blockEnd; i++ {
		l := lines[i]
		if l.Skippable() {
			continue
		}
		variant := strings.TrimSuffix(source.StripComment(l.Stripped), ",")
		if idx := strings.Index(variant, "("); idx >= 0 {
			variant = variant[:idx]
		}
		variant = strings.TrimSpace(variant)
		if variant != "" {
			def.Variants = append(def.Variants, variant)
		}
	}

	in.enums[name] = def
	return blockEnd
}

// execImpl attaches methods to a previously declared struct.
func (in *Interp) execImpl(lines []source.Line, start int, head string) (int, error) {
	m := implRe.FindStringSubmatch(head)
	if m == nil {
		return start + 1, nil
	}
	name := m[1]

	def := in.structs[name]
	if def == nil {
		log.Warningf("impl for unknown struct %s", name)
	}

	blockEnd := source.BlockEnd(lines, start)
	i := start + 1
	for i < blockEnd {
		l := lines[i]
		if l.Skippable() {
			i++
			continue
		}
		s := source.StripComment(l.Stripped)
		if strings.HasPrefix(s, "fn ") {
			methods := map[string]*Func{}
			if def != nil {
				methods = def.Methods
			}
			next, err := in.defineFunc(lines, i, s, methods)
			if err != nil {
				return 0, err
			}
			i = next
			continue
		}
		i++
	}
	return blockEnd, nil
}

// execIf runs an if/elif/else chain: conditions are evaluated in order and
// exactly the first true branch executes.
func (in *Interp) execIf(lines []source.Line, start, end int) (ctrl, int, error) {
	i := start
	taken := false

	for i < end {
		l := lines[i]
		s := source.StripComment(l.Stripped)

		var condExpr string
		isElse := false
		switch {
		case i == start && strings.HasPrefix(s, "if "):
			condExpr = strings.TrimSpace(s[3:])
		case i != start && strings.HasPrefix(s, "elif "):
			condExpr = strings.TrimSpace(s[5:])
		case i != start && (s == "else:" || strings.HasPrefix(s, "else:")):
			isElse = true
		default:
			return nothing, i, nil
		}

		var inline string
		if !isElse {
			idx := source.ColonIndex(condExpr)
			if idx < 0 {
				return nothing, 0, in.errf(l.Num, "missing ':' in condition: %s", s)
			}
			inline = strings.TrimSpace(condExpr[idx+1:])
			condExpr = strings.TrimSpace(condExpr[:idx])
		} else {
			inline = strings.TrimSpace(strings.TrimPrefix(s, "else:"))
		}

		bodyEnd := source.BlockEnd(lines, i)

		run := false
		if !taken {
			if isElse {
				run = true
			} else {
				cond, err := in.evalSource(condExpr, l.Num)
				if err != nil {
					return nothing, 0, err
				}
				run = Truthy(cond)
			}
		}

		if run {
			taken = true
			if inline != "" {
				c, err := in.execInline(inline, l.Num)
				if err != nil || c.sig != sigNone {
					return c, 0, err
				}
			}
			c, err := in.execBlock(lines, i+1, bodyEnd)
			if err != nil || c.sig != sigNone {
				return c, 0, err
			}
		}

		i = bodyEnd
		if isElse {
			break
		}
		// Only a same-indent elif/else continues the chain.
		if i >= end || lines[i].Indent != l.Indent {
			break
		}
		next := source.StripComment(lines[i].Stripped)
		if !strings.HasPrefix(next, "elif ") && !strings.HasPrefix(next, "else:") && next != "else:" {
			break
		}
	}
	return nothing, i, nil
}

// execMatch evaluates the subject once and runs the first arm whose pattern
// matches. `_` and `else` are wildcards; enum patterns may bind payloads.
func (in *Interp) execMatch(lines []source.Line, start, end int, head string) (ctrl, int, error) {
	l := lines[start]
	idx := source.ColonIndex(head[len("match "):])
	if idx < 0 {
		return nothing, 0, in.errf(l.Num, "missing ':' in match: %s", head)
	}
	subjectExpr := strings.TrimSpace(head[len("match ") : len("match ")+idx])
	subject, err := in.evalSource(subjectExpr, l.Num)
	if err != nil {
		return nothing, 0, err
	}

	blockEnd := source.BlockEnd(lines, start)
	matched := false

	i := start + 1
	for i < blockEnd {
		al := lines[i]
		if al.Skippable() {
			i++
			continue
		}
		s := source.StripComment(al.Stripped)
		arrow := strings.Index(s, "=>")
		if arrow < 0 {
			i++
			continue
		}
		pattern := strings.TrimSpace(s[:arrow])
		inline := strings.TrimSpace(s[arrow+2:])
		armEnd := source.BlockEnd(lines, i)

		if !matched {
			ok, bindings, err := in.matchPattern(pattern, subject, al.Num)
			if err != nil {
				return nothing, 0, err
			}
			if ok {
				matched = true
				for name, v := range bindings {
					in.env.Set(name, v)
				}
				if inline != "" && inline != "{" {
					c, err := in.execInline(inline, al.Num)
					if err != nil || c.sig != sigNone {
						return c, 0, err
					}
				}
				if armEnd > i+1 {
					c, err := in.execBlock(lines, i+1, armEnd)
					if err != nil || c.sig != sigNone {
						return c, 0, err
					}
				}
			}
		}
		i = armEnd
	}
	return nothing, blockEnd, nil
}

// matchPattern tests one match arm. Enum variant patterns with identifier
// payloads bind those identifiers on success.
func (in *Interp) matchPattern(pattern string, subject Value, lineNum int) (bool, map[string]Value, error) {
	if pattern == "_" || pattern == "else" {
		return true, nil, nil
	}

	// Enum variant with payload binding: Type.Variant(a, b)
	if subject.Kind == KindEnumVariant {
		if open := strings.Index(pattern, "("); open > 0 && strings.HasSuffix(pattern, ")") {
			headParts := strings.Split(pattern[:open], ".")
			if len(headParts) == 2 {
				enumName := strings.TrimSpace(headParts[0])
				varName := strings.TrimSpace(headParts[1])
				if subject.Variant.Enum == enumName && subject.Variant.Name == varName {
					names := source.SplitTop(pattern[open+1:len(pattern)-1], ',')
					bindings := make(map[string]Value)
					for i, n := range names {
						if i < len(subject.Variant.Payload) {
							bindings[n] = subject.Variant.Payload[i]
						}
					}
					return true, bindings, nil
				}
				return false, nil, nil
			}
		}
	}

	val, err := in.evalSource(pattern, lineNum)
	if err != nil {
		return false, nil, err
	}
	return Equal(val, subject), nil, nil
}

// execWhile re-evaluates the condition before every iteration.
func (in *Interp) execWhile(lines []source.Line, start int, head string) (ctrl, int, error) {
	l := lines[start]
	rest := head[len("while "):]
	idx := source.ColonIndex(rest)
	if idx < 0 {
		return nothing, 0, in.errf(l.Num, "missing ':' in while: %s", head)
	}
	condExpr := strings.TrimSpace(rest[:idx])
	bodyEnd := source.BlockEnd(lines, start)

	for {
		cond, err := in.evalSource(condExpr, l.Num)
		if err != nil {
			return nothing, 0, err
		}
		if !Truthy(cond) {
			break
		}
		c, err := in.execBlock(lines, start+1, bodyEnd)
		if err != nil {
			return nothing, 0, err
		}
		if c.sig == sigBreak {
			break
		}
		if c.sig == sigReturn {
			return c, 0, nil
		}
		// sigContinue falls through to the next iteration.
	}
	return nothing, bodyEnd, nil
}

// execFor evaluates the iterable once and binds the loop variable per item.
func (in *Interp) execFor(lines []source.Line, start int, head string) (ctrl, int, error) {
	l := lines[start]
	m := forRe.FindStringSubmatch(head)
	if m == nil {
		return nothing, 0, in.errf(l.Num, "cannot parse for loop: %s", head)
	}
	varName, iterExpr := m[1], m[2]

	iterable, err := in.evalSource(iterExpr, l.Num)
	if err != nil {
		return nothing, 0, err
	}
	items, err := iterItems(iterable)
	if err != nil {
		return nothing, 0, in.errf(l.Num, "%v", err)
	}

	bodyEnd := source.BlockEnd(lines, start)
	for _, item := range items {
		in.env.Set(varName, item)
		c, err := in.execBlock(lines, start+1, bodyEnd)
		if err != nil {
			return nothing, 0, err
		}
		if c.sig == sigBreak {
			break
		}
		if c.sig == sigReturn {
			return c, 0, nil
		}
	}
	return nothing, bodyEnd, nil
}

// execTry runs the try body and, on a runtime error, the catch body. The
// error value (its message) binds to the catch variable when one is named.
// Control-flow signals pass through untouched.
func (in *Interp) execTry(lines []source.Line, start, end int) (ctrl, int, error) {
	base := lines[start].Indent
	tryEnd := source.BlockEnd(lines, start)

	catchStart := -1
	catchVar := ""
	next := tryEnd
	if tryEnd < end && lines[tryEnd].Indent == base {
		s := source.StripComment(lines[tryEnd].Stripped)
		if strings.HasPrefix(s, "catch") {
			header := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(s, "catch")), ":")
			catchVar = strings.TrimSpace(header)
			catchStart = tryEnd + 1
			next = source.BlockEnd(lines, tryEnd)
		}
	}

	c, err := in.execBlock(lines, start+1, tryEnd)
	if err == nil || c.sig != sigNone {
		return c, next, err
	}

	if catchStart < 0 {
		return nothing, next, nil
	}
	if catchVar != "" {
		in.env.Set(catchVar, Str(err.Error()))
	}
	return in.handleCatch(lines, catchStart, next)
}

func (in *Interp) handleCatch(lines []source.Line, start, end int) (ctrl, int, error) {
	c, err := in.execBlock(lines, start, end)
	return c, end, err
}

// execSimple executes a declaration, assignment or expression statement.
func (in *Interp) execSimple(l source.Line) error {
	s := source.StripComment(l.Stripped)

	if m := declRe.FindStringSubmatch(s); m != nil {
		v, err := in.evalSource(m[2], l.Num)
		if err != nil {
			return err
		}
		in.env.Set(m[1], v)
		return nil
	}

	if idx := source.AssignIndex(s); idx >= 0 {
		target := strings.TrimSpace(s[:idx])
		valueExpr := strings.TrimSpace(s[idx+1:])
		v, err := in.evalSource(valueExpr, l.Num)
		if err != nil {
			return err
		}
		return in.assign(target, v, l.Num)
	}

	_, err := in.evalSource(s, l.Num)
	return err
}

// execInline runs the single-statement body of an inline `cond: body` or
// match arm, where return/break/continue are still meaningful.
func (in *Interp) execInline(s string, num int) (ctrl, error) {
	switch {
	case s == "pass":
		return nothing, nil
	case s == "return" || strings.HasPrefix(s, "return "):
		val := None()
		if rest := strings.TrimSpace(strings.TrimPrefix(s, "return")); rest != "" {
			v, err := in.evalSource(rest, num)
			if err != nil {
				return nothing, err
			}
			val = v
		}
		return ctrl{sig: sigReturn, val: val}, nil
	case s == "break":
		return ctrl{sig: sigBreak}, nil
	case s == "continue":
		return ctrl{sig: sigContinue}, nil
	}
	return nothing, in.execSimple(source.Line{Stripped: s, Text: s, Num: num})
}
