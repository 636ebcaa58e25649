package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/calamity10110/gul/compiler"
)

// evalSource parses and evaluates one expression.
func (in *Interp) evalSource(src string, lineNum int) (Value, error) {
	expr, err := compiler.ParseExpression(src)
	if err != nil {
		return None(), in.errf(lineNum, "%v", err)
	}
	return in.evalExpr(expr, src, lineNum)
}

func (in *Interp) evalExpr(e compiler.Expr, src string, lineNum int) (Value, error) {
	switch n := e.(type) {
	case *compiler.IntLit:
		return Int(n.Value), nil
	case *compiler.FloatLit:
		return Float(n.Value), nil
	case *compiler.StrLit:
		return Str(n.Value), nil
	case *compiler.FStrLit:
		return in.interpolate(n.Value, lineNum)
	case *compiler.BoolLit:
		return Bool(n.Value), nil
	case *compiler.NoneLit:
		return None(), nil

	case *compiler.Ident:
		return in.lookup(n.Name, lineNum)

	case *compiler.ListLit:
		items := make([]Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := in.evalExpr(el, src, lineNum)
			if err != nil {
				return None(), err
			}
			items[i] = v
		}
		return ListOf(items...), nil

	case *compiler.DictLit:
		d := NewDict()
		for i := range n.Keys {
			k, err := in.evalExpr(n.Keys[i], src, lineNum)
			if err != nil {
				return None(), err
			}
			v, err := in.evalExpr(n.Values[i], src, lineNum)
			if err != nil {
				return None(), err
			}
			if err := d.Set(k, v); err != nil {
				return None(), in.errf(lineNum, "%v", err)
			}
		}
		return DictVal(d), nil

	case *compiler.StructLit:
		inst := NewInstance(n.Name)
		for _, f := range n.Fields {
			v, err := in.evalExpr(f.Value, src, lineNum)
			if err != nil {
				return None(), err
			}
			inst.SetField(f.Name, v)
		}
		return StructVal(inst), nil

	case *compiler.TypeConv:
		var arg Value
		if n.Arg != nil {
			v, err := in.evalExpr(n.Arg, src, lineNum)
			if err != nil {
				return None(), err
			}
			arg = v
		} else {
			arg = None()
		}
		return in.convert(n.Name, arg, lineNum)

	case *compiler.Unary:
		x, err := in.evalExpr(n.X, src, lineNum)
		if err != nil {
			return None(), err
		}
		switch n.Op {
		case compiler.TokenNot:
			return Bool(!Truthy(x)), nil
		case compiler.TokenMinus:
			switch x.Kind {
			case KindInt:
				return Int(-x.Int), nil
			case KindFloat:
				return Float(-x.Float), nil
			}
			return None(), in.errf(lineNum, "cannot negate %s", TypeName(x))
		}
		return None(), in.errf(lineNum, "unknown unary operator %s", n.Op)

	case *compiler.Binary:
		return in.evalBinary(n, src, lineNum)

	case *compiler.Index:
		x, err := in.evalExpr(n.X, src, lineNum)
		if err != nil {
			return None(), err
		}
		idx, err := in.evalExpr(n.Idx, src, lineNum)
		if err != nil {
			return None(), err
		}
		v, err := indexValue(x, idx)
		if err != nil {
			return None(), in.errf(lineNum, "%v", err)
		}
		return v, nil

	case *compiler.Attr:
		return in.evalAttr(n, src, lineNum)

	case *compiler.Call:
		return in.evalCall(n, src, lineNum)
	}
	return None(), in.errf(lineNum, "cannot evaluate expression: %q", src)
}

// lookup resolves a bare name: environment first, then the struct and enum
// registries.
func (in *Interp) lookup(name string, lineNum int) (Value, error) {
	if v, ok := in.env.Get(name); ok {
		return v, nil
	}
	if def, ok := in.structs[name]; ok {
		return DefVal(def), nil
	}
	if def, ok := in.enums[name]; ok {
		return EnumVal(def), nil
	}
	return None(), in.errf(lineNum, "undefined name: %s", name)
}

// evalAttr resolves attribute access. An unresolvable chain of plain names
// evaluates to its own source text, which older GUL programs rely on for
// symbolic constants.
func (in *Interp) evalAttr(n *compiler.Attr, src string, lineNum int) (Value, error) {
	raw := rawText(n, src)

	x, err := in.evalExpr(n.X, src, lineNum)
	if err != nil {
		if raw != "" && isPlainChain(n) {
			return Str(raw), nil
		}
		return None(), err
	}

	v, ok := attrOn(x, n.Name)
	if ok {
		return v, nil
	}
	if raw != "" && isPlainChain(n) {
		return Str(raw), nil
	}
	return None(), in.errf(lineNum, "%s has no attribute %q", TypeName(x), n.Name)
}

// attrOn reads one attribute step from a value.
func attrOn(x Value, name string) (Value, bool) {
	switch x.Kind {
	case KindStruct:
		return x.Struct.Field(name)
	case KindDict:
		return x.Dict.Get(Str(name))
	case KindEnumDef:
		if x.Enum.HasVariant(name) {
			return VariantVal(&EnumVariant{Enum: x.Enum.Name, Name: name}), true
		}
	}
	return None(), false
}

// isPlainChain reports whether the expression is only dotted identifiers.
func isPlainChain(e compiler.Expr) bool {
	for {
		switch n := e.(type) {
		case *compiler.Ident:
			return true
		case *compiler.Attr:
			e = n.X
		default:
			return false
		}
	}
}

// rawText recovers the source slice behind a node.
func rawText(e compiler.Expr, src string) string {
	if e.Pos() < 0 || e.End() > len(src) || e.Pos() >= e.End() {
		return ""
	}
	return src[e.Pos():e.End()]
}

func (in *Interp) evalBinary(n *compiler.Binary, src string, lineNum int) (Value, error) {
	// and/or short-circuit and yield an operand, not a bool.
	if n.Op == compiler.TokenAnd || n.Op == compiler.TokenOr {
		l, err := in.evalExpr(n.L, src, lineNum)
		if err != nil {
			return None(), err
		}
		if n.Op == compiler.TokenAnd && !Truthy(l) {
			return l, nil
		}
		if n.Op == compiler.TokenOr && Truthy(l) {
			return l, nil
		}
		return in.evalExpr(n.R, src, lineNum)
	}

	l, err := in.evalExpr(n.L, src, lineNum)
	if err != nil {
		return None(), err
	}
	r, err := in.evalExpr(n.R, src, lineNum)
	if err != nil {
		return None(), err
	}

	v, err := applyBinary(n.Op, l, r)
	if err != nil {
		return None(), in.errf(lineNum, "%v", err)
	}
	return v, nil
}

func bothNumeric(l, r Value) bool {
	num := func(v Value) bool { return v.Kind == KindInt || v.Kind == KindFloat }
	return num(l) && num(r)
}

func applyBinary(op compiler.TokenType, l, r Value) (Value, error) {
	switch op {
	case compiler.TokenPlus:
		// String coercion wins: either side a string concatenates.
		if l.Kind == KindStr || r.Kind == KindStr {
			return Str(l.String() + r.String()), nil
		}
		if l.Kind == KindList && r.Kind == KindList {
			items := append(append([]Value{}, l.List.Items...), r.List.Items...)
			return ListOf(items...), nil
		}
		if l.Kind == KindInt && r.Kind == KindInt {
			return Int(l.Int + r.Int), nil
		}
		if bothNumeric(l, r) {
			return Float(asFloat(l) + asFloat(r)), nil
		}

	case compiler.TokenMinus:
		if l.Kind == KindInt && r.Kind == KindInt {
			return Int(l.Int - r.Int), nil
		}
		if bothNumeric(l, r) {
			return Float(asFloat(l) - asFloat(r)), nil
		}

	case compiler.TokenStar:
		if l.Kind == KindInt && r.Kind == KindInt {
			return Int(l.Int * r.Int), nil
		}
		if bothNumeric(l, r) {
			return Float(asFloat(l) * asFloat(r)), nil
		}
		if l.Kind == KindStr && r.Kind == KindInt {
			return Str(strings.Repeat(l.Str, int(r.Int))), nil
		}
		if l.Kind == KindInt && r.Kind == KindStr {
			return Str(strings.Repeat(r.Str, int(l.Int))), nil
		}
		if l.Kind == KindList && r.Kind == KindInt {
			var items []Value
			for i := int64(0); i < r.Int; i++ {
				items = append(items, l.List.Items...)
			}
			return ListOf(items...), nil
		}

	case compiler.TokenSlash:
		if bothNumeric(l, r) {
			rf := asFloat(r)
			if rf == 0 {
				return Float(math.Inf(1)), nil
			}
			return Float(asFloat(l) / rf), nil
		}

	case compiler.TokenEq:
		return Bool(Equal(l, r)), nil
	case compiler.TokenNe:
		return Bool(!Equal(l, r)), nil

	case compiler.TokenLt, compiler.TokenGt, compiler.TokenLe, compiler.TokenGe:
		return compare(op, l, r)

	case compiler.TokenIn:
		return contains(l, r)
	}
	return None(), fmt.Errorf("unsupported operands for %s: %s and %s", op, TypeName(l), TypeName(r))
}

func compare(op compiler.TokenType, l, r Value) (Value, error) {
	var cmp int
	switch {
	case bothNumeric(l, r):
		lf, rf := asFloat(l), asFloat(r)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	case l.Kind == KindStr && r.Kind == KindStr:
		cmp = strings.Compare(l.Str, r.Str)
	default:
		return None(), fmt.Errorf("cannot order %s and %s", TypeName(l), TypeName(r))
	}

	switch op {
	case compiler.TokenLt:
		return Bool(cmp < 0), nil
	case compiler.TokenGt:
		return Bool(cmp > 0), nil
	case compiler.TokenLe:
		return Bool(cmp <= 0), nil
	case compiler.TokenGe:
		return Bool(cmp >= 0), nil
	}
	return None(), fmt.Errorf("bad comparison operator %s", op)
}

func contains(needle, haystack Value) (Value, error) {
	switch haystack.Kind {
	case KindStr:
		if needle.Kind != KindStr {
			return None(), fmt.Errorf("'in <str>' requires a str, got %s", TypeName(needle))
		}
		return Bool(strings.Contains(haystack.Str, needle.Str)), nil
	case KindList:
		for _, it := range haystack.List.Items {
			if Equal(it, needle) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case KindDict:
		_, ok := haystack.Dict.Get(needle)
		return Bool(ok), nil
	}
	return None(), fmt.Errorf("'in' not supported on %s", TypeName(haystack))
}

// indexValue reads x[idx]. Negative indexes count from the end.
func indexValue(x, idx Value) (Value, error) {
	switch x.Kind {
	case KindList:
		i, err := normIndex(idx, len(x.List.Items))
		if err != nil {
			return None(), err
		}
		return x.List.Items[i], nil
	case KindStr:
		runes := []rune(x.Str)
		i, err := normIndex(idx, len(runes))
		if err != nil {
			return None(), err
		}
		return Str(string(runes[i])), nil
	case KindDict:
		v, ok := x.Dict.Get(idx)
		if !ok {
			return None(), fmt.Errorf("key not found: %s", idx.Repr())
		}
		return v, nil
	}
	return None(), fmt.Errorf("%s is not indexable", TypeName(x))
}

func normIndex(idx Value, length int) (int, error) {
	if idx.Kind != KindInt {
		return 0, fmt.Errorf("index must be an int, got %s", TypeName(idx))
	}
	i := int(idx.Int)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, fmt.Errorf("index %d out of range (len %d)", idx.Int, length)
	}
	return i, nil
}

// evalCall dispatches call expressions: method calls through evalMethod,
// everything else resolves the callee and invokes it.
func (in *Interp) evalCall(n *compiler.Call, src string, lineNum int) (Value, error) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := in.evalExpr(a, src, lineNum)
		if err != nil {
			return None(), err
		}
		args[i] = v
	}

	if attr, ok := n.Fn.(*compiler.Attr); ok {
		return in.evalMethod(attr, args, src, lineNum)
	}

	fn, err := in.evalExpr(n.Fn, src, lineNum)
	if err != nil {
		return None(), err
	}
	return in.callValue(fn, args, lineNum)
}

func (in *Interp) callValue(fn Value, args []Value, lineNum int) (Value, error) {
	switch fn.Kind {
	case KindBuiltin:
		v, err := fn.Builtin.Call(in, args)
		if err != nil {
			return None(), in.errf(lineNum, "%s: %v", fn.Builtin.Name, err)
		}
		return v, nil
	case KindFunc:
		return in.callFunc(fn.Fn, args)
	}
	return None(), in.errf(lineNum, "%s is not callable", TypeName(fn))
}

// evalMethod resolves recv.name(args). Dispatch order: native methods on
// the receiver's kind, then struct instance methods (self prepended), then
// static methods looked up on a struct definition, then enum variant
// construction.
func (in *Interp) evalMethod(attr *compiler.Attr, args []Value, src string, lineNum int) (Value, error) {
	recv, err := in.evalExpr(attr.X, src, lineNum)
	if err != nil {
		return None(), err
	}
	name := attr.Name

	if m := nativeMethod(recv, name); m != nil {
		v, err := m(in, recv, args)
		if err != nil {
			return None(), in.errf(lineNum, "%s: %v", name, err)
		}
		return v, nil
	}

	switch recv.Kind {
	case KindStruct:
		if def, ok := in.structs[recv.Struct.StructName]; ok {
			if fn, ok := def.Methods[name]; ok {
				return in.callFunc(fn, append([]Value{recv}, args...))
			}
		}
	case KindStructDef:
		if fn, ok := recv.Def.Methods[name]; ok {
			return in.callFunc(fn, args)
		}
	case KindEnumDef:
		if recv.Enum.HasVariant(name) {
			return VariantVal(&EnumVariant{Enum: recv.Enum.Name, Name: name, Payload: args}), nil
		}
	}

	// Bound function stored in a field.
	if v, ok := attrOn(recv, name); ok && (v.Kind == KindFunc || v.Kind == KindBuiltin) {
		return in.callValue(v, args, lineNum)
	}

	return None(), in.errf(lineNum, "%s has no method %q", TypeName(recv), name)
}

// callFunc invokes a user-defined function: the flat environment is
// snapshotted, the closure and parameters overlaid, the body executed, and
// the snapshot restored.
func (in *Interp) callFunc(fn *Func, args []Value) (Value, error) {
	saved := in.env.Snapshot()
	savedFile := in.curFile

	in.env.Overlay(fn.Closure)
	for i, p := range fn.Params {
		if i < len(args) {
			in.env.Set(p.Name, args[i])
		}
	}
	in.curFile = fn.File

	c, err := in.execBlock(fn.Body, 0, len(fn.Body))

	in.env.Restore(saved)
	in.curFile = savedFile

	if err != nil {
		return None(), err
	}
	if c.sig == sigReturn {
		return c.val, nil
	}
	return None(), nil
}

// interpolate expands {expr} segments of an f-string. Doubled braces are
// literals.
func (in *Interp) interpolate(s string, lineNum int) (Value, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			if depth != 0 {
				return None(), in.errf(lineNum, "unbalanced braces in f-string: %q", s)
			}
			v, err := in.evalSource(s[i+1:j-1], lineNum)
			if err != nil {
				return None(), err
			}
			sb.WriteString(v.String())
			i = j - 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				sb.WriteByte('}')
				i++
				continue
			}
			sb.WriteByte('}')
		default:
			sb.WriteByte(c)
		}
	}
	return Str(sb.String()), nil
}

// assign writes v to a target: a bare name, an attribute path, or an index
// expression.
func (in *Interp) assign(target string, v Value, lineNum int) error {
	if !strings.ContainsAny(target, ".[") {
		in.env.Set(target, v)
		return nil
	}

	expr, err := compiler.ParseExpression(target)
	if err != nil {
		return in.errf(lineNum, "bad assignment target %q: %v", target, err)
	}

	switch n := expr.(type) {
	case *compiler.Ident:
		in.env.Set(n.Name, v)
		return nil

	case *compiler.Attr:
		obj, err := in.evalExpr(n.X, target, lineNum)
		if err != nil {
			return err
		}
		switch obj.Kind {
		case KindStruct:
			obj.Struct.SetField(n.Name, v)
			return nil
		case KindDict:
			return obj.Dict.Set(Str(n.Name), v)
		}
		return in.errf(lineNum, "cannot set attribute %q on %s", n.Name, TypeName(obj))

	case *compiler.Index:
		obj, err := in.evalExpr(n.X, target, lineNum)
		if err != nil {
			return err
		}
		idx, err := in.evalExpr(n.Idx, target, lineNum)
		if err != nil {
			return err
		}
		switch obj.Kind {
		case KindList:
			i, err := normIndex(idx, len(obj.List.Items))
			if err != nil {
				return in.errf(lineNum, "%v", err)
			}
			obj.List.Items[i] = v
			return nil
		case KindDict:
			if err := obj.Dict.Set(idx, v); err != nil {
				return in.errf(lineNum, "%v", err)
			}
			return nil
		}
		return in.errf(lineNum, "cannot index-assign into %s", TypeName(obj))
	}
	return in.errf(lineNum, "unsupported assignment target: %s", target)
}
