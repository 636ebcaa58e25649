package interp

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
)

func registerBuiltins(in *Interp) {
	for _, b := range []struct {
		name string
		fn   func(*Interp, []Value) (Value, error)
	}{
		{"print", builtinPrint},
		{"len", builtinLen},
		{"range", builtinRange},
		{"str", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "str", args) }},
		{"int", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "int", args) }},
		{"float", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "float", args) }},
		{"bool", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "bool", args) }},
		{"list", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "list", args) }},
		{"dict", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "dict", args) }},
		{"set", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "set", args) }},
		{"tuple", func(in *Interp, args []Value) (Value, error) { return convertArgs(in, "tuple", args) }},
		{"read_file", builtinReadFile},
		{"write_file", builtinWriteFile},
		{"file_exists", builtinFileExists},
	} {
		in.env.Set(b.name, BuiltinVal(&Builtin{Name: b.name, Call: b.fn}))
	}

	// sys.argv reaches scripts as a struct with a single field.
	sys := NewInstance("sys")
	argv := make([]Value, len(in.argv))
	for i, a := range in.argv {
		argv[i] = Str(a)
	}
	sys.SetField("argv", ListOf(argv...))
	in.env.Set("sys", StructVal(sys))
}

func builtinPrint(in *Interp, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(in.out, strings.Join(parts, " "))
	return None(), nil
}

func builtinLen(in *Interp, args []Value) (Value, error) {
	if len(args) != 1 {
		return None(), fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	switch v := args[0]; v.Kind {
	case KindStr:
		return Int(int64(len([]rune(v.Str)))), nil
	case KindList:
		return Int(int64(len(v.List.Items))), nil
	case KindDict:
		return Int(int64(v.Dict.Len())), nil
	}
	return None(), fmt.Errorf("%s has no length", TypeName(args[0]))
}

func builtinRange(in *Interp, args []Value) (Value, error) {
	var start, stop, step int64 = 0, 0, 1
	ints := make([]int64, len(args))
	for i, a := range args {
		if a.Kind != KindInt {
			return None(), fmt.Errorf("arguments must be ints, got %s", TypeName(a))
		}
		ints[i] = a.Int
	}
	switch len(args) {
	case 1:
		stop = ints[0]
	case 2:
		start, stop = ints[0], ints[1]
	case 3:
		start, stop, step = ints[0], ints[1], ints[2]
		if step == 0 {
			return None(), fmt.Errorf("step must not be zero")
		}
	default:
		return None(), fmt.Errorf("expected 1 to 3 arguments, got %d", len(args))
	}

	var items []Value
	if step > 0 {
		for i := start; i < stop; i += step {
			items = append(items, Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			items = append(items, Int(i))
		}
	}
	return ListOf(items...), nil
}

func convertArgs(in *Interp, name string, args []Value) (Value, error) {
	arg := None()
	if len(args) > 1 {
		return None(), fmt.Errorf("expected at most 1 argument, got %d", len(args))
	}
	if len(args) == 1 {
		arg = args[0]
	}
	return in.convert(name, arg, 0)
}

// convert implements the @type(x) constructors and their builtin aliases.
func (in *Interp) convert(name string, arg Value, lineNum int) (Value, error) {
	switch name {
	case "str":
		if arg.Kind == KindNone {
			return Str("None"), nil
		}
		return Str(arg.String()), nil

	case "int":
		switch arg.Kind {
		case KindInt:
			return arg, nil
		case KindFloat:
			return Int(int64(math.Trunc(arg.Float))), nil
		case KindBool:
			if arg.Bool {
				return Int(1), nil
			}
			return Int(0), nil
		case KindStr:
			n, err := strconv.ParseInt(strings.TrimSpace(arg.Str), 10, 64)
			if err != nil {
				return None(), in.errf(lineNum, "cannot convert %q to int", arg.Str)
			}
			return Int(n), nil
		}
		return None(), in.errf(lineNum, "cannot convert %s to int", TypeName(arg))

	case "float":
		switch arg.Kind {
		case KindFloat:
			return arg, nil
		case KindInt:
			return Float(float64(arg.Int)), nil
		case KindStr:
			f, err := strconv.ParseFloat(strings.TrimSpace(arg.Str), 64)
			if err != nil {
				return None(), in.errf(lineNum, "cannot convert %q to float", arg.Str)
			}
			return Float(f), nil
		}
		return None(), in.errf(lineNum, "cannot convert %s to float", TypeName(arg))

	case "bool":
		return Bool(Truthy(arg)), nil

	case "list", "tuple":
		if arg.Kind == KindNone {
			return ListOf(), nil
		}
		items, err := iterItems(arg)
		if err != nil {
			return None(), in.errf(lineNum, "%v", err)
		}
		return ListOf(append([]Value{}, items...)...), nil

	case "set":
		if arg.Kind == KindNone {
			return ListOf(), nil
		}
		items, err := iterItems(arg)
		if err != nil {
			return None(), in.errf(lineNum, "%v", err)
		}
		var uniq []Value
		for _, it := range items {
			dup := false
			for _, u := range uniq {
				if Equal(u, it) {
					dup = true
					break
				}
			}
			if !dup {
				uniq = append(uniq, it)
			}
		}
		return ListOf(uniq...), nil

	case "dict":
		if arg.Kind == KindNone {
			return DictVal(NewDict()), nil
		}
		if arg.Kind == KindDict {
			d := NewDict()
			for i, k := range arg.Dict.Keys() {
				if err := d.Set(k, arg.Dict.Values()[i]); err != nil {
					return None(), in.errf(lineNum, "%v", err)
				}
			}
			return DictVal(d), nil
		}
		return None(), in.errf(lineNum, "cannot convert %s to dict", TypeName(arg))
	}
	return None(), in.errf(lineNum, "unknown type constructor @%s", name)
}

// iterItems flattens an iterable into a slice: lists iterate items, strings
// iterate characters, dicts iterate keys.
func iterItems(v Value) ([]Value, error) {
	switch v.Kind {
	case KindList:
		return v.List.Items, nil
	case KindStr:
		runes := []rune(v.Str)
		items := make([]Value, len(runes))
		for i, r := range runes {
			items[i] = Str(string(r))
		}
		return items, nil
	case KindDict:
		return v.Dict.Keys(), nil
	}
	return nil, fmt.Errorf("%s is not iterable", TypeName(v))
}

func builtinReadFile(in *Interp, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KindStr {
		return None(), fmt.Errorf("expected a path string")
	}
	data, err := os.ReadFile(args[0].Str)
	if err != nil {
		// Propagates so try/catch can intercept it.
		return None(), err
	}
	return Str(string(data)), nil
}

func builtinWriteFile(in *Interp, args []Value) (Value, error) {
	if len(args) != 2 || args[0].Kind != KindStr {
		return None(), fmt.Errorf("expected a path string and content")
	}
	content := args[1].String()
	if err := os.WriteFile(args[0].Str, []byte(content), 0o644); err != nil {
		fmt.Fprintf(in.out, "Error writing file %s: %v\n", args[0].Str, err)
		return Bool(false), nil
	}
	return Bool(true), nil
}

func builtinFileExists(in *Interp, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KindStr {
		return None(), fmt.Errorf("expected a path string")
	}
	_, err := os.Stat(args[0].Str)
	return Bool(err == nil), nil
}

// ---------------------------------------------------------------------------
// Native methods on str, list and dict receivers
// ---------------------------------------------------------------------------

type methodFn func(in *Interp, recv Value, args []Value) (Value, error)

func nativeMethod(recv Value, name string) methodFn {
	switch recv.Kind {
	case KindStr:
		return strMethods[name]
	case KindList:
		if name == "add" { // alias kept for older sources
			name = "append"
		}
		return listMethods[name]
	case KindDict:
		return dictMethods[name]
	}
	return nil
}

func wantArgs(name string, args []Value, min, max int) error {
	if len(args) < min || len(args) > max {
		return fmt.Errorf("%s: expected %d to %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

func strArg(args []Value, i int) (string, error) {
	if i >= len(args) || args[i].Kind != KindStr {
		return "", fmt.Errorf("argument %d must be a str", i+1)
	}
	return args[i].Str, nil
}

var strMethods = map[string]methodFn{
	"upper": func(in *Interp, recv Value, args []Value) (Value, error) {
		return Str(strings.ToUpper(recv.Str)), nil
	},
	"lower": func(in *Interp, recv Value, args []Value) (Value, error) {
		return Str(strings.ToLower(recv.Str)), nil
	},
	"strip": func(in *Interp, recv Value, args []Value) (Value, error) {
		if len(args) == 1 && args[0].Kind == KindStr {
			return Str(strings.Trim(recv.Str, args[0].Str)), nil
		}
		return Str(strings.TrimSpace(recv.Str)), nil
	},
	"lstrip": func(in *Interp, recv Value, args []Value) (Value, error) {
		return Str(strings.TrimLeft(recv.Str, " \t\r\n")), nil
	},
	"rstrip": func(in *Interp, recv Value, args []Value) (Value, error) {
		return Str(strings.TrimRight(recv.Str, " \t\r\n")), nil
	},
	"split": func(in *Interp, recv Value, args []Value) (Value, error) {
		var parts []string
		if len(args) == 0 {
			parts = strings.Fields(recv.Str)
		} else {
			sep, err := strArg(args, 0)
			if err != nil {
				return None(), err
			}
			parts = strings.Split(recv.Str, sep)
		}
		items := make([]Value, len(parts))
		for i, p := range parts {
			items[i] = Str(p)
		}
		return ListOf(items...), nil
	},
	"join": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("join", args, 1, 1); err != nil {
			return None(), err
		}
		items, err := iterItems(args[0])
		if err != nil {
			return None(), err
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.String()
		}
		return Str(strings.Join(parts, recv.Str)), nil
	},
	"replace": func(in *Interp, recv Value, args []Value) (Value, error) {
		old, err := strArg(args, 0)
		if err != nil {
			return None(), err
		}
		new_, err := strArg(args, 1)
		if err != nil {
			return None(), err
		}
		return Str(strings.ReplaceAll(recv.Str, old, new_)), nil
	},
	"startswith": func(in *Interp, recv Value, args []Value) (Value, error) {
		prefix, err := strArg(args, 0)
		if err != nil {
			return None(), err
		}
		return Bool(strings.HasPrefix(recv.Str, prefix)), nil
	},
	"endswith": func(in *Interp, recv Value, args []Value) (Value, error) {
		suffix, err := strArg(args, 0)
		if err != nil {
			return None(), err
		}
		return Bool(strings.HasSuffix(recv.Str, suffix)), nil
	},
	"find": func(in *Interp, recv Value, args []Value) (Value, error) {
		sub, err := strArg(args, 0)
		if err != nil {
			return None(), err
		}
		return Int(int64(strings.Index(recv.Str, sub))), nil
	},
	"count": func(in *Interp, recv Value, args []Value) (Value, error) {
		sub, err := strArg(args, 0)
		if err != nil {
			return None(), err
		}
		return Int(int64(strings.Count(recv.Str, sub))), nil
	},
	"isdigit": func(in *Interp, recv Value, args []Value) (Value, error) {
		return Bool(recv.Str != "" && strings.IndexFunc(recv.Str, func(r rune) bool { return !unicode.IsDigit(r) }) < 0), nil
	},
	"isalpha": func(in *Interp, recv Value, args []Value) (Value, error) {
		return Bool(recv.Str != "" && strings.IndexFunc(recv.Str, func(r rune) bool { return !unicode.IsLetter(r) }) < 0), nil
	},
	"isalnum": func(in *Interp, recv Value, args []Value) (Value, error) {
		ok := recv.Str != "" && strings.IndexFunc(recv.Str, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) < 0
		return Bool(ok), nil
	},
	"isspace": func(in *Interp, recv Value, args []Value) (Value, error) {
		return Bool(recv.Str != "" && strings.TrimSpace(recv.Str) == ""), nil
	},
	"contains": func(in *Interp, recv Value, args []Value) (Value, error) {
		sub, err := strArg(args, 0)
		if err != nil {
			return None(), err
		}
		return Bool(strings.Contains(recv.Str, sub)), nil
	},
}

var listMethods = map[string]methodFn{
	"append": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("append", args, 1, 1); err != nil {
			return None(), err
		}
		recv.List.Items = append(recv.List.Items, args[0])
		return None(), nil
	},
	"extend": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("extend", args, 1, 1); err != nil {
			return None(), err
		}
		items, err := iterItems(args[0])
		if err != nil {
			return None(), err
		}
		recv.List.Items = append(recv.List.Items, items...)
		return None(), nil
	},
	"pop": func(in *Interp, recv Value, args []Value) (Value, error) {
		items := recv.List.Items
		if len(items) == 0 {
			return None(), fmt.Errorf("pop from empty list")
		}
		i := len(items) - 1
		if len(args) == 1 {
			n, err := normIndex(args[0], len(items))
			if err != nil {
				return None(), err
			}
			i = n
		}
		v := items[i]
		recv.List.Items = append(items[:i], items[i+1:]...)
		return v, nil
	},
	"insert": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("insert", args, 2, 2); err != nil {
			return None(), err
		}
		if args[0].Kind != KindInt {
			return None(), fmt.Errorf("index must be an int")
		}
		i := int(args[0].Int)
		items := recv.List.Items
		if i < 0 {
			i += len(items)
		}
		if i < 0 {
			i = 0
		}
		if i > len(items) {
			i = len(items)
		}
		items = append(items, None())
		copy(items[i+1:], items[i:])
		items[i] = args[1]
		recv.List.Items = items
		return None(), nil
	},
	"remove": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("remove", args, 1, 1); err != nil {
			return None(), err
		}
		for i, it := range recv.List.Items {
			if Equal(it, args[0]) {
				recv.List.Items = append(recv.List.Items[:i], recv.List.Items[i+1:]...)
				return None(), nil
			}
		}
		return None(), fmt.Errorf("value not in list: %s", args[0].Repr())
	},
	"index": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("index", args, 1, 1); err != nil {
			return None(), err
		}
		for i, it := range recv.List.Items {
			if Equal(it, args[0]) {
				return Int(int64(i)), nil
			}
		}
		return None(), fmt.Errorf("value not in list: %s", args[0].Repr())
	},
	"count": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("count", args, 1, 1); err != nil {
			return None(), err
		}
		n := int64(0)
		for _, it := range recv.List.Items {
			if Equal(it, args[0]) {
				n++
			}
		}
		return Int(n), nil
	},
	"reverse": func(in *Interp, recv Value, args []Value) (Value, error) {
		items := recv.List.Items
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		return None(), nil
	},
	"clear": func(in *Interp, recv Value, args []Value) (Value, error) {
		recv.List.Items = recv.List.Items[:0]
		return None(), nil
	},
	"contains": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("contains", args, 1, 1); err != nil {
			return None(), err
		}
		for _, it := range recv.List.Items {
			if Equal(it, args[0]) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	},
}

var dictMethods = map[string]methodFn{
	"get": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("get", args, 1, 2); err != nil {
			return None(), err
		}
		if v, ok := recv.Dict.Get(args[0]); ok {
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return None(), nil
	},
	"keys": func(in *Interp, recv Value, args []Value) (Value, error) {
		return ListOf(append([]Value{}, recv.Dict.Keys()...)...), nil
	},
	"values": func(in *Interp, recv Value, args []Value) (Value, error) {
		return ListOf(append([]Value{}, recv.Dict.Values()...)...), nil
	},
	"items": func(in *Interp, recv Value, args []Value) (Value, error) {
		pairs := make([]Value, recv.Dict.Len())
		for i, k := range recv.Dict.Keys() {
			pairs[i] = ListOf(k, recv.Dict.Values()[i])
		}
		return ListOf(pairs...), nil
	},
	"pop": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("pop", args, 1, 2); err != nil {
			return None(), err
		}
		if v, ok := recv.Dict.Get(args[0]); ok {
			recv.Dict.Delete(args[0])
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return None(), fmt.Errorf("key not found: %s", args[0].Repr())
	},
	"clear": func(in *Interp, recv Value, args []Value) (Value, error) {
		*recv.Dict = *NewDict()
		return None(), nil
	},
	"contains": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("contains", args, 1, 1); err != nil {
			return None(), err
		}
		_, ok := recv.Dict.Get(args[0])
		return Bool(ok), nil
	},
	"remove": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("remove", args, 1, 1); err != nil {
			return None(), err
		}
		return Bool(recv.Dict.Delete(args[0])), nil
	},
	"update": func(in *Interp, recv Value, args []Value) (Value, error) {
		if err := wantArgs("update", args, 1, 1); err != nil {
			return None(), err
		}
		if args[0].Kind != KindDict {
			return None(), fmt.Errorf("argument must be a dict")
		}
		for i, k := range args[0].Dict.Keys() {
			if err := recv.Dict.Set(k, args[0].Dict.Values()[i]); err != nil {
				return None(), err
			}
		}
		return None(), nil
	},
}
