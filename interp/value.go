package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/calamity10110/gul/source"
)

// Kind discriminates the runtime value union.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindStr
	KindBool
	KindList
	KindDict
	KindStruct
	KindStructDef
	KindEnumDef
	KindEnumVariant
	KindFunc
	KindBuiltin
)

var kindNames = map[Kind]string{
	KindNone:        "None",
	KindInt:         "int",
	KindFloat:       "float",
	KindStr:         "str",
	KindBool:        "bool",
	KindList:        "list",
	KindDict:        "dict",
	KindStruct:      "struct",
	KindStructDef:   "struct def",
	KindEnumDef:     "enum def",
	KindEnumVariant: "enum variant",
	KindFunc:        "fn",
	KindBuiltin:     "builtin",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a tagged union over every GUL runtime type. Exactly the fields
// selected by Kind are meaningful; compound kinds carry pointers, so copies
// of a Value alias the same underlying object.
type Value struct {
	Kind Kind

	Int   int64
	Float float64
	Str   string
	Bool  bool

	List    *List
	Dict    *Dict
	Struct  *Instance
	Def     *StructDef
	Enum    *EnumDef
	Variant *EnumVariant
	Fn      *Func
	Builtin *Builtin
}

// List is a mutable ordered collection.
type List struct {
	Items []Value
}

// dictKey is the comparable projection of a Value usable as a dict key.
type dictKey struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

func keyOf(v Value) (dictKey, error) {
	switch v.Kind {
	case KindNone:
		return dictKey{kind: KindNone}, nil
	case KindInt:
		return dictKey{kind: KindInt, i: v.Int}, nil
	case KindFloat:
		return dictKey{kind: KindFloat, f: v.Float}, nil
	case KindStr:
		return dictKey{kind: KindStr, s: v.Str}, nil
	case KindBool:
		return dictKey{kind: KindBool, b: v.Bool}, nil
	}
	return dictKey{}, fmt.Errorf("unhashable key type: %s", v.Kind)
}

// Dict is a mutable mapping that preserves insertion order.
type Dict struct {
	keys  []Value
	vals  []Value
	index map[dictKey]int
}

func NewDict() *Dict {
	return &Dict{index: make(map[dictKey]int)}
}

func (d *Dict) Len() int { return len(d.keys) }

func (d *Dict) Get(k Value) (Value, bool) {
	dk, err := keyOf(k)
	if err != nil {
		return None(), false
	}
	if i, ok := d.index[dk]; ok {
		return d.vals[i], true
	}
	return None(), false
}

func (d *Dict) Set(k, v Value) error {
	dk, err := keyOf(k)
	if err != nil {
		return err
	}
	if i, ok := d.index[dk]; ok {
		d.vals[i] = v
		return nil
	}
	d.index[dk] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
	return nil
}

func (d *Dict) Delete(k Value) bool {
	dk, err := keyOf(k)
	if err != nil {
		return false
	}
	i, ok := d.index[dk]
	if !ok {
		return false
	}
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.vals = append(d.vals[:i], d.vals[i+1:]...)
	delete(d.index, dk)
	for j := i; j < len(d.keys); j++ {
		jk, _ := keyOf(d.keys[j])
		d.index[jk] = j
	}
	return true
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Value { return d.keys }

// Values returns the values in insertion order.
func (d *Dict) Values() []Value { return d.vals }

// StructDef is a struct declaration: field order plus the methods attached
// by the struct body or later impl blocks.
type StructDef struct {
	Name    string
	Fields  []string
	Methods map[string]*Func
}

// Instance is a constructed struct value. Construction does not require a
// registered definition, so StructName is carried separately from Def.
type Instance struct {
	StructName string
	Fields     *Dict // string keys, insertion-ordered
}

func NewInstance(name string) *Instance {
	return &Instance{StructName: name, Fields: NewDict()}
}

func (s *Instance) Field(name string) (Value, bool) {
	return s.Fields.Get(Str(name))
}

func (s *Instance) SetField(name string, v Value) {
	_ = s.Fields.Set(Str(name), v)
}

// EnumDef is an enum declaration. Variants keep their declared order.
type EnumDef struct {
	Name     string
	Variants []string
}

func (e *EnumDef) HasVariant(name string) bool {
	for _, v := range e.Variants {
		if v == name {
			return true
		}
	}
	return false
}

// EnumVariant is a constructed enum value, optionally with a payload.
type EnumVariant struct {
	Enum    string
	Name    string
	Payload []Value
}

// Param is a declared function parameter with ownership qualifiers already
// stripped.
type Param struct {
	Name string
	Type string // annotation text, empty when omitted
}

// Func is a user-defined function: its body is kept as source lines and
// re-executed on every call against a snapshot of the defining environment.
type Func struct {
	Name    string
	Params  []Param
	Body    []source.Line
	File    string
	Closure map[string]Value
}

// Builtin is a native function.
type Builtin struct {
	Name string
	Call func(in *Interp, args []Value) (Value, error)
}

// Constructors

func None() Value           { return Value{Kind: KindNone} }
func Int(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value    { return Value{Kind: KindStr, Str: s} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }

func ListOf(items ...Value) Value {
	return Value{Kind: KindList, List: &List{Items: items}}
}

func DictVal(d *Dict) Value       { return Value{Kind: KindDict, Dict: d} }
func StructVal(s *Instance) Value { return Value{Kind: KindStruct, Struct: s} }
func DefVal(d *StructDef) Value   { return Value{Kind: KindStructDef, Def: d} }
func EnumVal(e *EnumDef) Value    { return Value{Kind: KindEnumDef, Enum: e} }
func FuncVal(f *Func) Value       { return Value{Kind: KindFunc, Fn: f} }
func BuiltinVal(b *Builtin) Value { return Value{Kind: KindBuiltin, Builtin: b} }
func VariantVal(v *EnumVariant) Value {
	return Value{Kind: KindEnumVariant, Variant: v}
}

// Truthy reports the boolean interpretation of a value: empty collections,
// empty strings, zero numbers and None are false, everything else true.
func Truthy(v Value) bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindStr:
		return v.Str != ""
	case KindBool:
		return v.Bool
	case KindList:
		return len(v.List.Items) > 0
	case KindDict:
		return v.Dict.Len() > 0
	}
	return true
}

// Equal reports value equality. Numbers compare across int/float; lists and
// dicts compare element-wise; struct instances compare by identity.
func Equal(a, b Value) bool {
	if (a.Kind == KindInt || a.Kind == KindFloat) && (b.Kind == KindInt || b.Kind == KindFloat) {
		return asFloat(a) == asFloat(b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNone:
		return true
	case KindStr:
		return a.Str == b.Str
	case KindBool:
		return a.Bool == b.Bool
	case KindList:
		if len(a.List.Items) != len(b.List.Items) {
			return false
		}
		for i := range a.List.Items {
			if !Equal(a.List.Items[i], b.List.Items[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if a.Dict.Len() != b.Dict.Len() {
			return false
		}
		for i, k := range a.Dict.keys {
			bv, ok := b.Dict.Get(k)
			if !ok || !Equal(a.Dict.vals[i], bv) {
				return false
			}
		}
		return true
	case KindStruct:
		return a.Struct == b.Struct
	case KindStructDef:
		return a.Def == b.Def
	case KindEnumDef:
		return a.Enum == b.Enum
	case KindEnumVariant:
		if a.Variant.Enum != b.Variant.Enum || a.Variant.Name != b.Variant.Name {
			return false
		}
		if len(a.Variant.Payload) != len(b.Variant.Payload) {
			return false
		}
		for i := range a.Variant.Payload {
			if !Equal(a.Variant.Payload[i], b.Variant.Payload[i]) {
				return false
			}
		}
		return true
	case KindFunc:
		return a.Fn == b.Fn
	case KindBuiltin:
		return a.Builtin == b.Builtin
	}
	return false
}

func asFloat(v Value) float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// formatFloat renders a float the way the language prints one: integral
// floats keep a trailing ".0", infinities print as inf/-inf.
func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// String renders a value for display. Strings are bare; use Repr for the
// quoted form used inside collections.
func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "None"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindStr:
		return v.Str
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindList:
		parts := make([]string, len(v.List.Items))
		for i, it := range v.List.Items {
			parts[i] = it.Repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindDict:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range v.Dict.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k.Repr())
			sb.WriteString(": ")
			sb.WriteString(v.Dict.vals[i].Repr())
		}
		sb.WriteByte('}')
		return sb.String()
	case KindStruct:
		var sb strings.Builder
		sb.WriteString(v.Struct.StructName)
		sb.WriteByte('{')
		for i, k := range v.Struct.Fields.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k.Str)
			sb.WriteString(": ")
			sb.WriteString(v.Struct.Fields.vals[i].Repr())
		}
		sb.WriteByte('}')
		return sb.String()
	case KindStructDef:
		return "<struct " + v.Def.Name + ">"
	case KindEnumDef:
		return "<enum " + v.Enum.Name + ">"
	case KindEnumVariant:
		s := v.Variant.Enum + "." + v.Variant.Name
		if len(v.Variant.Payload) > 0 {
			parts := make([]string, len(v.Variant.Payload))
			for i, p := range v.Variant.Payload {
				parts[i] = p.Repr()
			}
			s += "(" + strings.Join(parts, ", ") + ")"
		}
		return s
	case KindFunc:
		return "<fn " + v.Fn.Name + ">"
	case KindBuiltin:
		return "<builtin " + v.Builtin.Name + ">"
	}
	return "<unknown>"
}

// Repr is like String but quotes strings, for display inside collections.
func (v Value) Repr() string {
	if v.Kind == KindStr {
		return "'" + v.Str + "'"
	}
	return v.String()
}

// TypeName reports the user-facing type of a value.
func TypeName(v Value) string {
	if v.Kind == KindStruct {
		return v.Struct.StructName
	}
	return v.Kind.String()
}
