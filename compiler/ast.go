package compiler

// ---------------------------------------------------------------------------
// AST: expression nodes for GUL
// ---------------------------------------------------------------------------
//
// Nodes carry byte offsets into the expression source so an evaluator can
// recover the raw text of any subexpression.

// Expr is the interface for expression nodes.
type Expr interface {
	Pos() int // byte offset of the node start
	End() int // byte offset just past the node
	expr()    // marker method
}

// Ident represents a bare identifier reference.
type Ident struct {
	PosVal, EndVal int
	Name           string
}

func (n *Ident) Pos() int { return n.PosVal }
func (n *Ident) End() int { return n.EndVal }
func (n *Ident) expr()    {}

// IntLit represents an integer literal.
type IntLit struct {
	PosVal, EndVal int
	Value          int64
}

func (n *IntLit) Pos() int { return n.PosVal }
func (n *IntLit) End() int { return n.EndVal }
func (n *IntLit) expr()    {}

// FloatLit represents a floating-point literal.
type FloatLit struct {
	PosVal, EndVal int
	Value          float64
}

func (n *FloatLit) Pos() int { return n.PosVal }
func (n *FloatLit) End() int { return n.EndVal }
func (n *FloatLit) expr()    {}

// StrLit represents a string literal (escapes already decoded).
type StrLit struct {
	PosVal, EndVal int
	Value          string
}

func (n *StrLit) Pos() int { return n.PosVal }
func (n *StrLit) End() int { return n.EndVal }
func (n *StrLit) expr()    {}

// FStrLit represents an interpolated string literal f"...". Escapes are
// decoded; {expr} segments are left for the evaluator to expand.
type FStrLit struct {
	PosVal, EndVal int
	Value          string
}

func (n *FStrLit) Pos() int { return n.PosVal }
func (n *FStrLit) End() int { return n.EndVal }
func (n *FStrLit) expr()    {}

// BoolLit represents true/false.
type BoolLit struct {
	PosVal, EndVal int
	Value          bool
}

func (n *BoolLit) Pos() int { return n.PosVal }
func (n *BoolLit) End() int { return n.EndVal }
func (n *BoolLit) expr()    {}

// NoneLit represents the None literal.
type NoneLit struct {
	PosVal, EndVal int
}

func (n *NoneLit) Pos() int { return n.PosVal }
func (n *NoneLit) End() int { return n.EndVal }
func (n *NoneLit) expr()    {}

// ListLit represents a list literal, either @list[...] or bare [...].
type ListLit struct {
	PosVal, EndVal int
	Elems          []Expr
	AtForm         bool // written with the @list sigil
}

func (n *ListLit) Pos() int { return n.PosVal }
func (n *ListLit) End() int { return n.EndVal }
func (n *ListLit) expr()    {}

// DictLit represents a dict literal, either @dict{...} or bare {...}.
type DictLit struct {
	PosVal, EndVal int
	Keys           []Expr
	Values         []Expr
	AtForm         bool
}

func (n *DictLit) Pos() int { return n.PosVal }
func (n *DictLit) End() int { return n.EndVal }
func (n *DictLit) expr()    {}

// FieldInit is one field initializer in a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLit represents struct construction: Name{field: expr, ...}.
type StructLit struct {
	PosVal, EndVal int
	Name           string
	Fields         []FieldInit
}

func (n *StructLit) Pos() int { return n.PosVal }
func (n *StructLit) End() int { return n.EndVal }
func (n *StructLit) expr()    {}

// TypeConv represents a type-constructor call like @int(expr).
type TypeConv struct {
	PosVal, EndVal int
	Name           string // int, float, str, bool, list, ...
	Arg            Expr   // nil for an empty argument list
}

func (n *TypeConv) Pos() int { return n.PosVal }
func (n *TypeConv) End() int { return n.EndVal }
func (n *TypeConv) expr()    {}

// Unary represents a prefix operation: not x, -x.
type Unary struct {
	PosVal, EndVal int
	Op             TokenType
	X              Expr
}

func (n *Unary) Pos() int { return n.PosVal }
func (n *Unary) End() int { return n.EndVal }
func (n *Unary) expr()    {}

// Binary represents a binary operation.
type Binary struct {
	PosVal, EndVal int
	Op             TokenType
	L, R           Expr
}

func (n *Binary) Pos() int { return n.PosVal }
func (n *Binary) End() int { return n.EndVal }
func (n *Binary) expr()    {}

// Call represents a call: fn(args...). The callee may be an Ident or an
// Attr (method call).
type Call struct {
	PosVal, EndVal int
	Fn             Expr
	Args           []Expr
}

func (n *Call) Pos() int { return n.PosVal }
func (n *Call) End() int { return n.EndVal }
func (n *Call) expr()    {}

// Index represents subscript access: x[i].
type Index struct {
	PosVal, EndVal int
	X              Expr
	Idx            Expr
}

func (n *Index) Pos() int { return n.PosVal }
func (n *Index) End() int { return n.EndVal }
func (n *Index) expr()    {}

// Attr represents attribute access: x.name.
type Attr struct {
	PosVal, EndVal int
	X              Expr
	Name           string
}

func (n *Attr) Pos() int { return n.PosVal }
func (n *Attr) End() int { return n.EndVal }
func (n *Attr) expr()    {}
