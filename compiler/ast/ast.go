package ast

type (
	Node interface{}

	Base struct {
		Pos int
		End int
	}

	Program struct {
		Base `tlog:",embed"`

		Funcs []*Func
	}

	Purity int

	Func struct {
		Base `tlog:",embed"`

		Name   string
		Purity Purity
		Params []Param
		Return Type
		Body   *Block
	}

	Param struct {
		Name string
		Type Type
	}

	Block struct {
		Base `tlog:",embed"`

		Stmts []Stmt
	}

	// Type is one of Void, Integer, String, Untrusted, Array or Custom.
	Type interface {
		typeNode()
	}

	Void      struct{}
	Integer   struct{}
	String    struct{}
	Untrusted struct{}

	Array struct {
		Elem Type
	}

	// Custom is a type name the compiler does not resolve.
	Custom struct {
		Name string
	}

	Expr interface {
		exprNode()
		Span() Base
	}

	Stmt interface {
		stmtNode()
		Span() Base
	}

	Op int

	Ident struct {
		Base `tlog:",embed"`

		Name string
	}

	Int struct {
		Base `tlog:",embed"`

		Value int64
	}

	Str struct {
		Base `tlog:",embed"`

		Value string
	}

	Bool struct {
		Base `tlog:",embed"`

		Value bool
	}

	Binary struct {
		Base `tlog:",embed"`

		Left  Expr
		Op    Op
		Right Expr
	}

	Call struct {
		Base `tlog:",embed"`

		Name string // plain or dotted
		Args []Expr
	}

	Spawn struct {
		Base `tlog:",embed"`

		X Expr
	}

	Await struct {
		Base `tlog:",embed"`

		X Expr
	}

	// Infra is a call to an external service bounded by Timeout milliseconds.
	Infra struct {
		Base `tlog:",embed"`

		Service string
		Method  string
		Args    []Expr
		Timeout int64
	}

	JSONField struct {
		Base `tlog:",embed"`

		Source Expr
		Key    string
	}

	ArrayLit struct {
		Base `tlog:",embed"`

		Elems []Expr
	}

	Index struct {
		Base `tlog:",embed"`

		Array Expr
		Index Expr
	}

	Let struct {
		Base `tlog:",embed"`

		Name  string
		Value Expr
	}

	Assign struct {
		Base `tlog:",embed"`

		Name  string
		Value Expr
	}

	If struct {
		Base `tlog:",embed"`

		Cond Expr
		Then *Block
		Else *Block // nil if absent
	}

	While struct {
		Base `tlog:",embed"`

		Cond Expr
		Body *Block
	}

	For struct {
		Base `tlog:",embed"`

		Var   string
		Start Expr
		End   Expr
		Step  Expr // nil means 1
		Body  *Block
	}

	ScopeBlock struct {
		Base `tlog:",embed"`

		Name string
		Body *Block
	}

	// Validate always has an empty OnFail: the surface syntax has no failure branch.
	Validate struct {
		Base `tlog:",embed"`

		Target  string
		Schema  string
		OnFail  *Block
		Success *Block
	}

	ExprStmt struct {
		Base `tlog:",embed"`

		X Expr
	}

	Return struct {
		Base `tlog:",embed"`

		Value Expr // nil for bare return
	}
)

const (
	Nondeterministic Purity = iota
	Deterministic
)

const (
	Add Op = iota
	Sub
	Mul
	Div
	Eq
	Neq
	Gt
	Lt
	Gte
	Lte
)

// DefaultSchema is the schema name every parsed validate block carries.
const DefaultSchema = "Schema"

var opText = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	Eq:  "==",
	Neq: "!=",
	Gt:  ">",
	Lt:  "<",
	Gte: ">=",
	Lte: "<=",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opText) {
		return "?"
	}

	return opText[op]
}

// Comparison reports whether op yields a boolean.
func (op Op) Comparison() bool {
	return op >= Eq
}

func (p Purity) String() string {
	if p == Deterministic {
		return "deterministic"
	}

	return "nondeterministic"
}

func (b Base) Span() Base { return b }

func (Void) typeNode()      {}
func (Integer) typeNode()   {}
func (String) typeNode()    {}
func (Untrusted) typeNode() {}
func (Array) typeNode()     {}
func (Custom) typeNode()    {}

func (*Ident) exprNode()     {}
func (*Int) exprNode()       {}
func (*Str) exprNode()       {}
func (*Bool) exprNode()      {}
func (*Binary) exprNode()    {}
func (*Call) exprNode()      {}
func (*Spawn) exprNode()     {}
func (*Await) exprNode()     {}
func (*Infra) exprNode()     {}
func (*JSONField) exprNode() {}
func (*ArrayLit) exprNode()  {}
func (*Index) exprNode()     {}

func (*Let) stmtNode()        {}
func (*Assign) stmtNode()     {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*ScopeBlock) stmtNode() {}
func (*Validate) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}
func (*Return) stmtNode()     {}

// TypeString renders t the way it is written in source.
func TypeString(t Type) string {
	switch t := t.(type) {
	case nil, Void:
		return "Void"
	case Integer:
		return "i64"
	case String:
		return "String"
	case Untrusted:
		return "Untrusted"
	case Array:
		return "Array<" + TypeString(t.Elem) + ">"
	case Custom:
		return t.Name
	default:
		return "?"
	}
}

// Table maps function names to declarations. Later duplicates win.
func (p *Program) Table() map[string]*Func {
	m := make(map[string]*Func, len(p.Funcs))

	for _, f := range p.Funcs {
		m[f.Name] = f
	}

	return m
}
