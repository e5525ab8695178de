// Package hir defines the typed intermediate representation between
// lowering and code generation. The tree is built once per lowering
// pass and never mutated afterwards; analysis results (types, scopes,
// ownership) live in side tables keyed by node ID.
package hir

import (
	"pyrite/internal/ast"
	"pyrite/internal/types"
)

type Node interface {
	NodeID() int
	NodePos() ast.Position
}

// Module is the unit of translation: one source file after lowering.
type Module struct {
	Name      string
	Functions []*Function
}

type Function struct {
	ID     int
	Pos    ast.Position
	Name   string
	Params []*Param
	// ReturnHint is the declared return annotation, nil when the
	// function is unannotated and inference must derive it.
	ReturnHint types.Type
	Body       []Stmt
	// Generator marks functions containing yield; codegen lowers them
	// to a state struct implementing Iterator.
	Generator bool
}

type Param struct {
	ID   int
	Pos  ast.Position
	Name string
	// Hint is the annotated type, nil when unannotated.
	Hint types.Type
}

// PassMode is the ownership classification of a parameter.
type PassMode int

const (
	ModeOwned PassMode = iota
	ModeRef
	ModeMutRef
)

func (m PassMode) String() string {
	switch m {
	case ModeRef:
		return "ref"
	case ModeMutRef:
		return "mut ref"
	default:
		return "owned"
	}
}

// SigParam is one parameter of a derived signature.
type SigParam struct {
	Name string
	Type types.Type
	Mode PassMode
	// Mut marks an owned parameter that is reassigned in the body.
	Mut bool
}

// Signature is the fully derived function signature: ownership mode per
// parameter, inferred return type, and the error contract when the
// function is fallible.
type Signature struct {
	Name     string
	Params   []SigParam
	Return   types.Type
	Fallible bool
	// Raised lists the distinct exception names that can propagate out
	// of the function, in first-raise order.
	Raised []string
}

// Statements

type Stmt interface {
	Node
	isStmt()
}

// AssignStmt binds a name. First assignment declares the binding;
// later ones mark it mutable.
type AssignStmt struct {
	ID     int
	Pos    ast.Position
	Name   string
	Value  Expr
	// Aug holds the operator for augmented assignment ("+" for x += v),
	// empty for plain assignment.
	Aug string
}

// IndexAssignStmt is subscript assignment; codegen dispatches on the
// receiver's static type (dict insert vs list index store).
type IndexAssignStmt struct {
	ID    int
	Pos   ast.Position
	Recv  Expr
	Index Expr
	Value Expr
	Aug   string
}

// TupleAssignStmt destructures a fixed-arity value into names.
type TupleAssignStmt struct {
	ID    int
	Pos   ast.Position
	Names []string
	Value Expr
}

type ReturnStmt struct {
	ID    int
	Pos   ast.Position
	Value Expr // nil for bare return
}

type IfStmt struct {
	ID     int
	Pos    ast.Position
	Cond   Expr
	Body   []Stmt
	Orelse []Stmt
}

type WhileStmt struct {
	ID   int
	Pos  ast.Position
	Cond Expr
	Body []Stmt
}

type ForStmt struct {
	ID   int
	Pos  ast.Position
	// Target is the loop variable; KeyTarget is set as well when
	// iterating dict items pairwise.
	Target    string
	KeyTarget string
	Iter      Expr
	Body      []Stmt
}

type TryStmt struct {
	ID       int
	Pos      ast.Position
	Body     []Stmt
	Handlers []*Handler
	Orelse   []Stmt
	Final    []Stmt
}

// Handler with an empty ExcType catches everything.
type Handler struct {
	ID      int
	Pos     ast.Position
	ExcType string
	BindAs  string
	Body    []Stmt
}

type RaiseStmt struct {
	ID      int
	Pos     ast.Position
	ExcType string
	Msg     Expr // nil when the raise carries no argument
}

type ExprStmt struct {
	ID    int
	Pos   ast.Position
	Value Expr
}

type YieldStmt struct {
	ID    int
	Pos   ast.Position
	Value Expr
}

type PassStmt struct {
	ID  int
	Pos ast.Position
}

type BreakStmt struct {
	ID  int
	Pos ast.Position
}

type ContinueStmt struct {
	ID  int
	Pos ast.Position
}

// Expressions

type Expr interface {
	Node
	isExpr()
}

type LitKind int

const (
	LitNone LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitStr
)

type LitExpr struct {
	ID       int
	Pos      ast.Position
	Kind     LitKind
	IntVal   int64
	FloatVal float64
	StrVal   string
	BoolVal  bool
}

type VarExpr struct {
	ID   int
	Pos  ast.Position
	Name string
}

type BinaryExpr struct {
	ID    int
	Pos   ast.Position
	Op    string // "+", "-", "*", "/", "//", "%", "**", comparisons, "&&", "||", "in", "not in"
	Left  Expr
	Right Expr
}

type UnaryExpr struct {
	ID      int
	Pos     ast.Position
	Op      string // "-", "!"
	Operand Expr
}

// CallExpr is a free-function or builtin call.
type CallExpr struct {
	ID   int
	Pos  ast.Position
	Func string
	Args []Expr
}

// MethodCallExpr is a call through a receiver.
type MethodCallExpr struct {
	ID     int
	Pos    ast.Position
	Recv   Expr
	Method string
	Args   []Expr
}

type IndexExpr struct {
	ID    int
	Pos   ast.Position
	Recv  Expr
	Index Expr
}

type SliceExpr struct {
	ID    int
	Pos   ast.Position
	Recv  Expr
	Lower Expr // nil bounds are open
	Upper Expr
}

type AttrExpr struct {
	ID   int
	Pos  ast.Position
	Recv Expr
	Attr string
}

type ListExpr struct {
	ID    int
	Pos   ast.Position
	Elems []Expr
}

type TupleExpr struct {
	ID    int
	Pos   ast.Position
	Elems []Expr
}

type DictExpr struct {
	ID     int
	Pos    ast.Position
	Keys   []Expr
	Values []Expr
}

type SetExpr struct {
	ID    int
	Pos   ast.Position
	Elems []Expr
}
