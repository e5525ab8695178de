// Package ast defines the source-language AST handed to lowering by the
// upstream parser. The tree is the external boundary of the pipeline:
// pyrite never parses Python source itself, it decodes the parser's
// JSON dump into these nodes.
package ast

type Position struct {
	Filename string
	Line     int
	Column   int
}

type Node interface {
	NodePos() Position
	NodeType() NodeType
}

type NodeType int

const (
	ILLEGAL NodeType = iota

	// Top level
	MODULE
	FUNCTION_DEF
	PARAM

	// Statements
	ASSIGN_STMT
	AUG_ASSIGN_STMT
	RETURN_STMT
	IF_STMT
	WHILE_STMT
	FOR_STMT
	TRY_STMT
	EXCEPT_HANDLER
	RAISE_STMT
	EXPR_STMT
	PASS_STMT
	BREAK_STMT
	CONTINUE_STMT

	// Expressions
	NAME_EXPR
	CONSTANT_EXPR
	BINOP_EXPR
	UNARYOP_EXPR
	BOOLOP_EXPR
	COMPARE_EXPR
	CALL_EXPR
	ATTRIBUTE_EXPR
	SUBSCRIPT_EXPR
	SLICE_EXPR
	LIST_EXPR
	TUPLE_EXPR
	DICT_EXPR
	SET_EXPR
	LIST_COMP_EXPR
	YIELD_EXPR
)

// Module is one source file: the unit of translation.
type Module struct {
	Pos       Position
	Name      string
	Functions []*FunctionDef

	// Directives carries the raw `# @pyrite:` comment lines found in the
	// source, position-tagged, for the annotation parser.
	Directives []Directive
}

type Directive struct {
	Pos  Position
	Text string
}

type FunctionDef struct {
	Pos     Position
	Name    string
	Params  []*Param
	Returns *TypeAnnotation // nil when unannotated
	Body    []Stmt
}

type Param struct {
	Pos        Position
	Name       string
	Annotation *TypeAnnotation // nil when unannotated
}

// TypeAnnotation mirrors the textual annotation shape: a head name plus
// optional bracketed arguments, e.g. dict[str, list[int]].
type TypeAnnotation struct {
	Pos  Position
	Name string
	Args []*TypeAnnotation
}

type Stmt interface {
	Node
	isStmt()
}

type Expr interface {
	Node
	isExpr()
}

// Statements

type AssignStmt struct {
	Pos    Position
	Target Expr // Name, Subscript or Attribute
	Value  Expr
}

type AugAssignStmt struct {
	Pos    Position
	Target Expr
	Op     string // "+", "-", ...
	Value  Expr
}

type ReturnStmt struct {
	Pos   Position
	Value Expr // nil for bare return
}

type IfStmt struct {
	Pos    Position
	Cond   Expr
	Body   []Stmt
	Orelse []Stmt // else or elif chain (single IfStmt)
}

type WhileStmt struct {
	Pos  Position
	Cond Expr
	Body []Stmt
}

type ForStmt struct {
	Pos    Position
	Target Expr
	Iter   Expr
	Body   []Stmt
}

type TryStmt struct {
	Pos      Position
	Body     []Stmt
	Handlers []*ExceptHandler
	Orelse   []Stmt
	Final    []Stmt
}

// ExceptHandler with an empty ExcType is a bare `except:`.
type ExceptHandler struct {
	Pos     Position
	ExcType string
	BindAs  string // `except ValueError as e` binding, "" when absent
	Body    []Stmt
}

type RaiseStmt struct {
	Pos     Position
	ExcType string
	Arg     Expr // message argument, nil when absent
}

type ExprStmt struct {
	Pos   Position
	Value Expr
}

type PassStmt struct {
	Pos Position
}

type BreakStmt struct {
	Pos Position
}

type ContinueStmt struct {
	Pos Position
}

// Expressions

type NameExpr struct {
	Pos  Position
	Name string
}

// ConstantExpr carries the literal kind in-band so decoding does not
// lose int/float distinctions.
type ConstantExpr struct {
	Pos      Position
	Kind     ConstKind
	IntVal   int64
	FloatVal float64
	StrVal   string
	BoolVal  bool
}

type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstStr
)

type BinOpExpr struct {
	Pos   Position
	Op    string // "+", "-", "*", "/", "//", "%", "**"
	Left  Expr
	Right Expr
}

type UnaryOpExpr struct {
	Pos     Position
	Op      string // "-", "not", "~"
	Operand Expr
}

type BoolOpExpr struct {
	Pos    Position
	Op     string // "and", "or"
	Values []Expr
}

// CompareExpr keeps the chained form (a < b <= c) intact; lowering
// desugars it into pairwise conjunctions.
type CompareExpr struct {
	Pos         Position
	Left        Expr
	Ops         []string // "<", "<=", ">", ">=", "==", "!=", "in", "not in"
	Comparators []Expr
}

type CallExpr struct {
	Pos  Position
	Func Expr
	Args []Expr
}

type AttributeExpr struct {
	Pos   Position
	Value Expr
	Attr  string
}

type SubscriptExpr struct {
	Pos   Position
	Value Expr
	Index Expr // SliceExpr for slicing, anything else for indexing
}

type SliceExpr struct {
	Pos   Position
	Lower Expr // nil for open bound
	Upper Expr
	Step  Expr
}

type ListExpr struct {
	Pos   Position
	Elems []Expr
}

type TupleExpr struct {
	Pos   Position
	Elems []Expr
}

type DictExpr struct {
	Pos    Position
	Keys   []Expr
	Values []Expr
}

type SetExpr struct {
	Pos   Position
	Elems []Expr
}

// ListCompExpr covers the single-generator comprehension form that
// lowering desugars into a loop with an accumulator.
type ListCompExpr struct {
	Pos    Position
	Elem   Expr
	Target Expr
	Iter   Expr
	Conds  []Expr
}

type YieldExpr struct {
	Pos   Position
	Value Expr // nil for bare yield
}
