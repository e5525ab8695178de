package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeModule reads the upstream parser's JSON dump into a Module.
// The dump is a direct serialization of the parser's node tree: every
// node is an object with a "node" discriminator, a "pos" pair and
// node-specific fields. Any discriminator without a decode rule is a
// fatal error for the unit; guessing at unknown constructs would
// produce silently wrong output.
func DecodeModule(filename string, data []byte) (*Module, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed AST dump: %w", err)
	}
	d := &decoder{filename: filename}
	return d.module(raw)
}

type rawNode map[string]json.RawMessage

type decoder struct {
	filename string
}

func (d *decoder) errorf(pos Position, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", pos.Filename, pos.Line, pos.Column, fmt.Sprintf(format, args...))
}

func (d *decoder) kind(raw rawNode) string {
	var kind string
	if msg, ok := raw["node"]; ok {
		json.Unmarshal(msg, &kind)
	}
	return kind
}

func (d *decoder) pos(raw rawNode) Position {
	var p struct {
		Line int `json:"line"`
		Col  int `json:"col"`
	}
	if msg, ok := raw["pos"]; ok {
		json.Unmarshal(msg, &p)
	}
	return Position{Filename: d.filename, Line: p.Line, Column: p.Col}
}

func (d *decoder) str(raw rawNode, key string) string {
	var s string
	if msg, ok := raw[key]; ok {
		json.Unmarshal(msg, &s)
	}
	return s
}

func (d *decoder) node(raw rawNode, key string) (rawNode, bool) {
	msg, ok := raw[key]
	if !ok || string(msg) == "null" {
		return nil, false
	}
	var child rawNode
	if err := json.Unmarshal(msg, &child); err != nil {
		return nil, false
	}
	return child, true
}

func (d *decoder) nodes(raw rawNode, key string) []rawNode {
	msg, ok := raw[key]
	if !ok {
		return nil
	}
	var children []rawNode
	json.Unmarshal(msg, &children)
	return children
}

func (d *decoder) module(raw rawNode) (*Module, error) {
	pos := d.pos(raw)
	if kind := d.kind(raw); kind != "Module" {
		return nil, d.errorf(pos, "expected Module at top level, got %q", kind)
	}
	mod := &Module{Pos: pos, Name: d.str(raw, "name")}
	for _, fnRaw := range d.nodes(raw, "functions") {
		fn, err := d.functionDef(fnRaw)
		if err != nil {
			return nil, err
		}
		mod.Functions = append(mod.Functions, fn)
	}
	for _, dirRaw := range d.nodes(raw, "directives") {
		mod.Directives = append(mod.Directives, Directive{
			Pos:  d.pos(dirRaw),
			Text: d.str(dirRaw, "text"),
		})
	}
	return mod, nil
}

func (d *decoder) functionDef(raw rawNode) (*FunctionDef, error) {
	pos := d.pos(raw)
	if kind := d.kind(raw); kind != "FunctionDef" {
		return nil, d.errorf(pos, "expected FunctionDef, got %q", kind)
	}
	fn := &FunctionDef{Pos: pos, Name: d.str(raw, "name")}
	for _, pRaw := range d.nodes(raw, "params") {
		param := &Param{Pos: d.pos(pRaw), Name: d.str(pRaw, "name")}
		if annRaw, ok := d.node(pRaw, "annotation"); ok {
			param.Annotation = d.annotation(annRaw)
		}
		fn.Params = append(fn.Params, param)
	}
	if retRaw, ok := d.node(raw, "returns"); ok {
		fn.Returns = d.annotation(retRaw)
	}
	body, err := d.stmts(raw, "body")
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (d *decoder) annotation(raw rawNode) *TypeAnnotation {
	ann := &TypeAnnotation{Pos: d.pos(raw), Name: d.str(raw, "name")}
	for _, argRaw := range d.nodes(raw, "args") {
		ann.Args = append(ann.Args, d.annotation(argRaw))
	}
	return ann
}

func (d *decoder) stmts(raw rawNode, key string) ([]Stmt, error) {
	var out []Stmt
	for _, sRaw := range d.nodes(raw, key) {
		s, err := d.stmt(sRaw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) stmt(raw rawNode) (Stmt, error) {
	pos := d.pos(raw)
	switch kind := d.kind(raw); kind {
	case "Assign":
		target, err := d.exprField(raw, "target")
		if err != nil {
			return nil, err
		}
		value, err := d.exprField(raw, "value")
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Pos: pos, Target: target, Value: value}, nil
	case "AugAssign":
		target, err := d.exprField(raw, "target")
		if err != nil {
			return nil, err
		}
		value, err := d.exprField(raw, "value")
		if err != nil {
			return nil, err
		}
		return &AugAssignStmt{Pos: pos, Target: target, Op: d.str(raw, "op"), Value: value}, nil
	case "Return":
		var value Expr
		if vRaw, ok := d.node(raw, "value"); ok {
			v, err := d.expr(vRaw)
			if err != nil {
				return nil, err
			}
			value = v
		}
		return &ReturnStmt{Pos: pos, Value: value}, nil
	case "If":
		cond, err := d.exprField(raw, "cond")
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(raw, "body")
		if err != nil {
			return nil, err
		}
		orelse, err := d.stmts(raw, "orelse")
		if err != nil {
			return nil, err
		}
		return &IfStmt{Pos: pos, Cond: cond, Body: body, Orelse: orelse}, nil
	case "While":
		cond, err := d.exprField(raw, "cond")
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(raw, "body")
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Pos: pos, Cond: cond, Body: body}, nil
	case "For":
		target, err := d.exprField(raw, "target")
		if err != nil {
			return nil, err
		}
		iter, err := d.exprField(raw, "iter")
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(raw, "body")
		if err != nil {
			return nil, err
		}
		return &ForStmt{Pos: pos, Target: target, Iter: iter, Body: body}, nil
	case "Try":
		body, err := d.stmts(raw, "body")
		if err != nil {
			return nil, err
		}
		try := &TryStmt{Pos: pos, Body: body}
		for _, hRaw := range d.nodes(raw, "handlers") {
			hBody, err := d.stmts(hRaw, "body")
			if err != nil {
				return nil, err
			}
			try.Handlers = append(try.Handlers, &ExceptHandler{
				Pos:     d.pos(hRaw),
				ExcType: d.str(hRaw, "type"),
				BindAs:  d.str(hRaw, "name"),
				Body:    hBody,
			})
		}
		if try.Orelse, err = d.stmts(raw, "orelse"); err != nil {
			return nil, err
		}
		if try.Final, err = d.stmts(raw, "finalbody"); err != nil {
			return nil, err
		}
		return try, nil
	case "Raise":
		stmt := &RaiseStmt{Pos: pos, ExcType: d.str(raw, "type")}
		if argRaw, ok := d.node(raw, "arg"); ok {
			arg, err := d.expr(argRaw)
			if err != nil {
				return nil, err
			}
			stmt.Arg = arg
		}
		return stmt, nil
	case "Expr":
		value, err := d.exprField(raw, "value")
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: pos, Value: value}, nil
	case "Pass":
		return &PassStmt{Pos: pos}, nil
	case "Break":
		return &BreakStmt{Pos: pos}, nil
	case "Continue":
		return &ContinueStmt{Pos: pos}, nil
	default:
		return nil, d.errorf(pos, "unsupported statement kind %q", kind)
	}
}

func (d *decoder) exprField(raw rawNode, key string) (Expr, error) {
	child, ok := d.node(raw, key)
	if !ok {
		return nil, d.errorf(d.pos(raw), "missing %q field", key)
	}
	return d.expr(child)
}

func (d *decoder) exprs(raw rawNode, key string) ([]Expr, error) {
	var out []Expr
	for _, eRaw := range d.nodes(raw, key) {
		e, err := d.expr(eRaw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) expr(raw rawNode) (Expr, error) {
	pos := d.pos(raw)
	switch kind := d.kind(raw); kind {
	case "Name":
		return &NameExpr{Pos: pos, Name: d.str(raw, "id")}, nil
	case "Constant":
		return d.constant(raw, pos)
	case "BinOp":
		left, err := d.exprField(raw, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.exprField(raw, "right")
		if err != nil {
			return nil, err
		}
		return &BinOpExpr{Pos: pos, Op: d.str(raw, "op"), Left: left, Right: right}, nil
	case "UnaryOp":
		operand, err := d.exprField(raw, "operand")
		if err != nil {
			return nil, err
		}
		return &UnaryOpExpr{Pos: pos, Op: d.str(raw, "op"), Operand: operand}, nil
	case "BoolOp":
		values, err := d.exprs(raw, "values")
		if err != nil {
			return nil, err
		}
		return &BoolOpExpr{Pos: pos, Op: d.str(raw, "op"), Values: values}, nil
	case "Compare":
		left, err := d.exprField(raw, "left")
		if err != nil {
			return nil, err
		}
		comparators, err := d.exprs(raw, "comparators")
		if err != nil {
			return nil, err
		}
		var ops []string
		if msg, ok := raw["ops"]; ok {
			json.Unmarshal(msg, &ops)
		}
		return &CompareExpr{Pos: pos, Left: left, Ops: ops, Comparators: comparators}, nil
	case "Call":
		fn, err := d.exprField(raw, "func")
		if err != nil {
			return nil, err
		}
		args, err := d.exprs(raw, "args")
		if err != nil {
			return nil, err
		}
		return &CallExpr{Pos: pos, Func: fn, Args: args}, nil
	case "Attribute":
		value, err := d.exprField(raw, "value")
		if err != nil {
			return nil, err
		}
		return &AttributeExpr{Pos: pos, Value: value, Attr: d.str(raw, "attr")}, nil
	case "Subscript":
		value, err := d.exprField(raw, "value")
		if err != nil {
			return nil, err
		}
		index, err := d.exprField(raw, "index")
		if err != nil {
			return nil, err
		}
		return &SubscriptExpr{Pos: pos, Value: value, Index: index}, nil
	case "Slice":
		slice := &SliceExpr{Pos: pos}
		if lRaw, ok := d.node(raw, "lower"); ok {
			l, err := d.expr(lRaw)
			if err != nil {
				return nil, err
			}
			slice.Lower = l
		}
		if uRaw, ok := d.node(raw, "upper"); ok {
			u, err := d.expr(uRaw)
			if err != nil {
				return nil, err
			}
			slice.Upper = u
		}
		if sRaw, ok := d.node(raw, "step"); ok {
			s, err := d.expr(sRaw)
			if err != nil {
				return nil, err
			}
			slice.Step = s
		}
		return slice, nil
	case "List":
		elems, err := d.exprs(raw, "elems")
		if err != nil {
			return nil, err
		}
		return &ListExpr{Pos: pos, Elems: elems}, nil
	case "Tuple":
		elems, err := d.exprs(raw, "elems")
		if err != nil {
			return nil, err
		}
		return &TupleExpr{Pos: pos, Elems: elems}, nil
	case "Dict":
		keys, err := d.exprs(raw, "keys")
		if err != nil {
			return nil, err
		}
		values, err := d.exprs(raw, "values")
		if err != nil {
			return nil, err
		}
		return &DictExpr{Pos: pos, Keys: keys, Values: values}, nil
	case "Set":
		elems, err := d.exprs(raw, "elems")
		if err != nil {
			return nil, err
		}
		return &SetExpr{Pos: pos, Elems: elems}, nil
	case "ListComp":
		elem, err := d.exprField(raw, "elem")
		if err != nil {
			return nil, err
		}
		target, err := d.exprField(raw, "target")
		if err != nil {
			return nil, err
		}
		iter, err := d.exprField(raw, "iter")
		if err != nil {
			return nil, err
		}
		conds, err := d.exprs(raw, "conds")
		if err != nil {
			return nil, err
		}
		return &ListCompExpr{Pos: pos, Elem: elem, Target: target, Iter: iter, Conds: conds}, nil
	case "Yield":
		e := &YieldExpr{Pos: pos}
		if vRaw, ok := d.node(raw, "value"); ok {
			v, err := d.expr(vRaw)
			if err != nil {
				return nil, err
			}
			e.Value = v
		}
		return e, nil
	default:
		return nil, d.errorf(pos, "unsupported expression kind %q", kind)
	}
}

func (d *decoder) constant(raw rawNode, pos Position) (Expr, error) {
	c := &ConstantExpr{Pos: pos}
	switch kind := d.str(raw, "kind"); kind {
	case "none":
		c.Kind = ConstNone
	case "bool":
		c.Kind = ConstBool
		json.Unmarshal(raw["value"], &c.BoolVal)
	case "int":
		c.Kind = ConstInt
		json.Unmarshal(raw["value"], &c.IntVal)
	case "float":
		c.Kind = ConstFloat
		json.Unmarshal(raw["value"], &c.FloatVal)
	case "str":
		c.Kind = ConstStr
		json.Unmarshal(raw["value"], &c.StrVal)
	default:
		return nil, d.errorf(pos, "unsupported constant kind %q", kind)
	}
	return c, nil
}
