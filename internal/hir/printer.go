package hir

import (
	"fmt"
	"strings"

	"pyrite/internal/types"
)

// Printer renders a typed HIR module in a compact indented form used by
// the inspect command and debugging tests.
type Printer struct {
	indent int
	output strings.Builder
	// tables supplies inferred binding types per function; nil prints
	// the untyped tree.
	tables map[string]*types.VarTypeTable
}

func NewPrinter(tables map[string]*types.VarTypeTable) *Printer {
	return &Printer{tables: tables}
}

// Print returns the string representation of a module.
func Print(mod *Module, tables map[string]*types.VarTypeTable) string {
	p := NewPrinter(tables)
	p.printModule(mod)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printModule(mod *Module) {
	p.writeLine("MODULE %s", mod.Name)
	for _, fn := range mod.Functions {
		p.writeLine("")
		p.printFunction(fn)
	}
}

func (p *Printer) printFunction(fn *Function) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		if param.Hint != nil {
			params[i] = fmt.Sprintf("%s: %s", param.Name, param.Hint)
		} else {
			params[i] = param.Name
		}
	}
	marker := ""
	if fn.Generator {
		marker = " [generator]"
	}
	p.writeLine("FUNC %s(%s)%s", fn.Name, strings.Join(params, ", "), marker)
	p.indent++
	if table, ok := p.tables[fn.Name]; ok {
		for _, name := range table.Names() {
			t, _ := table.Get(name)
			p.writeLine("; %s: %s", name, t)
		}
	}
	p.printStmts(fn.Body)
	p.indent--
}

func (p *Printer) printStmts(stmts []Stmt) {
	for _, s := range stmts {
		p.printStmt(s)
	}
}

func (p *Printer) printStmt(s Stmt) {
	switch node := s.(type) {
	case *AssignStmt:
		op := "="
		if node.Aug != "" {
			op = node.Aug + "="
		}
		p.writeLine("%s %s %s", node.Name, op, exprString(node.Value))
	case *IndexAssignStmt:
		op := "="
		if node.Aug != "" {
			op = node.Aug + "="
		}
		p.writeLine("%s[%s] %s %s", exprString(node.Recv), exprString(node.Index), op, exprString(node.Value))
	case *TupleAssignStmt:
		p.writeLine("%s = %s", strings.Join(node.Names, ", "), exprString(node.Value))
	case *ReturnStmt:
		if node.Value == nil {
			p.writeLine("return")
		} else {
			p.writeLine("return %s", exprString(node.Value))
		}
	case *IfStmt:
		p.writeLine("if %s:", exprString(node.Cond))
		p.indent++
		p.printStmts(node.Body)
		p.indent--
		if len(node.Orelse) > 0 {
			p.writeLine("else:")
			p.indent++
			p.printStmts(node.Orelse)
			p.indent--
		}
	case *WhileStmt:
		p.writeLine("while %s:", exprString(node.Cond))
		p.indent++
		p.printStmts(node.Body)
		p.indent--
	case *ForStmt:
		target := node.Target
		if node.KeyTarget != "" {
			target = node.KeyTarget + ", " + node.Target
		}
		p.writeLine("for %s in %s:", target, exprString(node.Iter))
		p.indent++
		p.printStmts(node.Body)
		p.indent--
	case *TryStmt:
		p.writeLine("try:")
		p.indent++
		p.printStmts(node.Body)
		p.indent--
		for _, h := range node.Handlers {
			name := h.ExcType
			if name == "" {
				name = "<all>"
			}
			p.writeLine("except %s:", name)
			p.indent++
			p.printStmts(h.Body)
			p.indent--
		}
		if len(node.Final) > 0 {
			p.writeLine("finally:")
			p.indent++
			p.printStmts(node.Final)
			p.indent--
		}
	case *RaiseStmt:
		if node.Msg != nil {
			p.writeLine("raise %s(%s)", node.ExcType, exprString(node.Msg))
		} else {
			p.writeLine("raise %s", node.ExcType)
		}
	case *ExprStmt:
		p.writeLine("%s", exprString(node.Value))
	case *YieldStmt:
		p.writeLine("yield %s", exprString(node.Value))
	case *PassStmt:
		p.writeLine("pass")
	case *BreakStmt:
		p.writeLine("break")
	case *ContinueStmt:
		p.writeLine("continue")
	}
}

func exprString(e Expr) string {
	switch node := e.(type) {
	case *LitExpr:
		switch node.Kind {
		case LitNone:
			return "None"
		case LitBool:
			if node.BoolVal {
				return "True"
			}
			return "False"
		case LitInt:
			return fmt.Sprintf("%d", node.IntVal)
		case LitFloat:
			return fmt.Sprintf("%g", node.FloatVal)
		default:
			return fmt.Sprintf("%q", node.StrVal)
		}
	case *VarExpr:
		return node.Name
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", exprString(node.Left), node.Op, exprString(node.Right))
	case *UnaryExpr:
		return fmt.Sprintf("(%s%s)", node.Op, exprString(node.Operand))
	case *CallExpr:
		return fmt.Sprintf("%s(%s)", node.Func, exprListString(node.Args))
	case *MethodCallExpr:
		return fmt.Sprintf("%s.%s(%s)", exprString(node.Recv), node.Method, exprListString(node.Args))
	case *IndexExpr:
		return fmt.Sprintf("%s[%s]", exprString(node.Recv), exprString(node.Index))
	case *SliceExpr:
		lo, hi := "", ""
		if node.Lower != nil {
			lo = exprString(node.Lower)
		}
		if node.Upper != nil {
			hi = exprString(node.Upper)
		}
		return fmt.Sprintf("%s[%s:%s]", exprString(node.Recv), lo, hi)
	case *AttrExpr:
		return fmt.Sprintf("%s.%s", exprString(node.Recv), node.Attr)
	case *ListExpr:
		return "[" + exprListString(node.Elems) + "]"
	case *TupleExpr:
		return "(" + exprListString(node.Elems) + ")"
	case *SetExpr:
		return "{" + exprListString(node.Elems) + "}"
	case *DictExpr:
		parts := make([]string, len(node.Keys))
		for i := range node.Keys {
			parts[i] = exprString(node.Keys[i]) + ": " + exprString(node.Values[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}

func exprListString(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}
