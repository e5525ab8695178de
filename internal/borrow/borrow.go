// Package borrow classifies how every parameter is passed and every
// binding is held. The default policy prefers shared references and
// upgrades to mutable only on proven necessity; a wrong default is
// repaired through target-compiler diagnostics, never guessed locally.
package borrow

import (
	"pyrite/internal/annotations"
	"pyrite/internal/hir"
	"pyrite/internal/infer"
	"pyrite/internal/types"
)

// maxPasses bounds the transitive-mutation fixed point. Modes only
// ever upgrade toward mutable, so iteration is monotone.
const maxPasses = 10

// FuncBorrow holds the ownership verdicts for one function.
type FuncBorrow struct {
	Name string
	// ParamModes maps parameter names to their pass mode.
	ParamModes map[string]hir.PassMode
	// Mutable marks bindings (parameters included) that are reassigned
	// or mutated in place and need a mutable declaration.
	Mutable map[string]bool
	// Clones marks expression node IDs where a reference-iterated
	// element is consumed in an owned context and must be duplicated.
	Clones map[int]bool

	paramOrder []string
}

type ModuleBorrow struct {
	Funcs map[string]*FuncBorrow
}

// Params returns the parameter names in declaration order.
func (f *FuncBorrow) Params() []string {
	return f.paramOrder
}

// Mode returns the pass mode for a named parameter, defaulting to a
// shared reference for unknown names.
func (f *FuncBorrow) Mode(param string) hir.PassMode {
	if m, ok := f.ParamModes[param]; ok {
		return m
	}
	return hir.ModeRef
}

// mutatingMethods are receiver methods that modify the receiver in
// place and therefore require a mutable binding or reference.
var mutatingMethods = map[string]bool{
	"append": true, "extend": true, "insert": true, "pop": true,
	"remove": true, "clear": true, "sort": true, "reverse": true,
	"add": true, "discard": true, "update": true, "setdefault": true,
}

// Analyze runs the ownership analysis for every function. Annotation
// directives override the computed parameter mode; transitive mutation
// requirements propagate through call chains to a fixed point.
func Analyze(mod *hir.Module, inf *infer.ModuleResult, hints map[string]annotations.Hints) *ModuleBorrow {
	out := &ModuleBorrow{Funcs: make(map[string]*FuncBorrow)}
	for _, fn := range mod.Functions {
		out.Funcs[fn.Name] = newFuncBorrow(fn)
	}

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, fn := range mod.Functions {
			fb := newFuncBorrow(fn)
			a := &analyzer{fn: fn, fb: fb, mod: out, inf: inf.Funcs[fn.Name]}
			a.seedModes()
			a.reassignmentPass()
			a.mutationPass()
			a.clonePass()
			a.applyHint(hints[fn.Name])
			if !sameModes(out.Funcs[fn.Name], fb) {
				changed = true
			}
			out.Funcs[fn.Name] = fb
		}
		if !changed {
			break
		}
	}
	return out
}

func newFuncBorrow(fn *hir.Function) *FuncBorrow {
	fb := &FuncBorrow{
		Name:       fn.Name,
		ParamModes: make(map[string]hir.PassMode, len(fn.Params)),
		Mutable:    make(map[string]bool),
		Clones:     make(map[int]bool),
	}
	for _, p := range fn.Params {
		fb.paramOrder = append(fb.paramOrder, p.Name)
	}
	return fb
}

func sameModes(a, b *FuncBorrow) bool {
	if len(a.ParamModes) != len(b.ParamModes) {
		return false
	}
	for name, mode := range a.ParamModes {
		if b.ParamModes[name] != mode {
			return false
		}
	}
	return true
}

type analyzer struct {
	fn  *hir.Function
	fb  *FuncBorrow
	mod *ModuleBorrow
	inf *infer.Result
}

func (a *analyzer) paramType(i int) types.Type {
	if a.inf != nil && i < len(a.inf.Params) {
		return a.inf.Params[i]
	}
	return types.Dynamic
}

// seedModes applies the default policy: copyable scalars pass by
// value, everything else starts as a shared reference.
func (a *analyzer) seedModes() {
	for i, p := range a.fn.Params {
		switch a.paramType(i).Kind() {
		case types.KindInt, types.KindFloat, types.KindBool, types.KindNone:
			a.fb.ParamModes[p.Name] = hir.ModeOwned
		default:
			a.fb.ParamModes[p.Name] = hir.ModeRef
		}
	}
}

// applyHint lets an ownership directive override the computed mode for
// every parameter of the function.
func (a *analyzer) applyHint(h annotations.Hints) {
	mode, ok := h.OwnershipMode()
	if !ok {
		return
	}
	for _, p := range a.fn.Params {
		a.fb.ParamModes[p.Name] = mode
	}
}

// reassignmentPass marks bindings assigned more than once as mutable.
// The declared set is seeded with the parameters so reassigning a
// parameter is detected exactly like reassigning a local.
func (a *analyzer) reassignmentPass() {
	declared := make(map[string]bool, len(a.fn.Params))
	for _, p := range a.fn.Params {
		declared[p.Name] = true
	}
	var scan func(stmts []hir.Stmt)
	scan = func(stmts []hir.Stmt) {
		for _, s := range stmts {
			switch node := s.(type) {
			case *hir.AssignStmt:
				if node.Aug != "" || declared[node.Name] {
					a.fb.Mutable[node.Name] = true
				}
				declared[node.Name] = true
			case *hir.TupleAssignStmt:
				for _, name := range node.Names {
					if declared[name] {
						a.fb.Mutable[name] = true
					}
					declared[name] = true
				}
			case *hir.IfStmt:
				scan(node.Body)
				scan(node.Orelse)
			case *hir.WhileStmt:
				scan(node.Body)
			case *hir.ForStmt:
				declared[node.Target] = true
				if node.KeyTarget != "" {
					declared[node.KeyTarget] = true
				}
				scan(node.Body)
			case *hir.TryStmt:
				scan(node.Body)
				for _, h := range node.Handlers {
					scan(h.Body)
				}
				scan(node.Orelse)
				scan(node.Final)
			}
		}
	}
	scan(a.fn.Body)
}

// mutationPass finds in-place mutation: mutating method calls and
// subscript stores upgrade the receiver, and passing a parameter to a
// callee slot already known to need a mutable reference upgrades it
// transitively.
func (a *analyzer) mutationPass() {
	paramSet := make(map[string]bool, len(a.fn.Params))
	for _, p := range a.fn.Params {
		paramSet[p.Name] = true
	}

	mutate := func(e hir.Expr) {
		v, ok := e.(*hir.VarExpr)
		if !ok {
			return
		}
		a.fb.Mutable[v.Name] = true
		if paramSet[v.Name] {
			a.fb.ParamModes[v.Name] = hir.ModeMutRef
		}
	}

	var scanExpr func(e hir.Expr)
	scanExpr = func(e hir.Expr) {
		switch node := e.(type) {
		case *hir.MethodCallExpr:
			if mutatingMethods[node.Method] {
				mutate(node.Recv)
			}
			scanExpr(node.Recv)
			for _, arg := range node.Args {
				scanExpr(arg)
			}
		case *hir.CallExpr:
			slots := calleeParams(a.mod, node.Func)
			callee := a.mod.Funcs[node.Func]
			for i, arg := range node.Args {
				if callee != nil && i < len(slots) && callee.ParamModes[slots[i]] == hir.ModeMutRef {
					mutate(arg)
				}
				scanExpr(arg)
			}
		case *hir.BinaryExpr:
			scanExpr(node.Left)
			scanExpr(node.Right)
		case *hir.UnaryExpr:
			scanExpr(node.Operand)
		case *hir.IndexExpr:
			scanExpr(node.Recv)
			scanExpr(node.Index)
		case *hir.SliceExpr:
			scanExpr(node.Recv)
			if node.Lower != nil {
				scanExpr(node.Lower)
			}
			if node.Upper != nil {
				scanExpr(node.Upper)
			}
		case *hir.AttrExpr:
			scanExpr(node.Recv)
		case *hir.ListExpr:
			for _, el := range node.Elems {
				scanExpr(el)
			}
		case *hir.SetExpr:
			for _, el := range node.Elems {
				scanExpr(el)
			}
		case *hir.TupleExpr:
			for _, el := range node.Elems {
				scanExpr(el)
			}
		case *hir.DictExpr:
			for i := range node.Keys {
				scanExpr(node.Keys[i])
				scanExpr(node.Values[i])
			}
		}
	}

	var scan func(stmts []hir.Stmt)
	scan = func(stmts []hir.Stmt) {
		for _, s := range stmts {
			switch node := s.(type) {
			case *hir.AssignStmt:
				scanExpr(node.Value)
			case *hir.IndexAssignStmt:
				mutate(node.Recv)
				scanExpr(node.Recv)
				scanExpr(node.Index)
				scanExpr(node.Value)
			case *hir.TupleAssignStmt:
				scanExpr(node.Value)
			case *hir.ReturnStmt:
				if node.Value != nil {
					scanExpr(node.Value)
				}
			case *hir.IfStmt:
				scanExpr(node.Cond)
				scan(node.Body)
				scan(node.Orelse)
			case *hir.WhileStmt:
				scanExpr(node.Cond)
				scan(node.Body)
			case *hir.ForStmt:
				scanExpr(node.Iter)
				scan(node.Body)
			case *hir.TryStmt:
				scan(node.Body)
				for _, h := range node.Handlers {
					scan(h.Body)
				}
				scan(node.Orelse)
				scan(node.Final)
			case *hir.ExprStmt:
				scanExpr(node.Value)
			case *hir.YieldStmt:
				scanExpr(node.Value)
			case *hir.RaiseStmt:
				if node.Msg != nil {
					scanExpr(node.Msg)
				}
			}
		}
	}
	scan(a.fn.Body)
}

func calleeParams(mod *ModuleBorrow, name string) []string {
	if fb, ok := mod.Funcs[name]; ok {
		return fb.paramOrder
	}
	return nil
}
