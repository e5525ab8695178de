package excflow

import (
	"pyrite/internal/errors"
	"pyrite/internal/hir"
)

// maxPasses bounds fallibility propagation through the call graph.
// Each pass can only add raised types, so the iteration is monotone.
const maxPasses = 10

// FuncFlow is the fallibility verdict for one function, computed in a
// single pre-pass before any code is emitted.
type FuncFlow struct {
	Name     string
	Fallible bool
	// Raised lists the distinct exception names that can propagate out
	// of the function, in first-raise order.
	Raised []string
	// Absorbed marks raise statements and raising call expressions
	// (by node ID) caught by an enclosing guard inside this function.
	Absorbed map[int]bool
	// Propagating marks call expressions (by node ID) whose callee
	// failure escapes this function and needs error propagation.
	Propagating map[int]bool

	raisedSet map[string]bool
}

func (f *FuncFlow) addRaised(name string) bool {
	if f.raisedSet[name] {
		return false
	}
	f.raisedSet[name] = true
	f.Raised = append(f.Raised, name)
	f.Fallible = true
	return true
}

// ModuleFlow aggregates per-function verdicts plus the module-wide
// exception inventory that drives error-struct emission.
type ModuleFlow struct {
	Funcs map[string]*FuncFlow
	// Raised is every distinct exception name seen anywhere in the
	// unit, handled or not, in first-appearance order. Each gets one
	// error struct emitted ahead of the function declarations.
	Raised []string

	raisedSet map[string]bool
}

func (m *ModuleFlow) noteRaised(name string) {
	if m.raisedSet[name] {
		return
	}
	m.raisedSet[name] = true
	m.Raised = append(m.Raised, name)
}

// builtinRaised maps builtin calls to the exception they raise on bad
// input. Conversions from strings are the common case.
var builtinRaised = map[string]string{
	"int":   "ValueError",
	"float": "ValueError",
}

// Analyze computes fallibility for every function. Failure of a callee
// propagates to callers whose call sites are not guarded, iterated to
// a fixed point so call-chain fallibility converges in any declaration
// order.
func Analyze(mod *hir.Module) (*ModuleFlow, error) {
	out := &ModuleFlow{Funcs: make(map[string]*FuncFlow), raisedSet: make(map[string]bool)}
	for _, fn := range mod.Functions {
		out.Funcs[fn.Name] = &FuncFlow{Name: fn.Name}
	}

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, fn := range mod.Functions {
			flow := &FuncFlow{
				Name:        fn.Name,
				Absorbed:    make(map[int]bool),
				Propagating: make(map[int]bool),
				raisedSet:   make(map[string]bool),
			}
			w := &walker{tracker: NewTracker(), flow: flow, mod: out}
			w.stmts(fn.Body)
			if w.tracker.Depth() != 0 {
				return nil, errors.Invariant(errors.ErrorUnresolvedScope, fn.Pos,
					"scope stack unbalanced at exit of %s (depth %d)", fn.Name, w.tracker.Depth())
			}
			prev := out.Funcs[fn.Name]
			if len(flow.Raised) != len(prev.Raised) {
				changed = true
			}
			out.Funcs[fn.Name] = flow
		}
		if !changed {
			break
		}
	}
	return out, nil
}

type walker struct {
	tracker *Tracker
	flow    *FuncFlow
	mod     *ModuleFlow
}

func (w *walker) stmts(stmts []hir.Stmt) {
	for _, s := range stmts {
		w.stmt(s)
	}
}

func (w *walker) stmt(s hir.Stmt) {
	switch node := s.(type) {
	case *hir.RaiseStmt:
		w.mod.noteRaised(node.ExcType)
		if w.tracker.IsHandled(node.ExcType) {
			w.flow.Absorbed[node.ID] = true
		} else {
			w.flow.addRaised(node.ExcType)
		}
		if node.Msg != nil {
			w.expr(node.Msg)
		}
	case *hir.TryStmt:
		var handled []string
		catchAll := false
		for _, h := range node.Handlers {
			if h.ExcType == "" {
				catchAll = true
			} else {
				handled = append(handled, h.ExcType)
				w.mod.noteRaised(h.ExcType)
			}
		}
		w.tracker.EnterTry(handled, catchAll)
		w.stmts(node.Body)
		// The else clause runs under the same guard position as code
		// after the try: its raises are not caught by these handlers.
		w.tracker.LeaveTry()
		for _, h := range node.Handlers {
			w.tracker.EnterTry(handled, catchAll)
			w.tracker.EnterHandler()
			w.stmts(h.Body)
			w.tracker.LeaveHandler()
		}
		w.stmts(node.Orelse)
		w.stmts(node.Final)
	case *hir.AssignStmt:
		w.expr(node.Value)
	case *hir.IndexAssignStmt:
		w.expr(node.Recv)
		w.expr(node.Index)
		w.expr(node.Value)
	case *hir.TupleAssignStmt:
		w.expr(node.Value)
	case *hir.ReturnStmt:
		if node.Value != nil {
			w.expr(node.Value)
		}
	case *hir.IfStmt:
		w.expr(node.Cond)
		w.stmts(node.Body)
		w.stmts(node.Orelse)
	case *hir.WhileStmt:
		w.expr(node.Cond)
		w.stmts(node.Body)
	case *hir.ForStmt:
		w.expr(node.Iter)
		w.stmts(node.Body)
	case *hir.ExprStmt:
		w.expr(node.Value)
	case *hir.YieldStmt:
		w.expr(node.Value)
	}
}

func (w *walker) expr(e hir.Expr) {
	switch node := e.(type) {
	case *hir.CallExpr:
		for _, a := range node.Args {
			w.expr(a)
		}
		w.callSite(node)
	case *hir.MethodCallExpr:
		w.expr(node.Recv)
		for _, a := range node.Args {
			w.expr(a)
		}
	case *hir.BinaryExpr:
		w.expr(node.Left)
		w.expr(node.Right)
	case *hir.UnaryExpr:
		w.expr(node.Operand)
	case *hir.IndexExpr:
		w.expr(node.Recv)
		w.expr(node.Index)
	case *hir.SliceExpr:
		w.expr(node.Recv)
		if node.Lower != nil {
			w.expr(node.Lower)
		}
		if node.Upper != nil {
			w.expr(node.Upper)
		}
	case *hir.AttrExpr:
		w.expr(node.Recv)
	case *hir.ListExpr:
		for _, el := range node.Elems {
			w.expr(el)
		}
	case *hir.SetExpr:
		for _, el := range node.Elems {
			w.expr(el)
		}
	case *hir.TupleExpr:
		for _, el := range node.Elems {
			w.expr(el)
		}
	case *hir.DictExpr:
		for i := range node.Keys {
			w.expr(node.Keys[i])
			w.expr(node.Values[i])
		}
	}
}

// callSite classifies a call as a potential raise site: builtin
// conversions raise on bad input, and calls to fallible unit functions
// carry their callee's raised set.
func (w *walker) callSite(node *hir.CallExpr) {
	if exc, ok := builtinRaised[node.Func]; ok {
		w.mod.noteRaised(exc)
		if w.tracker.IsHandled(exc) {
			w.flow.Absorbed[node.ID] = true
		} else {
			w.flow.addRaised(exc)
			w.flow.Propagating[node.ID] = true
		}
		return
	}

	callee, ok := w.mod.Funcs[node.Func]
	if !ok || !callee.Fallible {
		return
	}
	escaped := false
	for _, exc := range callee.Raised {
		if w.tracker.IsHandled(exc) {
			continue
		}
		w.flow.addRaised(exc)
		escaped = true
	}
	if escaped {
		w.flow.Propagating[node.ID] = true
	} else {
		w.flow.Absorbed[node.ID] = true
	}
}
