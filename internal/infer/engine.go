package infer

import (
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

// funcInferrer walks one function body bottom-up for literals and
// top-down for annotations, recording every binding in the type table.
type funcInferrer struct {
	symbols  *Symbols
	table    *types.VarTypeTable
	strategy string
	// readonly disables observation and refinement side effects; used
	// when re-deriving expression types against a frozen table.
	readonly bool

	returns []types.Type
	yields  []types.Type
	events  []DegradationEvent
	fnName  string
}

func (fi *funcInferrer) run(fn *hir.Function) *Result {
	fi.fnName = fn.Name
	sym, _ := fi.symbols.Lookup(fn.Name)

	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = sym.ParamTypes[i]
		fi.table.Set(p.Name, params[i])
	}

	fi.stmts(fn.Body)

	ret := fi.returnType(fn)

	var yield types.Type
	if fn.Generator {
		yield = types.Unknown
		for _, t := range fi.yields {
			yield = types.Unify(yield, t)
		}
	}

	return &Result{
		Table:      fi.table,
		Params:     params,
		Return:     ret,
		Yield:      yield,
		Events:     fi.events,
		aggressive: fi.strategy == "aggressive",
	}
}

// returnType unions the explicit return expressions. Functions without
// any return infer the unit type even when the final statement is an
// expression: expression statements never contribute, unlike in
// trailing-expression-return languages.
func (fi *funcInferrer) returnType(fn *hir.Function) types.Type {
	if fn.ReturnHint != nil {
		return fn.ReturnHint
	}
	if fn.Generator || len(fi.returns) == 0 {
		return types.None
	}
	ret := fi.returns[0]
	for _, t := range fi.returns[1:] {
		ret = types.Unify(ret, t)
	}
	return ret
}

func (fi *funcInferrer) stmts(stmts []hir.Stmt) {
	for _, s := range stmts {
		fi.stmt(s)
	}
}

func (fi *funcInferrer) stmt(s hir.Stmt) {
	switch node := s.(type) {
	case *hir.AssignStmt:
		fi.assign(node)
	case *hir.IndexAssignStmt:
		fi.expr(node.Recv)
		fi.expr(node.Index)
		fi.expr(node.Value)
	case *hir.TupleAssignStmt:
		fi.tupleAssign(node)
	case *hir.ReturnStmt:
		if node.Value == nil {
			fi.returns = append(fi.returns, types.None)
		} else {
			fi.returns = append(fi.returns, fi.expr(node.Value))
		}
	case *hir.IfStmt:
		fi.expr(node.Cond)
		fi.stmts(node.Body)
		fi.stmts(node.Orelse)
	case *hir.WhileStmt:
		fi.expr(node.Cond)
		fi.stmts(node.Body)
	case *hir.ForStmt:
		fi.forStmt(node)
	case *hir.TryStmt:
		fi.stmts(node.Body)
		for _, h := range node.Handlers {
			if h.BindAs != "" {
				fi.set(h.BindAs, types.StructType{Name: h.ExcType})
			}
			fi.stmts(h.Body)
		}
		fi.stmts(node.Orelse)
		fi.stmts(node.Final)
	case *hir.RaiseStmt:
		if node.Msg != nil {
			fi.expr(node.Msg)
		}
	case *hir.ExprStmt:
		fi.expr(node.Value)
	case *hir.YieldStmt:
		fi.yields = append(fi.yields, fi.expr(node.Value))
	}
}

// set merges a new binding type with whatever an earlier assignment
// established; diverging reassignment widens per the unification rules.
func (fi *funcInferrer) set(name string, t types.Type) {
	if existing, ok := fi.table.Get(name); ok {
		merged := types.Unify(existing, t)
		fi.table.Set(name, merged)
		if types.IsDynamic(merged) && !types.IsDynamic(existing) {
			fi.degrade(name, "reassignment with incompatible type")
		}
		return
	}
	fi.table.Set(name, t)
	if types.IsDynamic(t) {
		fi.degrade(name, "assigned value has no concrete type")
	}
}

func (fi *funcInferrer) degrade(name, reason string) {
	fi.events = append(fi.events, DegradationEvent{Function: fi.fnName, Binding: name, Reason: reason})
}

func (fi *funcInferrer) assign(node *hir.AssignStmt) {
	value := fi.expr(node.Value)
	if node.Aug != "" {
		existing, ok := fi.table.Get(node.Name)
		if !ok {
			existing = types.Unknown
		}
		fi.set(node.Name, binaryResult(node.Aug, existing, value))
		return
	}
	fi.set(node.Name, value)
}

func (fi *funcInferrer) tupleAssign(node *hir.TupleAssignStmt) {
	value := fi.expr(node.Value)
	switch vt := value.(type) {
	case types.TupleType:
		for i, name := range node.Names {
			if i < len(vt.Elems) {
				fi.set(name, vt.Elems[i])
			} else {
				fi.set(name, types.Dynamic)
			}
		}
	case types.ListType:
		for _, name := range node.Names {
			fi.set(name, vt.Elem)
		}
	default:
		for _, name := range node.Names {
			fi.set(name, types.Dynamic)
		}
	}
}

func (fi *funcInferrer) forStmt(node *hir.ForStmt) {
	iter := fi.expr(node.Iter)
	key, elem := iterationTypes(iter)
	if node.KeyTarget != "" {
		fi.set(node.KeyTarget, key)
		fi.set(node.Target, elem)
	} else if dt, ok := iter.(types.DictType); ok {
		// Plain iteration over a keyed collection yields its keys.
		fi.set(node.Target, dt.Key)
	} else {
		fi.set(node.Target, elem)
	}
	fi.stmts(node.Body)
}

// iterationTypes yields the per-element binding types for iterating a
// value: dict iteration pairs keys with values, string iteration
// produces one-character strings, everything unresolvable is Dynamic.
func iterationTypes(iter types.Type) (key, elem types.Type) {
	switch it := iter.(type) {
	case types.ListType:
		if tup, ok := it.Elem.(types.TupleType); ok && len(tup.Elems) == 2 {
			return tup.Elems[0], tup.Elems[1]
		}
		return types.Dynamic, it.Elem
	case types.SetType:
		return types.Dynamic, it.Elem
	case types.DictType:
		return it.Key, it.Value
	case types.StrType:
		return types.Dynamic, types.Str
	case types.TupleType:
		var elem types.Type = types.Unknown
		for _, e := range it.Elems {
			elem = types.Unify(elem, e)
		}
		return types.Dynamic, elem
	}
	return types.Dynamic, types.Dynamic
}
