// Package infer assigns a type to every HIR binding. It never fails:
// a binding the engine cannot pin down degrades to the dynamic fallback
// type and is reported as telemetry, not as an error. The engine runs
// whole-module passes to a fixed point so unannotated and mutually
// recursive functions converge, bounded by a pass cap.
package infer

import (
	"pyrite/internal/annotations"
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

// maxPasses bounds the fixed-point iteration. Recursive self-references
// see an Unknown placeholder on the first pass and the previous pass's
// result afterwards; types only ever widen, so the iteration cannot
// oscillate, but the cap keeps pathological inputs from spinning.
const maxPasses = 10

// Result is the inference output for one function.
type Result struct {
	Table  *types.VarTypeTable
	Params []types.Type
	Return types.Type
	// Yield is the element type produced by a generator function.
	Yield  types.Type
	Events []DegradationEvent

	// aggressive records the type_strategy directive: unresolved
	// parameters become named generics instead of Dynamic.
	aggressive bool
}

// ModuleResult maps function names to their inference results.
type ModuleResult struct {
	Funcs   map[string]*Result
	Symbols *Symbols
}

// Module infers types for every function. Hints come from annotation
// directives; a nil map means no directives.
func Module(mod *hir.Module, hints map[string]annotations.Hints) *ModuleResult {
	symbols := BuildSymbols(mod)
	return ModuleWithSymbols(mod, symbols, hints)
}

// ModuleWithSymbols runs inference against a pre-built symbol table.
// The driver builds symbols once, single-threaded, and shares them
// read-only across workers.
func ModuleWithSymbols(mod *hir.Module, symbols *Symbols, hints map[string]annotations.Hints) *ModuleResult {
	out := &ModuleResult{Funcs: make(map[string]*Result), Symbols: symbols}

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, fn := range mod.Functions {
			fi := &funcInferrer{
				symbols:  symbols,
				table:    types.NewVarTypeTable(),
				strategy: hints[fn.Name].TypeStrategy,
			}
			res := fi.run(fn)
			out.Funcs[fn.Name] = res
			if symbols.setReturn(fn.Name, res.Return) {
				changed = true
			}
			if fn.Generator && symbols.setYield(fn.Name, res.Yield) {
				changed = true
			}
		}
		if symbols.adoptObservations(mod) {
			changed = true
		}
		if !changed {
			break
		}
	}

	// Finalize: Unknown must never escape inference. Re-run once more
	// so every function sees the settled symbol table, then collapse
	// residual placeholders.
	for _, fn := range mod.Functions {
		fi := &funcInferrer{
			symbols:  symbols,
			table:    types.NewVarTypeTable(),
			strategy: hints[fn.Name].TypeStrategy,
		}
		res := fi.run(fn)
		res.finalize(fn)
		out.Funcs[fn.Name] = res
	}
	return out
}

// finalize collapses residual Unknown placeholders. The conservative
// strategy (the default) widens them to Dynamic and records the
// degradation; the aggressive strategy turns unresolved parameters into
// named generics instead.
func (r *Result) finalize(fn *hir.Function) {
	generic := 0
	for i, t := range r.Params {
		if !containsUnknown(t) {
			continue
		}
		if r.aggressive {
			r.Params[i] = types.GenericType{Name: genericName(generic)}
			generic++
		} else {
			r.Params[i] = scrubUnknown(t)
			r.Events = append(r.Events, DegradationEvent{
				Function: fn.Name,
				Binding:  fn.Params[i].Name,
				Reason:   "parameter type unresolved after fixed point",
			})
		}
	}
	paramNames := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		paramNames[p.Name] = true
	}
	for _, name := range r.Table.Names() {
		t, _ := r.Table.Get(name)
		// Parameters are reported by the loop above; their table entry
		// is overwritten below.
		if paramNames[name] {
			continue
		}
		if containsUnknown(t) {
			r.Table.Set(name, scrubUnknown(t))
			r.Events = append(r.Events, DegradationEvent{
				Function: fn.Name,
				Binding:  name,
				Reason:   "binding type unresolved after fixed point",
			})
		}
	}
	if containsUnknown(r.Return) {
		r.Return = scrubUnknown(r.Return)
	}
	if r.Yield != nil && containsUnknown(r.Yield) {
		r.Yield = scrubUnknown(r.Yield)
	}
	// Params are the authoritative binding types for parameters.
	for i, p := range fn.Params {
		r.Table.Set(p.Name, r.Params[i])
	}
	r.Table.Freeze()
}

// TypeOf re-derives the static type of an expression against the
// frozen table, without observation side effects. Codegen uses it to
// dispatch on receiver and operand types.
func (r *Result) TypeOf(e hir.Expr, symbols *Symbols) types.Type {
	fi := &funcInferrer{symbols: symbols, table: r.Table, readonly: true}
	return fi.expr(e)
}

func genericName(i int) string {
	return string(rune('T')) + string(rune('0'+i))
}

func containsUnknown(t types.Type) bool {
	switch tt := t.(type) {
	case nil:
		return false
	case types.UnknownType:
		return true
	case types.ListType:
		return containsUnknown(tt.Elem)
	case types.SetType:
		return containsUnknown(tt.Elem)
	case types.DictType:
		return containsUnknown(tt.Key) || containsUnknown(tt.Value)
	case types.TupleType:
		for _, e := range tt.Elems {
			if containsUnknown(e) {
				return true
			}
		}
	}
	return false
}

func scrubUnknown(t types.Type) types.Type {
	switch tt := t.(type) {
	case types.UnknownType:
		return types.Dynamic
	case types.ListType:
		return types.ListType{Elem: scrubUnknown(tt.Elem)}
	case types.SetType:
		return types.SetType{Elem: scrubUnknown(tt.Elem)}
	case types.DictType:
		return types.DictType{Key: scrubUnknown(tt.Key), Value: scrubUnknown(tt.Value)}
	case types.TupleType:
		elems := make([]types.Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = scrubUnknown(e)
		}
		return types.TupleType{Elems: elems}
	}
	return t
}
