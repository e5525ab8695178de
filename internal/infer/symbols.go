package infer

import (
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

// FuncSym is the module-level view of one function: annotated or
// inferred parameter and return types, plus argument types observed at
// call sites for unannotated parameters.
type FuncSym struct {
	Name   string
	Params []string
	// ParamTypes holds the current best type per parameter; Unknown
	// until annotated or observed.
	ParamTypes []types.Type
	Return     types.Type
	Generator  bool
	// Yield is the element type a generator produces.
	Yield types.Type
	// observed accumulates call-site argument types, unified across
	// sites between passes.
	observed []types.Type
}

// Symbols is the module symbol table. It is built single-threaded
// before any per-function work begins so forward references and mutual
// recursion resolve without ordering constraints, and is read-only for
// workers afterwards.
type Symbols struct {
	funcs map[string]*FuncSym
	order []string
}

// BuildSymbols registers every function with its annotation-derived
// types; unannotated slots start as Unknown placeholders.
func BuildSymbols(mod *hir.Module) *Symbols {
	s := &Symbols{funcs: make(map[string]*FuncSym)}
	for _, fn := range mod.Functions {
		sym := &FuncSym{Name: fn.Name, Generator: fn.Generator}
		if fn.Generator {
			sym.Yield = types.Unknown
		}
		for _, p := range fn.Params {
			sym.Params = append(sym.Params, p.Name)
			if p.Hint != nil {
				sym.ParamTypes = append(sym.ParamTypes, p.Hint)
			} else {
				sym.ParamTypes = append(sym.ParamTypes, types.Unknown)
			}
			sym.observed = append(sym.observed, types.Unknown)
		}
		if fn.ReturnHint != nil {
			sym.Return = fn.ReturnHint
		} else {
			sym.Return = types.Unknown
		}
		s.funcs[fn.Name] = sym
		s.order = append(s.order, fn.Name)
	}
	return s
}

func (s *Symbols) Lookup(name string) (*FuncSym, bool) {
	sym, ok := s.funcs[name]
	return sym, ok
}

// observe records the argument types seen at one call site. Types
// unify across sites; conflicting concrete types widen toward Dynamic.
func (s *Symbols) observe(name string, args []types.Type) {
	sym, ok := s.funcs[name]
	if !ok {
		return
	}
	for i, arg := range args {
		if i >= len(sym.observed) {
			break
		}
		sym.observed[i] = types.Unify(sym.observed[i], arg)
	}
}

// adoptObservations folds call-site observations into unannotated
// parameter types. Returns true when anything changed, which drives
// the fixed-point iteration.
func (s *Symbols) adoptObservations(mod *hir.Module) bool {
	changed := false
	for _, fn := range mod.Functions {
		sym := s.funcs[fn.Name]
		for i, p := range fn.Params {
			if p.Hint != nil {
				continue
			}
			obs := sym.observed[i]
			if obs.Kind() == types.KindUnknown {
				continue
			}
			if !types.Equal(sym.ParamTypes[i], obs) {
				sym.ParamTypes[i] = obs
				changed = true
			}
		}
	}
	return changed
}

func (s *Symbols) setReturn(name string, t types.Type) bool {
	sym := s.funcs[name]
	if types.Equal(sym.Return, t) {
		return false
	}
	sym.Return = t
	return true
}

func (s *Symbols) setYield(name string, t types.Type) bool {
	sym := s.funcs[name]
	if t == nil || types.Equal(sym.Yield, t) {
		return false
	}
	sym.Yield = t
	return true
}
