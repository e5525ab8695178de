package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"pyrite/internal/errors"
	"pyrite/internal/hir"
	"pyrite/internal/types"
)

func (g *Generator) emitFunction(fn *hir.Function) error {
	g.fn = fn
	g.fnInf = g.inf.Funcs[fn.Name]
	g.fnFlow = g.flow.Funcs[fn.Name]
	g.fnBorrow = g.owners.Funcs[fn.Name]
	g.fnHints = g.hints[fn.Name]
	g.tmpN = 0
	g.declared = make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		g.declared[p.Name] = true
	}

	if g.fnInf == nil || g.fnFlow == nil || g.fnBorrow == nil {
		return errors.Invariant(errors.ErrorMissingBinding, fn.Pos,
			"missing analysis results for function %s", fn.Name)
	}
	g.sig = g.signature(fn)

	// Fallibility is settled before a single line of the body is
	// emitted; it decides the wrapping of every return.
	g.errType = ""
	g.boxedErr = false
	if g.sig.Fallible {
		if len(g.sig.Raised) == 1 {
			g.errType = g.sig.Raised[0]
		} else {
			g.errType = "Box<dyn std::error::Error>"
			g.boxedErr = true
		}
	}

	start := g.line
	if fn.Generator {
		g.emitGeneratorFunction(fn)
	} else {
		g.emitPlainFunction(fn)
	}
	g.manifest.Record(fn.Name, fn.ID, start, g.line-1)
	return nil
}

func (g *Generator) emitPlainFunction(fn *hir.Function) {
	g.writeLine("pub fn %s%s(%s)%s {", fn.Name, g.genericClause(), g.paramList(), g.returnClause())
	g.indent++
	g.emitStmts(fn.Body)
	if g.sig.Fallible && g.sig.Return.Kind() == types.KindNone {
		g.writeLine("Ok(())")
	}
	g.indent--
	g.writeLine("}")
}

// signature assembles the derived signature for fn from the inference,
// exception flow, and ownership results.
func (g *Generator) signature(fn *hir.Function) hir.Signature {
	sig := hir.Signature{
		Name:     fn.Name,
		Return:   g.fnInf.Return,
		Fallible: g.fnFlow.Fallible,
		Raised:   g.fnFlow.Raised,
		Params:   make([]hir.SigParam, len(fn.Params)),
	}
	for i, p := range fn.Params {
		var ptype types.Type = types.Dynamic
		if i < len(g.fnInf.Params) {
			ptype = g.fnInf.Params[i]
		}
		mode := g.fnBorrow.Mode(p.Name)
		sig.Params[i] = hir.SigParam{
			Name: p.Name,
			Type: ptype,
			Mode: mode,
			Mut:  mode == hir.ModeOwned && g.fnBorrow.Mutable[p.Name],
		}
	}
	return sig
}

func (g *Generator) paramList() string {
	parts := make([]string, len(g.sig.Params))
	for i, p := range g.sig.Params {
		prefix := ""
		if p.Mut {
			prefix = "mut "
		}
		parts[i] = fmt.Sprintf("%s%s: %s", prefix, p.Name, paramType(p.Type, p.Mode))
	}
	return strings.Join(parts, ", ")
}

// genericClause declares the type parameters the signature introduces;
// unresolved parameters named under the aggressive strategy must be
// bound on the function or the output names undeclared types.
func (g *Generator) genericClause() string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range g.sig.Params {
		collectGenerics(p.Type, seen, &names)
	}
	collectGenerics(g.sig.Return, seen, &names)
	if len(names) == 0 {
		return ""
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func collectGenerics(t types.Type, seen map[string]bool, names *[]string) {
	switch tt := t.(type) {
	case types.GenericType:
		if !seen[tt.Name] {
			seen[tt.Name] = true
			*names = append(*names, tt.Name)
		}
	case types.ListType:
		collectGenerics(tt.Elem, seen, names)
	case types.SetType:
		collectGenerics(tt.Elem, seen, names)
	case types.DictType:
		collectGenerics(tt.Key, seen, names)
		collectGenerics(tt.Value, seen, names)
	case types.TupleType:
		for _, el := range tt.Elems {
			collectGenerics(el, seen, names)
		}
	}
}

func (g *Generator) returnClause() string {
	ret := g.sig.Return
	if g.sig.Fallible {
		inner := "()"
		if ret.Kind() != types.KindNone {
			inner = rustType(ret)
		}
		return fmt.Sprintf(" -> Result<%s, %s>", inner, g.errType)
	}
	if ret.Kind() == types.KindNone {
		return ""
	}
	return " -> " + rustType(ret)
}

// emitGeneratorFunction lowers a generator to a state struct holding
// owned results plus an Iterator impl. Yielded values materialize at
// construction time, which also promotes every capture to owned data
// as the lifetime model requires.
func (g *Generator) emitGeneratorFunction(fn *hir.Function) {
	structName := camel(fn.Name) + "Iter"
	elem := rustType(g.fnInf.Yield)

	g.writeLine("pub struct %s {", structName)
	g.indent++
	g.writeLine("items: std::vec::IntoIter<%s>,", elem)
	g.indent--
	g.writeLine("}")
	g.blank()
	g.writeLine("impl Iterator for %s {", structName)
	g.indent++
	g.writeLine("type Item = %s;", elem)
	g.blank()
	g.writeLine("fn next(&mut self) -> Option<%s> {", elem)
	g.indent++
	g.writeLine("self.items.next()")
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("}")
	g.blank()
	g.writeLine("pub fn %s%s(%s) -> %s {", fn.Name, g.genericClause(), g.paramList(), structName)
	g.indent++
	g.writeLine("let mut __items: Vec<%s> = Vec::new();", elem)
	g.emitStmts(fn.Body)
	g.writeLine("%s { items: __items.into_iter() }", structName)
	g.indent--
	g.writeLine("}")
}

// camel converts a snake_case function name to the CamelCase struct
// naming the target expects.
func camel(name string) string {
	var b strings.Builder
	up := true
	for _, r := range name {
		if r == '_' {
			up = true
			continue
		}
		if up {
			b.WriteRune(unicode.ToUpper(r))
			up = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
