// Package codegen emits Rust source from typed, scope-annotated,
// ownership-annotated HIR. Output is guaranteed syntactically well
// formed; residual type errors are the feedback loop's repair channel.
package codegen

import (
	"fmt"
	"strings"

	"pyrite/internal/annotations"
	"pyrite/internal/borrow"
	"pyrite/internal/excflow"
	"pyrite/internal/hir"
	"pyrite/internal/infer"
	"pyrite/internal/types"
)

// Generator holds the analysis verdicts for one unit and produces its
// target source plus the span manifest.
type Generator struct {
	mod    *hir.Module
	inf    *infer.ModuleResult
	flow   *excflow.ModuleFlow
	owners *borrow.ModuleBorrow
	hints  map[string]annotations.Hints

	buf    strings.Builder
	indent int
	line   int

	manifest *Manifest

	// per-function emission state
	fn       *hir.Function
	fnInf    *infer.Result
	fnFlow   *excflow.FuncFlow
	fnBorrow *borrow.FuncBorrow
	fnHints  annotations.Hints
	sig      hir.Signature
	errType  string
	boxedErr bool
	tmpN     int
	declared map[string]bool

	// err holds the first invariant violation; emission continues but
	// Generate discards all output when set.
	err error
}

func (g *Generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

// Output is the unit result handed to the feedback boundary.
type Output struct {
	Source   string
	Manifest *Manifest
}

func New(mod *hir.Module, inf *infer.ModuleResult, flow *excflow.ModuleFlow, owners *borrow.ModuleBorrow, hints map[string]annotations.Hints) *Generator {
	return &Generator{
		mod:      mod,
		inf:      inf,
		flow:     flow,
		owners:   owners,
		hints:    hints,
		manifest: NewManifest(mod.Name),
		line:     1,
	}
}

// Generate emits the whole unit. A returned error is always an
// internal invariant violation; the unit then produces no output at
// all rather than a partial file.
func (g *Generator) Generate() (*Output, error) {
	g.writeLine("// Generated by pyrite from %s", g.mod.Name)
	g.blank()

	// Error structs come first: one per distinct raised exception name
	// in the unit, ahead of every function declaration.
	for _, name := range g.flow.Raised {
		g.emitErrorStruct(name)
	}

	if g.usesDynamic() {
		g.writeRaw(pyValueSupport)
		g.blank()
	}

	for _, fn := range g.mod.Functions {
		if err := g.emitFunction(fn); err != nil {
			return nil, err
		}
		g.blank()
	}
	if g.err != nil {
		return nil, g.err
	}

	return &Output{Source: g.buf.String(), Manifest: g.manifest}, nil
}

// usesDynamic reports whether any binding, parameter or return in the
// unit degraded to the dynamic fallback, requiring the proxy enum.
func (g *Generator) usesDynamic() bool {
	for _, fn := range g.mod.Functions {
		res := g.inf.Funcs[fn.Name]
		if res == nil {
			continue
		}
		if hasDynamic(res.Return) {
			return true
		}
		for _, p := range res.Params {
			if hasDynamic(p) {
				return true
			}
		}
		for _, name := range res.Table.Names() {
			t, _ := res.Table.Get(name)
			if hasDynamic(t) {
				return true
			}
		}
	}
	return false
}

func hasDynamic(t types.Type) bool {
	switch tt := t.(type) {
	case nil:
		return false
	case types.DynamicType:
		return true
	case types.ListType:
		return hasDynamic(tt.Elem)
	case types.SetType:
		return hasDynamic(tt.Elem)
	case types.DictType:
		return hasDynamic(tt.Key) || hasDynamic(tt.Value)
	case types.TupleType:
		for _, e := range tt.Elems {
			if hasDynamic(e) {
				return true
			}
		}
	}
	return false
}

func (g *Generator) emitErrorStruct(name string) {
	g.writeLine("#[derive(Debug, Clone)]")
	g.writeLine("pub struct %s {", name)
	g.indent++
	g.writeLine("pub message: String,")
	g.indent--
	g.writeLine("}")
	g.blank()
	g.writeLine("impl %s {", name)
	g.indent++
	g.writeLine("pub fn new(message: impl Into<String>) -> Self {")
	g.indent++
	g.writeLine("Self { message: message.into() }")
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("}")
	g.blank()
	g.writeLine("impl std::fmt::Display for %s {", name)
	g.indent++
	g.writeLine("fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {")
	g.indent++
	g.writeLine("write!(f, \"%s: {}\", self.message)", name)
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("}")
	g.blank()
	g.writeLine("impl std::error::Error for %s {}", name)
	g.blank()
}

// writeLine emits one indented line and advances the line counter.
func (g *Generator) writeLine(format string, args ...any) {
	g.buf.WriteString(strings.Repeat("    ", g.indent))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
	g.line++
}

func (g *Generator) blank() {
	g.buf.WriteByte('\n')
	g.line++
}

// writeRaw emits a pre-formatted block verbatim.
func (g *Generator) writeRaw(block string) {
	g.buf.WriteString(block)
	g.line += strings.Count(block, "\n")
}

func (g *Generator) tmp() string {
	g.tmpN++
	return fmt.Sprintf("__v%d", g.tmpN)
}
