// Package annotations parses `# @pyrite:` source directives into typed
// hints for inference and ownership analysis. Directives attach to the
// next function definition in the source, e.g.
//
//	# @pyrite: ownership = "borrowed"
//	# @pyrite: type_strategy = "conservative"
//	def process(items): ...
package annotations

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"pyrite/internal/ast"
	"pyrite/internal/hir"
)

const prefix = "@pyrite:"

// Hints is the merged directive set for one function.
type Hints struct {
	// Ownership forces a parameter pass mode: "owned", "borrowed" or
	// "mutable". Empty leaves the decision to the analyzer.
	Ownership string
	// TypeStrategy selects between "conservative" (prefer Dynamic on
	// doubt) and "aggressive" (prefer concrete types).
	TypeStrategy string
	// BoundsChecking toggles checked indexing in generated code.
	BoundsChecking bool
	// StringStrategy selects "owned" String or "zero_copy" &str for
	// string parameters.
	StringStrategy string
}

// OwnershipMode translates the ownership directive into a pass mode.
// The second result is false when no directive applies.
func (h Hints) OwnershipMode() (hir.PassMode, bool) {
	switch h.Ownership {
	case "owned":
		return hir.ModeOwned, true
	case "borrowed":
		return hir.ModeRef, true
	case "mutable":
		return hir.ModeMutRef, true
	}
	return hir.ModeOwned, false
}

type directive struct {
	Key   string `parser:"@Ident"`
	Value value  `parser:"'=' @@"`
}

type value struct {
	Str  *string `parser:"@String"`
	Bool *string `parser:"| @('true' | 'false')"`
}

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `=`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var directiveParser = participle.MustBuild[directive](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Error is a malformed directive; the directive is skipped, not fatal,
// but surfaced so typos do not silently change translation strategy.
type Error struct {
	Pos     ast.Position
	Message string
}

// Parse extracts the hints for every function in the module. Directives
// bind to the closest following function definition by line number.
func Parse(mod *ast.Module) (map[string]Hints, []Error) {
	hints := make(map[string]Hints)
	var errs []Error

	for _, dir := range mod.Directives {
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(dir.Text), "#"))
		if !strings.HasPrefix(text, prefix) {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(text, prefix))

		parsed, err := directiveParser.ParseString("", body)
		if err != nil {
			errs = append(errs, Error{Pos: dir.Pos, Message: "malformed directive: " + body})
			continue
		}

		target := owningFunction(mod, dir.Pos.Line)
		if target == "" {
			errs = append(errs, Error{Pos: dir.Pos, Message: "directive is not attached to a function"})
			continue
		}

		h := hints[target]
		if aerr := apply(&h, parsed); aerr != "" {
			errs = append(errs, Error{Pos: dir.Pos, Message: aerr})
			continue
		}
		hints[target] = h
	}
	return hints, errs
}

// owningFunction finds the first function defined after the directive
// line; directives below the last function bind to nothing.
func owningFunction(mod *ast.Module, line int) string {
	best := ""
	bestLine := int(^uint(0) >> 1)
	for _, fn := range mod.Functions {
		if fn.Pos.Line > line && fn.Pos.Line < bestLine {
			best = fn.Name
			bestLine = fn.Pos.Line
		}
	}
	return best
}

func apply(h *Hints, d *directive) string {
	strVal := ""
	if d.Value.Str != nil {
		strVal = *d.Value.Str
	}
	switch d.Key {
	case "ownership":
		switch strVal {
		case "owned", "borrowed", "mutable":
			h.Ownership = strVal
		default:
			return "ownership must be one of owned, borrowed, mutable"
		}
	case "type_strategy":
		switch strVal {
		case "conservative", "aggressive":
			h.TypeStrategy = strVal
		default:
			return "type_strategy must be conservative or aggressive"
		}
	case "bounds_checking":
		if d.Value.Bool == nil {
			return "bounds_checking must be true or false"
		}
		h.BoundsChecking = *d.Value.Bool == "true"
	case "string_strategy":
		switch strVal {
		case "owned", "zero_copy":
			h.StringStrategy = strVal
		default:
			return "string_strategy must be owned or zero_copy"
		}
	default:
		return "unknown directive key: " + d.Key
	}
	return ""
}
