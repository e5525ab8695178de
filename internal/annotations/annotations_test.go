package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyrite/internal/ast"
	"pyrite/internal/hir"
)

func moduleWithDirectives(dirs []ast.Directive, fns ...*ast.FunctionDef) *ast.Module {
	return &ast.Module{Name: "m", Functions: fns, Directives: dirs}
}

func fnAt(name string, line int) *ast.FunctionDef {
	return &ast.FunctionDef{Pos: ast.Position{Line: line}, Name: name}
}

func TestOwnershipDirective(t *testing.T) {
	mod := moduleWithDirectives(
		[]ast.Directive{{Pos: ast.Position{Line: 1}, Text: `# @pyrite: ownership = "borrowed"`}},
		fnAt("process", 2),
	)

	hints, errs := Parse(mod)
	require.Empty(t, errs)

	mode, ok := hints["process"].OwnershipMode()
	require.True(t, ok)
	assert.Equal(t, hir.ModeRef, mode)
}

func TestDirectiveBindsToClosestFollowingFunction(t *testing.T) {
	mod := moduleWithDirectives(
		[]ast.Directive{{Pos: ast.Position{Line: 5}, Text: `# @pyrite: type_strategy = "aggressive"`}},
		fnAt("first", 2),
		fnAt("second", 6),
		fnAt("third", 12),
	)

	hints, errs := Parse(mod)
	require.Empty(t, errs)
	assert.Equal(t, "aggressive", hints["second"].TypeStrategy)
	assert.NotContains(t, hints, "first")
	assert.NotContains(t, hints, "third")
}

func TestMultipleDirectivesMerge(t *testing.T) {
	mod := moduleWithDirectives(
		[]ast.Directive{
			{Pos: ast.Position{Line: 1}, Text: `# @pyrite: ownership = "mutable"`},
			{Pos: ast.Position{Line: 2}, Text: `# @pyrite: bounds_checking = true`},
		},
		fnAt("update", 3),
	)

	hints, errs := Parse(mod)
	require.Empty(t, errs)

	h := hints["update"]
	assert.Equal(t, "mutable", h.Ownership)
	assert.True(t, h.BoundsChecking)
}

func TestMalformedDirectiveIsReportedNotFatal(t *testing.T) {
	mod := moduleWithDirectives(
		[]ast.Directive{
			{Pos: ast.Position{Line: 1}, Text: `# @pyrite: ownership borrowed`},
			{Pos: ast.Position{Line: 2}, Text: `# @pyrite: ownership = "borrowed"`},
		},
		fnAt("f", 3),
	)

	hints, errs := Parse(mod)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "malformed")
	// The well-formed directive still applies.
	assert.Equal(t, "borrowed", hints["f"].Ownership)
}

func TestUnknownKeyIsReported(t *testing.T) {
	mod := moduleWithDirectives(
		[]ast.Directive{{Pos: ast.Position{Line: 1}, Text: `# @pyrite: speed = "fast"`}},
		fnAt("f", 2),
	)

	_, errs := Parse(mod)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unknown directive key")
}

func TestNonPyriteCommentsIgnored(t *testing.T) {
	mod := moduleWithDirectives(
		[]ast.Directive{{Pos: ast.Position{Line: 1}, Text: `# just a comment`}},
		fnAt("f", 2),
	)

	hints, errs := Parse(mod)
	assert.Empty(t, errs)
	assert.Empty(t, hints)
}

func TestDirectiveBelowLastFunctionIsAnError(t *testing.T) {
	mod := moduleWithDirectives(
		[]ast.Directive{{Pos: ast.Position{Line: 10}, Text: `# @pyrite: ownership = "owned"`}},
		fnAt("f", 2),
	)

	_, errs := Parse(mod)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "not attached")
}
