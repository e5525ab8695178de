package errors

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"pyrite/internal/ast"
)

func TestFormatCarriesCodeAndLocation(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	source := "def f(x):\n    match x:\n        pass"
	r := NewReporter("unit.py", source)

	out := r.Format(Diagnostic{
		Level:    LevelError,
		Code:     ErrorUnsupportedConstruct,
		Message:  "no translation rule for match statement",
		Position: ast.Position{Filename: "unit.py", Line: 2, Column: 5},
		Length:   5,
	})

	assert.Contains(t, out, "error[E0001]: no translation rule for match statement")
	assert.Contains(t, out, "unit.py:2:5")
	assert.Contains(t, out, "match x:")
	assert.Contains(t, out, "^^^^^")
}

func TestFormatNotesAndHelp(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	r := NewReporter("unit.py", "x = data")
	out := r.Format(Diagnostic{
		Level:    LevelNote,
		Code:     NoteInferenceDegradation,
		Message:  "binding 'x' degraded to dynamic",
		Position: ast.Position{Line: 1, Column: 1},
		Notes:    []string{"element types of 'data' are mixed"},
		Help:     "add a type annotation to keep the binding concrete",
	})

	assert.Contains(t, out, "note: element types of 'data' are mixed")
	assert.Contains(t, out, "help: add a type annotation")
}

func TestFromLowering(t *testing.T) {
	err := Unsupported("decorator", ast.Position{Filename: "a.py", Line: 3, Column: 1})
	d := FromLowering(err)

	assert.Equal(t, LevelError, d.Level)
	assert.Equal(t, ErrorUnsupportedConstruct, d.Code)
	assert.Contains(t, err.Error(), "a.py:3:1")
}
