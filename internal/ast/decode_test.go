package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleFunction(t *testing.T) {
	dump := `{
		"node": "Module", "name": "example",
		"functions": [{
			"node": "FunctionDef", "pos": {"line": 1, "col": 0}, "name": "add_one",
			"params": [{"name": "x", "pos": {"line": 1, "col": 10}, "annotation": {"name": "int"}}],
			"returns": {"name": "int"},
			"body": [{
				"node": "Return", "pos": {"line": 2, "col": 4},
				"value": {
					"node": "BinOp", "pos": {"line": 2, "col": 11}, "op": "+",
					"left": {"node": "Name", "pos": {"line": 2, "col": 11}, "id": "x"},
					"right": {"node": "Constant", "pos": {"line": 2, "col": 15}, "kind": "int", "value": 1}
				}
			}]
		}]
	}`

	mod, err := DecodeModule("example.py", []byte(dump))
	require.NoError(t, err)
	require.Len(t, mod.Functions, 1)

	fn := mod.Functions[0]
	assert.Equal(t, "add_one", fn.Name)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "int", fn.Params[0].Annotation.Name)
	assert.Equal(t, "int", fn.Returns.Name)

	ret, ok := fn.Body[0].(*ReturnStmt)
	require.True(t, ok)
	binop, ok := ret.Value.(*BinOpExpr)
	require.True(t, ok)
	assert.Equal(t, "+", binop.Op)
	assert.Equal(t, "example.py", binop.NodePos().Filename)
	assert.Equal(t, 2, binop.NodePos().Line)
}

func TestDecodeTryExcept(t *testing.T) {
	dump := `{
		"node": "Module", "name": "m",
		"functions": [{
			"node": "FunctionDef", "pos": {"line": 1, "col": 0}, "name": "f",
			"params": [], "body": [{
				"node": "Try", "pos": {"line": 2, "col": 4},
				"body": [{"node": "Pass", "pos": {"line": 3, "col": 8}}],
				"handlers": [{
					"pos": {"line": 4, "col": 4}, "type": "ValueError", "name": "e",
					"body": [{"node": "Pass", "pos": {"line": 5, "col": 8}}]
				}]
			}]
		}]
	}`

	mod, err := DecodeModule("m.py", []byte(dump))
	require.NoError(t, err)

	try, ok := mod.Functions[0].Body[0].(*TryStmt)
	require.True(t, ok)
	require.Len(t, try.Handlers, 1)
	assert.Equal(t, "ValueError", try.Handlers[0].ExcType)
	assert.Equal(t, "e", try.Handlers[0].BindAs)
}

func TestDecodeUnknownStatementFails(t *testing.T) {
	dump := `{
		"node": "Module", "name": "m",
		"functions": [{
			"node": "FunctionDef", "pos": {"line": 1, "col": 0}, "name": "f",
			"params": [], "body": [{"node": "Match", "pos": {"line": 2, "col": 4}}]
		}]
	}`

	_, err := DecodeModule("m.py", []byte(dump))
	require.Error(t, err)
	// The error must carry the source position of the unsupported construct.
	assert.Contains(t, err.Error(), "m.py:2:4")
	assert.Contains(t, err.Error(), "Match")
}

func TestDecodeChainedCompareKeepsAllOps(t *testing.T) {
	dump := `{
		"node": "Module", "name": "m",
		"functions": [{
			"node": "FunctionDef", "pos": {"line": 1, "col": 0}, "name": "f",
			"params": [], "body": [{
				"node": "Expr", "pos": {"line": 2, "col": 4},
				"value": {
					"node": "Compare", "pos": {"line": 2, "col": 4},
					"left": {"node": "Constant", "pos": {"line": 2, "col": 4}, "kind": "int", "value": 0},
					"ops": ["<", "<="],
					"comparators": [
						{"node": "Name", "pos": {"line": 2, "col": 8}, "id": "x"},
						{"node": "Constant", "pos": {"line": 2, "col": 13}, "kind": "int", "value": 10}
					]
				}
			}]
		}]
	}`

	mod, err := DecodeModule("m.py", []byte(dump))
	require.NoError(t, err)

	stmt := mod.Functions[0].Body[0].(*ExprStmt)
	cmp, ok := stmt.Value.(*CompareExpr)
	require.True(t, ok)
	assert.Equal(t, []string{"<", "<="}, cmp.Ops)
	assert.Len(t, cmp.Comparators, 2)
}
