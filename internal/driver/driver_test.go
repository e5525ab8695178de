package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addDump = `{
	"node": "Module", "name": "adder.py",
	"functions": [{
		"node": "FunctionDef", "pos": {"line": 1, "col": 0}, "name": "add_one",
		"params": [{"name": "x", "pos": {"line": 1, "col": 12}, "annotation": {"name": "int"}}],
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

const opaqueDump = `{
	"node": "Module", "name": "opaque.py",
	"functions": [{
		"node": "FunctionDef", "pos": {"line": 1, "col": 0}, "name": "identity",
		"params": [{"name": "x", "pos": {"line": 1, "col": 13}}],
		"body": [{
			"node": "Return", "pos": {"line": 2, "col": 4},
			"value": {"node": "Name", "pos": {"line": 2, "col": 11}, "id": "x"}
		}]
	}]
}`

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesKeepOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyrite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nescape_gate: 0.5\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 0.5, cfg.EscapeGate)
	assert.Equal(t, "rustc", cfg.RustcPath)
	assert.Equal(t, 3, cfg.RetryCap)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyrite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worker_count: 2\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestTranspileUnit(t *testing.T) {
	d := New(DefaultConfig())
	unit, err := d.Transpile("adder.py", []byte(addDump))
	require.NoError(t, err)

	assert.Contains(t, unit.Source, "pub fn add_one(x: i64) -> i64 {")
	assert.Contains(t, unit.Source, "return x + 1;")
	require.NotNil(t, unit.Manifest)
	require.Len(t, unit.Manifest.Spans, 1)
	assert.Equal(t, "add_one", unit.Manifest.Spans[0].Function)
	assert.Zero(t, unit.EscapeRate)
}

func TestTranspileEmitsCargoWhenConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmitCargo = true
	unit, err := New(cfg).Transpile("adder.py", []byte(addDump))
	require.NoError(t, err)
	assert.Contains(t, unit.Cargo, `name = "adder_py"`)
}

func TestEscapeGateRejectsDegradedUnit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EscapeGate = 0.0
	d := New(cfg)

	unit, err := d.Transpile("opaque.py", []byte(opaqueDump))
	var gate *GateError
	require.ErrorAs(t, err, &gate)
	assert.Equal(t, "E0101", gate.Code)
	assert.Greater(t, gate.Rate, 0.0)

	// Telemetry survives the rejection so the rate can be reported.
	require.NotNil(t, unit)
	assert.Empty(t, unit.Source)
	assert.NotEmpty(t, unit.Events)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "adder.json")
	b := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(a, []byte(addDump), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("{not json"), 0o644))

	cfg := DefaultConfig()
	cfg.Workers = 2
	report, err := New(cfg).Run(context.Background(), []string{a, b})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, a, report.Results[0].File)
	assert.NoError(t, report.Results[0].Err)
	assert.Error(t, report.Results[1].Err)

	assert.Equal(t, 2, report.Stats.Units)
	assert.Equal(t, 1, report.Stats.Failed)
}

func TestWriteUnit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmitCargo = true
	unit, err := New(cfg).Transpile("adder.py", []byte(addDump))
	require.NoError(t, err)

	dir := t.TempDir()
	out := filepath.Join(dir, "adder.rs")
	require.NoError(t, WriteUnit(unit, out))

	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "pub fn add_one")

	manifest, err := os.ReadFile(filepath.Join(dir, "adder.manifest.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"add_one"`)

	cargo, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(cargo), "[package]")
}
