// Package driver orchestrates the transpilation pipeline: decode,
// lower, analyze, generate, per unit, with bounded parallelism across
// units. All cross-function analysis inside a unit is single-threaded
// because the fixed points (forward references, mutual recursion,
// transitive mutability) are whole-module computations; parallelism
// lives between units, where nothing is shared.
package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"pyrite/internal/annotations"
	"pyrite/internal/ast"
	"pyrite/internal/borrow"
	"pyrite/internal/codegen"
	"pyrite/internal/errors"
	"pyrite/internal/excflow"
	"pyrite/internal/feedback"
	"pyrite/internal/infer"
	"pyrite/internal/lower"
)

var log = commonlog.GetLogger("pyrite.driver")

// Unit is the result of transpiling one source dump.
type Unit struct {
	Name     string
	Source   string
	Manifest *codegen.Manifest
	Cargo    string

	EscapeRate float64
	Events     []infer.DegradationEvent
	// AnnotationErrors are malformed directives; they never abort the
	// unit, the directive is just ignored.
	AnnotationErrors []annotations.Error
}

// GateError rejects a unit whose inference quality regressed past the
// configured threshold.
type GateError struct {
	Code string
	Unit string
	Rate float64
	Gate float64
}

func (e *GateError) Error() string {
	return fmt.Sprintf("[%s] %s: dynamic escape rate %.1f%% exceeds gate %.1f%%",
		e.Code, e.Unit, e.Rate*100, e.Gate*100)
}

// Driver runs the pipeline under one configuration.
type Driver struct {
	cfg Config
}

func New(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// Transpile runs the full per-unit pipeline over one decoded dump.
// The escape-rate gate is enforced here: a violating unit returns its
// telemetry together with a GateError so callers can still report the
// rate, but no source is produced for it.
func (d *Driver) Transpile(name string, data []byte) (*Unit, error) {
	astMod, err := ast.DecodeModule(name, data)
	if err != nil {
		return nil, err
	}

	hints, annErrs := annotations.Parse(astMod)
	for _, ae := range annErrs {
		log.Warningf("%s: %s", name, ae.Message)
	}

	hmod, err := lower.Module(astMod)
	if err != nil {
		return nil, err
	}

	symbols := infer.BuildSymbols(hmod)
	inf := infer.ModuleWithSymbols(hmod, symbols, hints)

	unit := &Unit{
		Name:             name,
		EscapeRate:       inf.EscapeRate(),
		Events:           inf.Events(),
		AnnotationErrors: annErrs,
	}

	if unit.EscapeRate > d.cfg.EscapeGate {
		return unit, &GateError{
			Code: errors.ErrorEscapeGate,
			Unit: name,
			Rate: unit.EscapeRate,
			Gate: d.cfg.EscapeGate,
		}
	}

	flow, err := excflow.Analyze(hmod)
	if err != nil {
		return unit, err
	}
	owners := borrow.Analyze(hmod, inf, hints)

	out, err := codegen.New(hmod, inf, flow, owners, hints).Generate()
	if err != nil {
		return unit, err
	}
	unit.Source = out.Source
	unit.Manifest = out.Manifest
	if d.cfg.EmitCargo {
		unit.Cargo = codegen.CargoManifest(hmod.Name)
	}
	return unit, nil
}

// UnitResult pairs a unit with its outcome in a batch run.
type UnitResult struct {
	File string
	Unit *Unit
	Err  error
}

// Stats is the batch summary folded after all workers drain.
type Stats struct {
	Units       int
	Failed      int
	MeanEscape  float64
	Degraded    int
	EventCounts map[string]int
}

// Report is the outcome of a batch run.
type Report struct {
	Results []UnitResult
	Stats   Stats
}

// Run transpiles the given dump files under the worker cap. Every
// file gets a result slot regardless of outcome; statistics are
// folded by a single reducer after the pool drains, so workers never
// touch shared state beyond their own slot.
func (d *Driver) Run(ctx context.Context, files []string) (*Report, error) {
	results := make([]UnitResult, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := UnitResult{File: file}
			data, err := os.ReadFile(file)
			if err == nil {
				res.Unit, res.Err = d.Transpile(unitName(file), data)
			} else {
				res.Err = err
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results, Stats: fold(results)}
	log.Infof("transpiled %d units, %d failed, mean escape rate %.1f%%",
		report.Stats.Units, report.Stats.Failed, report.Stats.MeanEscape*100)
	return report, nil
}

// fold reduces per-unit telemetry into the batch summary.
func fold(results []UnitResult) Stats {
	stats := Stats{EventCounts: make(map[string]int)}
	var escapeSum float64
	measured := 0
	for _, r := range results {
		stats.Units++
		if r.Err != nil {
			stats.Failed++
		}
		if r.Unit == nil {
			continue
		}
		escapeSum += r.Unit.EscapeRate
		measured++
		stats.Degraded += len(r.Unit.Events)
		for _, ev := range r.Unit.Events {
			stats.EventCounts[ev.Reason]++
		}
	}
	if measured > 0 {
		stats.MeanEscape = escapeSum / float64(measured)
	}
	return stats
}

// Verifier builds the feedback verifier wired to this configuration.
func (d *Driver) Verifier() *feedback.Verifier {
	return feedback.NewVerifier(
		feedback.WithRunner(&feedback.ExecRunner{Path: d.cfg.RustcPath}),
		feedback.WithTimeout(d.cfg.Timeout()),
		feedback.WithRetries(d.cfg.RetryCap),
		feedback.WithWorkers(d.cfg.Workers),
	)
}

// WriteUnit writes a unit's outputs next to each other: the source,
// its span manifest, and optionally a crate manifest.
func WriteUnit(unit *Unit, outPath string) error {
	if err := os.WriteFile(outPath, []byte(unit.Source), 0o644); err != nil {
		return err
	}
	manifestPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".manifest.json"
	data, err := json.MarshalIndent(unit.Manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return err
	}
	if unit.Cargo != "" {
		cargoPath := filepath.Join(filepath.Dir(outPath), "Cargo.toml")
		if err := os.WriteFile(cargoPath, []byte(unit.Cargo), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// unitName strips the dump extension so calc.json transpiles as the
// module calc.py.
func unitName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".py"
}
