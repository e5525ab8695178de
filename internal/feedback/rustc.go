package feedback

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"pyrite/internal/codegen"
	"pyrite/internal/errors"
)

var log = commonlog.GetLogger("pyrite.feedback")

// Runner executes one compiler invocation. It is an interface so
// tests can substitute canned output for a real toolchain.
type Runner interface {
	// Run executes the compiler against one file and returns its
	// stderr stream. A non-nil error means the process failed to run
	// or crashed, not that the file had compile errors; those arrive
	// as diagnostics on stderr with a nil error.
	Run(ctx context.Context, file string) ([]byte, error)
}

// ExecRunner invokes rustc as a subprocess with JSON diagnostics.
// Units are checked to metadata only; no code is linked or written.
type ExecRunner struct {
	// Path is the compiler binary, "rustc" when empty.
	Path string
}

func (r *ExecRunner) Run(ctx context.Context, file string) ([]byte, error) {
	path := r.Path
	if path == "" {
		path = "rustc"
	}
	cmd := exec.CommandContext(ctx, path,
		"--error-format=json",
		"--edition", "2021",
		"--crate-type", "lib",
		"--emit", "metadata=/dev/null",
		file,
	)
	stderr, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// Nonzero exit with diagnostics on stderr is the normal
			// shape for a unit with compile errors.
			return stderr, nil
		}
		return nil, err
	}
	return stderr, nil
}

// VerifyExhaustedError is the hard per-unit failure after the runner
// kept timing out or crashing through the whole retry budget.
type VerifyExhaustedError struct {
	Code     string
	File     string
	Attempts int
	Last     error
}

func (e *VerifyExhaustedError) Error() string {
	return fmt.Sprintf("[%s] %s: compiler failed %d times, last: %v", e.Code, e.File, e.Attempts, e.Last)
}

func (e *VerifyExhaustedError) Unwrap() error { return e.Last }

// Verifier drives the feedback compiler over generated units.
type Verifier struct {
	runner  Runner
	timeout time.Duration
	retries int
	workers int
}

// Option configures a Verifier.
type Option func(*Verifier)

func WithRunner(r Runner) Option { return func(v *Verifier) { v.runner = r } }

func WithTimeout(d time.Duration) Option { return func(v *Verifier) { v.timeout = d } }

func WithRetries(n int) Option { return func(v *Verifier) { v.retries = n } }

func WithWorkers(n int) Option { return func(v *Verifier) { v.workers = n } }

func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		runner:  &ExecRunner{},
		timeout: 30 * time.Second,
		retries: 3,
		workers: 4,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks one generated file. Process-level failures (timeout,
// crash) retry up to the budget; exhausting it returns a
// VerifyExhaustedError. Compile errors in the unit are not failures
// of the boundary and come back as diagnostics.
func (v *Verifier) Verify(ctx context.Context, file string) ([]Diagnostic, error) {
	var last error
	for attempt := 1; attempt <= v.retries; attempt++ {
		runCtx, cancel := context.WithTimeout(ctx, v.timeout)
		stderr, err := v.runner.Run(runCtx, file)
		cancel()
		if err == nil {
			diags := ParseDiagnostics(stderr)
			log.Debugf("verified %s: %d diagnostics", file, len(diags))
			return diags, nil
		}
		last = err
		log.Warningf("compiler run %d/%d for %s failed: %v", attempt, v.retries, file, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &VerifyExhaustedError{
		Code:     errors.ErrorVerifyExhausted,
		File:     file,
		Attempts: v.retries,
		Last:     last,
	}
}

// Result pairs a file with its verification outcome.
type Result struct {
	File        string
	Diagnostics []Diagnostic
	Err         error
}

// VerifyAll checks files under the concurrency cap. Every file gets a
// Result even when some fail; the returned error is the first hard
// failure, for callers that only care whether the batch was clean.
func (v *Verifier) VerifyAll(ctx context.Context, files []string) ([]Result, error) {
	results := make([]Result, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			diags, err := v.Verify(ctx, file)
			mu.Lock()
			results[i] = Result{File: file, Diagnostics: diags, Err: err}
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	return results, err
}

// Attribute resolves each diagnostic's generated line back to the
// source function through the unit's span manifest.
func Attribute(diags []Diagnostic, manifest *codegen.Manifest) []Diagnostic {
	if manifest == nil {
		return diags
	}
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		if span, ok := manifest.Locate(d.Location.Line); ok {
			d.Function = span.Function
		}
		out[i] = d
	}
	return out
}
