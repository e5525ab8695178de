package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyrite/internal/codegen"
)

const typeMismatchJSON = `{"message":"mismatched types","code":{"code":"E0308"},"level":"error","spans":[{"file_name":"calc.rs","line_start":12,"column_start":9,"is_primary":true}]}
{"message":"unused variable: ` + "`n`" + `","code":{"code":"unused_variables"},"level":"warning","spans":[{"file_name":"calc.rs","line_start":7,"column_start":5,"is_primary":true}]}
{"message":"aborting due to 1 previous error","code":null,"level":"error","spans":[]}
not json at all
`

func TestParseDiagnostics(t *testing.T) {
	diags := ParseDiagnostics([]byte(typeMismatchJSON))
	require.Len(t, diags, 2, "spanless summaries and non-JSON lines are dropped")

	assert.Equal(t, KindError, diags[0].Kind)
	assert.Equal(t, "E0308", diags[0].Code)
	assert.Equal(t, "mismatched types", diags[0].Message)
	assert.Equal(t, Location{File: "calc.rs", Line: 12, Column: 9}, diags[0].Location)

	assert.Equal(t, KindWarning, diags[1].Kind)
	assert.Equal(t, 1, ErrorCount(diags))
}

func TestParseDiagnosticsEmptyOnCleanBuild(t *testing.T) {
	assert.Empty(t, ParseDiagnostics(nil))
	assert.Empty(t, ParseDiagnostics([]byte("\n\n")))
}

// stubRunner fails a fixed number of times before succeeding.
type stubRunner struct {
	mu       sync.Mutex
	failures int
	calls    int
	stderr   []byte
}

func (s *stubRunner) Run(ctx context.Context, file string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("signal: killed")
	}
	return s.stderr, nil
}

func TestVerifyRetriesProcessFailures(t *testing.T) {
	runner := &stubRunner{failures: 2, stderr: []byte(typeMismatchJSON)}
	v := NewVerifier(WithRunner(runner), WithRetries(3), WithTimeout(time.Second))

	diags, err := v.Verify(context.Background(), "calc.rs")
	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
	assert.Len(t, diags, 2)
}

func TestVerifyExhaustsRetryBudget(t *testing.T) {
	runner := &stubRunner{failures: 10}
	v := NewVerifier(WithRunner(runner), WithRetries(3), WithTimeout(time.Second))

	_, err := v.Verify(context.Background(), "calc.rs")
	var exhausted *VerifyExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "E0400", exhausted.Code)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, 3, runner.calls)
}

func TestVerifyAllKeepsPerFileResults(t *testing.T) {
	runner := &stubRunner{stderr: []byte(typeMismatchJSON)}
	v := NewVerifier(WithRunner(runner), WithRetries(1), WithWorkers(2), WithTimeout(time.Second))

	results, err := v.VerifyAll(context.Background(), []string{"a.rs", "b.rs"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.rs", results[0].File)
	assert.Equal(t, "b.rs", results[1].File)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Len(t, r.Diagnostics, 2)
	}
}

func TestAttributeMapsLinesToFunctions(t *testing.T) {
	m := codegen.NewManifest("calc.py")
	m.Record("add", 1, 3, 5)
	m.Record("parse_or_zero", 2, 7, 20)

	diags := ParseDiagnostics([]byte(typeMismatchJSON))
	attributed := Attribute(diags, m)

	require.Len(t, attributed, 2)
	assert.Equal(t, "parse_or_zero", attributed[0].Function, "line 12 falls inside the second span")
	assert.Equal(t, "parse_or_zero", attributed[1].Function)
}
