// Package excflow performs exception-scope analysis: a stack-based
// classification of guarded and handler regions that decides, for every
// raise site, whether it is absorbed locally or forces the enclosing
// function to carry a fallible signature.
package excflow

type scopeKind int

const (
	scopeUnhandled scopeKind = iota
	scopeTry
	scopeHandler
)

type scope struct {
	kind scopeKind
	// handled holds the union of exception names across the guarded
	// block's handlers. catchAll is set when any handler names no type.
	handled  map[string]bool
	catchAll bool
}

// Tracker is the per-traversal scope stack. The base frame is the
// unhandled scope; the stack must return to exactly that frame at
// function exit.
type Tracker struct {
	stack []scope
}

func NewTracker() *Tracker {
	return &Tracker{stack: []scope{{kind: scopeUnhandled}}}
}

// EnterTry pushes the guarded scope for a try body. handledTypes is the
// union across the handlers; catchAll marks a bare except clause.
func (t *Tracker) EnterTry(handledTypes []string, catchAll bool) {
	set := make(map[string]bool, len(handledTypes))
	for _, name := range handledTypes {
		set[name] = true
	}
	t.stack = append(t.stack, scope{kind: scopeTry, handled: set, catchAll: catchAll})
}

// EnterHandler replaces the innermost guarded scope with a handler
// scope: a raise inside a handler body is no longer caught by the try
// it belongs to, only by outer guards.
func (t *Tracker) EnterHandler() {
	t.pop()
	t.stack = append(t.stack, scope{kind: scopeHandler})
}

// LeaveHandler pops the handler scope, restoring the enclosing one.
func (t *Tracker) LeaveHandler() {
	t.pop()
}

// LeaveTry pops the guarded scope after the try body has been walked.
func (t *Tracker) LeaveTry() {
	t.pop()
}

func (t *Tracker) pop() {
	if len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// Depth reports the number of frames above the base scope. Zero at
// function boundaries.
func (t *Tracker) Depth() int {
	return len(t.stack) - 1
}

// InTryBlock reports whether the current position is inside a guarded
// block body.
func (t *Tracker) InTryBlock() bool {
	return t.stack[len(t.stack)-1].kind == scopeTry
}

// IsHandled reports whether a raise of the named exception at the
// current position is absorbed by the innermost enclosing guarded
// scope. Only the innermost guard is consulted; handler frames are
// transparent because an outer try still guards a handler body.
func (t *Tracker) IsHandled(excType string) bool {
	for i := len(t.stack) - 1; i >= 0; i-- {
		s := t.stack[i]
		if s.kind == scopeTry {
			return s.catchAll || s.handled[excType]
		}
	}
	return false
}
