// Package feedback runs the target compiler over generated units and
// turns its output into structured diagnostics. Its shape is the
// stable boundary for repair strategies: whatever consumes the
// diagnostics sees kind, location and message, never raw compiler
// text.
package feedback

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the diagnostic severity as reported by the target compiler.
type Kind string

const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindNote    Kind = "note"
)

// Location is a position in a generated file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Diagnostic is one structured finding from the target compiler.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	// Function is filled in by span attribution when a manifest is
	// available, empty otherwise.
	Function string `json:"function,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Code != "" {
		return fmt.Sprintf("%s[%s] %s:%d:%d: %s", d.Kind, d.Code, d.Location.File, d.Location.Line, d.Location.Column, d.Message)
	}
	return fmt.Sprintf("%s %s:%d:%d: %s", d.Kind, d.Location.File, d.Location.Line, d.Location.Column, d.Message)
}

// rustcMessage mirrors the subset of rustc's JSON diagnostic format
// the boundary consumes. One JSON object per stderr line.
type rustcMessage struct {
	Message string `json:"message"`
	Level   string `json:"level"`
	Code    *struct {
		Code string `json:"code"`
	} `json:"code"`
	Spans []rustcSpan `json:"spans"`
}

type rustcSpan struct {
	FileName    string `json:"file_name"`
	LineStart   int    `json:"line_start"`
	ColumnStart int    `json:"column_start"`
	IsPrimary   bool   `json:"is_primary"`
}

// ParseDiagnostics decodes the compiler's JSON stream. Lines that are
// not JSON diagnostics (panic output, ICE text) are skipped; summary
// messages like "aborting due to N previous errors" carry no span and
// are dropped as well.
func ParseDiagnostics(stderr []byte) []Diagnostic {
	var out []Diagnostic
	sc := bufio.NewScanner(bytes.NewReader(stderr))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var msg rustcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		d, ok := fromRustc(msg)
		if !ok {
			continue
		}
		out = append(out, d)
	}
	return out
}

func fromRustc(msg rustcMessage) (Diagnostic, bool) {
	var kind Kind
	switch msg.Level {
	case "error", "error: internal compiler error":
		kind = KindError
	case "warning":
		kind = KindWarning
	case "note", "help":
		kind = KindNote
	default:
		return Diagnostic{}, false
	}

	var loc Location
	found := false
	for _, s := range msg.Spans {
		if s.IsPrimary {
			loc = Location{File: s.FileName, Line: s.LineStart, Column: s.ColumnStart}
			found = true
			break
		}
	}
	if !found {
		return Diagnostic{}, false
	}

	d := Diagnostic{Kind: kind, Message: msg.Message, Location: loc}
	if msg.Code != nil {
		d.Code = msg.Code.Code
	}
	return d, true
}

// ErrorCount counts hard errors in a diagnostic list.
func ErrorCount(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Kind == KindError {
			n++
		}
	}
	return n
}
