package codegen

import (
	"github.com/google/uuid"
)

// Span maps a run of generated lines back to the HIR node it came
// from, so compiler diagnostics can be attributed to source functions.
type Span struct {
	Function  string `json:"function"`
	NodeID    int    `json:"node_id"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Manifest is the per-unit span index handed across the feedback
// boundary. Its shape is stable regardless of repair strategy.
type Manifest struct {
	UnitID string `json:"unit_id"`
	Module string `json:"module"`
	Spans  []Span `json:"spans"`
}

func NewManifest(module string) *Manifest {
	return &Manifest{UnitID: uuid.NewString(), Module: module}
}

func (m *Manifest) Record(function string, nodeID, startLine, endLine int) {
	m.Spans = append(m.Spans, Span{
		Function:  function,
		NodeID:    nodeID,
		StartLine: startLine,
		EndLine:   endLine,
	})
}

// Locate finds the span containing a generated line.
func (m *Manifest) Locate(line int) (Span, bool) {
	for _, s := range m.Spans {
		if line >= s.StartLine && line <= s.EndLine {
			return s, true
		}
	}
	return Span{}, false
}
