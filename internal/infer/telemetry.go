package infer

import (
	"sort"

	"pyrite/internal/types"
)

// DegradationEvent records one binding falling back to the dynamic
// type. Events are telemetry for the escape-rate gate, not errors: the
// pipeline keeps going.
type DegradationEvent struct {
	Function string
	Binding  string
	Reason   string
}

// EscapeRate is the fraction of bindings across the module that
// degraded to Dynamic. The driver gates regressions on it.
func (m *ModuleResult) EscapeRate() float64 {
	total, dynamic := 0, 0
	for _, res := range m.Funcs {
		for _, name := range res.Table.Names() {
			t, _ := res.Table.Get(name)
			total++
			if types.IsDynamic(t) {
				dynamic++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dynamic) / float64(total)
}

// Events concatenates the degradation events of every function in a
// stable name order.
func (m *ModuleResult) Events() []DegradationEvent {
	names := make([]string, 0, len(m.Funcs))
	for name := range m.Funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []DegradationEvent
	for _, name := range names {
		out = append(out, m.Funcs[name].Events...)
	}
	return out
}
