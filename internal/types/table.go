package types

import "sort"

// VarTypeTable holds the binding→type assignments for one function.
// Inference owns it while mutable; Freeze is called before codegen so a
// stale write during emission is caught as a programming error. A
// feedback-loop patch that re-runs inference rebuilds the table
// wholesale instead of editing the frozen one.
type VarTypeTable struct {
	vars   map[string]Type
	frozen bool
}

func NewVarTypeTable() *VarTypeTable {
	return &VarTypeTable{vars: make(map[string]Type)}
}

func (vt *VarTypeTable) Set(name string, t Type) {
	if vt.frozen {
		panic("types: write to frozen VarTypeTable")
	}
	vt.vars[name] = t
}

func (vt *VarTypeTable) Get(name string) (Type, bool) {
	t, ok := vt.vars[name]
	return t, ok
}

// GetOrDynamic returns the recorded type, or Dynamic for bindings the
// inference pass never saw. Codegen uses this so a lookup miss can never
// abort emission.
func (vt *VarTypeTable) GetOrDynamic(name string) Type {
	if t, ok := vt.vars[name]; ok {
		return t
	}
	return Dynamic
}

func (vt *VarTypeTable) Freeze() {
	vt.frozen = true
}

func (vt *VarTypeTable) Len() int {
	return len(vt.vars)
}

// Names returns the bindings in sorted order for deterministic output.
func (vt *VarTypeTable) Names() []string {
	names := make([]string, 0, len(vt.vars))
	for name := range vt.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EscapeRate is the fraction of bindings that degraded to Dynamic.
// An empty table counts as fully resolved.
func (vt *VarTypeTable) EscapeRate() float64 {
	if len(vt.vars) == 0 {
		return 0
	}
	dynamic := 0
	for _, t := range vt.vars {
		if IsDynamic(t) {
			dynamic++
		}
	}
	return float64(dynamic) / float64(len(vt.vars))
}
