package codegen

import (
	"fmt"
	"strings"
)

// CargoManifest renders a minimal crate manifest so a generated unit
// builds standalone under the target toolchain.
func CargoManifest(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[package]\n")
	fmt.Fprintf(&b, "name = %q\n", crateName(name))
	fmt.Fprintf(&b, "version = \"0.1.0\"\n")
	fmt.Fprintf(&b, "edition = \"2021\"\n")
	fmt.Fprintf(&b, "\n[lib]\n")
	fmt.Fprintf(&b, "path = \"lib.rs\"\n")
	return b.String()
}

// crateName sanitizes a module name into a valid crate identifier.
func crateName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || out[0] >= '0' && out[0] <= '9' {
		out = "unit_" + out
	}
	return out
}
