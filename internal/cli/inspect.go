package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyrite/internal/annotations"
	"pyrite/internal/ast"
	"pyrite/internal/hir"
	"pyrite/internal/infer"
	"pyrite/internal/lower"
	"pyrite/internal/types"
)

// NewInspectCommand creates the inspect command, which dumps the
// typed HIR of a unit for debugging lowering and inference.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "inspect <file.json>",
		Short:         "Dump the typed HIR of a unit",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			astMod, err := ast.DecodeModule(args[0], data)
			if err != nil {
				return err
			}
			hints, _ := annotations.Parse(astMod)
			hmod, err := lower.Module(astMod)
			if err != nil {
				return err
			}
			inf := infer.Module(hmod, hints)

			tables := make(map[string]*types.VarTypeTable, len(inf.Funcs))
			for name, res := range inf.Funcs {
				tables[name] = res.Table
			}
			fmt.Print(hir.Print(hmod, tables))
			return nil
		},
	}
}
