package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pyrite/internal/feedback"
)

// NewVerifyCommand creates the verify command: the feedback compiler
// runs over already generated files and prints what it finds.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "verify <file.rs> [file.rs ...]",
		Short:         "Run the feedback compiler over generated files",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := loadDriver(rootOpts)
			if err != nil {
				return err
			}

			results, verr := d.Verifier().VerifyAll(cmd.Context(), args)
			errCount := 0
			for _, r := range results {
				if r.Err != nil {
					color.Red("%s: %v", r.File, r.Err)
					errCount++
					continue
				}
				for _, diag := range r.Diagnostics {
					switch diag.Kind {
					case feedback.KindError:
						color.Red("%s", diag)
					case feedback.KindWarning:
						color.Yellow("%s", diag)
					default:
						fmt.Println(diag)
					}
				}
				errCount += feedback.ErrorCount(r.Diagnostics)
			}
			if verr != nil {
				return verr
			}
			if errCount > 0 {
				return fmt.Errorf("%d errors across %d files", errCount, len(args))
			}
			color.Green("%d files verified clean", len(args))
			return nil
		},
	}
}
