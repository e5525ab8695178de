package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pyrite/internal/driver"
)

// NewCheckCommand creates the check command: the full pipeline runs
// but nothing is written, so regressions surface in CI without
// touching the tree.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "check <file.json> [file.json ...]",
		Short:         "Run the pipeline without writing output",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := loadDriver(rootOpts)
			if err != nil {
				return err
			}
			report, err := d.Run(cmd.Context(), args)
			if err != nil {
				return err
			}

			gateViolated := false
			for _, res := range report.Results {
				switch {
				case res.Err == nil:
					color.Green("%s: ok (escape rate %.1f%%)", res.File, res.Unit.EscapeRate*100)
				default:
					var gate *driver.GateError
					if errors.As(res.Err, &gate) {
						gateViolated = true
					}
					color.Red("%s: %v", res.File, res.Err)
				}
				if res.Unit != nil {
					for _, ev := range res.Unit.Events {
						fmt.Printf("  note: %s.%s: %s\n", ev.Function, ev.Binding, ev.Reason)
					}
				}
			}

			fmt.Printf("%d units, %d failed, mean escape rate %.1f%%\n",
				report.Stats.Units, report.Stats.Failed, report.Stats.MeanEscape*100)
			if gateViolated {
				return fmt.Errorf("escape-rate gate violated")
			}
			if report.Stats.Failed > 0 {
				return fmt.Errorf("%d units failed", report.Stats.Failed)
			}
			return nil
		},
	}
}
