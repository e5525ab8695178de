package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pyrite/internal/driver"
)

// TranspileOptions holds flags for the transpile command.
type TranspileOptions struct {
	*RootOptions
	Output string
	Cargo  bool
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranspileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "transpile <file.json> [file.json ...]",
		Short:         "Transpile AST dumps to Rust source",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranspile(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (single input) or directory")
	cmd.Flags().BoolVar(&opts.Cargo, "cargo", false, "emit a Cargo.toml next to each unit")

	return cmd
}

func runTranspile(ctx context.Context, opts *TranspileOptions, files []string) error {
	d, cfg, err := loadDriver(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Cargo {
		cfg.EmitCargo = true
		d = driver.New(cfg)
	}

	report, err := d.Run(ctx, files)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range report.Results {
		if res.Err != nil {
			failed++
			color.Red("%s: %v", res.File, res.Err)
			continue
		}
		outPath := outputPath(opts.Output, res.File, len(files))
		if err := driver.WriteUnit(res.Unit, outPath); err != nil {
			return err
		}
		color.Green("%s -> %s (escape rate %.1f%%)", res.File, outPath, res.Unit.EscapeRate*100)
	}

	if cfg.Verify {
		if err := verifyOutputs(ctx, d, report, opts.Output, len(files)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(files))
	}
	return nil
}

func verifyOutputs(ctx context.Context, d *driver.Driver, report *driver.Report, output string, total int) error {
	var outputs []string
	for _, res := range report.Results {
		if res.Err == nil {
			outputs = append(outputs, outputPath(output, res.File, total))
		}
	}
	if len(outputs) == 0 {
		return nil
	}
	results, err := d.Verifier().VerifyAll(ctx, outputs)
	for _, r := range results {
		for _, diag := range r.Diagnostics {
			fmt.Println(diag)
		}
	}
	return err
}

// outputPath derives the target file for one input: an explicit
// output names the file when there is a single input and a directory
// otherwise; by default the .rs lands next to the dump.
func outputPath(output, input string, total int) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".rs"
	if output == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	if total == 1 && !isDir(output) {
		return output
	}
	return filepath.Join(output, base)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
