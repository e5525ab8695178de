// Package cli wires the pyrite commands. Each command builds a driver
// from the effective config and renders its results; pipeline logic
// stays in internal/driver.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"pyrite/internal/driver"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    int
}

// NewRootCommand creates the pyrite root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pyrite",
		Short: "Transpile Python AST dumps to Rust",
		Long: `pyrite lowers JSON AST dumps of Python modules into typed HIR,
infers types and ownership, and emits Rust source with a span manifest
for compiler feedback.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(opts.Verbose, nil)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "pyrite.yaml", "config file path")
	cmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v", "increase log verbosity")

	cmd.AddCommand(NewTranspileCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// loadDriver builds a driver from the configured file, falling back to
// defaults when it does not exist.
func loadDriver(opts *RootOptions) (*driver.Driver, driver.Config, error) {
	cfg, err := driver.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, cfg, err
	}
	return driver.New(cfg), cfg, nil
}
