package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driedl/food-graph-sub002/internal/fsuri"
)

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <fs-string>",
		Short: "Re-serialize an FS string canonically",
		Long: `Parse an FS string and print its canonical serialization: transforms
id-sorted, parameter keys sorted, numbers rounded to 6 fractional
digits. Formatting an already-canonical string is a no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject malformed transform segments")

	return cmd
}

func runFmt(opts *ParseOptions, input string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	parsed, err := fsuri.ParseMode(input, parseMode(opts.Strict))
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadFSString, err.Error())
	}

	canonical := fsuri.Serialize(parsed.TaxonPath, parsed.PartID, parsed.Chain)
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"canonical": canonical})
	}
	fmt.Fprintln(formatter.Writer, canonical)
	return nil
}
