package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/fsuri"
)

// ParseOptions holds flags for the parse and fmt commands.
type ParseOptions struct {
	*RootOptions
	Strict bool
}

// ParseResult is the parse command payload.
type ParseResult struct {
	TaxonPath    []string  `json:"taxon_path"`
	ResolvedPath []string  `json:"resolved_path,omitempty"`
	Anchored     bool      `json:"anchored"` // path begins at a known kingdom
	PartID       fs.PartID `json:"part_id,omitempty"`
	Chain        []string  `json:"chain,omitempty"`
	Canonical    string    `json:"canonical"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <fs-string>",
		Short: "Parse an FS string into its structured form",
		Long: `Parse an FS string into taxon path, part, and transform chain.

Lenient parsing (the default) recovers from malformed transform
segments the way the wire format requires; --strict rejects them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject malformed transform segments")

	return cmd
}

func runParse(opts *ParseOptions, input string, cmd *cobra.Command) error {
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

	result := ParseResult{
		TaxonPath: parsed.TaxonPath,
		PartID:    parsed.PartID,
		Canonical: fsuri.Serialize(parsed.TaxonPath, parsed.PartID, parsed.Chain),
	}
	result.ResolvedPath, result.Anchored = fsuri.ResolveTaxonPath(parsed.TaxonPath)
	for _, step := range parsed.Chain {
		result.Chain = append(result.Chain, step.Render())
	}

	return outputParseResult(formatter, result)
}

func parseMode(strict bool) fsuri.Mode {
	if strict {
		return fsuri.Strict
	}
	return fsuri.Lenient
}

func outputParseResult(formatter *OutputFormatter, result ParseResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "taxon path: %s\n", strings.Join(result.TaxonPath, " / "))
	if result.Anchored {
		fmt.Fprintf(formatter.Writer, "resolved:   %s\n", strings.Join(result.ResolvedPath, " / "))
	} else {
		fmt.Fprintln(formatter.Writer, "resolved:   (not anchored at a kingdom)")
	}
	if result.PartID != "" {
		fmt.Fprintf(formatter.Writer, "part:       %s\n", result.PartID)
	}
	for i, seg := range result.Chain {
		fmt.Fprintf(formatter.Writer, "tx[%d]:      %s\n", i, seg)
	}
	fmt.Fprintf(formatter.Writer, "canonical:  %s\n", result.Canonical)
	return nil
}
