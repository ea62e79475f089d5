package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/validate"
)

// ValidationResult is the validate command payload.
type ValidationResult struct {
	TaxonID fs.TaxonID      `json:"taxon_id"`
	PartID  fs.PartID       `json:"part_id"`
	Status  validate.Status `json:"status"`
	Chain   *ChainFailure   `json:"chain,omitempty"`
}

// ChainFailure reports the first chain step outside the declared
// transform set.
type ChainFailure struct {
	StepID fs.TransformID `json:"step_id"`
	Index  int            `json:"index"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <taxon-id> <part-id> [transform-segment...]",
		Short: "Check part and transform applicability for a taxon",
		Long: `Check whether a part applies to a taxon, and optionally whether every
transform in a chain is declared for the pair.

The pair check reports exactly one of OK, TAXON_MISSING, PART_MISSING,
or PART_NOT_APPLICABLE. Transform segments take the same shape as FS
string segments, e.g. 'tx:mill{grade=fine}'.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	chain, err := chainFromArgs(args[2:])
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadSegment, err.Error())
	}

	st, err := openCatalog(opts)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	ctx := cmd.Context()
	result := ValidationResult{TaxonID: fs.TaxonID(args[0]), PartID: fs.PartID(args[1])}

	result.Status, err = validate.Pair(ctx, st, result.TaxonID, result.PartID)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}

	if result.Status.OK() && len(chain) > 0 {
		err := validate.Chain(ctx, st, result.TaxonID, result.PartID, chain)
		var chainErr *validate.ChainError
		switch {
		case errors.As(err, &chainErr):
			result.Chain = &ChainFailure{StepID: chainErr.StepID, Index: chainErr.Index}
		case err != nil:
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
	}

	return outputValidationResult(formatter, result)
}

func outputValidationResult(formatter *OutputFormatter, result ValidationResult) error {
	passed := result.Status.OK() && result.Chain == nil

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		if !passed {
			return NewExitError(ExitFailure, fmt.Sprintf("validation status %s", result.Status))
		}
		return nil
	}

	if passed {
		fmt.Fprintf(formatter.Writer, "✓ OK: %s / %s\n", result.TaxonID, result.PartID)
		return nil
	}

	if result.Chain != nil {
		fmt.Fprintf(formatter.Writer, "✗ transform %s (step %d) is not declared for (%s, %s)\n",
			result.Chain.StepID, result.Chain.Index, result.TaxonID, result.PartID)
		return NewExitError(ExitFailure, "chain validation failed")
	}

	fmt.Fprintf(formatter.Writer, "✗ %s: %s / %s\n", result.Status, result.TaxonID, result.PartID)
	return NewExitError(ExitFailure, fmt.Sprintf("validation status %s", result.Status))
}
