package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/identity"
	"github.com/driedl/food-graph-sub002/internal/validate"
)

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify <taxon-id> <part-id> [transform-segment...]",
		Short: "Compute the canonical identity of a food state",
		Long: `Validate a (taxon, part, chain) tuple and compute its canonical id
and identity hash. When the identity matches a curated entity, its
curated name is returned; otherwise a display name is synthesized from
the catalog.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runIdentify(opts *RootOptions, args []string, cmd *cobra.Command) error {
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

	svc := &identity.Service{Oracle: st, Catalog: st}
	state := fs.FoodState{TaxonID: fs.TaxonID(args[0]), PartID: fs.PartID(args[1]), Chain: chain}

	result, err := svc.Identify(cmd.Context(), state)
	var chainErr *validate.ChainError
	switch {
	case errors.As(err, &chainErr):
		_ = formatter.Error(ErrCodeBadSegment, chainErr.Error(), nil)
		return NewExitError(ExitFailure, chainErr.Error())
	case err != nil:
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}

	return outputIdentifyResult(formatter, result)
}

func outputIdentifyResult(formatter *OutputFormatter, result *identity.Result) error {
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		if !result.Status.OK() {
			return NewExitError(ExitFailure, fmt.Sprintf("identify status %s", result.Status))
		}
		return nil
	}

	if !result.Status.OK() {
		fmt.Fprintf(formatter.Writer, "✗ %s\n", result.Status)
		return NewExitError(ExitFailure, fmt.Sprintf("identify status %s", result.Status))
	}

	fmt.Fprintf(formatter.Writer, "%s\n", result.CanonicalID)
	fmt.Fprintf(formatter.Writer, "  hash: %s\n", result.IdentityHash)
	fmt.Fprintf(formatter.Writer, "  name: %s\n", result.Name)
	if result.AlreadyExists {
		fmt.Fprintln(formatter.Writer, "  curated: yes")
	} else {
		fmt.Fprintln(formatter.Writer, "  curated: no")
	}
	return nil
}
