package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/resolve"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Family string // restrict candidates to one family
	All    bool   // print the full ranking, not just the best match
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <taxon-id> <part-id> [transform-segment...]",
		Short: "Find the nearest curated entity for a transform chain",
		Long: `Rank the curated entities sharing a (taxon, part) pair against an
input chain and report the nearest match. Scores combine transform-set
overlap with a small bonus for matching parameters; ties break by
family, then id.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Family, "family", "", "restrict candidates to one family")
	cmd.Flags().BoolVar(&opts.All, "all", false, "print the full ranking")

	return cmd
}

func runResolve(opts *ResolveOptions, args []string, cmd *cobra.Command) error {
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

	st, err := openCatalog(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	ctx := cmd.Context()
	taxonID, partID := fs.TaxonID(args[0]), fs.PartID(args[1])

	if opts.All {
		candidates, err := st.Candidates(ctx, taxonID, partID, opts.Family)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		return outputRanking(formatter, resolve.Rank(candidates, chain))
	}

	match, err := resolve.Nearest(ctx, st, taxonID, partID, chain, opts.Family)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	if match == nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("no curated entities for (%s, %s)", taxonID, partID), nil)
		return NewExitError(ExitFailure, "no candidates")
	}
	return outputMatch(formatter, *match)
}

func outputMatch(formatter *OutputFormatter, match resolve.Match) error {
	if formatter.Format == "json" {
		return formatter.Success(match)
	}
	printMatch(formatter, match)
	return nil
}

func outputRanking(formatter *OutputFormatter, ranked []resolve.Match) error {
	if formatter.Format == "json" {
		return formatter.Success(ranked)
	}
	if len(ranked) == 0 {
		_ = formatter.Error(ErrCodeGeneric, "no curated entities match", nil)
		return NewExitError(ExitFailure, "no candidates")
	}
	for _, m := range ranked {
		printMatch(formatter, m)
	}
	return nil
}

func printMatch(formatter *OutputFormatter, m resolve.Match) {
	fmt.Fprintf(formatter.Writer, "%.4f  %s  (%s)\n", m.Score, m.ID, m.Name)
	if formatter.Verbose {
		fmt.Fprintf(formatter.Writer, "        matched=%v missing=%v extra=%v\n",
			m.Matched, m.Missing, m.Extra)
	}
}
