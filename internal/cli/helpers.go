package cli

import (
	"fmt"
	"os"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/fsuri"
	"github.com/driedl/food-graph-sub002/internal/store"
)

// openCatalog opens the catalog database for a read command. The file
// must already exist; pointing a query at a db the compiler never wrote
// is an operator error, not an empty result.
func openCatalog(opts *RootOptions) (*store.Store, error) {
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog database not found: %s (run compile first)", opts.DB)
	}
	return store.Open(opts.DB)
}

// chainFromArgs parses trailing command-line arguments as transform
// segments, e.g. "tx:mill{grade=fine}". Arguments are strict: a shell
// typo should fail loudly, not be silently recovered.
func chainFromArgs(args []string) (fs.TransformChain, error) {
	var chain fs.TransformChain
	for _, arg := range args {
		step, err := fsuri.ParseSegment(arg, fsuri.Strict)
		if err != nil {
			return nil, err
		}
		chain = append(chain, step)
	}
	return chain, nil
}

// outputCommandError reports a command-level failure (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
