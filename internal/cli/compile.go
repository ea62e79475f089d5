package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/driedl/food-graph-sub002/internal/compiler"
	"github.com/driedl/food-graph-sub002/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // optional snapshot dump path
}

// CompilationResult is the success payload of a compile run.
type CompilationResult struct {
	Revision   string `json:"revision"`
	Taxa       int    `json:"taxa"`
	Parts      int    `json:"parts"`
	Transforms int    `json:"transforms"`
	TPTs       int    `json:"tpts"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <curation-dir>",
		Short: "Compile CUE curation files into the catalog database",
		Long: `Compile CUE curation files into a catalog snapshot.

The compiler parses taxon, part, transform, and tpt entries, checks
cross-references (parents, applicability, duplicate identities), and
replaces the catalog database contents in one transaction.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "also write the snapshot as JSON to this path")

	return cmd
}

func runCompile(opts *CompileOptions, curationDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadCatalog(curationDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, curationDir)
	formatter.VerboseLog("Parsed %d taxa, %d parts, %d transforms, %d curated entities",
		len(loadResult.Taxa), len(loadResult.Parts), len(loadResult.Transforms), len(loadResult.TPTs))

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	// Cross-reference checks and snapshot assembly
	snap, asmErrors := compiler.Assemble(loadResult.Taxa, loadResult.Parts, loadResult.Transforms, loadResult.TPTs)
	if len(asmErrors) > 0 {
		return outputCompileErrors(formatter, asmErrors)
	}

	revID, err := uuid.NewV7()
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("generating revision id: %v", err))
	}
	rev := store.Revision{ID: revID.String(), Source: curationDir}

	st, err := store.Open(opts.DB)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("opening catalog database: %v", err))
	}
	defer st.Close()

	if err := st.ReplaceSnapshot(cmd.Context(), rev, snap); err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("writing snapshot: %v", err))
	}

	if opts.Output != "" {
		if err := writeSnapshotToFile(snap, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	result := CompilationResult{
		Revision:   rev.ID,
		Taxa:       len(snap.Taxa),
		Parts:      len(snap.Parts),
		Transforms: len(snap.Transforms),
		TPTs:       len(snap.TPTs),
	}
	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d taxa, %d part(s), %d transform(s), %d curated entit(ies)\n",
		result.Taxa, result.Parts, result.Transforms, result.TPTs)
	fmt.Fprintf(formatter.Writer, "Revision %s\n", result.Revision)
	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote snapshot to %s\n", outputFile)
	}
	return nil
}

// outputCompileError outputs a single compile-stopping error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs the collected parse or assembly errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) && compileErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				compileErr.Pos.Filename(),
				compileErr.Pos.Line(),
				compileErr.Pos.Column())
		}
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	var validationErr *compiler.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code, fmt.Sprintf("%s: %s", validationErr.Entity, validationErr.Message)
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeSnapshotToFile dumps the assembled snapshot as indented JSON.
func writeSnapshotToFile(snap store.Snapshot, filename string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
