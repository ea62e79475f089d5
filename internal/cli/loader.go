package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/driedl/food-graph-sub002/internal/compiler"
)

// LoadMode controls how errors are handled during catalog loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading a curation directory.
type LoadResult struct {
	Taxa       []compiler.TaxonDef
	Parts      []compiler.PartDef
	Transforms []compiler.TransformDef
	TPTs       []compiler.TPTDef
	CUEValue   cue.Value // The raw CUE value for additional processing
	FileCount  int       // Number of CUE files found
}

// LoadError represents an error that occurred during catalog loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCatalog loads and parses CUE curation files from a directory. The
// four top-level structs (taxon, part, transform, tpt) are compiled
// entry by entry; cross-reference checks happen later, in
// compiler.Assemble.
//
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadCatalog(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("curation directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing curation directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	collect := func(root string, compileOne func(cue.Value) error) bool {
		val := value.LookupPath(cue.ParsePath(root))
		if !val.Exists() {
			return true
		}
		iter, iterErr := val.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating %s entries: %v", root, iterErr)})
			return mode != LoadModeFailFast
		}
		for iter.Next() {
			if err := compileOne(iter.Value()); err != nil {
				errs = append(errs, convertCompileError(err, root+"."+iter.Label()))
				if mode == LoadModeFailFast {
					return false
				}
			}
		}
		return true
	}

	ok := collect("taxon", func(v cue.Value) error {
		def, err := compiler.CompileTaxon(v)
		if err != nil {
			return err
		}
		result.Taxa = append(result.Taxa, *def)
		return nil
	})
	ok = ok && collect("part", func(v cue.Value) error {
		def, err := compiler.CompilePart(v)
		if err != nil {
			return err
		}
		result.Parts = append(result.Parts, *def)
		return nil
	})
	ok = ok && collect("transform", func(v cue.Value) error {
		def, err := compiler.CompileTransform(v)
		if err != nil {
			return err
		}
		result.Transforms = append(result.Transforms, *def)
		return nil
	})
	ok = ok && collect("tpt", func(v cue.Value) error {
		def, err := compiler.CompileTPT(v)
		if err != nil {
			return err
		}
		result.TPTs = append(result.TPTs, *def)
		return nil
	})
	if !ok {
		return result, errs
	}

	// Check if we found anything
	if len(result.Taxa) == 0 && len(result.Parts) == 0 &&
		len(result.Transforms) == 0 && len(result.TPTs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no catalog entries found in curation files"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // Catalog database error
	ErrCodeBadSegment  = "E009" // Malformed transform segment argument
	ErrCodeBadFSString = "E010" // Malformed FS string

	// Curation entry errors
	ErrCodeMissingField = "E101" // Required curation field absent
	ErrCodeInvalidParam = "E102" // Parameter value outside the closed union
	ErrCodeCUESyntax    = "E103" // CUE-level parse or evaluation error
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "slug", field == "name", field == "taxon", field == "part", field == "id", field == "transforms":
		return ErrCodeMissingField
	case strings.HasPrefix(field, "params."):
		return ErrCodeInvalidParam
	case field == "cue":
		return ErrCodeCUESyntax
	default:
		return ErrCodeGeneric
	}
}
