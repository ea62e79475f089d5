package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

// TaxonDef is one parsed taxon entry, before cross-reference checks.
type TaxonDef struct {
	ID     fs.TaxonID
	Slug   string
	Name   string
	Parent fs.TaxonID // empty for roots
	Parts  []PartDecl
}

// PartDecl declares a part on a taxon, with the transforms applicable to
// the (taxon, part) pair.
type PartDecl struct {
	PartID     fs.PartID
	Transforms []fs.TransformID
}

// PartDef is one parsed part registry entry.
type PartDef struct {
	ID   fs.PartID
	Name string
}

// TransformDef is one parsed transform registry entry.
type TransformDef struct {
	ID   fs.TransformID
	Name string
}

// TPTDef is one parsed curated entity, before its canonical id is
// computed.
type TPTDef struct {
	Key     string // curation key (the CUE label), used in error messages
	TaxonID fs.TaxonID
	PartID  fs.PartID
	Family  string
	Name    string
	Chain   fs.TransformChain
}

// CompileError reports a malformed curation entry with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileTaxon parses a CUE value into a TaxonDef. The taxon id is the
// struct label, e.g. `taxon: "taxon:triticum": {...}`.
func CompileTaxon(v cue.Value) (*TaxonDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &TaxonDef{ID: fs.TaxonID(label(v))}

	slug, err := requiredString(v, "slug")
	if err != nil {
		return nil, err
	}
	def.Slug = slug

	def.Name, err = optionalString(v, "name")
	if err != nil {
		return nil, err
	}

	parent, err := optionalString(v, "parent")
	if err != nil {
		return nil, err
	}
	def.Parent = fs.TaxonID(parent)

	partsVal := v.LookupPath(cue.ParsePath("parts"))
	if partsVal.Exists() {
		iter, iterErr := partsVal.Fields()
		if iterErr != nil {
			return nil, formatCUEError(iterErr)
		}
		for iter.Next() {
			decl := PartDecl{PartID: fs.PartID(iter.Label())}
			txVal := iter.Value().LookupPath(cue.ParsePath("transforms"))
			if txVal.Exists() {
				ids, err := stringList(txVal, "transforms")
				if err != nil {
					return nil, err
				}
				for _, id := range ids {
					decl.Transforms = append(decl.Transforms, fs.TransformID(id))
				}
			}
			def.Parts = append(def.Parts, decl)
		}
	}

	return def, nil
}

// CompilePart parses a CUE value into a PartDef.
func CompilePart(v cue.Value) (*PartDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	name, err := optionalString(v, "name")
	if err != nil {
		return nil, err
	}
	return &PartDef{ID: fs.PartID(label(v)), Name: name}, nil
}

// CompileTransform parses a CUE value into a TransformDef.
func CompileTransform(v cue.Value) (*TransformDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	name, err := optionalString(v, "name")
	if err != nil {
		return nil, err
	}
	return &TransformDef{ID: fs.TransformID(label(v)), Name: name}, nil
}

// CompileTPT parses a CUE value into a TPTDef. The label is the curation
// key; the canonical id is computed later, during assembly.
func CompileTPT(v cue.Value) (*TPTDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &TPTDef{Key: label(v)}

	taxon, err := requiredString(v, "taxon")
	if err != nil {
		return nil, err
	}
	def.TaxonID = fs.TaxonID(taxon)

	part, err := requiredString(v, "part")
	if err != nil {
		return nil, err
	}
	def.PartID = fs.PartID(part)

	def.Name, err = requiredString(v, "name")
	if err != nil {
		return nil, err
	}

	def.Family, err = optionalString(v, "family")
	if err != nil {
		return nil, err
	}

	chainVal := v.LookupPath(cue.ParsePath("chain"))
	if chainVal.Exists() {
		def.Chain, err = parseChain(chainVal)
		if err != nil {
			return nil, err
		}
	}

	return def, nil
}

// parseChain decodes a CUE list of {id, params} structs into a chain in
// list (display) order.
func parseChain(v cue.Value) (fs.TransformChain, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var chain fs.TransformChain
	for i := 0; iter.Next(); i++ {
		stepVal := iter.Value()
		id, err := requiredString(stepVal, "id")
		if err != nil {
			return nil, err
		}
		step := fs.TransformStep{ID: fs.TransformID(id)}

		paramsVal := stepVal.LookupPath(cue.ParsePath("params"))
		if paramsVal.Exists() {
			step.Params, err = parseParams(paramsVal)
			if err != nil {
				return nil, err
			}
		}
		chain = append(chain, step)
	}
	return chain, nil
}

// parseParams decodes a CUE struct into tagged parameter values. The
// param union is closed: bools, numbers, and strings only.
func parseParams(v cue.Value) (fs.Params, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	params := fs.Params{}
	for iter.Next() {
		key := iter.Label()
		val := iter.Value()
		switch val.Kind() {
		case cue.BoolKind:
			b, err := val.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			params[key] = fs.ParamBool(b)
		case cue.IntKind, cue.FloatKind, cue.NumberKind:
			f, err := val.Float64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			params[key] = fs.ParamNumber(f)
		case cue.StringKind:
			s, err := val.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			params[key] = fs.ParamString(s)
		default:
			return nil, &CompileError{
				Field:   "params." + key,
				Message: fmt.Sprintf("param values must be bool, number, or string, got %s", val.Kind()),
				Pos:     val.Pos(),
			}
		}
	}
	return params, nil
}

// label returns the last path selector of a value, unquoted.
func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return strings.Trim(sels[len(sels)-1].String(), `"`)
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("%s entries must be strings: %v", field, err),
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
