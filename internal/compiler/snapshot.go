package compiler

import (
	"fmt"
	"sort"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/store"
)

// Catalog validation error codes (E200-E299)
const (
	ErrUnknownParent    = "E201" // taxon parent not declared
	ErrHierarchyCycle   = "E202" // taxon parent chain forms a cycle
	ErrUnknownPart      = "E203" // part reference not in the registry
	ErrUnknownTransform = "E204" // transform reference not in the registry
	ErrUnknownTaxon     = "E205" // tpt references an undeclared taxon
	ErrNotApplicable    = "E206" // tpt part or chain outside declarations
	ErrDuplicateEntry   = "E207" // duplicate id or canonical identity
)

// ValidationError reports a cross-reference failure found during assembly.
type ValidationError struct {
	Code    string `json:"code"`
	Entity  string `json:"entity"` // offending entry's id or curation key
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Entity, e.Message)
}

// Assemble validates parsed definitions as a whole and produces the store
// snapshot. All errors are collected, not just the first; a non-empty
// error slice means the snapshot must not be written.
//
// Taxa come out parent-before-child; parts, transforms, and TPTs sort by
// id so the snapshot is deterministic for a given input.
func Assemble(taxa []TaxonDef, parts []PartDef, transforms []TransformDef, tpts []TPTDef) (store.Snapshot, []error) {
	var errs []error
	var snap store.Snapshot

	taxonByID := make(map[fs.TaxonID]*TaxonDef, len(taxa))
	for i := range taxa {
		def := &taxa[i]
		if _, dup := taxonByID[def.ID]; dup {
			errs = append(errs, &ValidationError{
				Code: ErrDuplicateEntry, Entity: string(def.ID),
				Message: "taxon declared more than once",
			})
			continue
		}
		taxonByID[def.ID] = def
	}

	partIDs := make(map[fs.PartID]struct{}, len(parts))
	for _, p := range parts {
		if _, dup := partIDs[p.ID]; dup {
			errs = append(errs, &ValidationError{
				Code: ErrDuplicateEntry, Entity: string(p.ID),
				Message: "part declared more than once",
			})
			continue
		}
		partIDs[p.ID] = struct{}{}
	}

	txIDs := make(map[fs.TransformID]struct{}, len(transforms))
	for _, tr := range transforms {
		if _, dup := txIDs[tr.ID]; dup {
			errs = append(errs, &ValidationError{
				Code: ErrDuplicateEntry, Entity: string(tr.ID),
				Message: "transform declared more than once",
			})
			continue
		}
		txIDs[tr.ID] = struct{}{}
	}

	ordered, orderErrs := orderTaxa(taxa, taxonByID)
	errs = append(errs, orderErrs...)

	for _, def := range ordered {
		snap.Taxa = append(snap.Taxa, store.Taxon{
			ID: def.ID, Slug: def.Slug, Name: def.Name, Parent: def.Parent,
		})
		for _, decl := range def.Parts {
			if _, ok := partIDs[decl.PartID]; !ok {
				errs = append(errs, &ValidationError{
					Code: ErrUnknownPart, Entity: string(def.ID),
					Message: fmt.Sprintf("declares unknown part %q", decl.PartID),
				})
				continue
			}
			snap.HasParts = append(snap.HasParts, store.HasPart{
				TaxonID: def.ID, PartID: decl.PartID,
			})
			for _, tx := range decl.Transforms {
				if _, ok := txIDs[tx]; !ok {
					errs = append(errs, &ValidationError{
						Code: ErrUnknownTransform, Entity: string(def.ID),
						Message: fmt.Sprintf("declares unknown transform %q for part %q", tx, decl.PartID),
					})
					continue
				}
				snap.PartTransforms = append(snap.PartTransforms, store.PartTransform{
					TaxonID: def.ID, PartID: decl.PartID, TransformID: tx,
				})
			}
		}
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].ID < parts[j].ID })
	for _, p := range parts {
		snap.Parts = append(snap.Parts, store.Part{ID: p.ID, Name: p.Name})
	}

	sort.Slice(transforms, func(i, j int) bool { return transforms[i].ID < transforms[j].ID })
	for _, tr := range transforms {
		snap.Transforms = append(snap.Transforms, store.Transform{ID: tr.ID, Name: tr.Name})
	}

	seenIdentity := make(map[string]string, len(tpts)) // canonical id -> key
	for _, def := range tpts {
		if !checkTPT(def, taxonByID, partIDs, &errs) {
			continue
		}
		id, _ := fs.EncodeID(def.TaxonID, def.PartID, def.Chain)
		if prior, dup := seenIdentity[id]; dup {
			errs = append(errs, &ValidationError{
				Code: ErrDuplicateEntry, Entity: def.Key,
				Message: fmt.Sprintf("canonical identity %s already curated as %q", id, prior),
			})
			continue
		}
		seenIdentity[id] = def.Key
		snap.TPTs = append(snap.TPTs, fs.TPT{
			ID: id, TaxonID: def.TaxonID, PartID: def.PartID,
			Family: def.Family, Name: def.Name, Chain: def.Chain,
		})
	}
	sort.Slice(snap.TPTs, func(i, j int) bool { return snap.TPTs[i].ID < snap.TPTs[j].ID })

	return snap, errs
}

// checkTPT verifies a curated entity's references against the in-memory
// hierarchy: taxon and part exist, the part is declared on the taxon or
// an ancestor, and every chain step is among the declared transforms.
func checkTPT(def TPTDef, taxa map[fs.TaxonID]*TaxonDef, parts map[fs.PartID]struct{}, errs *[]error) bool {
	if _, ok := taxa[def.TaxonID]; !ok {
		*errs = append(*errs, &ValidationError{
			Code: ErrUnknownTaxon, Entity: def.Key,
			Message: fmt.Sprintf("references unknown taxon %q", def.TaxonID),
		})
		return false
	}
	if _, ok := parts[def.PartID]; !ok {
		*errs = append(*errs, &ValidationError{
			Code: ErrUnknownPart, Entity: def.Key,
			Message: fmt.Sprintf("references unknown part %q", def.PartID),
		})
		return false
	}

	applicable := false
	declared := make(map[fs.TransformID]struct{})
	for id := def.TaxonID; id != ""; {
		node, ok := taxa[id]
		if !ok {
			break
		}
		for _, decl := range node.Parts {
			if decl.PartID != def.PartID {
				continue
			}
			applicable = true
			for _, tx := range decl.Transforms {
				declared[tx] = struct{}{}
			}
		}
		id = node.Parent
	}
	if !applicable {
		*errs = append(*errs, &ValidationError{
			Code: ErrNotApplicable, Entity: def.Key,
			Message: fmt.Sprintf("part %q is not declared for taxon %q or its ancestors", def.PartID, def.TaxonID),
		})
		return false
	}

	ok := true
	for _, step := range def.Chain {
		if _, found := declared[step.ID]; !found {
			*errs = append(*errs, &ValidationError{
				Code: ErrNotApplicable, Entity: def.Key,
				Message: fmt.Sprintf("chain transform %q is not declared for (%s, %s)", step.ID, def.TaxonID, def.PartID),
			})
			ok = false
		}
	}
	return ok
}

// orderTaxa returns taxa parent-before-child, detecting dangling parents
// and cycles. Roots and siblings order by id for determinism.
func orderTaxa(taxa []TaxonDef, byID map[fs.TaxonID]*TaxonDef) ([]*TaxonDef, []error) {
	var errs []error

	children := make(map[fs.TaxonID][]*TaxonDef)
	var roots []*TaxonDef
	for i := range taxa {
		def := &taxa[i]
		if byID[def.ID] != def {
			continue // duplicate, already reported
		}
		if def.Parent == "" {
			roots = append(roots, def)
			continue
		}
		if _, ok := byID[def.Parent]; !ok {
			errs = append(errs, &ValidationError{
				Code: ErrUnknownParent, Entity: string(def.ID),
				Message: fmt.Sprintf("parent %q is not declared", def.Parent),
			})
			continue
		}
		children[def.Parent] = append(children[def.Parent], def)
	}

	sortDefs(roots)
	for _, kids := range children {
		sortDefs(kids)
	}

	var ordered []*TaxonDef
	var walk func(def *TaxonDef)
	walk = func(def *TaxonDef) {
		ordered = append(ordered, def)
		for _, kid := range children[def.ID] {
			walk(kid)
		}
	}
	for _, root := range roots {
		walk(root)
	}

	// Anything reachable only through a cycle never gets visited.
	if len(ordered) < len(byID) {
		visited := make(map[fs.TaxonID]struct{}, len(ordered))
		for _, def := range ordered {
			visited[def.ID] = struct{}{}
		}
		var unreached []string
		for id, def := range byID {
			if _, ok := visited[id]; !ok && def.Parent != "" {
				// Dangling parents were reported above; the rest sit on a cycle.
				if _, parentKnown := byID[def.Parent]; parentKnown {
					unreached = append(unreached, string(id))
				}
			}
		}
		sort.Strings(unreached)
		for _, id := range unreached {
			errs = append(errs, &ValidationError{
				Code: ErrHierarchyCycle, Entity: id,
				Message: "parent chain never reaches a root",
			})
		}
	}

	return ordered, errs
}

func sortDefs(defs []*TaxonDef) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
}
