package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

// Taxon is a taxonomy node row.
type Taxon struct {
	ID     fs.TaxonID
	Slug   string
	Name   string
	Parent fs.TaxonID // empty for roots
}

// Part is a part registry row.
type Part struct {
	ID   fs.PartID
	Name string
}

// Transform is a transform registry row.
type Transform struct {
	ID   fs.TransformID
	Name string
}

// HasPart declares a part on a taxon; descendants inherit.
type HasPart struct {
	TaxonID fs.TaxonID
	PartID  fs.PartID
}

// PartTransform declares a transform applicable to a (taxon, part).
type PartTransform struct {
	TaxonID     fs.TaxonID
	PartID      fs.PartID
	TransformID fs.TransformID
}

// Snapshot is one complete curated catalog, as produced by a compile run.
type Snapshot struct {
	Taxa           []Taxon
	Parts          []Part
	Transforms     []Transform
	HasParts       []HasPart
	PartTransforms []PartTransform
	TPTs           []fs.TPT
}

// Revision identifies one compile run.
type Revision struct {
	ID     string // UUIDv7, assigned by the compiler
	Source string // directory the catalog was compiled from
}

// ReplaceSnapshot swaps the entire catalog for the given snapshot in one
// transaction. The curation compiler is the only caller; readers see
// either the old catalog or the new one, never a mix.
//
// Taxa must arrive parent-before-child (the compiler topologically orders
// them); the self-referencing foreign key enforces it.
func (s *Store) ReplaceSnapshot(ctx context.Context, rev Revision, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	// Children before parents on the way out.
	for _, stmt := range []string{
		"DELETE FROM tpts",
		"DELETE FROM taxon_part_transforms",
		"DELETE FROM taxon_parts",
		"DELETE FROM transforms",
		"DELETE FROM parts",
		"DELETE FROM taxa",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}

	for _, taxon := range snap.Taxa {
		var parent any
		if taxon.Parent != "" {
			parent = string(taxon.Parent)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO taxa (id, slug, name, parent_id) VALUES (?, ?, ?, ?)",
			string(taxon.ID), taxon.Slug, taxon.Name, parent,
		); err != nil {
			return fmt.Errorf("insert taxon %s: %w", taxon.ID, err)
		}
	}

	for _, part := range snap.Parts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO parts (id, name) VALUES (?, ?)",
			string(part.ID), part.Name,
		); err != nil {
			return fmt.Errorf("insert part %s: %w", part.ID, err)
		}
	}

	for _, tr := range snap.Transforms {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO transforms (id, name) VALUES (?, ?)",
			string(tr.ID), tr.Name,
		); err != nil {
			return fmt.Errorf("insert transform %s: %w", tr.ID, err)
		}
	}

	for _, hp := range snap.HasParts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO taxon_parts (taxon_id, part_id) VALUES (?, ?)",
			string(hp.TaxonID), string(hp.PartID),
		); err != nil {
			return fmt.Errorf("insert has_part (%s, %s): %w", hp.TaxonID, hp.PartID, err)
		}
	}

	for _, pt := range snap.PartTransforms {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO taxon_part_transforms (taxon_id, part_id, transform_id) VALUES (?, ?, ?)",
			string(pt.TaxonID), string(pt.PartID), string(pt.TransformID),
		); err != nil {
			return fmt.Errorf("insert part transform (%s, %s, %s): %w", pt.TaxonID, pt.PartID, pt.TransformID, err)
		}
	}

	for _, tpt := range snap.TPTs {
		chainJSON, err := json.Marshal(tpt.Chain)
		if err != nil {
			return fmt.Errorf("marshal chain for %s: %w", tpt.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tpts (id, taxon_id, part_id, family, name, chain, tx_path, revision_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			tpt.ID, string(tpt.TaxonID), string(tpt.PartID), tpt.Family, tpt.Name,
			string(chainJSON), tpt.Chain.Path(), rev.ID,
		); err != nil {
			return fmt.Errorf("insert tpt %s: %w", tpt.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO revisions (id, source, taxa, parts, transforms, tpts) VALUES (?, ?, ?, ?, ?, ?)",
		rev.ID, rev.Source, len(snap.Taxa), len(snap.Parts), len(snap.Transforms), len(snap.TPTs),
	); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
