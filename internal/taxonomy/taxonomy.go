// Package taxonomy defines the read-only oracle over the source hierarchy:
// taxon existence, part applicability, lineage, and the transforms declared
// for a (taxon, part) pair. The hierarchy itself is owned elsewhere (the
// curation compiler writes it, the store serves it); this package only
// states the contract the core consumes, plus an in-memory implementation
// for tests and fixtures.
package taxonomy

import (
	"context"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

// Oracle answers read-only questions about taxa, parts, and transforms.
//
// All methods are point queries with no side effects. Implementations must
// be safe for concurrent use; the validator and resolver call them from
// arbitrary goroutines.
type Oracle interface {
	// TaxonExists reports whether the taxon is a known node.
	TaxonExists(ctx context.Context, id fs.TaxonID) (bool, error)

	// PartExists reports whether the part is a known component.
	PartExists(ctx context.Context, id fs.PartID) (bool, error)

	// IsApplicable reports whether the part is declared for the taxon or
	// any of its ancestors ("has_part" semantics).
	IsApplicable(ctx context.Context, taxonID fs.TaxonID, partID fs.PartID) (bool, error)

	// LineageSlugs returns the taxon's path-to-root as slugs, ordered
	// root to leaf. Unknown taxa yield an empty slice, not an error.
	LineageSlugs(ctx context.Context, id fs.TaxonID) ([]string, error)

	// ApplicableTransformIDs returns the transforms declared for the pair,
	// on the taxon itself or inherited from an ancestor's declaration.
	ApplicableTransformIDs(ctx context.Context, taxonID fs.TaxonID, partID fs.PartID) (map[fs.TransformID]struct{}, error)
}
