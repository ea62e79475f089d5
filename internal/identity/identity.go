// Package identity implements the compile/identify operation: gate a
// FoodState through the applicability validator, encode its canonical
// identity, and report whether a curated TPT already carries that id.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/fsuri"
	"github.com/driedl/food-graph-sub002/internal/taxonomy"
	"github.com/driedl/food-graph-sub002/internal/validate"
)

// Catalog is the read surface over curated entities and display names.
// The store satisfies it; tests use an in-memory fixture.
type Catalog interface {
	// GetTPT returns the curated entity with the canonical id, or nil.
	GetTPT(ctx context.Context, id string) (*fs.TPT, error)
	TaxonName(ctx context.Context, id fs.TaxonID) (string, error)
	PartName(ctx context.Context, id fs.PartID) (string, error)
	TransformName(ctx context.Context, id fs.TransformID) (string, error)
}

// Service wires the validator, encoder, and catalog lookup together.
type Service struct {
	Oracle  taxonomy.Oracle
	Catalog Catalog
}

// Result is the identify response. Status is always set; the remaining
// fields are populated only when Status is OK. A non-OK status is a
// per-call outcome, not an error - it reaches the caller verbatim.
type Result struct {
	Status        validate.Status   `json:"status"`
	CanonicalID   string            `json:"canonical_id,omitempty"`
	IdentityHash  string            `json:"identity_hash,omitempty"`
	Name          string            `json:"name,omitempty"`
	AlreadyExists bool              `json:"already_exists"`
	TransformPath fs.TransformChain `json:"transform_path,omitempty"`
}

// Identify validates the state's pair and chain, encodes its canonical
// identity, and looks the id up among curated entities. When a TPT exists
// its curated name is returned; otherwise a display name is synthesized
// from catalog names.
//
// Chain steps outside the declared transform set return a
// *validate.ChainError.
func (s *Service) Identify(ctx context.Context, state fs.FoodState) (*Result, error) {
	status, err := validate.Pair(ctx, s.Oracle, state.TaxonID, state.PartID)
	if err != nil {
		return nil, err
	}
	if !status.OK() {
		return &Result{Status: status}, nil
	}

	if err := validate.Chain(ctx, s.Oracle, state.TaxonID, state.PartID, state.Chain); err != nil {
		return nil, err
	}

	id, ident := fs.EncodeID(state.TaxonID, state.PartID, state.Chain)
	result := &Result{
		Status:        status,
		CanonicalID:   id,
		IdentityHash:  ident.Hash,
		TransformPath: state.Chain,
	}

	existing, err := s.Catalog.GetTPT(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		result.AlreadyExists = true
		result.Name = existing.Name
		return result, nil
	}

	result.Name, err = s.displayName(ctx, state)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Locator renders the shareable FS string for a state, using the oracle's
// lineage for the taxon path.
func (s *Service) Locator(ctx context.Context, state fs.FoodState) (string, error) {
	slugs, err := s.Oracle.LineageSlugs(ctx, state.TaxonID)
	if err != nil {
		return "", fmt.Errorf("lineage: %w", err)
	}
	return fsuri.Serialize(slugs, state.PartID, state.Chain), nil
}

// displayName synthesizes "<taxon> <part>" plus the applied transform
// names in display order, e.g. "Common wheat seed, milled, fermented".
func (s *Service) displayName(ctx context.Context, state fs.FoodState) (string, error) {
	taxonName, err := s.Catalog.TaxonName(ctx, state.TaxonID)
	if err != nil {
		return "", err
	}
	partName, err := s.Catalog.PartName(ctx, state.PartID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(taxonName)
	b.WriteByte(' ')
	b.WriteString(partName)
	for _, step := range state.Chain {
		txName, err := s.Catalog.TransformName(ctx, step.ID)
		if err != nil {
			return "", err
		}
		b.WriteString(", ")
		b.WriteString(txName)
	}
	return b.String(), nil
}
