// Package validate classifies (taxon, part) pairings against the taxonomy
// oracle before any identity is encoded or compiled.
package validate

import (
	"context"
	"fmt"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/taxonomy"
)

// Status is the terminal classification of a (taxon, part) pair.
// Statuses other than StatusOK are recoverable per-call outcomes and must
// reach the caller verbatim, never collapsed to a generic "not found".
type Status string

const (
	StatusOK                Status = "OK"
	StatusTaxonMissing      Status = "TAXON_MISSING"
	StatusPartMissing       Status = "PART_MISSING"
	StatusPartNotApplicable Status = "PART_NOT_APPLICABLE"
)

// OK reports whether the status permits encoding to proceed.
func (s Status) OK() bool { return s == StatusOK }

// Pair evaluates the classifier in strict precedence order: taxon
// existence, then part existence, then applicability via the taxon or its
// ancestors. The first failing check decides the status; later checks are
// not consulted. The error return carries oracle failures only.
func Pair(ctx context.Context, oracle taxonomy.Oracle, taxonID fs.TaxonID, partID fs.PartID) (Status, error) {
	ok, err := oracle.TaxonExists(ctx, taxonID)
	if err != nil {
		return "", fmt.Errorf("taxon lookup: %w", err)
	}
	if !ok {
		return StatusTaxonMissing, nil
	}

	ok, err = oracle.PartExists(ctx, partID)
	if err != nil {
		return "", fmt.Errorf("part lookup: %w", err)
	}
	if !ok {
		return StatusPartMissing, nil
	}

	ok, err = oracle.IsApplicable(ctx, taxonID, partID)
	if err != nil {
		return "", fmt.Errorf("applicability lookup: %w", err)
	}
	if !ok {
		return StatusPartNotApplicable, nil
	}

	return StatusOK, nil
}

// ChainError reports a transform step outside the declared set for the
// validated pair.
type ChainError struct {
	TaxonID fs.TaxonID
	PartID  fs.PartID
	StepID  fs.TransformID
	Index   int // position in the chain, 0-based
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("transform %q (step %d) is not applicable to (%s, %s)",
		e.StepID, e.Index, e.TaxonID, e.PartID)
}

// Chain checks every step id against the transforms declared for the pair.
// The pair itself must already have classified StatusOK. Returns the first
// offending step as a ChainError; an empty chain is always valid.
func Chain(ctx context.Context, oracle taxonomy.Oracle, taxonID fs.TaxonID, partID fs.PartID, chain fs.TransformChain) error {
	if len(chain) == 0 {
		return nil
	}
	declared, err := oracle.ApplicableTransformIDs(ctx, taxonID, partID)
	if err != nil {
		return fmt.Errorf("transform lookup: %w", err)
	}
	for i, step := range chain {
		if _, ok := declared[step.ID]; !ok {
			return &ChainError{TaxonID: taxonID, PartID: partID, StepID: step.ID, Index: i}
		}
	}
	return nil
}
