package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/taxonomy"
)

func fixture() *taxonomy.Memory {
	m := taxonomy.NewMemory()
	m.AddTaxon("taxon:plantae", "plantae", "")
	m.AddTaxon("taxon:triticum", "triticum", "taxon:plantae")
	m.AddPart("part:seed", "seed")
	m.AddPart("part:leaf", "leaf")
	m.DeclarePart("taxon:triticum", "part:seed")
	m.DeclareTransforms("taxon:triticum", "part:seed", "tx:mill", "tx:ferment")
	return m
}

func TestPairOK(t *testing.T) {
	status, err := Pair(context.Background(), fixture(), "taxon:triticum", "part:seed")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.True(t, status.OK())
}

func TestPairTaxonMissing(t *testing.T) {
	status, err := Pair(context.Background(), fixture(), "taxon:nope", "part:seed")
	require.NoError(t, err)
	assert.Equal(t, StatusTaxonMissing, status)
}

func TestPairPartMissing(t *testing.T) {
	status, err := Pair(context.Background(), fixture(), "taxon:triticum", "part:root")
	require.NoError(t, err)
	assert.Equal(t, StatusPartMissing, status)
}

func TestPairPartNotApplicable(t *testing.T) {
	status, err := Pair(context.Background(), fixture(), "taxon:plantae", "part:leaf")
	require.NoError(t, err)
	assert.Equal(t, StatusPartNotApplicable, status)
}

func TestPairPrecedenceTaxonFirst(t *testing.T) {
	// Both the taxon and the part are unknown: taxon existence is checked
	// first, so the status must be TaxonMissing, never PartMissing.
	status, err := Pair(context.Background(), fixture(), "taxon:nope", "part:nope")
	require.NoError(t, err)
	assert.Equal(t, StatusTaxonMissing, status)
}

func TestChainValid(t *testing.T) {
	chain := fs.TransformChain{{ID: "tx:mill"}, {ID: "tx:ferment"}}
	err := Chain(context.Background(), fixture(), "taxon:triticum", "part:seed", chain)
	assert.NoError(t, err)
}

func TestChainEmptyValid(t *testing.T) {
	err := Chain(context.Background(), fixture(), "taxon:triticum", "part:seed", nil)
	assert.NoError(t, err)
}

func TestChainRejectsUndeclaredTransform(t *testing.T) {
	chain := fs.TransformChain{{ID: "tx:mill"}, {ID: "tx:distill"}}
	err := Chain(context.Background(), fixture(), "taxon:triticum", "part:seed", chain)

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, fs.TransformID("tx:distill"), chainErr.StepID)
	assert.Equal(t, 1, chainErr.Index)
}
