package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

func wheatDefs() ([]TaxonDef, []PartDef, []TransformDef, []TPTDef) {
	taxa := []TaxonDef{
		{ID: "taxon:triticum", Slug: "triticum", Parent: "taxon:poaceae", Parts: []PartDecl{
			{PartID: "part:seed", Transforms: []fs.TransformID{"tx:mill", "tx:ferment"}},
		}},
		{ID: "taxon:plantae", Slug: "plantae"},
		{ID: "taxon:poaceae", Slug: "poaceae", Parent: "taxon:plantae"},
		{ID: "taxon:triticum-aestivum", Slug: "aestivum", Parent: "taxon:triticum"},
	}
	parts := []PartDef{{ID: "part:seed", Name: "seed"}}
	transforms := []TransformDef{
		{ID: "tx:mill", Name: "milled"},
		{ID: "tx:ferment", Name: "fermented"},
	}
	tpts := []TPTDef{
		{
			Key: "wheat-flour", TaxonID: "taxon:triticum-aestivum", PartID: "part:seed",
			Family: "flour", Name: "wheat flour",
			Chain: fs.TransformChain{{ID: "tx:mill"}},
		},
	}
	return taxa, parts, transforms, tpts
}

func TestAssembleOrdersTaxaParentFirst(t *testing.T) {
	taxa, parts, transforms, tpts := wheatDefs()

	snap, errs := Assemble(taxa, parts, transforms, tpts)
	require.Empty(t, errs)

	var order []string
	for _, taxon := range snap.Taxa {
		order = append(order, string(taxon.ID))
	}
	assert.Equal(t, []string{
		"taxon:plantae", "taxon:poaceae", "taxon:triticum", "taxon:triticum-aestivum",
	}, order)
}

func TestAssembleComputesCanonicalIDs(t *testing.T) {
	taxa, parts, transforms, tpts := wheatDefs()

	snap, errs := Assemble(taxa, parts, transforms, tpts)
	require.Empty(t, errs)
	require.Len(t, snap.TPTs, 1)

	want, _ := fs.EncodeID("taxon:triticum-aestivum", "part:seed", fs.TransformChain{{ID: "tx:mill"}})
	assert.Equal(t, want, snap.TPTs[0].ID)
	assert.True(t, strings.HasPrefix(snap.TPTs[0].ID, "tpt:triticum-aestivum:seed:"))
}

func TestAssembleInheritedApplicability(t *testing.T) {
	taxa, parts, transforms, tpts := wheatDefs()
	// Declared on the genus; the species-level TPT must still assemble.
	tpts[0].Chain = fs.TransformChain{{ID: "tx:ferment"}, {ID: "tx:mill"}}

	_, errs := Assemble(taxa, parts, transforms, tpts)
	assert.Empty(t, errs)
}

func TestAssembleUnknownParent(t *testing.T) {
	taxa := []TaxonDef{{ID: "taxon:orphan", Slug: "orphan", Parent: "taxon:ghost"}}

	_, errs := Assemble(taxa, nil, nil, nil)
	require.Len(t, errs, 1)
	var verr *ValidationError
	require.ErrorAs(t, errs[0], &verr)
	assert.Equal(t, ErrUnknownParent, verr.Code)
}

func TestAssembleHierarchyCycle(t *testing.T) {
	taxa := []TaxonDef{
		{ID: "taxon:a", Slug: "a", Parent: "taxon:b"},
		{ID: "taxon:b", Slug: "b", Parent: "taxon:a"},
	}

	_, errs := Assemble(taxa, nil, nil, nil)
	require.Len(t, errs, 2)
	for _, err := range errs {
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ErrHierarchyCycle, verr.Code)
	}
}

func TestAssembleTPTUnknownTaxon(t *testing.T) {
	_, parts, transforms, tpts := wheatDefs()
	tpts[0].TaxonID = "taxon:ghost"

	_, errs := Assemble(nil, parts, transforms, tpts)
	require.NotEmpty(t, errs)
	var verr *ValidationError
	require.ErrorAs(t, errs[0], &verr)
	assert.Equal(t, ErrUnknownTaxon, verr.Code)
}

func TestAssembleTPTPartNotApplicable(t *testing.T) {
	taxa, parts, transforms, tpts := wheatDefs()
	parts = append(parts, PartDef{ID: "part:leaf", Name: "leaf"})
	tpts[0].PartID = "part:leaf"

	_, errs := Assemble(taxa, parts, transforms, tpts)
	require.Len(t, errs, 1)
	var verr *ValidationError
	require.ErrorAs(t, errs[0], &verr)
	assert.Equal(t, ErrNotApplicable, verr.Code)
}

func TestAssembleTPTUndeclaredChainTransform(t *testing.T) {
	taxa, parts, transforms, tpts := wheatDefs()
	tpts[0].Chain = fs.TransformChain{{ID: "tx:distill"}}

	_, errs := Assemble(taxa, parts, transforms, tpts)
	require.Len(t, errs, 1)
	var verr *ValidationError
	require.ErrorAs(t, errs[0], &verr)
	assert.Equal(t, ErrNotApplicable, verr.Code)
	assert.Contains(t, verr.Message, "tx:distill")
}

func TestAssembleDuplicateIdentity(t *testing.T) {
	taxa, parts, transforms, tpts := wheatDefs()
	dup := tpts[0]
	dup.Key = "wheat-flour-again"
	dup.Name = "another wheat flour"
	tpts = append(tpts, dup)

	_, errs := Assemble(taxa, parts, transforms, tpts)
	require.Len(t, errs, 1)
	var verr *ValidationError
	require.ErrorAs(t, errs[0], &verr)
	assert.Equal(t, ErrDuplicateEntry, verr.Code)
	assert.Contains(t, verr.Message, "wheat-flour")
}

func TestAssembleCollectsAllErrors(t *testing.T) {
	taxa := []TaxonDef{
		{ID: "taxon:orphan", Slug: "orphan", Parent: "taxon:ghost"},
		{ID: "taxon:ok", Slug: "ok", Parts: []PartDecl{{PartID: "part:missing"}}},
	}

	_, errs := Assemble(taxa, nil, nil, []TPTDef{
		{Key: "bad", TaxonID: "taxon:ghost", PartID: "part:missing", Name: "bad"},
	})
	assert.Len(t, errs, 3, "every failure reported, not just the first")
}
