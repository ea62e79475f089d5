package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func wheatSnapshot() Snapshot {
	chain := fs.TransformChain{{ID: "tx:mill"}}
	id, _ := fs.EncodeID("taxon:triticum-aestivum", "part:seed", chain)

	fermentChain := fs.TransformChain{
		{ID: "tx:ferment"},
		{ID: "tx:mill"},
	}
	fermentID, _ := fs.EncodeID("taxon:triticum-aestivum", "part:seed", fermentChain)

	return Snapshot{
		Taxa: []Taxon{
			{ID: "taxon:plantae", Slug: "plantae", Name: "Plants"},
			{ID: "taxon:poaceae", Slug: "poaceae", Parent: "taxon:plantae"},
			{ID: "taxon:triticum", Slug: "triticum", Parent: "taxon:poaceae"},
			{ID: "taxon:triticum-aestivum", Slug: "aestivum", Name: "Common wheat", Parent: "taxon:triticum"},
		},
		Parts: []Part{
			{ID: "part:seed", Name: "seed"},
			{ID: "part:leaf", Name: "leaf"},
		},
		Transforms: []Transform{
			{ID: "tx:mill", Name: "milled"},
			{ID: "tx:ferment", Name: "fermented"},
		},
		HasParts: []HasPart{
			{TaxonID: "taxon:triticum", PartID: "part:seed"},
		},
		PartTransforms: []PartTransform{
			{TaxonID: "taxon:triticum", PartID: "part:seed", TransformID: "tx:mill"},
			{TaxonID: "taxon:triticum", PartID: "part:seed", TransformID: "tx:ferment"},
		},
		TPTs: []fs.TPT{
			{
				ID: id, TaxonID: "taxon:triticum-aestivum", PartID: "part:seed",
				Family: "flour", Name: "wheat flour", Chain: chain,
			},
			{
				ID: fermentID, TaxonID: "taxon:triticum-aestivum", PartID: "part:seed",
				Family: "flour", Name: "fermented wheat flour", Chain: fermentChain,
			},
		},
	}
}

func seedStore(t *testing.T) *Store {
	t.Helper()
	s := openTestStore(t)
	rev := Revision{ID: "0190a000-0000-7000-8000-000000000001", Source: "testdata/wheat"}
	require.NoError(t, s.ReplaceSnapshot(context.Background(), rev, wheatSnapshot()))
	return s
}

func TestOpenIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestOracleExistence(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	ok, err := s.TaxonExists(ctx, "taxon:triticum-aestivum")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TaxonExists(ctx, "taxon:zea-mays")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.PartExists(ctx, "part:seed")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOracleApplicabilityViaAncestor(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	ok, err := s.IsApplicable(ctx, "taxon:triticum-aestivum", "part:seed")
	require.NoError(t, err)
	assert.True(t, ok, "declared on the genus, inherited by the species")

	ok, err = s.IsApplicable(ctx, "taxon:plantae", "part:seed")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.IsApplicable(ctx, "taxon:triticum-aestivum", "part:leaf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOracleLineageSlugs(t *testing.T) {
	s := seedStore(t)

	slugs, err := s.LineageSlugs(context.Background(), "taxon:triticum-aestivum")
	require.NoError(t, err)
	assert.Equal(t, []string{"plantae", "poaceae", "triticum", "aestivum"}, slugs)

	slugs, err = s.LineageSlugs(context.Background(), "taxon:unknown")
	require.NoError(t, err)
	assert.Empty(t, slugs)
}

func TestOracleApplicableTransforms(t *testing.T) {
	s := seedStore(t)

	txs, err := s.ApplicableTransformIDs(context.Background(), "taxon:triticum-aestivum", "part:seed")
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Contains(t, txs, fs.TransformID("tx:mill"))
	assert.Contains(t, txs, fs.TransformID("tx:ferment"))
}

func TestCandidatesRoundTripChain(t *testing.T) {
	s := seedStore(t)

	candidates, err := s.Candidates(context.Background(), "taxon:triticum-aestivum", "part:seed", "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Ordered by family then id: both share "flour", so id decides.
	assert.Less(t, candidates[0].ID, candidates[1].ID)
	for _, c := range candidates {
		assert.NotEmpty(t, c.Chain, "chain JSON decodes back to steps")
	}
}

func TestCandidatesFamilyFilter(t *testing.T) {
	s := seedStore(t)

	candidates, err := s.Candidates(context.Background(), "taxon:triticum-aestivum", "part:seed", "bread")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestGetTPT(t *testing.T) {
	s := seedStore(t)
	snap := wheatSnapshot()

	tpt, err := s.GetTPT(context.Background(), snap.TPTs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, tpt)
	assert.Equal(t, "wheat flour", tpt.Name)
	assert.Equal(t, fs.TaxonID("taxon:triticum-aestivum"), tpt.TaxonID)
	assert.Equal(t, snap.TPTs[0].Chain, tpt.Chain)

	missing, err := s.GetTPT(context.Background(), "tpt:none:none:0000000000000000")
	require.NoError(t, err)
	assert.Nil(t, missing, "absent id is nil, not an error")
}

func TestDisplayNames(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	name, err := s.TaxonName(ctx, "taxon:triticum-aestivum")
	require.NoError(t, err)
	assert.Equal(t, "Common wheat", name)

	name, err = s.TaxonName(ctx, "taxon:poaceae")
	require.NoError(t, err)
	assert.Equal(t, "poaceae", name, "empty name falls back to slug")

	name, err = s.PartName(ctx, "part:seed")
	require.NoError(t, err)
	assert.Equal(t, "seed", name)

	name, err = s.TransformName(ctx, "tx:mill")
	require.NoError(t, err)
	assert.Equal(t, "milled", name)

	name, err = s.TransformName(ctx, "tx:unknown")
	require.NoError(t, err)
	assert.Equal(t, "unknown", name, "unknown transform falls back to suffix")
}

func TestReplaceSnapshotSwapsCatalog(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	smaller := Snapshot{
		Taxa:  []Taxon{{ID: "taxon:malus", Slug: "malus"}},
		Parts: []Part{{ID: "part:fruit", Name: "fruit"}},
	}
	rev2 := Revision{ID: "0190a000-0000-7000-8000-000000000002", Source: "testdata/apple"}
	require.NoError(t, s.ReplaceSnapshot(ctx, rev2, smaller))

	ok, err := s.TaxonExists(ctx, "taxon:triticum-aestivum")
	require.NoError(t, err)
	assert.False(t, ok, "old catalog fully replaced")

	ok, err = s.TaxonExists(ctx, "taxon:malus")
	require.NoError(t, err)
	assert.True(t, ok)

	latest, err := s.LatestRevision(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, rev2.ID, latest.ID)
}

func TestLatestRevisionEmpty(t *testing.T) {
	s := openTestStore(t)

	rev, err := s.LatestRevision(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rev)
}
