package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

func TestCatalogAddTPTComputesID(t *testing.T) {
	c := NewCatalog()
	tpt := c.AddTPT(fs.TPT{
		TaxonID: "taxon:capsicum",
		PartID:  "part:fruit",
		Name:    "dried chili",
		Chain:   fs.TransformChain{{ID: "tx:dry"}},
	})

	assert.NotEmpty(t, tpt.ID)
	got, err := c.GetTPT(context.Background(), tpt.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dried chili", got.Name)
}

func TestCatalogNamesFallBackToSuffix(t *testing.T) {
	c := NewCatalog()
	c.NameTaxon("taxon:capsicum", "Chili pepper")

	name, err := c.TaxonName(context.Background(), "taxon:capsicum")
	require.NoError(t, err)
	assert.Equal(t, "Chili pepper", name)

	name, err = c.PartName(context.Background(), "part:fruit")
	require.NoError(t, err)
	assert.Equal(t, "fruit", name)
}

func TestCatalogCandidatesOrderedAndFiltered(t *testing.T) {
	c := NewCatalog()
	c.AddTPT(fs.TPT{ID: "tpt:z", TaxonID: "taxon:x", PartID: "part:y", Family: "b", Chain: fs.TransformChain{{ID: "tx:dry"}}})
	c.AddTPT(fs.TPT{ID: "tpt:a", TaxonID: "taxon:x", PartID: "part:y", Family: "b", Chain: fs.TransformChain{{ID: "tx:dry"}}})
	c.AddTPT(fs.TPT{ID: "tpt:m", TaxonID: "taxon:x", PartID: "part:y", Family: "a", Chain: fs.TransformChain{{ID: "tx:dry"}}})
	c.AddTPT(fs.TPT{ID: "tpt:other", TaxonID: "taxon:other", PartID: "part:y", Family: "a", Chain: fs.TransformChain{{ID: "tx:dry"}}})

	got, err := c.Candidates(context.Background(), "taxon:x", "part:y", "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "tpt:m", got[0].ID, "family ascending first")
	assert.Equal(t, "tpt:a", got[1].ID)
	assert.Equal(t, "tpt:z", got[2].ID)

	filtered, err := c.Candidates(context.Background(), "taxon:x", "part:y", "a")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "tpt:m", filtered[0].ID)
}
