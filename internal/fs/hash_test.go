package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testChain() TransformChain {
	return TransformChain{
		{ID: "tx:ferment"},
		{ID: "tx:dry", Params: Params{"hours": ParamNumber(24)}},
	}
}

func TestEncodeDeterminism(t *testing.T) {
	id1 := Encode("taxon:triticum-aestivum", "part:seed", testChain())
	id2 := Encode("taxon:triticum-aestivum", "part:seed", testChain())

	assert.Equal(t, id1, id2, "Encode must be deterministic")
	assert.Len(t, id1.Hash, 16, "truncated SHA-256 is 16 hex characters")
	assert.Equal(t, "tx:ferment/tx:dry{hours=24}", id1.Path)
}

func TestEncodeBindsTaxonAndPart(t *testing.T) {
	chain := testChain()
	base := Encode("taxon:triticum-aestivum", "part:seed", chain)
	otherTaxon := Encode("taxon:hordeum-vulgare", "part:seed", chain)
	otherPart := Encode("taxon:triticum-aestivum", "part:leaf", chain)

	assert.Equal(t, base.Path, otherTaxon.Path, "path depends only on the chain")
	assert.NotEqual(t, base.Hash, otherTaxon.Hash, "hash binds the taxon")
	assert.NotEqual(t, base.Hash, otherPart.Hash, "hash binds the part")
}

func TestEncodeChangesWithChain(t *testing.T) {
	base := Encode("taxon:triticum-aestivum", "part:seed", testChain())

	reordered := TransformChain{
		{ID: "tx:dry", Params: Params{"hours": ParamNumber(24)}},
		{ID: "tx:ferment"},
	}
	swapped := Encode("taxon:triticum-aestivum", "part:seed", reordered)
	assert.NotEqual(t, base.Hash, swapped.Hash, "display order is identity-bearing")

	tweaked := TransformChain{
		{ID: "tx:ferment"},
		{ID: "tx:dry", Params: Params{"hours": ParamNumber(48)}},
	}
	changed := Encode("taxon:triticum-aestivum", "part:seed", tweaked)
	assert.NotEqual(t, base.Hash, changed.Hash, "param values are identity-bearing")
}

func TestEncodeEmptyChain(t *testing.T) {
	id := Encode("taxon:malus-domestica", "part:fruit", nil)
	assert.Equal(t, "", id.Path)
	assert.Len(t, id.Hash, 16)
}

func TestCanonicalIDShape(t *testing.T) {
	_, identity := EncodeID("taxon:triticum-aestivum", "part:seed", testChain())
	id := CanonicalID("taxon:triticum-aestivum", "part:seed", identity.Hash)

	assert.Equal(t, "tpt:triticum-aestivum:seed:"+identity.Hash, id)
}

func TestEncodeIDConsistency(t *testing.T) {
	id, identity := EncodeID("taxon:triticum-aestivum", "part:seed", testChain())
	assert.Equal(t, CanonicalID("taxon:triticum-aestivum", "part:seed", identity.Hash), id)
}

func TestSuffixStripsNamespace(t *testing.T) {
	assert.Equal(t, "seed", PartID("part:seed").Suffix())
	assert.Equal(t, "mill", TransformID("tx:mill").Suffix())
	assert.Equal(t, "bare", TaxonID("bare").Suffix(), "no prefix passes through")
}
