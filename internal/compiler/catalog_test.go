package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

func TestCompileTaxonBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		taxon: "taxon:triticum": {
			slug:   "triticum"
			name:   "Wheat"
			parent: "taxon:poaceae"
			parts: "part:seed": {
				transforms: ["tx:mill", "tx:ferment"]
			}
		}
	`)
	require.NoError(t, v.Err())

	def, err := CompileTaxon(v.LookupPath(cue.ParsePath(`taxon."taxon:triticum"`)))
	require.NoError(t, err)

	assert.Equal(t, fs.TaxonID("taxon:triticum"), def.ID)
	assert.Equal(t, "triticum", def.Slug)
	assert.Equal(t, "Wheat", def.Name)
	assert.Equal(t, fs.TaxonID("taxon:poaceae"), def.Parent)
	require.Len(t, def.Parts, 1)
	assert.Equal(t, fs.PartID("part:seed"), def.Parts[0].PartID)
	assert.Equal(t, []fs.TransformID{"tx:mill", "tx:ferment"}, def.Parts[0].Transforms)
}

func TestCompileTaxonMissingSlug(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`taxon: "taxon:bad": { name: "No slug" }`)
	require.NoError(t, v.Err())

	_, err := CompileTaxon(v.LookupPath(cue.ParsePath(`taxon."taxon:bad"`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug")
	assert.Contains(t, err.Error(), "required")
}

func TestCompilePartAndTransform(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		part: "part:seed": {name: "seed"}
		transform: "tx:mill": {name: "milled"}
	`)
	require.NoError(t, v.Err())

	p, err := CompilePart(v.LookupPath(cue.ParsePath(`part."part:seed"`)))
	require.NoError(t, err)
	assert.Equal(t, fs.PartID("part:seed"), p.ID)
	assert.Equal(t, "seed", p.Name)

	tr, err := CompileTransform(v.LookupPath(cue.ParsePath(`transform."tx:mill"`)))
	require.NoError(t, err)
	assert.Equal(t, fs.TransformID("tx:mill"), tr.ID)
	assert.Equal(t, "milled", tr.Name)
}

func TestCompileTPTBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		tpt: "wheat-flour": {
			taxon:  "taxon:triticum-aestivum"
			part:   "part:seed"
			family: "flour"
			name:   "wheat flour"
			chain: [
				{id: "tx:mill", params: {grade: "fine", sifted: true, passes: 2}},
				{id: "tx:dry"},
			]
		}
	`)
	require.NoError(t, v.Err())

	def, err := CompileTPT(v.LookupPath(cue.ParsePath(`tpt."wheat-flour"`)))
	require.NoError(t, err)

	assert.Equal(t, "wheat-flour", def.Key)
	assert.Equal(t, fs.TaxonID("taxon:triticum-aestivum"), def.TaxonID)
	assert.Equal(t, fs.PartID("part:seed"), def.PartID)
	assert.Equal(t, "flour", def.Family)
	assert.Equal(t, "wheat flour", def.Name)

	require.Len(t, def.Chain, 2)
	assert.Equal(t, fs.TransformID("tx:mill"), def.Chain[0].ID)
	assert.Equal(t, fs.ParamString("fine"), def.Chain[0].Params["grade"])
	assert.Equal(t, fs.ParamBool(true), def.Chain[0].Params["sifted"])
	assert.Equal(t, fs.ParamNumber(2), def.Chain[0].Params["passes"])
	assert.Empty(t, def.Chain[1].Params)
}

func TestCompileTPTMissingName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		tpt: "bad": {
			taxon: "taxon:x"
			part:  "part:y"
		}
	`)
	require.NoError(t, v.Err())

	_, err := CompileTPT(v.LookupPath(cue.ParsePath(`tpt."bad"`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestCompileTPTRejectsContainerParams(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		tpt: "bad": {
			taxon: "taxon:x"
			part:  "part:y"
			name:  "bad"
			chain: [{id: "tx:dry", params: {hours: [1, 2]}}]
		}
	`)
	require.NoError(t, v.Err())

	_, err := CompileTPT(v.LookupPath(cue.ParsePath(`tpt."bad"`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "params.hours")
}
