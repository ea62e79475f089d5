// Package compiler turns CUE curation files into a validated catalog
// snapshot: the taxonomy hierarchy, part and transform registries, their
// applicability declarations, and the curated TPT entities with computed
// canonical ids.
//
// Curation files declare four top-level structs, keyed by identifier:
//
//	taxon: "taxon:triticum": {
//	    slug:   "triticum"
//	    parent: "taxon:poaceae"
//	    parts: "part:seed": {
//	        transforms: ["tx:mill", "tx:ferment"]
//	    }
//	}
//	part: "part:seed": {name: "seed"}
//	transform: "tx:mill": {name: "milled"}
//	tpt: "wheat-flour": {
//	    taxon:  "taxon:triticum-aestivum"
//	    part:   "part:seed"
//	    family: "flour"
//	    name:   "wheat flour"
//	    chain: [{id: "tx:mill"}]
//	}
//
// Compilation is two-phased: per-entry parsing from CUE values (the
// Compile* functions), then whole-catalog assembly (Assemble) which
// checks cross-references, orders taxa parent-before-child, verifies
// part applicability and chain membership, and computes canonical ids.
package compiler
