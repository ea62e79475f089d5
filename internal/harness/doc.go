// Package harness executes YAML-defined end-to-end scenarios against an
// in-memory catalog and compares the resulting traces to golden files.
//
// A scenario bundles a catalog fixture with a sequence of operations:
//
//	name: wheat-pipeline
//	catalog:
//	  taxa:
//	    - id: "taxon:triticum"
//	      slug: triticum
//	      name: Wheat
//	      parent: "taxon:plantae"
//	      parts:
//	        "part:seed": ["tx:mill"]
//	  parts:
//	    - id: "part:seed"
//	      name: seed
//	  transforms:
//	    - id: "tx:mill"
//	      name: milled
//	  entities:
//	    - taxon: "taxon:triticum"
//	      part: "part:seed"
//	      family: flour
//	      name: Wheat flour
//	      chain: ["tx:mill{grade=fine}"]
//	steps:
//	  - op: identify
//	    taxon: "taxon:triticum"
//	    part: "part:seed"
//	    chain: ["tx:mill{grade=fine}"]
//	    expect:
//	      curated: true
//
// Supported ops are parse, validate, identify, and resolve. Each step may
// carry an expect clause, checked as a subset of the step's output.
//
// The catalog fixture goes through the same assembly pipeline the
// compiler uses, so scenarios exercise real applicability inheritance
// and canonical-id computation, not a stand-in.
//
// Trace outputs are deterministic by construction: resolver scores are
// rendered as fixed 4-decimal strings and content hashes stay out of
// traces entirely (the hash algorithm has its own unit tests). Traces
// serialize through canonical JSON, so golden files are byte-stable.
// Regenerate them with:
//
//	go test ./internal/harness -update
package harness
