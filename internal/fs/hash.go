package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for identity hashing. The version suffix enables future
// algorithm migration without colliding with existing ids.
const DomainIdentity = "foodstate/identity/v1"

// identityHashBytes is the truncation width of the identity digest.
// 8 bytes (64 bits) keeps ids short while making accidental collisions
// within a curated catalog vanishingly unlikely.
const identityHashBytes = 8

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data), truncated to identityHashBytes.
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)[:identityHashBytes])
}

// Encode computes the CanonicalIdentity of a (taxon, part, chain) tuple.
// It is pure and total: no I/O, no randomness, never fails on well-formed
// inputs, and the same inputs produce the same output across process
// restarts.
//
// The path renders the chain in display order; the hash additionally binds
// the taxon and part so the same chain under a different source yields a
// different identity.
func Encode(taxonID TaxonID, partID PartID, chain TransformChain) CanonicalIdentity {
	path := chain.Path()
	material := fmt.Sprintf("%s|%s|%s", taxonID, partID, path)
	return CanonicalIdentity{
		Path: path,
		Hash: hashWithDomain(DomainIdentity, []byte(material)),
	}
}

// CanonicalID assembles the persisted entity id from a taxon, part, and
// identity hash: "tpt:<taxon-suffix>:<part-suffix>:<hash>".
func CanonicalID(taxonID TaxonID, partID PartID, hash string) string {
	return fmt.Sprintf("tpt:%s:%s:%s", taxonID.Suffix(), partID.Suffix(), hash)
}

// EncodeID is the common composition of Encode and CanonicalID.
func EncodeID(taxonID TaxonID, partID PartID, chain TransformChain) (string, CanonicalIdentity) {
	identity := Encode(taxonID, partID, chain)
	return CanonicalID(taxonID, partID, identity.Hash), identity
}
