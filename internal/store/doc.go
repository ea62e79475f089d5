// Package store provides SQLite-backed storage for the curated catalog:
// the taxonomy hierarchy, part and transform registries, "has_part" and
// transform applicability declarations, and the curated TPT entities.
//
// The store is the production implementation of two read contracts:
//   - taxonomy.Oracle (existence, applicability, lineage, declared
//     transforms), and
//   - resolve.Source (pre-computed scoring candidates per (taxon, part)).
//
// Writes happen only through ReplaceSnapshot, which the curation compiler
// calls with a full catalog per compile run. Everything else is read-only;
// the core's components never mutate the store.
//
// All candidate and listing queries order by stable columns (family ASC,
// id ASC) so resolver input is deterministic across processes.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
