package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/resolve"
	"github.com/driedl/food-graph-sub002/internal/taxonomy"
)

// Interface guards: the store is the production Oracle and candidate
// Source.
var (
	_ taxonomy.Oracle = (*Store)(nil)
	_ resolve.Source  = (*Store)(nil)
)

// lineageCTE walks a taxon's ancestor chain, leaf first.
const lineageCTE = `
	WITH RECURSIVE lineage(id, slug, parent_id, depth) AS (
		SELECT id, slug, parent_id, 0 FROM taxa WHERE id = ?
		UNION ALL
		SELECT t.id, t.slug, t.parent_id, l.depth + 1
		FROM taxa t JOIN lineage l ON t.id = l.parent_id
	)
`

func (s *Store) TaxonExists(ctx context.Context, id fs.TaxonID) (bool, error) {
	return s.rowExists(ctx, "SELECT 1 FROM taxa WHERE id = ?", string(id))
}

func (s *Store) PartExists(ctx context.Context, id fs.PartID) (bool, error) {
	return s.rowExists(ctx, "SELECT 1 FROM parts WHERE id = ?", string(id))
}

func (s *Store) rowExists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("existence query: %w", err)
	}
	return true, nil
}

// IsApplicable reports whether the part is declared for the taxon or any
// ancestor - the "has_part" walk done in SQL.
func (s *Store) IsApplicable(ctx context.Context, taxonID fs.TaxonID, partID fs.PartID) (bool, error) {
	query := lineageCTE + `
	SELECT 1 FROM taxon_parts tp
	JOIN lineage l ON tp.taxon_id = l.id
	WHERE tp.part_id = ?
	LIMIT 1`
	return s.rowExists(ctx, query, string(taxonID), string(partID))
}

// LineageSlugs returns slugs root-to-leaf. Unknown taxa yield an empty
// slice, not an error; the validator owns the missing-taxon status.
func (s *Store) LineageSlugs(ctx context.Context, id fs.TaxonID) ([]string, error) {
	query := lineageCTE + "SELECT slug FROM lineage ORDER BY depth DESC"
	rows, err := s.db.QueryContext(ctx, query, string(id))
	if err != nil {
		return nil, fmt.Errorf("query lineage: %w", err)
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan lineage: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lineage: %w", err)
	}
	return slugs, nil
}

// ApplicableTransformIDs unions the declarations along the ancestor chain.
func (s *Store) ApplicableTransformIDs(ctx context.Context, taxonID fs.TaxonID, partID fs.PartID) (map[fs.TransformID]struct{}, error) {
	query := lineageCTE + `
	SELECT DISTINCT tpt.transform_id
	FROM taxon_part_transforms tpt
	JOIN lineage l ON tpt.taxon_id = l.id
	WHERE tpt.part_id = ?`
	rows, err := s.db.QueryContext(ctx, query, string(taxonID), string(partID))
	if err != nil {
		return nil, fmt.Errorf("query transforms: %w", err)
	}
	defer rows.Close()

	out := make(map[fs.TransformID]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan transform: %w", err)
		}
		out[fs.TransformID(id)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transforms: %w", err)
	}
	return out, nil
}

// Candidates returns scoring candidates for the pair, ordered by
// (family ASC, id ASC) so resolver input is deterministic.
func (s *Store) Candidates(ctx context.Context, taxonID fs.TaxonID, partID fs.PartID, family string) ([]resolve.Candidate, error) {
	query := `
		SELECT id, family, name, chain
		FROM tpts
		WHERE taxon_id = ? AND part_id = ?`
	args := []any{string(taxonID), string(partID)}
	if family != "" {
		query += " AND family = ?"
		args = append(args, family)
	}
	query += " ORDER BY family ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []resolve.Candidate
	for rows.Next() {
		var c resolve.Candidate
		var chainJSON string
		if err := rows.Scan(&c.ID, &c.Family, &c.Name, &chainJSON); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if err := json.Unmarshal([]byte(chainJSON), &c.Chain); err != nil {
			return nil, fmt.Errorf("decode chain for %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

// GetTPT returns the curated entity with the given canonical id, or nil
// when none exists.
func (s *Store) GetTPT(ctx context.Context, id string) (*fs.TPT, error) {
	var tpt fs.TPT
	var taxonID, partID, chainJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, taxon_id, part_id, family, name, chain FROM tpts WHERE id = ?",
		id,
	).Scan(&tpt.ID, &taxonID, &partID, &tpt.Family, &tpt.Name, &chainJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query tpt: %w", err)
	}
	tpt.TaxonID = fs.TaxonID(taxonID)
	tpt.PartID = fs.PartID(partID)
	if err := json.Unmarshal([]byte(chainJSON), &tpt.Chain); err != nil {
		return nil, fmt.Errorf("decode chain for %s: %w", id, err)
	}
	return &tpt, nil
}

// TaxonName returns the display name for a taxon, falling back to its
// slug, then its id suffix. Unknown taxa return the suffix.
func (s *Store) TaxonName(ctx context.Context, id fs.TaxonID) (string, error) {
	var name, slug string
	err := s.db.QueryRowContext(ctx,
		"SELECT name, slug FROM taxa WHERE id = ?", string(id),
	).Scan(&name, &slug)
	if errors.Is(err, sql.ErrNoRows) {
		return id.Suffix(), nil
	}
	if err != nil {
		return "", fmt.Errorf("query taxon name: %w", err)
	}
	if name != "" {
		return name, nil
	}
	if slug != "" {
		return slug, nil
	}
	return id.Suffix(), nil
}

// PartName returns the display name for a part, falling back to the id
// suffix.
func (s *Store) PartName(ctx context.Context, id fs.PartID) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM parts WHERE id = ?", string(id),
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return id.Suffix(), nil
	}
	if err != nil {
		return "", fmt.Errorf("query part name: %w", err)
	}
	if name == "" {
		return id.Suffix(), nil
	}
	return name, nil
}

// TransformName returns the display name for a transform, falling back to
// the id suffix.
func (s *Store) TransformName(ctx context.Context, id fs.TransformID) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM transforms WHERE id = ?", string(id),
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return id.Suffix(), nil
	}
	if err != nil {
		return "", fmt.Errorf("query transform name: %w", err)
	}
	if name == "" {
		return id.Suffix(), nil
	}
	return name, nil
}

// LatestRevision returns the most recent compile revision, or nil when the
// catalog has never been compiled. UUIDv7 revision ids sort by creation
// time, so MAX(id) is the latest.
func (s *Store) LatestRevision(ctx context.Context) (*Revision, error) {
	var rev Revision
	err := s.db.QueryRowContext(ctx,
		"SELECT id, source FROM revisions ORDER BY id DESC LIMIT 1",
	).Scan(&rev.ID, &rev.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query revision: %w", err)
	}
	return &rev, nil
}
