// Package testutil provides in-memory fixtures for tests and the scenario
// harness: a catalog that pairs a taxonomy.Memory oracle with curated TPTs
// and display names, satisfying the identity and resolver read contracts
// without SQLite.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/driedl/food-graph-sub002/internal/fs"
	"github.com/driedl/food-graph-sub002/internal/resolve"
)

// Catalog is an in-memory curated catalog. It satisfies identity.Catalog
// and resolve.Source structurally. Populate it before use; reads after
// that are safe from any goroutine.
type Catalog struct {
	mu         sync.RWMutex
	tpts       map[string]fs.TPT
	taxonNames map[fs.TaxonID]string
	partNames  map[fs.PartID]string
	txNames    map[fs.TransformID]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tpts:       make(map[string]fs.TPT),
		taxonNames: make(map[fs.TaxonID]string),
		partNames:  make(map[fs.PartID]string),
		txNames:    make(map[fs.TransformID]string),
	}
}

// AddTPT registers a curated entity. When the id is empty it is computed
// from the entity's taxon, part, and chain.
func (c *Catalog) AddTPT(tpt fs.TPT) fs.TPT {
	if tpt.ID == "" {
		tpt.ID, _ = fs.EncodeID(tpt.TaxonID, tpt.PartID, tpt.Chain)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tpts[tpt.ID] = tpt
	return tpt
}

// NameTaxon registers a display name.
func (c *Catalog) NameTaxon(id fs.TaxonID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxonNames[id] = name
}

// NamePart registers a display name.
func (c *Catalog) NamePart(id fs.PartID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partNames[id] = name
}

// NameTransform registers a display name.
func (c *Catalog) NameTransform(id fs.TransformID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txNames[id] = name
}

func (c *Catalog) GetTPT(_ context.Context, id string) (*fs.TPT, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if tpt, ok := c.tpts[id]; ok {
		out := tpt
		return &out, nil
	}
	return nil, nil
}

func (c *Catalog) TaxonName(_ context.Context, id fs.TaxonID) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.taxonNames[id]; ok && name != "" {
		return name, nil
	}
	return id.Suffix(), nil
}

func (c *Catalog) PartName(_ context.Context, id fs.PartID) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.partNames[id]; ok && name != "" {
		return name, nil
	}
	return id.Suffix(), nil
}

func (c *Catalog) TransformName(_ context.Context, id fs.TransformID) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.txNames[id]; ok && name != "" {
		return name, nil
	}
	return id.Suffix(), nil
}

// Candidates implements resolve.Source over the registered TPTs.
// Ordering mirrors the store: family ascending, then id ascending.
func (c *Catalog) Candidates(_ context.Context, taxonID fs.TaxonID, partID fs.PartID, family string) ([]resolve.Candidate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []resolve.Candidate
	for _, tpt := range c.tpts {
		if tpt.TaxonID != taxonID || tpt.PartID != partID {
			continue
		}
		if family != "" && tpt.Family != family {
			continue
		}
		out = append(out, resolve.Candidate{
			ID:     tpt.ID,
			Family: tpt.Family,
			Name:   tpt.Name,
			Chain:  tpt.Chain.Clone(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
