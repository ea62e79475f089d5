package taxonomy

import (
	"context"
	"fmt"
	"sync"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

// Memory is an in-memory Oracle for tests, the scenario harness, and small
// fixtures. Mutate it via the Add/Declare methods before handing it to the
// core; reads after that point are safe from any goroutine.
type Memory struct {
	mu    sync.RWMutex
	nodes map[fs.TaxonID]*memNode
	parts map[fs.PartID]string // id -> display name
}

type memNode struct {
	slug       string
	parent     fs.TaxonID // empty for roots
	hasPart    map[fs.PartID]struct{}
	transforms map[fs.PartID]map[fs.TransformID]struct{}
}

// NewMemory returns an empty in-memory oracle.
func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[fs.TaxonID]*memNode),
		parts: make(map[fs.PartID]string),
	}
}

// AddTaxon registers a taxon under an optional parent. Parents must be
// added before their children; a dangling parent reference panics, since
// fixtures are authored by hand and should fail loudly.
func (m *Memory) AddTaxon(id fs.TaxonID, slug string, parent fs.TaxonID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if parent != "" {
		if _, ok := m.nodes[parent]; !ok {
			panic(fmt.Sprintf("taxonomy fixture: parent %q not registered before child %q", parent, id))
		}
	}
	m.nodes[id] = &memNode{
		slug:       slug,
		parent:     parent,
		hasPart:    make(map[fs.PartID]struct{}),
		transforms: make(map[fs.PartID]map[fs.TransformID]struct{}),
	}
}

// AddPart registers a part with a display name.
func (m *Memory) AddPart(id fs.PartID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parts[id] = name
}

// DeclarePart records that the taxon (and so its descendants) has the part.
func (m *Memory) DeclarePart(taxonID fs.TaxonID, partID fs.PartID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[taxonID]; ok {
		n.hasPart[partID] = struct{}{}
	}
}

// DeclareTransforms records transforms applicable to the (taxon, part)
// pair. Descendants inherit the declaration.
func (m *Memory) DeclareTransforms(taxonID fs.TaxonID, partID fs.PartID, txs ...fs.TransformID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[taxonID]
	if !ok {
		return
	}
	set, ok := n.transforms[partID]
	if !ok {
		set = make(map[fs.TransformID]struct{})
		n.transforms[partID] = set
	}
	for _, tx := range txs {
		set[tx] = struct{}{}
	}
}

// PartName returns the display name for a part, or its suffix when the
// part was never registered with one.
func (m *Memory) PartName(id fs.PartID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if name, ok := m.parts[id]; ok && name != "" {
		return name
	}
	return id.Suffix()
}

func (m *Memory) TaxonExists(_ context.Context, id fs.TaxonID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.nodes[id]
	return ok, nil
}

func (m *Memory) PartExists(_ context.Context, id fs.PartID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.parts[id]
	return ok, nil
}

func (m *Memory) IsApplicable(_ context.Context, taxonID fs.TaxonID, partID fs.PartID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id := taxonID; id != ""; {
		n, ok := m.nodes[id]
		if !ok {
			break
		}
		if _, ok := n.hasPart[partID]; ok {
			return true, nil
		}
		id = n.parent
	}
	return false, nil
}

func (m *Memory) LineageSlugs(_ context.Context, id fs.TaxonID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var reversed []string
	for cur := id; cur != ""; {
		n, ok := m.nodes[cur]
		if !ok {
			break
		}
		reversed = append(reversed, n.slug)
		cur = n.parent
	}
	slugs := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		slugs = append(slugs, reversed[i])
	}
	return slugs, nil
}

func (m *Memory) ApplicableTransformIDs(_ context.Context, taxonID fs.TaxonID, partID fs.PartID) (map[fs.TransformID]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[fs.TransformID]struct{})
	for id := taxonID; id != ""; {
		n, ok := m.nodes[id]
		if !ok {
			break
		}
		for tx := range n.transforms[partID] {
			out[tx] = struct{}{}
		}
		id = n.parent
	}
	return out, nil
}

// Interface guard.
var _ Oracle = (*Memory)(nil)
