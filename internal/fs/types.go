package fs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Namespace prefixes for the three identifier families.
// A full identifier is "<namespace>:<suffix>", e.g. "tx:ferment".
const (
	NamespaceTaxon     = "taxon"
	NamespacePart      = "part"
	NamespaceTransform = "tx"
)

// TaxonID identifies a node in the source taxonomy, e.g. "taxon:triticum-aestivum".
type TaxonID string

// Suffix returns the identifier with its namespace prefix stripped.
func (id TaxonID) Suffix() string { return suffix(string(id)) }

// PartID identifies a harvested or derived component, e.g. "part:seed".
type PartID string

func (id PartID) Suffix() string { return suffix(string(id)) }

// TransformID identifies an operation applied to a part, e.g. "tx:mill".
type TransformID string

func (id TransformID) Suffix() string { return suffix(string(id)) }

func suffix(id string) string {
	if i := strings.Index(id, ":"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// TransformStep is one applied operation: a transform id plus its
// parameters. A nil Params map is equivalent to an empty one.
type TransformStep struct {
	ID     TransformID `json:"id"`
	Params Params      `json:"params,omitempty"`
}

// Clone returns a copy safe to mutate independently.
func (s TransformStep) Clone() TransformStep {
	return TransformStep{ID: s.ID, Params: s.Params.Clone()}
}

// TransformChain is an ordered sequence of steps, possibly empty.
// The slice order is display order (the order operations were applied).
type TransformChain []TransformStep

// FoodState is the ephemeral composite of a taxon, a part, and a chain.
// It is constructed on demand (from user input or a parsed FS string) and
// does not require persistence to be valid.
type FoodState struct {
	TaxonID TaxonID        `json:"taxon_id"`
	PartID  PartID         `json:"part_id"`
	Chain   TransformChain `json:"chain"`
}

// CanonicalIdentity is the deterministic identity of a FoodState.
// Path is the rendered transform path in display order; Hash is the
// fixed-width digest of Path. Two FoodStates with the same taxon, part,
// and rendered chain always carry the same CanonicalIdentity.
type CanonicalIdentity struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// TPT is a curated, persisted FoodState: a taxon-part-transform entity with
// a stable canonical id and a display name. TPT rows are owned by the
// curation compiler; everything else reads them.
type TPT struct {
	ID      string         `json:"id"`
	TaxonID TaxonID        `json:"taxon_id"`
	PartID  PartID         `json:"part_id"`
	Family  string         `json:"family"`
	Name    string         `json:"name"`
	Chain   TransformChain `json:"chain"`
}

// TransformIDs returns the chain's unordered id set (comparison order).
func (t TPT) TransformIDs() map[TransformID]struct{} {
	return t.Chain.IDSet()
}

// MarshalJSON keeps chain steps in display order and omits empty params.
func (s TransformStep) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID     TransformID `json:"id"`
		Params Params      `json:"params,omitempty"`
	}
	if len(s.Params) == 0 {
		return json.Marshal(wire{ID: s.ID})
	}
	return json.Marshal(wire{ID: s.ID, Params: s.Params})
}

// UnmarshalJSON rejects steps without an id; params default to empty.
func (s *TransformStep) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID     TransformID `json:"id"`
		Params Params      `json:"params"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("transform step missing id")
	}
	s.ID = w.ID
	s.Params = w.Params
	return nil
}
