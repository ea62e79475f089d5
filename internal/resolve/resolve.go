// Package resolve ranks curated TPT candidates against an arbitrary
// transform chain and returns the nearest match with an explainable
// breakdown.
//
// Scoring treats chains in comparison order: an unordered transform-id set
// plus one parameter map per id. The score is the F1 of set precision and
// recall, plus a small bonus for parameter agreement, clamped to 1.0. A
// candidate is never rejected outright - callers wanting "no confident
// match" behavior apply their own threshold.
package resolve

import (
	"context"
	"math"
	"sort"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

// ParamBonusStep is added per string-equal parameter agreement.
const ParamBonusStep = 0.05

// ParamBonusCap bounds the total parameter bonus per candidate.
const ParamBonusCap = 0.25

// Candidate is a curated TPT prepared for scoring: its identity plus the
// chain it was curated with. Retrieval (the store) guarantees all
// candidates share the queried (taxon, part).
type Candidate struct {
	ID     string
	Family string
	Name   string
	Chain  fs.TransformChain
}

// Source retrieves scoring candidates for a (taxon, part) pair.
// family, when non-empty, filters to that family. An empty result is not
// an error; the resolver maps it to a nil match.
type Source interface {
	Candidates(ctx context.Context, taxonID fs.TaxonID, partID fs.PartID, family string) ([]Candidate, error)
}

// Match is a scored candidate with its explanation: which transform ids
// matched, which the candidate has that the input lacks (missing), and
// which the input has that the candidate lacks (extra). The id slices are
// sorted for deterministic output.
type Match struct {
	ID      string           `json:"id"`
	Family  string           `json:"family"`
	Name    string           `json:"name"`
	Score   float64          `json:"score"`
	Matched []fs.TransformID `json:"matched"`
	Missing []fs.TransformID `json:"missing"`
	Extra   []fs.TransformID `json:"extra"`
}

// Nearest returns the closest curated TPT to the input chain, or nil when
// the pair has no candidates. Identical inputs and candidate sets always
// produce the identical match: ties break by family ascending, then id
// ascending.
func Nearest(ctx context.Context, src Source, taxonID fs.TaxonID, partID fs.PartID, input fs.TransformChain, family string) (*Match, error) {
	candidates, err := src.Candidates(ctx, taxonID, partID, family)
	if err != nil {
		return nil, err
	}
	ranked := Rank(candidates, input)
	if len(ranked) == 0 {
		return nil, nil
	}
	return &ranked[0], nil
}

// Rank scores every candidate against the input chain and returns the full
// ordering, best first. The ordering is total and deterministic.
func Rank(candidates []Candidate, input fs.TransformChain) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, score(c, input))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Family != matches[j].Family {
			return matches[i].Family < matches[j].Family
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}

func score(c Candidate, input fs.TransformChain) Match {
	inputSet := input.IDSet()
	candSet := c.Chain.IDSet()

	var matched, missing, extra []fs.TransformID
	for id := range candSet {
		if _, ok := inputSet[id]; ok {
			matched = append(matched, id)
		} else {
			missing = append(missing, id)
		}
	}
	for id := range inputSet {
		if _, ok := candSet[id]; !ok {
			extra = append(extra, id)
		}
	}
	sortIDs(matched)
	sortIDs(missing)
	sortIDs(extra)

	precision := float64(len(matched)) / float64(max(1, len(inputSet)))
	recall := float64(len(matched)) / float64(max(1, len(candSet)))
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return Match{
		ID:      c.ID,
		Family:  c.Family,
		Name:    c.Name,
		Score:   round4(math.Min(1, f1+paramBonus(matched, input, c.Chain))),
		Matched: emptyNotNil(matched),
		Missing: emptyNotNil(missing),
		Extra:   emptyNotNil(extra),
	}
}

// paramBonus awards ParamBonusStep per parameter key present on both sides
// of a matched transform with string-equal rendered values, capped at
// ParamBonusCap. Rendered (not raw) comparison makes 24 and 24.0 agree.
func paramBonus(matched []fs.TransformID, input, candidate fs.TransformChain) float64 {
	inputParams := input.ParamsByID()
	candParams := candidate.ParamsByID()

	bonus := 0.0
	for _, id := range matched {
		in := inputParams[id]
		cand := candParams[id]
		if len(in) == 0 || len(cand) == 0 {
			continue
		}
		for _, k := range in.SortedKeys() {
			cv, ok := cand[k]
			if !ok {
				continue
			}
			if in[k].Render() == cv.Render() {
				bonus += ParamBonusStep
				if bonus >= ParamBonusCap {
					return ParamBonusCap
				}
			}
		}
	}
	return bonus
}

func sortIDs(ids []fs.TransformID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func emptyNotNil(ids []fs.TransformID) []fs.TransformID {
	if ids == nil {
		return []fs.TransformID{}
	}
	return ids
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
