package fs

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PathSeparator joins rendered steps in the canonical identity path.
const PathSeparator = "/"

// Render returns the canonical textual form of a step: the bare id when the
// parameter map is empty, otherwise "id{k1=v1,k2=v2}" with keys in
// lexicographic order and each value rendered by its tag.
func (s TransformStep) Render() string {
	id := norm.NFC.String(string(s.ID))
	if len(s.Params) == 0 {
		return id
	}
	var b strings.Builder
	b.WriteString(id)
	b.WriteByte('{')
	for i, k := range s.Params.SortedKeys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(norm.NFC.String(k))
		b.WriteByte('=')
		b.WriteString(s.Params[k].Render())
	}
	b.WriteByte('}')
	return b.String()
}

// Path renders the chain in display order, steps joined by PathSeparator.
// An empty chain renders as the empty string.
func (c TransformChain) Path() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, len(c))
	for i, step := range c {
		parts[i] = step.Render()
	}
	return strings.Join(parts, PathSeparator)
}

// SortedByID returns a copy of the chain in serialization order: steps
// sorted by transform id, stable so duplicate ids keep display order among
// themselves. The receiver is not modified.
func (c TransformChain) SortedByID() TransformChain {
	out := make(TransformChain, len(c))
	copy(out, c)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// IDSet returns the chain's unordered transform-id set (comparison order).
func (c TransformChain) IDSet() map[TransformID]struct{} {
	set := make(map[TransformID]struct{}, len(c))
	for _, step := range c {
		set[step.ID] = struct{}{}
	}
	return set
}

// ParamsByID collapses the chain to one parameter map per transform id,
// for comparison by the resolver. When an id occurs more than once, later
// steps win per key; the resolver compares values, not multiplicity.
func (c TransformChain) ParamsByID() map[TransformID]Params {
	out := make(map[TransformID]Params, len(c))
	for _, step := range c {
		if len(step.Params) == 0 {
			if _, ok := out[step.ID]; !ok {
				out[step.ID] = Params{}
			}
			continue
		}
		merged, ok := out[step.ID]
		if !ok || merged == nil {
			merged = make(Params, len(step.Params))
			out[step.ID] = merged
		}
		for k, v := range step.Params {
			merged[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the chain.
func (c TransformChain) Clone() TransformChain {
	out := make(TransformChain, len(c))
	for i, step := range c {
		out[i] = step.Clone()
	}
	return out
}
