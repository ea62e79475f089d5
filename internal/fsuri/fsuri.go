package fsuri

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/driedl/food-graph-sub002/internal/fs"
)

// Scheme is the FS string scheme prefix.
const Scheme = "fs:"

// partTag marks the segment separating the taxon path from the transforms.
const partTag = "part:"

// Mode selects how parsing treats malformed transform segments.
type Mode int

const (
	// Lenient recovers from malformed segments (the default wire behavior).
	Lenient Mode = iota
	// Strict rejects the first malformed segment or parameter term.
	Strict
)

// Parsed is the structured form of an FS string.
type Parsed struct {
	// TaxonPath holds the lineage slugs in root-to-leaf order as written.
	TaxonPath []string
	// PartID is the full part identifier ("part:<suffix>"), or empty when
	// the string carries no part segment.
	PartID fs.PartID
	// Chain holds the transform steps in the order they appear in the
	// string, which for a canonically serialized string is id-sorted.
	Chain fs.TransformChain
}

// MalformedSegmentError reports an unparsable transform segment or
// parameter term. Only strict-mode parsing returns it; lenient parsing
// recovers instead.
type MalformedSegmentError struct {
	Segment string // raw segment text
	Index   int    // position among transform segments, 0-based
	Reason  string
}

func (e *MalformedSegmentError) Error() string {
	return fmt.Sprintf("malformed transform segment %d %q: %s", e.Index, e.Segment, e.Reason)
}

// transform segment: id optionally followed by a {k=v,...} parameter block.
var segmentRe = regexp.MustCompile(`^([^{}]+)(\{(.*)\})?$`)

// Serialize renders an FS string from lineage slugs, a part, and a chain.
// The chain is reordered by transform id before rendering; parameter keys
// sort lexicographically and numbers round to 6 fractional digits. An empty
// part id omits the part segment (and with it any transforms).
func Serialize(lineageSlugs []string, partID fs.PartID, chain fs.TransformChain) string {
	var b strings.Builder
	b.WriteString(Scheme)
	for _, slug := range lineageSlugs {
		b.WriteByte('/')
		b.WriteString(slug)
	}
	if partID == "" {
		return b.String()
	}
	b.WriteByte('/')
	b.WriteString(partTag)
	b.WriteString(partID.Suffix())
	for _, step := range chain.SortedByID() {
		b.WriteByte('/')
		b.WriteString(step.Render())
	}
	return b.String()
}

// Parse scans an FS string leniently. See ParseMode.
func Parse(s string) (Parsed, error) {
	return ParseMode(s, Lenient)
}

// ParseMode scans an FS string in the given mode.
//
// The scan strips the scheme, splits on '/', and locates the first
// "part:"-tagged segment: everything before it is the taxon path, the
// segment itself (minus tag) is the part, everything after is the
// transform list. A missing scheme is an error in both modes - a string
// without "fs:/" is not an FS string at all.
func ParseMode(s string, mode Mode) (Parsed, error) {
	if !strings.HasPrefix(s, Scheme+"/") {
		return Parsed{}, fmt.Errorf("fs string must begin with %q: %q", Scheme+"/", s)
	}

	var out Parsed
	segments := strings.Split(strings.TrimPrefix(s, Scheme), "/")

	partSeen := false
	txIndex := 0
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if !partSeen {
			if rest, ok := strings.CutPrefix(seg, partTag); ok {
				partSeen = true
				if rest != "" {
					out.PartID = fs.PartID(partTag + rest)
				}
				continue
			}
			out.TaxonPath = append(out.TaxonPath, seg)
			continue
		}

		step, err := parseTransformSegment(seg, txIndex, mode)
		if err != nil {
			return Parsed{}, err
		}
		out.Chain = append(out.Chain, step)
		txIndex++
	}

	return out, nil
}

// ParseSegment decodes a single transform segment outside the context of
// a full FS string, e.g. "tx:mill{grade=fine}". Command-line chain
// arguments come in this shape.
func ParseSegment(seg string, mode Mode) (fs.TransformStep, error) {
	return parseTransformSegment(seg, 0, mode)
}

// parseTransformSegment decodes one "<id>{k=v,...}" segment.
//
// Lenient recovery: a segment the grammar cannot split becomes a bare step
// whose id is the raw segment; a parameter term without '=' is dropped.
func parseTransformSegment(seg string, index int, mode Mode) (fs.TransformStep, error) {
	m := segmentRe.FindStringSubmatch(seg)
	if m == nil {
		if mode == Strict {
			return fs.TransformStep{}, &MalformedSegmentError{
				Segment: seg, Index: index,
				Reason: "does not match <id>{k=v,...}",
			}
		}
		return fs.TransformStep{ID: fs.TransformID(seg)}, nil
	}

	step := fs.TransformStep{ID: fs.TransformID(m[1])}
	if m[2] == "" {
		return step, nil
	}

	step.Params = fs.Params{}
	for _, term := range strings.Split(m[3], ",") {
		if term == "" {
			continue
		}
		k, v, ok := strings.Cut(term, "=")
		if !ok || k == "" {
			if mode == Strict {
				return fs.TransformStep{}, &MalformedSegmentError{
					Segment: seg, Index: index,
					Reason: fmt.Sprintf("parameter term %q is not k=v", term),
				}
			}
			continue
		}
		step.Params[k] = fs.CoerceParam(v)
	}
	if len(step.Params) == 0 {
		step.Params = nil
	}
	return step, nil
}
