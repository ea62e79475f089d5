package fsuri

// Kingdom slugs anchor taxon-path resolution. An FS taxon path may carry
// leading vanity or collection segments; the resolvable lineage starts at
// the first kingdom slug.
var kingdomSlugs = map[string]struct{}{
	"plantae":  {},
	"animalia": {},
	"fungi":    {},
	"bacteria": {},
	"algae":    {},
	"mineral":  {},
}

// IsKingdom reports whether slug is a recognized top-level kingdom.
func IsKingdom(slug string) bool {
	_, ok := kingdomSlugs[slug]
	return ok
}

// ResolveTaxonPath anchors a parsed taxon path at its kingdom. It returns
// the sub-path starting at the first kingdom slug, or ok=false when no
// kingdom is present - in which case the path is unresolvable and callers
// must not substitute a default root.
func ResolveTaxonPath(slugs []string) (path []string, ok bool) {
	for i, slug := range slugs {
		if IsKingdom(slug) {
			return slugs[i:], true
		}
	}
	return nil, false
}
