// Package fsuri implements the FS string grammar: the human-readable
// locator for a FoodState.
//
//	fs:/<slug1>/<slug2>/.../part:<partSuffix>/tx:<id1>{k=v,...}/tx:<id2>/...
//
// Serialization is canonical: transform steps are reordered by id
// (serialization order), parameter keys are sorted, and numeric values are
// rounded to 6 fractional digits. Parsing is a single left-to-right scan
// over '/'-separated segments; the first "part:"-tagged segment splits the
// taxon path from the transform list.
//
// Parsing has two modes. Lenient mode (the default) recovers from malformed
// transform segments instead of aborting: an unparsable segment becomes a
// bare step whose id is the raw segment text, and malformed parameter terms
// are dropped term-by-term. Strict mode surfaces the first malformed
// segment as a MalformedSegmentError.
package fsuri
