// Package fs provides the FoodState model: taxon/part/transform identifiers,
// transform chains with typed parameters, and the canonical identity encoder.
//
// This package contains types and pure functions only. All other internal
// packages import fs; fs imports nothing internal. This keeps the model the
// foundational layer with no circular dependencies.
//
// A transform chain has three canonical orderings, and they are deliberately
// distinct:
//
//   - Display order: the order operations were applied. Used by the identity
//     encoder when rendering the canonical path (Encode).
//   - Serialization order: steps sorted by transform id. Used by the FS string
//     grammar (package fsuri) so that equivalent chains serialize identically.
//   - Comparison order: no order at all - an unordered id set. Used by the
//     nearest-match resolver (package resolve).
//
// Key design constraints:
//   - ParamValue is a sealed union {Number, Boolean, String}. No open types,
//     no nested containers; the encoder and resolver stay exhaustive.
//   - Numbers render through one shared formatter (6 fractional digits, no
//     locale) everywhere a parameter becomes text.
//   - Strings are NFC normalized at the rendering boundary.
package fs
