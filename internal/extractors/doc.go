// Package extractors maps file formats to text extractor variants.
//
// Each supported format has one extractor implementing the
// driven.Extractor contract; the registry resolves a variant from a
// file's extension. Extraction is a pure transform: a file in, raw text
// out, no side effects.
package extractors
