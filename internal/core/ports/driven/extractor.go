package driven

import "context"

// Extractor converts a file of one supported format into raw text.
// Extraction is a pure transform with no side effects.
type Extractor interface {
	// Extract reads the file at path and returns its text content.
	// Parse failures wrap domain.ErrExtractionFailed.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry resolves the extractor variant for a file path by its
// extension.
type ExtractorRegistry interface {
	// Resolve returns the extractor for the path's extension, or an
	// error wrapping domain.ErrUnsupportedFormat.
	Resolve(path string) (Extractor, error)

	// Supported reports whether the path's extension is handled.
	Supported(path string) bool

	// Extensions returns the supported extensions, with leading dot.
	Extensions() []string
}
