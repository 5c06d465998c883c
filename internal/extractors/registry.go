package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
	"github.com/kbase-labs/kbase/internal/extractors/docx"
	"github.com/kbase-labs/kbase/internal/extractors/html"
	"github.com/kbase-labs/kbase/internal/extractors/markdown"
	"github.com/kbase-labs/kbase/internal/extractors/pdf"
	"github.com/kbase-labs/kbase/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry resolves extractor variants by file extension.
type Registry struct {
	extractors map[Format]driven.Extractor
}

// NewRegistry creates a registry wired with the default extractor for
// every supported format.
func NewRegistry() *Registry {
	return &Registry{
		extractors: map[Format]driven.Extractor{
			FormatText:     plaintext.New(),
			FormatMarkdown: markdown.New(),
			FormatPDF:      pdf.New(),
			FormatDOCX:     docx.New(),
			FormatHTML:     html.New(),
		},
	}
}

// Resolve returns the extractor for the path's extension.
func (r *Registry) Resolve(path string) (driven.Extractor, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, strings.ToLower(filepath.Ext(path)))
	}
	return r.extractors[format], nil
}

// Supported reports whether the path's extension is handled.
func (r *Registry) Supported(path string) bool {
	_, ok := FormatForPath(path)
	return ok
}

// Extensions returns the supported extensions, sorted, with leading dot.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(formatByExtension))
	for ext := range formatByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
