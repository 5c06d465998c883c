package extractors

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported document format.
type Format int

const (
	// FormatText is plain UTF-8 text.
	FormatText Format = iota

	// FormatMarkdown is Markdown, optionally with YAML front matter.
	FormatMarkdown

	// FormatPDF is the Portable Document Format.
	FormatPDF

	// FormatDOCX is the Office Open XML word processing format.
	FormatDOCX

	// FormatHTML is HyperText Markup Language.
	FormatHTML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// formatByExtension maps lower-case extensions to formats.
var formatByExtension = map[string]Format{
	".txt":  FormatText,
	".md":   FormatMarkdown,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// FormatForPath resolves the format for a file path by its extension.
func FormatForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formatByExtension[ext]
	return f, ok
}
