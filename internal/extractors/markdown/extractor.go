// Package markdown extracts text from Markdown files.
package markdown

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/kbase-labs/kbase/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents. Formatting is stripped to plain
// text, paragraph boundaries survive as newlines, and code content is
// kept behind an inline marker since code fragments often carry the only
// technical content of a document.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads the file and converts the Markdown to plain text.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return StripMarkdown(string(data)), nil
}

// Pre-compiled regular expressions for markdown stripping.
var (
	fencedCode   = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n?(.*?)```")
	inlineCode   = regexp.MustCompile("`([^`\n]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hrLines      = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiBlank   = regexp.MustCompile(`\n{3,}`)
)

// StripMarkdown converts markdown source to plain text. A leading YAML
// front matter block is dropped, and code spans become "[code: ...]"
// markers instead of being discarded.
func StripMarkdown(content string) string {
	content = stripFrontMatter(content)

	// Keep code content behind an inline marker
	content = fencedCode.ReplaceAllStringFunc(content, func(block string) string {
		inner := fencedCode.FindStringSubmatch(block)[1]
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return ""
		}
		return " [code: " + inner + "] "
	})
	content = inlineCode.ReplaceAllString(content, " [code: $1] ")

	// Remove images ![alt](url), convert links [text](url) to just text
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")

	// Remove heading, blockquote, rule, and list markers
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = hrLines.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")

	// Remove bold/italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = multiBlank.ReplaceAllString(content, "\n\n")

	// Drop empty lines, keep paragraph boundaries as newlines
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

// stripFrontMatter removes a leading YAML front matter block delimited by
// --- fences, common in Jekyll and Hugo sites.
func stripFrontMatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return content
	}
	return strings.TrimSpace(parts[2])
}
