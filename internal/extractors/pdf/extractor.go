// Package pdf extracts text from PDF files using the poppler pdftotext
// tool.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes an external command and returns its stdout.
// Injected so tests can run without pdftotext installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF documents by shelling out to pdftotext, which
// emits per-page text in page order separated by form feeds.
type Extractor struct {
	runner CommandRunner
}

// New creates a new PDF extractor using the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return "pdftotext is required for PDF ingestion.\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils\n" +
		"  Fedora: dnf install poppler-utils"
}

// Extract runs pdftotext and returns the concatenated page text with a
// newline between pages.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, usesTool := e.runner.(execRunner); usesTool {
		if err := CheckAvailable(); err != nil {
			return "", fmt.Errorf("%w\n%s", err, InstallInstructions())
		}
	}

	// -layout keeps reading order, "-" writes to stdout
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext failed for %s: %v", domain.ErrExtractionFailed, path, err)
	}

	return normalisePages(string(out)), nil
}

// normalisePages replaces the form feed page separators pdftotext emits
// with newlines so pages are concatenated in page order.
func normalisePages(text string) string {
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\f' {
			out = append(out, '\n')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
