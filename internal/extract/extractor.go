// Package extract provides text extraction from resume documents.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnsupportedFormat is the text returned for files with an unknown extension.
const UnsupportedFormat = "Unsupported file format."

// ErrUnsupportedFormat is returned by Extractor for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// formatLabels names each supported extension in failure messages.
var formatLabels = map[string]string{
	".pdf":  "PDF",
	".docx": "DOCX",
	".odt":  "ODT",
	".rtf":  "RTF",
	".txt":  "TXT",
	".md":   "MD",
}

// SupportedExtensions returns the extensions Extractor can read, with leading dot.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".odt", ".rtf", ".txt", ".md"}
}

// IsSupported reports whether ext (with leading dot, any case) can be extracted.
func IsSupported(ext string) bool {
	_, ok := formatLabels[strings.ToLower(ext)]
	return ok
}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
// Returns an error if the file cannot be read or the format is unsupported.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.Read(content, filepath.Ext(path))
}

// Read extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) Read(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractCat(content)
	case ".txt", ".md":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

var defaultExtractor = NewExtractor()

// ExtractBytes returns the text of an uploaded file named name. It never fails:
// unreadable files yield "Error reading <FORMAT>: <reason>" and unknown
// extensions yield UnsupportedFormat, so the caller can still rank them.
func ExtractBytes(name string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	label, ok := formatLabels[ext]
	if !ok {
		return UnsupportedFormat
	}
	text, err := defaultExtractor.Read(content, ext)
	if err != nil {
		return fmt.Sprintf("Error reading %s: %v", label, err)
	}
	return text
}

// ExtractFile is ExtractBytes for a file on disk.
func ExtractFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	label, ok := formatLabels[ext]
	if !ok {
		return UnsupportedFormat
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading %s: %v", label, err)
	}
	return ExtractBytes(path, content)
}

// IsExtractionFailure reports whether text is a failure message from ExtractBytes.
func IsExtractionFailure(text string) bool {
	return text == UnsupportedFormat || strings.HasPrefix(text, "Error reading ")
}
