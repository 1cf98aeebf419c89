// Package docparse turns uploaded logistics documents into plain text
// and splits that text into chunks for indexing. Formats are dispatched
// by file extension: .pdf, .docx and .txt are supported, anything else
// is rejected with domain.ErrUnsupportedFormat.
package docparse

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/haulware/loadlens/internal/domain"
)

// Parse extracts plain text from an uploaded document.
func Parse(filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	var text string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filename, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyDocument
	}
	return text, nil
}
