// Package parser extracts plain text from corpus documents. PDF is the
// primary format; DOCX and plain text files are also recognized.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupported marks a file whose extension is not a recognized document
// format. The ingestion pipeline skips such files instead of failing.
var ErrUnsupported = errors.New("unsupported file format")

// Supported reports whether the file at path has a recognized extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// Extract returns the full plain text of the document at path.
func Extract(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	case ".txt":
		return extractText(path)
	default:
		return "", fmt.Errorf("%s: %w", ext, ErrUnsupported)
	}
}

func extractPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("read pdf %s: %w", path, err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d of %s: %w", i, path, err)
		}
		text.WriteString(pageText)
	}
	return text.String(), nil
}

func extractDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("read docx %s: %w", path, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var text strings.Builder
	for _, p := range strings.Split(content, "\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		text.WriteString(p)
		text.WriteString("\n")
	}
	return text.String(), nil
}

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
