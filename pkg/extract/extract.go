package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"

	"docupy/internal/types"
)

// ForPath picks an extractor by file extension.
func ForPath(path string) (types.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return &PDFExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".txt", ".md":
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported document type: %s", ext)
	}
}

// PDFExtractor extracts the text of every page of a PDF, concatenated in
// page order with a space between pages.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	loader := documentloaders.NewPDF(f, info.Size())
	docs, err := loader.Load(context.Background())
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String()), nil
}

func (e *PDFExtractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// TextExtractor reads plain-text documents as-is.
type TextExtractor struct{}

func (e *TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

func (e *TextExtractor) SupportedExtensions() []string {
	return []string{".txt", ".md"}
}
