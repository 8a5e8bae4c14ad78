// Package ingestion reads resume documents (PDF, DOCX, plain text) and extracts their text.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported document formats
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatText = "text"
)

// Document is an ingested resume file
type Document struct {
	Filename string
	Format   string
	Data     []byte
	Text     string
	Metadata *Metadata
}

// Ingest reads a document from disk and extracts its text
func Ingest(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ExtractionError{Path: path, Kind: ErrNotFound, Cause: err}
		}
		return nil, &ExtractionError{Path: path, Kind: ErrCorruptInput, Cause: err}
	}
	return IngestBytes(path, data)
}

// IngestBytes extracts text from document bytes. name selects the format by extension.
func IngestBytes(name string, data []byte) (*Document, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	raw, err := extract(format, data)
	if err != nil {
		return nil, &ExtractionError{Path: name, Kind: ErrCorruptInput, Cause: err}
	}

	text := CollapseWhitespace(raw)
	if text == "" {
		return nil, &ExtractionError{Path: name, Kind: ErrEmpty}
	}

	return &Document{
		Filename: filepath.Base(name),
		Format:   format,
		Data:     data,
		Text:     text,
		Metadata: NewMetadata(filepath.Base(name), format, data, text),
	}, nil
}

// ExtractText returns the whitespace-collapsed text of the document at path
func ExtractText(path string) (string, error) {
	doc, err := Ingest(path)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// DetectFormat maps a file name to a supported format
func DetectFormat(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".text", ".md":
		return FormatText, nil
	default:
		return "", &ExtractionError{Path: name, Kind: ErrUnsupported}
	}
}

func extract(format string, data []byte) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDFText(data)
	case FormatDOCX:
		return extractDocxText(data)
	default:
		return string(data), nil
	}
}

func extractPDFText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	// GetContent returns the raw document XML
	content := doc.Editable().GetContent()
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, " ")
	return html.UnescapeString(content), nil
}

// CollapseWhitespace joins all whitespace-separated words with single spaces
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
