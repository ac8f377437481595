package pdfextract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page holds the plain text of one PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// ExtractPages opens the PDF at path and extracts plain text page by page.
// Pages with no extractable text are skipped; a PDF with no text at all
// returns an empty slice and nil error, which the caller must treat as a
// "no content" condition.
func ExtractPages(path string) ([]Page, error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d failed: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// ExtractPagesFromReader drains r into a scratch file, extracts page texts,
// and removes the scratch file regardless of outcome.
func ExtractPagesFromReader(r io.Reader) ([]Page, error) {
	tmp, err := os.CreateTemp("", "pdfchat-upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create scratch file failed: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write scratch file failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close scratch file failed: %w", err)
	}
	return ExtractPages(path)
}
