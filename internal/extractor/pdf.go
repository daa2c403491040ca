// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package extractor

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// extractPDFText extracts the text layer from PDF bytes using go-fitz
// (MuPDF), inserting a "--- Page N ---" marker between pages. Pages that
// fail to extract are skipped so one bad page never loses the document.
// API reference: https://pkg.go.dev/github.com/gen2brain/go-fitz
func extractPDFText(data []byte) (string, int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	numPages := doc.NumPage()

	for i := 0; i < numPages; i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		textBuilder.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", i+1))
		textBuilder.WriteString(pageText)
	}

	return strings.TrimSpace(textBuilder.String()), numPages, nil
}
