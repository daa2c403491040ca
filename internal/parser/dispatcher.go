// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package parser extracts plain text from office and mail formats found
// in watched folders. PDFs are not handled here: they carry layout and
// scan information and go through the OCR-aware extraction path instead.
package parser

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// ParseFile routes a file to the appropriate parser based on its
// extension and returns the extracted plain text.
func ParseFile(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	var text string
	var err error

	switch ext {
	case ".docx":
		text, err = parseDOCX(filePath)
	case ".txt", ".md":
		text, err = parseText(filePath)
	case ".xlsx", ".xls":
		text, err = parseExcel(filePath)
	case ".html", ".htm":
		text, err = parseHTML(filePath)
	case ".eml":
		text, err = parseEmail(filePath)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	if err != nil {
		return "", err
	}

	log.Printf("Extracted %d characters from %s", len(text), filePath)
	return text, nil
}

// IsPDF reports whether the file should take the PDF extraction path.
func IsPDF(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".pdf"
}

// IsSupportedFile checks whether a file can be ingested at all,
// including PDFs.
func IsSupportedFile(filePath string) bool {
	if IsPDF(filePath) {
		return true
	}
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".docx", ".txt", ".md", ".xlsx", ".xls", ".html", ".htm", ".eml":
		return true
	}
	return false
}

// IsTemporaryFile checks for editor lock and scratch files that show up
// in watched folders while a document is being written.
func IsTemporaryFile(filePath string) bool {
	base := filepath.Base(filePath)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, "._") {
		return true
	}
	return strings.HasSuffix(base, ".tmp")
}
