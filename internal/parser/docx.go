// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// parseDOCX extracts text from a DOCX file. The raw document content
// still carries WordprocessingML tags, so paragraph boundaries are
// restored before the tags are stripped.
func parseDOCX(filePath string) (string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX file: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTagRe.ReplaceAllString(content, "")

	text := strings.TrimSpace(content)
	if text == "" {
		return "", fmt.Errorf("no text extracted from DOCX: %s", filePath)
	}
	return text, nil
}
