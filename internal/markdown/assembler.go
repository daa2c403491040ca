// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package markdown renders the persisted markdown artifact: a metadata
// header followed by the cleaned document body. Pure string templating,
// no business logic.
package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/ocr"
)

// Metadata describes how a document was produced. It is embedded in the
// rendered artifact and persisted alongside it; consumers depend on these
// field names staying stable.
type Metadata struct {
	Source           string    `json:"source"`
	SourceType       string    `json:"source_type"`
	Title            string    `json:"title,omitempty"`
	ProcessingMethod string    `json:"processing_method"`
	UsedOCR          bool      `json:"used_ocr"`
	OCRThresholdUsed int       `json:"ocr_threshold_used"`
	WordCount        int       `json:"word_count"`
	PageCount        int       `json:"page_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Document is the final markdown artifact.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Assemble wraps a cleaned body in the document-information header.
func Assemble(body string, meta Metadata) Document {
	var lines []string

	if meta.Title != "" && meta.Title != meta.Source {
		lines = append(lines, "# "+meta.Title, "")
	}

	lines = append(lines,
		"## Document Information",
		"",
		fmt.Sprintf("**Source:** %s", meta.Source),
		fmt.Sprintf("**Processing Method:** %s", meta.ProcessingMethod),
		fmt.Sprintf("**OCR Used:** %t", meta.UsedOCR),
		fmt.Sprintf("**OCR Threshold:** %d words", meta.OCRThresholdUsed),
		fmt.Sprintf("**Processed:** %s UTC", meta.CreatedAt.UTC().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("**Word Count:** %d words", meta.WordCount),
		"",
		"---",
		"",
		"## Content",
		"",
		body,
	)

	return Document{
		Content:  strings.Join(lines, "\n"),
		Metadata: meta,
	}
}

// TableToMarkdown renders an extracted table as a markdown table. The
// first row is treated as the header row. Empty tables render as "".
func TableToMarkdown(t ocr.Table) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var lines []string
	header := t.Rows[0]
	lines = append(lines, "| "+joinCells(header)+" |")

	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(seps, " | ")+" |")

	for _, row := range t.Rows[1:] {
		lines = append(lines, "| "+joinCells(row)+" |")
	}
	return strings.Join(lines, "\n")
}

// AppendExtractedStructure appends OCR table and form sections to a body.
// Bodies without tables or forms are returned unchanged.
func AppendExtractedStructure(body string, tables []ocr.Table, forms []ocr.FormField) string {
	var sb strings.Builder
	sb.WriteString(body)

	if len(tables) > 0 {
		sb.WriteString("\n\n## Extracted Tables\n")
		for i, table := range tables {
			rendered := TableToMarkdown(table)
			if rendered == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("\n### Table %d\n\n", i+1))
			sb.WriteString(rendered)
			sb.WriteString("\n")
		}
	}

	if len(forms) > 0 {
		sb.WriteString("\n\n## Extracted Form Data\n\n")
		for _, field := range forms {
			if field.Key == "" || field.Value == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("**%s:** %s\n\n", field.Key, field.Value))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func joinCells(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(strings.ReplaceAll(c, "|", "\\|"))
	}
	return strings.Join(out, " | ")
}
