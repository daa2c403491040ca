// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsSupportedFile(t *testing.T) {
	supported := []string{"a.pdf", "b.DOCX", "c.txt", "d.md", "e.xlsx", "f.xls", "g.html", "h.htm", "i.eml"}
	for _, name := range supported {
		if !IsSupportedFile(name) {
			t.Errorf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"a.exe", "b.png", "c", "d.zip"} {
		if IsSupportedFile(name) {
			t.Errorf("expected %s to be unsupported", name)
		}
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF("report.PDF") {
		t.Error("expected case-insensitive PDF detection")
	}
	if IsPDF("report.docx") {
		t.Error("docx is not a PDF")
	}
}

func TestIsTemporaryFile(t *testing.T) {
	for _, name := range []string{"~$report.docx", "._draft.txt", "upload.tmp"} {
		if !IsTemporaryFile(name) {
			t.Errorf("expected %s to be temporary", name)
		}
	}
	if IsTemporaryFile("report.docx") {
		t.Error("regular file flagged as temporary")
	}
}

func TestParseFileText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("  hello world\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	text, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if text != "hello world" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestParseFileHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	html := `<html><head><title>T</title><script>ignored()</script></head>
	<body><main><h1>Release Notes</h1><p>This release improves ingestion throughput considerably.</p></main></body></html>`
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	text, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if !strings.Contains(text, "Release Notes") {
		t.Errorf("expected heading in extracted text: %q", text)
	}
	if strings.Contains(text, "ignored()") {
		t.Errorf("script content leaked into text: %q", text)
	}
}

func TestParseFileUnsupported(t *testing.T) {
	if _, err := ParseFile("file.zip"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestFlattenRow(t *testing.T) {
	headers := []string{"Name", "", "Amount"}
	row := []string{"Widget", "x", "42"}

	parts := flattenRow(headers, row)
	want := []string{"Name: Widget", "Column 2: x", "Amount: 42"}
	if len(parts) != len(want) {
		t.Fatalf("expected %d parts, got %v", len(want), parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d: got %q, want %q", i, parts[i], want[i])
		}
	}
}
