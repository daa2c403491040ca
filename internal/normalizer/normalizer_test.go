// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package normalizer

import (
	"strings"
	"testing"
)

func TestRemovePageMarkers(t *testing.T) {
	n := New()
	in := "First page text.\n--- Page 1 ---\nSecond page text.\n---- Page 23 ----\nMore."

	out := n.RemovePageMarkers(in)
	if strings.Contains(out, "Page 1") || strings.Contains(out, "Page 23") {
		t.Errorf("page markers survived: %q", out)
	}
	if !strings.Contains(out, "First page text.") || !strings.Contains(out, "More.") {
		t.Errorf("body text lost: %q", out)
	}
}

func TestRepeatedHeaderRemoval(t *testing.T) {
	n := New()

	// A running header on each of 4 pages plus enough body that the
	// repeat count stays under the 10% ratio cap.
	var lines []string
	for page := 0; page < 4; page++ {
		lines = append(lines, "ACME CORP QUARTERLY REPORT")
		for i := 0; i < 12; i++ {
			lines = append(lines, "Regular body sentence on this page.")
		}
	}

	out := n.RemoveRepeatedHeadersFooters(lines)
	for _, line := range out {
		if line == "ACME CORP QUARTERLY REPORT" {
			t.Fatal("repeated running header survived")
		}
	}
	if len(out) != len(lines)-4 {
		t.Errorf("expected only the 4 header lines removed, got %d -> %d", len(lines), len(out))
	}
}

func TestSingleOccurrencePreserved(t *testing.T) {
	n := New()

	lines := []string{
		"CONFIDENTIAL",
		"Body text one.",
		"Body text two.",
	}

	out := n.RemoveRepeatedHeadersFooters(lines)
	if len(out) != 3 {
		t.Errorf("single occurrence must never be removed, got %v", out)
	}
}

func TestOverRepeatedLineKept(t *testing.T) {
	n := New()

	// 5 repeats in 20 lines is 25%, above the 10% cap: treated as body.
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, "DRAFT")
		lines = append(lines, "one", "two", "three")
	}

	out := n.RemoveRepeatedHeadersFooters(lines)
	kept := 0
	for _, line := range out {
		if line == "DRAFT" {
			kept++
		}
	}
	if kept != 5 {
		t.Errorf("line above ratio cap should be kept, got %d of 5", kept)
	}
}

func TestSocialLinkRemoval(t *testing.T) {
	n := New()
	in := strings.Join([]string{
		"Real content here.",
		"Follow us on twitter.com/acme",
		"Visit us at www.acme.example",
		"@acmecorp",
		"More real content.",
	}, "\n")

	out := n.CleanAndFormatText(in)
	if strings.Contains(out, "twitter.com") || strings.Contains(out, "@acmecorp") || strings.Contains(out, "Visit us") {
		t.Errorf("social/footer lines survived: %q", out)
	}
	if !strings.Contains(out, "Real content here.") || !strings.Contains(out, "More real content.") {
		t.Errorf("body text lost: %q", out)
	}
}

func TestHeadingDetectionAllCaps(t *testing.T) {
	n := New()

	out := n.DetectAndFormatHeading("EXECUTIVE SUMMARY")
	if out != "### Executive Summary" {
		t.Errorf("got %q", out)
	}
}

func TestHeadingDetectionColon(t *testing.T) {
	n := New()

	out := n.DetectAndFormatHeading("Key findings:")
	if out != "### Key findings" {
		t.Errorf("got %q", out)
	}
}

func TestHeadingDetectionKeyword(t *testing.T) {
	n := New()

	out := n.DetectAndFormatHeading("Introduction")
	if out != "### Introduction" {
		t.Errorf("got %q", out)
	}
}

func TestHeadingDetectionLeavesProse(t *testing.T) {
	n := New()

	prose := "This is an ordinary sentence that should stay as it is."
	if out := n.DetectAndFormatHeading(prose); out != prose {
		t.Errorf("prose rewritten: %q", out)
	}
	// A long all-caps line is shouting, not a heading.
	shout := "THIS IS A VERY LONG ALL CAPS SENTENCE THAT GOES ON AND ON WELL PAST THE LIMIT"
	if out := n.DetectAndFormatHeading(shout); out != shout {
		t.Errorf("long caps line rewritten: %q", out)
	}
}

func TestBulletNormalization(t *testing.T) {
	n := New()
	cases := map[string]string{
		"• First point":   "- First point",
		"● Second point":  "- Second point",
		"◦ Nested point":  "  - Nested point",
		"▪ Also nested":   "  - Also nested",
		"(1) Numbered":         "1. Numbered",
		"2) Also numbered":     "2. Also numbered",
		"(a) Lettered":         "a. Lettered",
		"-   Extra spaces":     "- Extra spaces",
		"Plain text stays":     "Plain text stays",
	}
	for in, want := range cases {
		if got := n.NormalizeBullets(in); got != want {
			t.Errorf("NormalizeBullets(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBulletNormalizationFixedPoint(t *testing.T) {
	n := New()
	inputs := []string{"• point", "(1) item", "◦ nested"}
	for _, in := range inputs {
		once := n.NormalizeBullets(in)
		twice := n.NormalizeBullets(once)
		if once != twice {
			t.Errorf("not a fixed point: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestHeadingSpacing(t *testing.T) {
	n := New()
	lines := []string{"Some text.", "### Heading", "Body.", "", "", "### Another", "More."}

	out := n.FixHeadingSpacing(lines)
	joined := strings.Join(out, "\n")
	want := "Some text.\n\n### Heading\nBody.\n\n### Another\nMore."
	if joined != want {
		t.Errorf("got:\n%q\nwant:\n%q", joined, want)
	}
}

func TestCleanAndFormatTextIdempotent(t *testing.T) {
	n := New()
	in := strings.Join([]string{
		"INTRODUCTION",
		"This report covers the quarter.",
		"• First item",
		"◦ Sub item",
		"(1) Numbered item",
		"Next steps:",
		"Do the work.",
	}, "\n")

	once := n.CleanAndFormatText(in)
	twice := n.CleanAndFormatText(once)
	if once != twice {
		t.Errorf("cleaning is not idempotent:\nfirst:\n%q\nsecond:\n%q", once, twice)
	}
}

func TestCleanAndFormatTextTableOfContents(t *testing.T) {
	n := New()

	// A TOC label repeated on 4 of 40+ lines is a running header and
	// should disappear entirely.
	var lines []string
	for page := 0; page < 4; page++ {
		lines = append(lines, "TABLE OF CONTENTS")
		for i := 0; i < 10; i++ {
			lines = append(lines, "Chapter body text line.")
		}
	}

	out := n.CleanAndFormatText(strings.Join(lines, "\n"))
	if strings.Contains(out, "TABLE OF CONTENTS") || strings.Contains(out, "Table Of Contents") {
		t.Errorf("repeated TOC header survived:\n%q", out)
	}
}

func TestCollapseSpaces(t *testing.T) {
	n := New()
	if got := n.collapseSpaces("word   spaced \t out"); got != "word spaced out" {
		t.Errorf("got %q", got)
	}
	if got := n.collapseSpaces("  indented   text"); got != "  indented text" {
		t.Errorf("indentation must survive, got %q", got)
	}
}
