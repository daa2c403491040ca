// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package extractor decides how much extraction effort a document needs
// and runs a cascade of strategies with graceful degradation: direct text
// first, OCR only when the text layer is too thin, and never a hard
// failure for extraction-quality reasons.
package extractor

import (
	"strings"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/ocr"
)

// Method identifies which extraction strategy produced the text.
type Method string

const (
	// MethodTextDirect means the document's own text layer was enough.
	MethodTextDirect Method = "text_direct"
	// MethodOCRAdvanced means layout-aware OCR produced the text.
	MethodOCRAdvanced Method = "ocr_advanced"
	// MethodOCRBasic means plain OCR produced the text.
	MethodOCRBasic Method = "ocr_basic"
	// MethodTextOnlyFallback means every OCR attempt failed and whatever
	// direct text was obtained is returned, possibly empty. This is a
	// valid outcome, not an error.
	MethodTextOnlyFallback Method = "text_only_fallback"
)

// UsedOCR reports whether a method involved OCR. The method fully
// determines the flag.
func (m Method) UsedOCR() bool {
	return m == MethodOCRAdvanced || m == MethodOCRBasic
}

// Result is the output of the extraction cascade.
type Result struct {
	Text      string
	Method    Method
	UsedOCR   bool
	WordCount int
	PageCount int

	// OCR-only fields, zero unless Method is an OCR method.
	Confidence float64
	TableCount int
	FormCount  int
	Tables     []ocr.Table
	Forms      []ocr.FormField
}

func newResult(text string, method Method, pages int) Result {
	return Result{
		Text:      text,
		Method:    method,
		UsedOCR:   method.UsedOCR(),
		WordCount: len(strings.Fields(text)),
		PageCount: pages,
	}
}
