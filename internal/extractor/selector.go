// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package extractor

import (
	"context"
	"log"
	"strings"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/ocr"
)

// DefaultOCRThreshold is the word count under which a PDF's text layer is
// assumed to be missing (scanned document) and OCR is attempted.
const DefaultOCRThreshold = 50

// Selector runs the extraction cascade for one document. The threshold is
// read once per document so the value used can be recorded for audit.
type Selector struct {
	threshold int
	engine    ocr.Engine
}

// NewSelector creates a selector. engine may be nil, in which case the
// cascade degrades straight to the text-only fallback when direct
// extraction comes up short.
func NewSelector(threshold int, engine ocr.Engine) *Selector {
	if threshold <= 0 {
		threshold = DefaultOCRThreshold
	}
	return &Selector{threshold: threshold, engine: engine}
}

// Threshold returns the word-count threshold in effect.
func (s *Selector) Threshold() int {
	return s.threshold
}

// ExtractPDF runs the cascade over PDF bytes:
//
//	direct text -> (enough words) done
//	            -> advanced OCR  -> done
//	            -> basic OCR     -> done
//	            -> text-only fallback (never an error)
//
// The returned Result always carries some text, possibly empty. Quality
// problems are states, not errors.
func (s *Selector) ExtractPDF(ctx context.Context, data []byte, filename string) Result {
	directText, pages, err := extractPDFText(data)
	if err != nil {
		log.Printf("ExtractPDF: direct extraction failed for %s: %v", filename, err)
		directText = ""
	}

	directWords := len(strings.Fields(directText))
	if directWords >= s.threshold {
		return newResult(directText, MethodTextDirect, pages)
	}

	if s.engine == nil {
		return newResult(directText, MethodTextOnlyFallback, pages)
	}

	log.Printf("ExtractPDF: %s has only %d words, attempting advanced OCR", filename, directWords)

	if adv, err := s.engine.AnalyzeDocument(ctx, data); err == nil && adv != nil {
		result := newResult(adv.Text, MethodOCRAdvanced, pages)
		result.Confidence = adv.Confidence
		result.TableCount = len(adv.Tables)
		result.FormCount = len(adv.Forms)
		result.Tables = adv.Tables
		result.Forms = adv.Forms
		return result
	} else if err != nil {
		log.Printf("ExtractPDF: advanced OCR failed for %s, trying basic OCR: %v", filename, err)
	}

	if text, err := s.engine.DetectText(ctx, data); err == nil {
		return newResult(text, MethodOCRBasic, pages)
	} else {
		log.Printf("ExtractPDF: basic OCR also failed for %s: %v", filename, err)
	}

	return newResult(directText, MethodTextOnlyFallback, pages)
}

// ExtractURLContent turns fetched HTML into a Result. HTML always has a
// text layer, so the OCR branch of the cascade never applies here.
func (s *Selector) ExtractURLContent(html string) (Result, string) {
	text, title, err := ExtractHTML(html)
	if err != nil {
		log.Printf("ExtractURLContent: HTML parse failed: %v", err)
		return newResult("", MethodTextOnlyFallback, 0), ""
	}
	return newResult(text, MethodTextDirect, 0), title
}
