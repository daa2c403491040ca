// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package ocr defines the boundary to an external OCR service. The engine
// is a black box: the pipeline only needs plain text back, plus table and
// form structure when the advanced analysis succeeds.
package ocr

import (
	"context"
	"errors"
)

// MaxDocumentBytes is the largest document the OCR service accepts.
const MaxDocumentBytes = 10 * 1024 * 1024

// ErrDocumentTooLarge is returned before any network call when the input
// exceeds MaxDocumentBytes.
var ErrDocumentTooLarge = errors.New("document too large for OCR")

// Table is one extracted table as rows of cell text.
type Table struct {
	Rows       [][]string `json:"rows"`
	Confidence float64    `json:"confidence"`
}

// FormField is one extracted key/value pair.
type FormField struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// AdvancedResult is the output of layout-aware document analysis.
type AdvancedResult struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"average_confidence"`
	Tables     []Table     `json:"tables"`
	Forms      []FormField `json:"forms"`
}

// Engine performs OCR on document bytes.
type Engine interface {
	// DetectText runs plain line-level OCR.
	DetectText(ctx context.Context, doc []byte) (string, error)

	// AnalyzeDocument runs layout-aware OCR with table and form analysis.
	AnalyzeDocument(ctx context.Context, doc []byte) (*AdvancedResult, error)
}
