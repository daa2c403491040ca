// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package pipeline coordinates one document end to end: extraction
// cascade, text normalization, markdown assembly, and sidecar building.
// It is a pure computation over its inputs plus the injected embedding
// and OCR collaborators; persistence belongs to the caller.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/chunker"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/embeddings"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/extractor"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/markdown"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/normalizer"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/ocr"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/sidecar"
)

// SourceKind identifies what a RawSource holds.
type SourceKind string

const (
	// SourcePDF means Data holds PDF bytes.
	SourcePDF SourceKind = "pdf"
	// SourceURL means URL names a page to fetch, or Data holds its HTML.
	SourceURL SourceKind = "url"
)

// RawSource is the input unit for one pipeline run. Created by the
// caller, consumed once.
type RawSource struct {
	Kind     SourceKind
	Filename string
	// Data holds the PDF bytes for SourcePDF, or pre-fetched HTML for
	// SourceURL. For SourceURL it may be empty, in which case URL is
	// fetched.
	Data []byte
	URL  string
}

// Config is validated once, before any extraction work begins. Invalid
// configuration is a caller bug and fails fast; everything downstream is
// recovered per the cascade and per-chunk isolation rules.
type Config struct {
	// OCRThreshold is the direct-extraction word count under which OCR
	// is attempted. Zero selects the default.
	OCRThreshold int
	// Chunking controls the chunking engine. A zero ChunkSize enables
	// document-length-based sizing.
	Chunking chunker.Config
	// EmbedConcurrency bounds in-flight embedding calls.
	EmbedConcurrency int
	// TokensPerWord overrides the token estimate. Zero = default 1.3.
	TokensPerWord float64
	// Normalizer overrides the text-cleaning thresholds.
	Normalizer normalizer.Options
}

// Pipeline processes documents. Safe for concurrent use; each Process
// call is independent.
type Pipeline struct {
	cfg      Config
	norm     *normalizer.Normalizer
	builder  *sidecar.Builder
	selector *extractor.Selector
	fetch    func(ctx context.Context, url string) (string, error)
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithOCREngine injects the OCR service used by the extraction cascade.
// Without it the cascade degrades to the text-only fallback.
func WithOCREngine(engine ocr.Engine) Option {
	return func(p *Pipeline) {
		p.selector = extractor.NewSelector(p.cfg.OCRThreshold, engine)
	}
}

// WithFetcher replaces the URL fetcher, used by tests.
func WithFetcher(fetch func(ctx context.Context, url string) (string, error)) Option {
	return func(p *Pipeline) { p.fetch = fetch }
}

// New validates cfg and builds a pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.OCRThreshold < 0 {
		return nil, fmt.Errorf("invalid OCR threshold %d", cfg.OCRThreshold)
	}
	if cfg.OCRThreshold == 0 {
		cfg.OCRThreshold = extractor.DefaultOCRThreshold
	}
	if cfg.Chunking.ChunkSize < 0 || cfg.Chunking.OverlapSize < 0 {
		return nil, fmt.Errorf("invalid chunking config: size=%d overlap=%d",
			cfg.Chunking.ChunkSize, cfg.Chunking.OverlapSize)
	}
	if cfg.Chunking.ChunkSize > 0 && cfg.Chunking.OverlapSize >= cfg.Chunking.ChunkSize {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d",
			cfg.Chunking.OverlapSize, cfg.Chunking.ChunkSize)
	}

	p := &Pipeline{
		cfg:      cfg,
		norm:     normalizer.NewWithOptions(cfg.Normalizer),
		builder:  sidecar.NewBuilder(cfg.TokensPerWord, cfg.EmbedConcurrency),
		selector: extractor.NewSelector(cfg.OCRThreshold, nil),
		fetch:    extractor.FetchURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs one document through the whole pipeline and returns both
// artifacts. The caller persists them and updates job state.
func (p *Pipeline) Process(ctx context.Context, src RawSource, embedder embeddings.Embedder) (*markdown.Document, *sidecar.Document, error) {
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedder is required")
	}

	var result extractor.Result
	var title string
	source := src.Filename

	switch src.Kind {
	case SourcePDF:
		if len(src.Data) == 0 {
			result = extractor.Result{Method: extractor.MethodTextOnlyFallback}
		} else {
			result = p.selector.ExtractPDF(ctx, src.Data, src.Filename)
		}
	case SourceURL:
		if source == "" {
			source = src.URL
		}
		html := string(src.Data)
		if html == "" {
			fetched, err := p.fetch(ctx, src.URL)
			if err != nil {
				// Treat an unreachable page like an unreadable scan:
				// a completed run with no content.
				result = extractor.Result{Method: extractor.MethodTextOnlyFallback}
				break
			}
			html = fetched
		}
		result, title = p.selector.ExtractURLContent(html)
	default:
		return nil, nil, fmt.Errorf("unknown source kind: %q", src.Kind)
	}

	return p.finish(ctx, result, source, title, string(src.Kind), embedder)
}

// ProcessText runs the pipeline over text that was already extracted by
// another parser (watch-folder docx/xlsx/eml sources). The extraction
// cascade is skipped; the text counts as directly extracted.
func (p *Pipeline) ProcessText(ctx context.Context, text, source string, embedder embeddings.Embedder) (*markdown.Document, *sidecar.Document, error) {
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedder is required")
	}
	result := extractor.Result{
		Text:      text,
		Method:    extractor.MethodTextDirect,
		WordCount: len(strings.Fields(text)),
	}
	return p.finish(ctx, result, source, "", "text", embedder)
}

func (p *Pipeline) finish(ctx context.Context, result extractor.Result, source, title, sourceType string, embedder embeddings.Embedder) (*markdown.Document, *sidecar.Document, error) {
	normalized := p.norm.CleanAndFormatText(result.Text)

	body := normalized
	if result.Method == extractor.MethodOCRAdvanced {
		body = markdown.AppendExtractedStructure(body, result.Tables, result.Forms)
	}

	meta := markdown.Metadata{
		Source:           source,
		SourceType:       sourceType,
		Title:            title,
		ProcessingMethod: string(result.Method),
		UsedOCR:          result.UsedOCR,
		OCRThresholdUsed: p.selector.Threshold(),
		WordCount:        len(strings.Fields(normalized)),
		PageCount:        result.PageCount,
		CreatedAt:        time.Now().UTC(),
	}
	doc := markdown.Assemble(body, meta)

	sc, err := p.builder.Build(ctx, normalized, source, embedder, p.cfg.Chunking)
	if err == sidecar.ErrNoChunks && strings.TrimSpace(normalized) == "" {
		// "No content found" is a representable outcome, not an error:
		// emit an empty sidecar so both artifacts always exist.
		sc = &sidecar.Document{
			Source:           source,
			CreatedAt:        time.Now().UTC().Format(time.RFC3339),
			EmbeddingModel:   embedder.ModelVersion(),
			ChunkingStrategy: p.cfg.Chunking,
			Chunks:           []sidecar.Chunk{},
		}
	} else if err != nil {
		return nil, nil, fmt.Errorf("sidecar generation failed for %s: %w", source, err)
	}

	return &doc, sc, nil
}
