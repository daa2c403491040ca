// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package sidecar builds the companion artifact to a processed document:
// the ordered chunk array with embeddings, plus chunking strategy,
// processing statistics, and quality metrics. The sidecar's JSON field
// names are a storage contract consumed by downstream search systems.
package sidecar

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/chunker"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/embeddings"
)

// DefaultTokensPerWord is the standard tokens-per-word estimate used for
// token accounting.
const DefaultTokensPerWord = 1.3

// DefaultConcurrency bounds in-flight embedding calls so external rate
// limits are respected.
const DefaultConcurrency = 4

// ErrNoChunks is returned when chunking produced nothing to embed.
var ErrNoChunks = errors.New("no valid text chunks created for embedding")

// ChunkMetadata carries per-chunk accounting.
type ChunkMetadata struct {
	Source                         string  `json:"source"`
	ChunkIndex                     int     `json:"chunk_index"`
	WordCount                      int     `json:"word_count"`
	CharacterCount                 int     `json:"character_count"`
	EstimatedTokens                int     `json:"estimated_tokens"`
	ChunkHash                      string  `json:"chunk_hash"`
	EmbeddingTimestamp             string  `json:"embedding_timestamp,omitempty"`
	EmbeddingGenerationTimeSeconds float64 `json:"embedding_generation_time_seconds"`
	EmbeddingDimensions            int     `json:"embedding_dimensions"`
	EmbeddingModelVersion          string  `json:"embedding_model_version"`
}

// Chunk is one embedded slice of the document. Embedding is null only
// when that chunk's embedding call failed; the text and metadata are
// always preserved so no information is silently dropped.
type Chunk struct {
	ChunkID    string        `json:"chunk_id"`
	ChunkIndex int           `json:"chunk_index"`
	Text       string        `json:"text"`
	Embedding  []float32     `json:"embedding"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// ProcessingStatistics summarizes the whole run.
type ProcessingStatistics struct {
	OriginalWordCount            int     `json:"original_word_count"`
	OriginalCharacterCount       int     `json:"original_character_count"`
	EstimatedTotalTokens         int     `json:"estimated_total_tokens"`
	EmbeddedTokens               int     `json:"embedded_tokens"`
	AverageChunkSizeWords        float64 `json:"average_chunk_size_words"`
	TotalEmbeddingTimeSeconds    float64 `json:"total_embedding_time_seconds"`
	AverageEmbeddingTimePerChunk float64 `json:"average_embedding_time_per_chunk"`
}

// QualityMetrics are coarse signals for downstream consumers deciding
// whether a sidecar's quality is acceptable.
type QualityMetrics struct {
	// SuccessRate is successful/total in percent.
	SuccessRate float64 `json:"success_rate"`
	// ChunkUtilization is the embedded-token estimate over the original
	// token estimate, in percent.
	ChunkUtilization float64 `json:"chunk_utilization"`
}

// Document is the complete sidecar artifact.
type Document struct {
	Source               string               `json:"source"`
	CreatedAt            string               `json:"created_at"`
	EmbeddingModel       string               `json:"embedding_model"`
	EmbeddingDimensions  int                  `json:"embedding_dimensions"`
	TotalChunks          int                  `json:"total_chunks"`
	SuccessfulChunks     int                  `json:"successful_chunks"`
	FailedChunks         int                  `json:"failed_chunks"`
	ChunkingStrategy     chunker.Config       `json:"chunking_strategy"`
	ProcessingStatistics ProcessingStatistics `json:"processing_statistics"`
	QualityMetrics       QualityMetrics       `json:"quality_metrics"`
	Chunks               []Chunk              `json:"chunks"`
}

// Builder drives chunking and embedding and assembles the sidecar.
type Builder struct {
	tokensPerWord float64
	concurrency   int
}

// NewBuilder creates a builder. Zero values select the defaults.
func NewBuilder(tokensPerWord float64, concurrency int) *Builder {
	if tokensPerWord <= 0 {
		tokensPerWord = DefaultTokensPerWord
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Builder{tokensPerWord: tokensPerWord, concurrency: concurrency}
}

// Build chunks text, embeds every chunk, and assembles the sidecar.
// Individual embedding failures are recorded per chunk and never abort
// the rest; Build only errors when chunking itself produced nothing from
// non-empty config expectations, or when ctx is cancelled.
func (b *Builder) Build(ctx context.Context, text, source string, embedder embeddings.Embedder, cfg chunker.Config) (*Document, error) {
	originalWords := len(strings.Fields(text))
	originalChars := len(text)
	estimatedTotal := int(float64(originalWords) * b.tokensPerWord)

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize, cfg.OverlapSize = chunker.AutoSize(originalWords)
	}

	pieces := chunker.Chunk(text, cfg)
	if len(pieces) == 0 {
		return nil, ErrNoChunks
	}

	chunks := make([]Chunk, len(pieces))
	times := make([]float64, len(pieces))
	failed := make([]bool, len(pieces))

	// Bounded worker pool; results are written by index so concurrent
	// completion order never disturbs chunk ordering.
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup
	for i, piece := range pieces {
		wg.Add(1)
		go func(i int, piece chunker.Piece) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			chunks[i] = b.embedChunk(ctx, i, piece, source, embedder, &times[i], &failed[i])
		}(i, piece)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// A cancelled run cannot be resumed; discard the partial result.
		return nil, err
	}

	successful := 0
	failedCount := 0
	totalTime := 0.0
	embeddedTokens := 0
	totalChunkWords := 0
	for i := range chunks {
		totalChunkWords += chunks[i].Metadata.WordCount
		if failed[i] {
			failedCount++
			continue
		}
		successful++
		totalTime += times[i]
		embeddedTokens += chunks[i].Metadata.EstimatedTokens
	}

	stats := ProcessingStatistics{
		OriginalWordCount:         originalWords,
		OriginalCharacterCount:    originalChars,
		EstimatedTotalTokens:      estimatedTotal,
		EmbeddedTokens:            embeddedTokens,
		AverageChunkSizeWords:     round1(float64(totalChunkWords) / float64(len(chunks))),
		TotalEmbeddingTimeSeconds: round2(totalTime),
	}
	if successful > 0 {
		stats.AverageEmbeddingTimePerChunk = round3(totalTime / float64(successful))
	}

	quality := QualityMetrics{
		SuccessRate: round2(float64(successful) / float64(len(chunks)) * 100),
	}
	if estimatedTotal > 0 {
		quality.ChunkUtilization = round2(float64(embeddedTokens) / float64(estimatedTotal) * 100)
	}

	return &Document{
		Source:               source,
		CreatedAt:            time.Now().UTC().Format(time.RFC3339),
		EmbeddingModel:       embedder.ModelVersion(),
		EmbeddingDimensions:  embedder.Dimension(),
		TotalChunks:          len(chunks),
		SuccessfulChunks:     successful,
		FailedChunks:         failedCount,
		ChunkingStrategy:     cfg,
		ProcessingStatistics: stats,
		QualityMetrics:       quality,
		Chunks:               chunks,
	}, nil
}

func (b *Builder) embedChunk(ctx context.Context, index int, piece chunker.Piece, source string, embedder embeddings.Embedder, elapsed *float64, failed *bool) Chunk {
	words := len(strings.Fields(piece.Text))
	chunk := Chunk{
		ChunkID:    chunker.ChunkID(source, index, piece.Text),
		ChunkIndex: index,
		Text:       piece.Text,
		Metadata: ChunkMetadata{
			Source:                source,
			ChunkIndex:            index,
			WordCount:             words,
			CharacterCount:        len(piece.Text),
			EstimatedTokens:       int(float64(words) * b.tokensPerWord),
			ChunkHash:             chunker.ShortHash(piece.Text),
			EmbeddingModelVersion: embedder.ModelVersion(),
		},
	}

	start := time.Now()
	vector, err := embedder.EmbedText(ctx, PrepareText(piece.Text))
	seconds := time.Since(start).Seconds()

	if err != nil || len(vector) == 0 {
		if err != nil {
			log.Printf("embedChunk: chunk %d of %s failed: %v", index, source, err)
		}
		*failed = true
		return chunk
	}

	*elapsed = seconds
	chunk.Embedding = vector
	chunk.Metadata.EmbeddingTimestamp = time.Now().UTC().Format(time.RFC3339)
	chunk.Metadata.EmbeddingGenerationTimeSeconds = round3(seconds)
	chunk.Metadata.EmbeddingDimensions = len(vector)
	return chunk
}

// PrepareText cleans a chunk before the embedding call: whitespace is
// collapsed, single-character noise tokens are dropped, and the text is
// capped at the embedding model's conservative input limit. Returns the
// original text when cleaning would strip nearly everything.
func PrepareText(text string) string {
	words := strings.Fields(text)
	meaningful := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) >= 2 || isDigit(w) {
			meaningful = append(meaningful, w)
		}
	}

	if len(meaningful) < 3 {
		return text
	}
	if len(meaningful) > 2000 {
		meaningful = meaningful[:2000]
	}
	return strings.Join(meaningful, " ")
}

func isDigit(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
