// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Config controls how text is split into overlapping chunks. Sizes are in
// words, not characters, so chunks track embedding-model token limits.
type Config struct {
	// ChunkSize is the target window size in words. Zero selects a size
	// automatically from the document length (see AutoSize).
	ChunkSize int `json:"chunk_size"`
	// OverlapSize is how many words consecutive chunks share.
	OverlapSize int `json:"overlap_size"`
	// DynamicSizing widens heading-led windows and merges a tiny trailing
	// fragment into the previous chunk.
	DynamicSizing bool `json:"dynamic_sizing"`
	// PreserveBoundaries extends a cut that would fall mid-sentence
	// forward to the next sentence end, within BoundaryLookahead words.
	PreserveBoundaries bool `json:"preserve_boundaries"`
	// BoundaryLookahead bounds the forward search for a sentence end.
	// Zero means the default of 50 words.
	BoundaryLookahead int `json:"-"`
	// TailMergeRatio is the fraction of ChunkSize under which a trailing
	// fragment is merged instead of emitted. Zero means the default 0.10.
	TailMergeRatio float64 `json:"-"`
}

const (
	defaultLookahead      = 50
	defaultTailMergeRatio = 0.10
)

// AutoSize picks a chunk size and overlap from the document word count:
// short documents get small chunks so they still produce several retrieval
// units, large documents get the standard window.
func AutoSize(totalWords int) (chunkSize, overlap int) {
	switch {
	case totalWords < 500:
		chunkSize = 256
	case totalWords < 2000:
		chunkSize = 512
	default:
		chunkSize = 1024
	}
	overlap = chunkSize / 10
	if overlap > 100 {
		overlap = 100
	}
	return chunkSize, overlap
}

// Piece is one emitted chunk of text and the word index it starts at.
type Piece struct {
	Text      string
	StartWord int
}

// Chunk splits text into overlapping word windows per cfg. Pieces are
// returned in document order; their slice indices are the gapless chunk
// indices 0..N-1. Empty or whitespace-only text yields no pieces.
func Chunk(text string, cfg Config) []Piece {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	size := cfg.ChunkSize
	overlap := cfg.OverlapSize
	if size <= 0 {
		size, overlap = AutoSize(len(words))
	}
	// A whole-window overlap would never advance.
	if overlap >= size {
		overlap = size - 1
	}
	if overlap < 0 {
		overlap = 0
	}

	lookahead := cfg.BoundaryLookahead
	if lookahead <= 0 {
		lookahead = defaultLookahead
	}
	tailRatio := cfg.TailMergeRatio
	if tailRatio <= 0 {
		tailRatio = defaultTailMergeRatio
	}

	var pieces []Piece
	start := 0
	for start < len(words) {
		target := size
		if cfg.DynamicSizing && strings.HasPrefix(words[start], "#") {
			// Keep a heading together with some of its body.
			target += size / 4
		}

		end := start + target
		if end > len(words) {
			end = len(words)
		}

		if cfg.PreserveBoundaries && end < len(words) {
			end = extendToSentenceEnd(words, end, lookahead)
		}

		if cfg.DynamicSizing && end < len(words) {
			// Absorb a trailing fragment that would be under the
			// merge threshold rather than emitting a tiny chunk.
			if remaining := len(words) - end; float64(remaining) < float64(size)*tailRatio {
				end = len(words)
			}
		}

		pieces = append(pieces, Piece{
			Text:      strings.Join(words[start:end], " "),
			StartWord: start,
		})

		if end >= len(words) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return pieces
}

// extendToSentenceEnd moves a cut point forward to just past the next
// sentence-ending word, or returns the hard limit if none is found within
// the look-ahead window.
func extendToSentenceEnd(words []string, end, lookahead int) int {
	limit := end + lookahead
	if limit > len(words) {
		limit = len(words)
	}
	for i := end - 1; i < limit; i++ {
		if endsSentence(words[i]) {
			return i + 1
		}
	}
	return end
}

func endsSentence(word string) bool {
	trimmed := strings.TrimRight(word, `"')]`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '?', '!':
		return true
	}
	return false
}

// ShortHash returns the first 16 hex characters of the SHA-256 of text,
// used for content-addressed chunk IDs.
func ShortHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// ChunkID builds a stable content-addressed chunk identifier. Identical
// source, index, and text always produce the same ID.
func ChunkID(source string, index int, text string) string {
	return fmt.Sprintf("%s_%04d_%s", source, index, ShortHash(text))
}
