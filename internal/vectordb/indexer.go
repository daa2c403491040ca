// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

package vectordb

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/sidecar"
)

// IndexSidecar upserts every successfully embedded chunk of a sidecar.
// Chunks whose embedding failed are skipped. Returns the number of
// chunks indexed.
func IndexSidecar(ctx context.Context, db VectorDB, sc *sidecar.Document) (int, error) {
	if db == nil || sc == nil {
		return 0, nil
	}

	indexed := 0
	for _, chunk := range sc.Chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}

		payload := map[string]string{
			"source":        chunk.Metadata.Source,
			"chunk_index":   strconv.Itoa(chunk.ChunkIndex),
			"word_count":    strconv.Itoa(chunk.Metadata.WordCount),
			"model_version": chunk.Metadata.EmbeddingModelVersion,
			"text":          chunk.Text,
		}
		if err := db.Upsert(ctx, chunk.ChunkID, chunk.Embedding, payload); err != nil {
			return indexed, fmt.Errorf("failed to index chunk %s: %w", chunk.ChunkID, err)
		}
		indexed++
	}

	log.Printf("Indexed %d/%d chunks into vector store", indexed, len(sc.Chunks))
	return indexed, nil
}
