// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/embeddings"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/jobs"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/pipeline"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/queue"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/sidecar"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/storage"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/vectordb"

	mdoc "github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/markdown"
)

// DocumentProcessor turns queued document jobs into stored artifacts.
// VectorDB is optional; when set, successfully embedded chunks are also
// mirrored into the vector store.
type DocumentProcessor struct {
	Pipeline  *pipeline.Pipeline
	Embedder  embeddings.Embedder
	Jobs      *jobs.Store
	Blobs     storage.BlobStore
	Artifacts *storage.ArtifactStore
	VectorDB  vectordb.VectorDB
}

// Handle is the queue HandlerFunc for document jobs.
func (p *DocumentProcessor) Handle(ctx context.Context, job queue.Job) error {
	payload, err := queue.DecodeDocumentPayload(job)
	if err != nil {
		return err
	}

	if err := p.Jobs.SetStatus(payload.JobID, jobs.StatusProcessing, ""); err != nil {
		log.Printf("Failed to mark job %s processing: %v", payload.JobID, err)
	}

	doc, sc, err := p.process(ctx, job.Type, payload)
	if err != nil {
		p.recordFailure(payload.JobID, err)
		return err
	}

	saved, err := p.Artifacts.SaveDocument(payload.JobID, doc, sc)
	if err != nil {
		p.recordFailure(payload.JobID, fmt.Errorf("failed to store artifacts: %w", err))
		return err
	}
	log.Printf("Job %s: wrote %s and %s", payload.JobID, saved.DocumentKey, saved.SidecarKey)

	if p.VectorDB != nil {
		if _, err := vectordb.IndexSidecar(ctx, p.VectorDB, sc); err != nil {
			// Artifacts are already durable; indexing is best-effort.
			log.Printf("Job %s: vector indexing failed: %v", payload.JobID, err)
		}
	}

	if err := p.Jobs.RecordDocument(payload.JobID, true); err != nil {
		log.Printf("Failed to record document for job %s: %v", payload.JobID, err)
	}
	if err := p.Jobs.SetStatus(payload.JobID, jobs.StatusCompleted, ""); err != nil {
		log.Printf("Failed to mark job %s completed: %v", payload.JobID, err)
	}
	return nil
}

func (p *DocumentProcessor) process(ctx context.Context, jobType string, payload queue.DocumentPayload) (*mdoc.Document, *sidecar.Document, error) {
	switch jobType {
	case queue.TypeProcessFile:
		data, err := p.Blobs.Get(payload.StoredKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load upload %s: %w", payload.StoredKey, err)
		}
		return p.Pipeline.Process(ctx, pipeline.RawSource{
			Kind:     pipeline.SourcePDF,
			Filename: payload.Filename,
			Data:     data,
		}, p.Embedder)

	case queue.TypeProcessURL:
		return p.Pipeline.Process(ctx, pipeline.RawSource{
			Kind: pipeline.SourceURL,
			URL:  payload.URL,
		}, p.Embedder)

	case queue.TypeProcessText:
		return p.Pipeline.ProcessText(ctx, payload.Text, payload.Filename, p.Embedder)

	default:
		return nil, nil, fmt.Errorf("unknown job type: %s", jobType)
	}
}

func (p *DocumentProcessor) recordFailure(jobID string, err error) {
	if recErr := p.Jobs.RecordDocument(jobID, false); recErr != nil {
		log.Printf("Failed to record failed document for job %s: %v", jobID, recErr)
	}
	if stErr := p.Jobs.SetStatus(jobID, jobs.StatusFailed, err.Error()); stErr != nil {
		log.Printf("Failed to mark job %s failed: %v", jobID, stErr)
	}
}
