package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Job type names understood by the document workers.
const (
	TypeProcessFile = "process_file"
	TypeProcessURL  = "process_url"
	TypeProcessText = "process_text"
)

// Job represents a job in the queue.
type Job struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DocumentPayload is the payload for document-processing jobs.
type DocumentPayload struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
	// StoredKey locates uploaded bytes in the blob store for file jobs.
	StoredKey string `json:"stored_key,omitempty"`
	// Text holds pre-extracted content for text jobs.
	Text string `json:"text,omitempty"`
}

// NewDocumentJob wraps a DocumentPayload in a queue Job.
func NewDocumentJob(jobType string, payload DocumentPayload) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return Job{Type: jobType, Payload: data, CreatedAt: time.Now()}, nil
}

// DecodeDocumentPayload unpacks a document job's payload.
func DecodeDocumentPayload(job Job) (DocumentPayload, error) {
	var payload DocumentPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return DocumentPayload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// Queue defines the interface for job queues.
type Queue interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job Job) error

	// Dequeue blocks until a job is available, then returns it.
	// Returns an error if the context is cancelled or if the operation fails.
	Dequeue(ctx context.Context) (Job, error)
}
