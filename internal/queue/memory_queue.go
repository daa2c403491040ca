// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package queue

import (
	"context"
	"fmt"
)

// MemoryQueue is a channel-backed queue for single-process deployments
// and tests.
type MemoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue creates a queue buffering up to capacity jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryQueue{jobs: make(chan Job, capacity)}
}

// Enqueue adds a job, failing fast when the buffer is full.
func (m *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case m.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue is full (%d jobs)", cap(m.jobs))
	}
}

// Dequeue blocks until a job is available or the context is cancelled.
func (m *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-m.jobs:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Len returns the number of buffered jobs.
func (m *MemoryQueue) Len() int {
	return len(m.jobs)
}
