// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

package jobs

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Create("quarterly-report", "pdf", "report.pdf", 1)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if job.ID == "" {
		t.Error("expected a generated job ID")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "quarterly-report" || got.SourceType != "pdf" || got.Source != "report.pdf" {
		t.Errorf("unexpected job round-trip: %+v", got)
	}
	if got.TotalDocuments != 1 {
		t.Errorf("expected 1 total document, got %d", got.TotalDocuments)
	}
}

func TestGetMissingJob(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("no-such-job"); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestStatusTransitions(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Create("web-crawl", "url", "https://example.com", 1)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetStatus(job.ID, StatusProcessing, ""); err != nil {
		t.Fatalf("SetStatus processing failed: %v", err)
	}
	if err := store.SetStatus(job.ID, StatusFailed, "embedder configuration invalid"); err != nil {
		t.Fatalf("SetStatus failed failed: %v", err)
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, got.Status)
	}
	if got.Error != "embedder configuration invalid" {
		t.Errorf("expected error message to persist, got %q", got.Error)
	}
}

func TestSetStatusMissingJob(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetStatus("no-such-job", StatusCompleted, ""); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestRecordDocumentCounters(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Create("batch", "pdf", "batch.pdf", 3)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.RecordDocument(job.ID, true); err != nil {
		t.Fatalf("RecordDocument failed: %v", err)
	}
	if err := store.RecordDocument(job.ID, true); err != nil {
		t.Fatalf("RecordDocument failed: %v", err)
	}
	if err := store.RecordDocument(job.ID, false); err != nil {
		t.Fatalf("RecordDocument failed: %v", err)
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SuccessfulDocuments != 2 {
		t.Errorf("expected 2 successful documents, got %d", got.SuccessfulDocuments)
	}
	if got.FailedDocuments != 1 {
		t.Errorf("expected 1 failed document, got %d", got.FailedDocuments)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.Create(name, "text", name+".txt", 1); err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
	}

	jobs, err := store.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
}
