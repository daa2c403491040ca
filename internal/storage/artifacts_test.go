// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

package storage

import (
	"strings"
	"testing"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/markdown"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/sidecar"
)

func testDocument(source string) *markdown.Document {
	return &markdown.Document{
		Content:  "# Report\n\nBody text.\n",
		Metadata: markdown.Metadata{Source: source, SourceType: "pdf"},
	}
}

func testSidecar(chunks int) *sidecar.Document {
	sc := &sidecar.Document{}
	for i := 0; i < chunks; i++ {
		sc.Chunks = append(sc.Chunks, sidecar.Chunk{Text: "chunk"})
	}
	return sc
}

func TestFileStorePutGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Put("documents/j1/a.md", []byte("hello")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	data, err := store.Get("documents/j1/a.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("round-trip mismatch: %q", data)
	}

	exists, err := store.Exists("documents/j1/a.md")
	if err != nil || !exists {
		t.Errorf("expected key to exist, got %v %v", exists, err)
	}
	exists, err = store.Exists("documents/j1/missing.md")
	if err != nil || exists {
		t.Errorf("expected key to be absent, got %v %v", exists, err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	for _, key := range []string{"../escape.md", "/etc/passwd", "a/../../b"} {
		if err := store.Put(key, []byte("x")); err == nil {
			t.Errorf("expected Put(%q) to be rejected", key)
		}
	}
}

func TestSaveDocumentKeysAndManifest(t *testing.T) {
	blobs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	store := NewArtifactStore(blobs)

	saved, err := store.SaveDocument("job-1", testDocument("annual report.pdf"), testSidecar(3))
	if err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if !strings.HasPrefix(saved.DocumentKey, "documents/job-1/") || !strings.HasSuffix(saved.DocumentKey, "_annual_report.md") {
		t.Errorf("unexpected document key: %s", saved.DocumentKey)
	}
	if !strings.HasPrefix(saved.SidecarKey, "sidecars/job-1/") || !strings.HasSuffix(saved.SidecarKey, "_annual_report.sidecar.json") {
		t.Errorf("unexpected sidecar key: %s", saved.SidecarKey)
	}

	data, err := blobs.Get(saved.DocumentKey)
	if err != nil {
		t.Fatalf("reading stored document failed: %v", err)
	}
	if !strings.Contains(string(data), "# Report") {
		t.Errorf("stored document missing content: %q", data)
	}

	manifest, err := store.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	if manifest.DocumentCount != 1 || len(manifest.Documents) != 1 {
		t.Fatalf("expected 1 manifest entry, got %+v", manifest)
	}
	entry := manifest.Documents[0]
	if entry.JobID != "job-1" || entry.ChunkCount != 3 {
		t.Errorf("unexpected manifest entry: %+v", entry)
	}
}

func TestManifestAccumulates(t *testing.T) {
	blobs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	store := NewArtifactStore(blobs)

	if _, err := store.SaveDocument("job-1", testDocument("a.pdf"), testSidecar(1)); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if _, err := store.SaveDocument("job-2", testDocument("https://example.com/page"), testSidecar(2)); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	manifest, err := store.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	if manifest.DocumentCount != 2 {
		t.Errorf("expected 2 documents, got %d", manifest.DocumentCount)
	}
	if manifest.Documents[1].JobID != "job-2" {
		t.Errorf("expected second entry for job-2, got %+v", manifest.Documents[1])
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":                    "report",
		"https://example.com/docs/page": "page",
		"weird name (final)!.pdf":       "weird_name_final",
		"":                              "document",
		"https://example.com/":          "example",
	}
	for in, want := range cases {
		if got := safeName(in); got != want {
			t.Errorf("safeName(%q) = %q, want %q", in, got, want)
		}
	}
}
