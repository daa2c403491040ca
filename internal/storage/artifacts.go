// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

package storage

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/markdown"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/sidecar"
)

const manifestKey = "manifest.json"

// ManifestEntry describes one stored document pair.
type ManifestEntry struct {
	JobID       string `json:"job_id"`
	Source      string `json:"source"`
	DocumentKey string `json:"document_key"`
	SidecarKey  string `json:"sidecar_key"`
	ChunkCount  int    `json:"chunk_count"`
	ProcessedAt string `json:"processed_at"`
}

// Manifest accumulates every document the store has written.
type Manifest struct {
	Version       string          `json:"version"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
	DocumentCount int             `json:"document_count"`
	Documents     []ManifestEntry `json:"documents"`
}

// SavedArtifact reports where a document pair landed.
type SavedArtifact struct {
	DocumentKey string
	SidecarKey  string
}

// ArtifactStore writes document/sidecar pairs and maintains the manifest.
type ArtifactStore struct {
	blobs BlobStore

	mu  sync.Mutex // guards manifest read-modify-write
	now func() time.Time
}

// NewArtifactStore wraps a BlobStore.
func NewArtifactStore(blobs BlobStore) *ArtifactStore {
	return &ArtifactStore{blobs: blobs, now: time.Now}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// safeName flattens a source reference into a key-safe base name.
func safeName(source string) string {
	base := path.Base(strings.TrimSuffix(source, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_.")
	if base == "" {
		base = "document"
	}
	return base
}

// SaveDocument persists the markdown and sidecar for one processed
// document and records it in the manifest.
func (a *ArtifactStore) SaveDocument(jobID string, doc *markdown.Document, sc *sidecar.Document) (*SavedArtifact, error) {
	ts := a.now().UTC().Format("20060102T150405Z")
	name := safeName(doc.Metadata.Source)

	docKey := fmt.Sprintf("documents/%s/%s_%s.md", jobID, ts, name)
	sidecarKey := fmt.Sprintf("sidecars/%s/%s_%s.sidecar.json", jobID, ts, name)

	if err := a.blobs.Put(docKey, []byte(doc.Content)); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	sidecarJSON, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sidecar: %w", err)
	}
	if err := a.blobs.Put(sidecarKey, sidecarJSON); err != nil {
		return nil, fmt.Errorf("failed to store sidecar: %w", err)
	}

	entry := ManifestEntry{
		JobID:       jobID,
		Source:      doc.Metadata.Source,
		DocumentKey: docKey,
		SidecarKey:  sidecarKey,
		ChunkCount:  len(sc.Chunks),
		ProcessedAt: a.now().UTC().Format(time.RFC3339),
	}
	if err := a.appendManifest(entry); err != nil {
		return nil, err
	}

	return &SavedArtifact{DocumentKey: docKey, SidecarKey: sidecarKey}, nil
}

func (a *ArtifactStore) appendManifest(entry ManifestEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	manifest, err := a.loadManifestLocked()
	if err != nil {
		return err
	}

	manifest.Documents = append(manifest.Documents, entry)
	manifest.DocumentCount = len(manifest.Documents)
	manifest.UpdatedAt = a.now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := a.blobs.Put(manifestKey, data); err != nil {
		return fmt.Errorf("failed to store manifest: %w", err)
	}
	return nil
}

// Manifest returns the current manifest, empty when nothing was stored yet.
func (a *ArtifactStore) Manifest() (*Manifest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadManifestLocked()
}

func (a *ArtifactStore) loadManifestLocked() (*Manifest, error) {
	exists, err := a.blobs.Exists(manifestKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check manifest: %w", err)
	}
	if !exists {
		now := a.now().UTC().Format(time.RFC3339)
		return &Manifest{Version: "1.0", CreatedAt: now, UpdatedAt: now}, nil
	}

	data, err := a.blobs.Get(manifestKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &manifest, nil
}
