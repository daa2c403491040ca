// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package server exposes the ingestion HTTP API. Documents are accepted
// as file uploads, URLs, or raw text; processing happens on queue
// workers, so every ingest request returns a job ID immediately.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/jobs"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/queue"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/storage"
)

// DefaultMaxUploadBytes caps multipart uploads at the same size the PDF
// extraction path accepts.
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// Server holds the API's dependencies.
type Server struct {
	jobs           *jobs.Store
	queue          queue.Queue
	artifacts      *storage.ArtifactStore
	blobs          storage.BlobStore
	maxUploadBytes int64
}

// NewServer wires the handlers' dependencies together.
func NewServer(jobStore *jobs.Store, q queue.Queue, artifacts *storage.ArtifactStore, blobs storage.BlobStore) *Server {
	return &Server{
		jobs:           jobStore,
		queue:          q,
		artifacts:      artifacts,
		blobs:          blobs,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Routes returns the API mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", HandleHealth)
	mux.HandleFunc("/api/v1/ingest", s.HandleIngest)
	mux.HandleFunc("/api/v1/jobs", s.HandleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.HandleJob)
	mux.HandleFunc("/api/v1/manifest", s.HandleManifest)
	mux.HandleFunc("/api/v1/logs/stream", HandleLogStream)
	return mux
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
