// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/jobs"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/queue"
)

// IngestRequest is the JSON body for URL and raw-text ingestion.
type IngestRequest struct {
	URL    string `json:"url,omitempty"`
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`
	Name   string `json:"name,omitempty"`
}

// IngestResponse acknowledges an accepted document.
type IngestResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// HandleIngest handles POST /api/v1/ingest. Multipart requests carry a
// "file" part; JSON requests carry either a url or text+source.
func (s *Server) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		s.ingestUpload(w, r)
		return
	}
	s.ingestJSON(w, r)
}

func (s *Server) ingestUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large or malformed: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	job, err := s.jobs.Create(name, "pdf", header.Filename, 1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create job: %v", err))
		return
	}

	// Stash the upload so the worker can pick it up from storage.
	storedKey := fmt.Sprintf("uploads/%s/%s", job.ID, filepath.Base(header.Filename))
	if err := s.blobs.Put(storedKey, data); err != nil {
		s.failJob(job.ID, fmt.Sprintf("failed to store upload: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	if err := s.enqueue(r, queue.TypeProcessFile, queue.DocumentPayload{
		JobID:     job.ID,
		Filename:  header.Filename,
		StoredKey: storedKey,
	}); err != nil {
		s.failJob(job.ID, fmt.Sprintf("failed to enqueue: %v", err))
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	log.Printf("Accepted upload %s (%d bytes) as job %s", header.Filename, len(data), job.ID)
	writeJSON(w, http.StatusAccepted, IngestResponse{JobID: job.ID, Status: jobs.StatusQueued})
}

func (s *Server) ingestJSON(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	switch {
	case req.URL != "":
		parsed, err := url.Parse(req.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			writeError(w, http.StatusBadRequest, "url must be http or https")
			return
		}

		name := req.Name
		if name == "" {
			name = parsed.Host
		}
		job, err := s.jobs.Create(name, "url", req.URL, 1)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create job: %v", err))
			return
		}
		if err := s.enqueue(r, queue.TypeProcessURL, queue.DocumentPayload{JobID: job.ID, URL: req.URL}); err != nil {
			s.failJob(job.ID, fmt.Sprintf("failed to enqueue: %v", err))
			writeError(w, http.StatusInternalServerError, "failed to enqueue job")
			return
		}
		writeJSON(w, http.StatusAccepted, IngestResponse{JobID: job.ID, Status: jobs.StatusQueued})

	case req.Text != "":
		source := req.Source
		if source == "" {
			writeError(w, http.StatusBadRequest, "source is required for text ingestion")
			return
		}

		name := req.Name
		if name == "" {
			name = source
		}
		job, err := s.jobs.Create(name, "text", source, 1)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create job: %v", err))
			return
		}
		if err := s.enqueue(r, queue.TypeProcessText, queue.DocumentPayload{
			JobID:    job.ID,
			Filename: source,
			Text:     req.Text,
		}); err != nil {
			s.failJob(job.ID, fmt.Sprintf("failed to enqueue: %v", err))
			writeError(w, http.StatusInternalServerError, "failed to enqueue job")
			return
		}
		writeJSON(w, http.StatusAccepted, IngestResponse{JobID: job.ID, Status: jobs.StatusQueued})

	default:
		writeError(w, http.StatusBadRequest, "request must include url or text")
	}
}

func (s *Server) enqueue(r *http.Request, jobType string, payload queue.DocumentPayload) error {
	job, err := queue.NewDocumentJob(jobType, payload)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(r.Context(), job)
}

func (s *Server) failJob(jobID, reason string) {
	if err := s.jobs.SetStatus(jobID, jobs.StatusFailed, reason); err != nil {
		log.Printf("Failed to mark job %s failed: %v", jobID, err)
	}
}
