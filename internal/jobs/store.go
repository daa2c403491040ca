// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package jobs tracks document-processing jobs in SQLite. A job is
// "completed" when the pipeline ran to completion, even if some chunks
// failed to embed; only configuration failures or pipeline exceptions
// mark it "failed".
package jobs

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is one tracked processing job.
type Job struct {
	ID                  string    `json:"job_id"`
	Name                string    `json:"job_name"`
	SourceType          string    `json:"source_type"`
	Source              string    `json:"source"`
	Status              string    `json:"status"`
	TotalDocuments      int       `json:"total_documents"`
	SuccessfulDocuments int       `json:"successful_documents"`
	FailedDocuments     int       `json:"failed_documents"`
	Error               string    `json:"error,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Store persists jobs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a job store and its schema.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize jobs schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		total_documents INTEGER DEFAULT 0,
		successful_documents INTEGER DEFAULT 0,
		failed_documents INTEGER DEFAULT 0,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new queued job and returns it.
func (s *Store) Create(name, sourceType, source string, totalDocuments int) (*Job, error) {
	job := &Job{
		ID:             uuid.New().String(),
		Name:           name,
		SourceType:     sourceType,
		Source:         source,
		Status:         StatusQueued,
		TotalDocuments: totalDocuments,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	_, err := s.db.Exec(
		`INSERT INTO jobs (id, name, source_type, source, status, total_documents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, job.SourceType, job.Source, job.Status, job.TotalDocuments,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}
	return job, nil
}

// SetStatus transitions a job's status, recording an error message for
// failed jobs.
func (s *Store) SetStatus(jobID, status, errMsg string) error {
	result, err := s.db.Exec(
		"UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?",
		status, errMsg, time.Now(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", jobID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}
	return nil
}

// RecordDocument bumps the per-document success or failure counter.
func (s *Store) RecordDocument(jobID string, success bool) error {
	column := "successful_documents"
	if !success {
		column = "failed_documents"
	}
	_, err := s.db.Exec(
		fmt.Sprintf("UPDATE jobs SET %s = %s + 1, updated_at = ? WHERE id = ?", column, column),
		time.Now(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to record document for job %s: %w", jobID, err)
	}
	return nil
}

// Get returns one job by ID.
func (s *Store) Get(jobID string) (*Job, error) {
	row := s.db.QueryRow(
		`SELECT id, name, source_type, source, status, total_documents,
		        successful_documents, failed_documents, COALESCE(error, ''),
		        created_at, updated_at
		 FROM jobs WHERE id = ?`, jobID)

	var job Job
	err := row.Scan(&job.ID, &job.Name, &job.SourceType, &job.Source, &job.Status,
		&job.TotalDocuments, &job.SuccessfulDocuments, &job.FailedDocuments,
		&job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job %s: %w", jobID, err)
	}
	return &job, nil
}

// List returns the most recent jobs, newest first.
func (s *Store) List(limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		`SELECT id, name, source_type, source, status, total_documents,
		        successful_documents, failed_documents, COALESCE(error, ''),
		        created_at, updated_at
		 FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Name, &job.SourceType, &job.Source, &job.Status,
			&job.TotalDocuments, &job.SuccessfulDocuments, &job.FailedDocuments,
			&job.Error, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
