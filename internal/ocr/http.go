// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEngine calls a remote OCR service over HTTP. The service exposes
// two endpoints: POST /v1/text for plain detection and POST /v1/analyze
// for layout-aware analysis; both take the raw document as the body.
type HTTPEngine struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPEngine creates a client for the OCR service at baseURL.
func NewHTTPEngine(baseURL, apiKey string) *HTTPEngine {
	return &HTTPEngine{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second}, // OCR on large scans is slow
	}
}

// DetectText runs plain line-level OCR.
func (e *HTTPEngine) DetectText(ctx context.Context, doc []byte) (string, error) {
	if len(doc) > MaxDocumentBytes {
		return "", ErrDocumentTooLarge
	}

	type responsePayload struct {
		Text string `json:"text"`
	}

	var response responsePayload
	if err := e.post(ctx, "/v1/text", doc, &response); err != nil {
		return "", err
	}
	return response.Text, nil
}

// AnalyzeDocument runs layout-aware OCR with table and form analysis.
func (e *HTTPEngine) AnalyzeDocument(ctx context.Context, doc []byte) (*AdvancedResult, error) {
	if len(doc) > MaxDocumentBytes {
		return nil, ErrDocumentTooLarge
	}

	var response AdvancedResult
	if err := e.post(ctx, "/v1/analyze", doc, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (e *HTTPEngine) post(ctx context.Context, path string, doc []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+path, bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	if e.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.apiKey))
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ocr API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
