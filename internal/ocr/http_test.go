// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ocr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectText(t *testing.T) {
	doc := []byte("scanned page bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text" {
			t.Errorf("path = %q, want /v1/text", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != string(doc) {
			t.Errorf("body = %q, want document bytes", body)
		}
		w.Write([]byte(`{"text": "recognized text"}`))
	}))
	defer srv.Close()

	engine := NewHTTPEngine(srv.URL, "test-key")
	text, err := engine.DetectText(context.Background(), doc)
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if text != "recognized text" {
		t.Errorf("text = %q, want %q", text, "recognized text")
	}
}

func TestAnalyzeDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze" {
			t.Errorf("path = %q, want /v1/analyze", r.URL.Path)
		}
		w.Write([]byte(`{
			"text": "full layout text",
			"average_confidence": 0.88,
			"tables": [{"rows": [["h1", "h2"], ["v1", "v2"]], "confidence": 0.9}],
			"forms": [{"key": "Invoice", "value": "1042", "confidence": 0.95}]
		}`))
	}))
	defer srv.Close()

	engine := NewHTTPEngine(srv.URL, "")
	result, err := engine.AnalyzeDocument(context.Background(), []byte("doc"))
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if result.Text != "full layout text" {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Confidence != 0.88 {
		t.Errorf("Confidence = %v, want 0.88", result.Confidence)
	}
	if len(result.Tables) != 1 || len(result.Tables[0].Rows) != 2 {
		t.Errorf("Tables = %+v", result.Tables)
	}
	if len(result.Forms) != 1 || result.Forms[0].Value != "1042" {
		t.Errorf("Forms = %+v", result.Forms)
	}
}

func TestNoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		w.Write([]byte(`{"text": ""}`))
	}))
	defer srv.Close()

	engine := NewHTTPEngine(srv.URL, "")
	if _, err := engine.DetectText(context.Background(), []byte("doc")); err != nil {
		t.Fatalf("DetectText: %v", err)
	}
}

func TestServerErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	engine := NewHTTPEngine(srv.URL, "")
	_, err := engine.DetectText(context.Background(), []byte("doc"))
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "service overloaded") {
		t.Errorf("error = %v, want status and body included", err)
	}
}

func TestDocumentTooLarge(t *testing.T) {
	// Must be rejected before any network call, so no server is needed.
	engine := NewHTTPEngine("http://127.0.0.1:0", "")
	big := make([]byte, MaxDocumentBytes+1)

	if _, err := engine.DetectText(context.Background(), big); !errors.Is(err, ErrDocumentTooLarge) {
		t.Errorf("DetectText error = %v, want ErrDocumentTooLarge", err)
	}
	if _, err := engine.AnalyzeDocument(context.Background(), big); !errors.Is(err, ErrDocumentTooLarge) {
		t.Errorf("AnalyzeDocument error = %v, want ErrDocumentTooLarge", err)
	}
}
