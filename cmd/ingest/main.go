// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// ingest processes one document locally, without the server: PDF or URL
// in, markdown document and sidecar JSON out.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/config"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/embeddings"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/markdown"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/ocr"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/parser"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/pipeline"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/sidecar"
)

var (
	filePath   = flag.String("file", "", "Path to a document to ingest")
	pageURL    = flag.String("url", "", "URL of a page to ingest")
	outDir     = flag.String("out", ".", "Output directory")
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()
	godotenv.Load()

	if (*filePath == "") == (*pageURL == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -url is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	embedder, err := embeddings.New(cfg.Embedder)
	if err != nil {
		log.Fatalf("failed to initialize embedder: %v", err)
	}

	opts := []pipeline.Option{}
	if cfg.OCR.BaseURL != "" {
		opts = append(opts, pipeline.WithOCREngine(ocr.NewHTTPEngine(cfg.OCR.BaseURL, cfg.OCR.APIKey)))
	}
	pipe, err := pipeline.New(pipeline.Config{
		OCRThreshold:     cfg.Processing.OCRThreshold,
		Chunking:         cfg.Processing.ChunkerConfig(),
		EmbedConcurrency: cfg.Processing.EmbedConcurrency,
		TokensPerWord:    cfg.Processing.TokensPerWord,
	}, opts...)
	if err != nil {
		log.Fatalf("invalid pipeline configuration: %v", err)
	}

	ctx := context.Background()
	doc, sc, err := run(ctx, pipe, embedder)
	if err != nil {
		log.Fatalf("processing failed: %v", err)
	}

	base := outputBase()
	docPath := filepath.Join(*outDir, base+".md")
	sidecarPath := filepath.Join(*outDir, base+".sidecar.json")

	if err := os.WriteFile(docPath, []byte(doc.Content), 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", docPath, err)
	}
	sidecarJSON, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode sidecar: %v", err)
	}
	if err := os.WriteFile(sidecarPath, sidecarJSON, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", sidecarPath, err)
	}

	fmt.Printf("Wrote %s and %s (%d/%d chunks embedded)\n",
		docPath, sidecarPath, sc.SuccessfulChunks, sc.TotalChunks)
}

func run(ctx context.Context, pipe *pipeline.Pipeline, embedder embeddings.Embedder) (*markdown.Document, *sidecar.Document, error) {
	if *pageURL != "" {
		return pipe.Process(ctx, pipeline.RawSource{Kind: pipeline.SourceURL, URL: *pageURL}, embedder)
	}

	if parser.IsPDF(*filePath) {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", *filePath, err)
		}
		return pipe.Process(ctx, pipeline.RawSource{
			Kind:     pipeline.SourcePDF,
			Filename: filepath.Base(*filePath),
			Data:     data,
		}, embedder)
	}

	// Office, mail, and text formats are pre-extracted locally.
	text, err := parser.ParseFile(*filePath)
	if err != nil {
		return nil, nil, err
	}
	return pipe.ProcessText(ctx, text, filepath.Base(*filePath), embedder)
}

func outputBase() string {
	if *filePath != "" {
		name := filepath.Base(*filePath)
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	name := strings.TrimPrefix(*pageURL, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.Trim(strings.ReplaceAll(name, "/", "_"), "_")
	if name == "" {
		name = "page"
	}
	return name
}
