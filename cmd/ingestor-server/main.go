// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/config"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/embeddings"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/jobs"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/logger"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/ocr"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/pipeline"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/queue"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/server"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/storage"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/vectordb"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/worker"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	logFile    = flag.String("log-file", "./ingestor.log", "Log file path")
)

func main() {
	flag.Parse()

	// .env is optional; environment beats file values either way.
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	if _, err := logger.Init(*logFile); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.Printf("Configuration loaded from %s", viper.ConfigFileUsed())

	blobs, err := storage.NewFileStore(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	artifacts := storage.NewArtifactStore(blobs)

	db, err := sql.Open("sqlite3", filepath.Join(cfg.Storage.Root, "ingestor.db"))
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}
	defer db.Close()

	jobStore, err := jobs.NewStore(db)
	if err != nil {
		log.Fatalf("failed to initialize job store: %v", err)
	}

	embedder, err := embeddings.New(cfg.Embedder)
	if err != nil {
		log.Fatalf("failed to initialize embedder: %v", err)
	}
	log.Printf("Initialized embedder: %s (dimension: %d)", embedder.ModelVersion(), embedder.Dimension())

	pipelineOpts := []pipeline.Option{}
	if cfg.OCR.BaseURL != "" {
		pipelineOpts = append(pipelineOpts, pipeline.WithOCREngine(ocr.NewHTTPEngine(cfg.OCR.BaseURL, cfg.OCR.APIKey)))
		log.Printf("OCR cascade enabled via %s", cfg.OCR.BaseURL)
	} else {
		log.Printf("No OCR service configured; scanned PDFs will fall back to text-only extraction")
	}

	pipe, err := pipeline.New(pipeline.Config{
		OCRThreshold:     cfg.Processing.OCRThreshold,
		Chunking:         cfg.Processing.ChunkerConfig(),
		EmbedConcurrency: cfg.Processing.EmbedConcurrency,
		TokensPerWord:    cfg.Processing.TokensPerWord,
	}, pipelineOpts...)
	if err != nil {
		log.Fatalf("invalid pipeline configuration: %v", err)
	}

	// Vector store is optional.
	var vectorDB vectordb.VectorDB
	if cfg.Qdrant.Enabled {
		conn, err := grpc.Dial(cfg.Qdrant.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatalf("failed to connect to Qdrant at %s: %v", cfg.Qdrant.Addr, err)
		}
		defer conn.Close()

		vectorDB, err = vectordb.NewQdrantVectorDB(conn, cfg.Qdrant.Collection, embedder.Dimension())
		if err != nil {
			log.Fatalf("failed to init vector db: %v", err)
		}
		log.Printf("Vector indexing enabled (collection %s)", cfg.Qdrant.Collection)
	}

	ctx := context.Background()

	// Prefer Redis so multiple server processes can share the queue;
	// fall back to the in-process queue when Redis is unreachable.
	var jobQueue queue.Queue
	if redisClient, err := config.NewRedisClient(ctx); err == nil {
		jobQueue, err = queue.NewRedisQueue(redisClient, cfg.Queue.Key)
		if err != nil {
			log.Fatalf("failed to create job queue: %v", err)
		}
		log.Printf("Using Redis job queue (key %s)", cfg.Queue.Key)
	} else {
		log.Printf("Redis not available (%v); using in-process queue", err)
		jobQueue = queue.NewMemoryQueue(1000)
	}

	processor := &worker.DocumentProcessor{
		Pipeline:  pipe,
		Embedder:  embedder,
		Jobs:      jobStore,
		Blobs:     blobs,
		Artifacts: artifacts,
		VectorDB:  vectorDB,
	}

	workerCtx, workerCancel := context.WithCancel(ctx)
	go func() {
		log.Printf("Starting %d document workers", cfg.Processing.WorkerCount)
		if err := worker.StartWorkers(workerCtx, jobQueue, processor.Handle, cfg.Processing.WorkerCount); err != nil {
			log.Printf("worker error: %v", err)
		}
	}()

	api := server.NewServer(jobStore, jobQueue, artifacts, blobs)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: api.Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %d", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	waitForShutdown(httpServer, workerCancel)
}

func waitForShutdown(httpServer *http.Server, workerCancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Println("Shutting down...")
	workerCancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}
