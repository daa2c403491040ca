// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// ingest-watch watches folders for documents and submits them to a
// running ingestor server. Office and mail formats are pre-extracted
// locally; PDFs are uploaded as-is so the server can run its OCR
// cascade.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/joho/godotenv"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/parser"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/watcher"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "Ingestor server base URL")
	watchDirs = flag.String("watch", "./inbox", "Comma-separated directories to watch")
	notify    = flag.Bool("notify", true, "Show desktop notifications")
)

const appName = "Document Ingestor"

func main() {
	flag.Parse()
	godotenv.Load()

	dirs := strings.Split(*watchDirs, ",")
	for i := range dirs {
		dirs[i] = strings.TrimSpace(dirs[i])
	}

	client := &http.Client{Timeout: 60 * time.Second}

	mgr := watcher.NewManager(dirs, func(path string) {
		if err := submit(client, path); err != nil {
			log.Printf("Failed to submit %s: %v", path, err)
			notifyUser("Ingestion failed", fmt.Sprintf("%s: %v", filepath.Base(path), err))
			return
		}
		notifyUser("Document submitted", filepath.Base(path))
	})

	if err := mgr.Start(); err != nil {
		log.Fatalf("failed to start watcher: %v", err)
	}
	log.Printf("Watching %v, submitting to %s", mgr.Watching(), *serverURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down watcher...")
	mgr.Stop()
}

// submit sends one file to the server's ingest endpoint.
func submit(client *http.Client, path string) error {
	if parser.IsPDF(path) {
		return submitUpload(client, path)
	}

	text, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"text":   text,
		"source": filepath.Base(path),
		"name":   filepath.Base(path),
	})
	if err != nil {
		return err
	}

	resp, err := client.Post(*serverURL+"/api/v1/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkResponse(resp)
}

func submitUpload(client *http.Client, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := client.Post(*serverURL+"/api/v1/ingest", mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkResponse(resp)
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusAccepted {
		var ack struct {
			JobID string `json:"job_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil {
			log.Printf("Server accepted document as job %s", ack.JobID)
		}
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func notifyUser(title, message string) {
	if !*notify {
		return
	}
	if err := beeep.Notify(fmt.Sprintf("%s: %s", appName, title), message, ""); err != nil {
		log.Printf("Notification failed: %v", err)
	}
}
