// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package watcher watches folders for documents to ingest. Events are
// debounced per path and deduplicated by content hash so renamed or
// re-saved copies of an already ingested file are skipped.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/parser"
)

// Handler receives the path of a stable, supported, not-yet-seen file.
type Handler func(filePath string)

// Manager watches a set of directories recursively.
type Manager struct {
	watchPaths []string
	handler    Handler
	debouncer  *Debouncer

	mu       sync.Mutex
	watchers map[string]*fsnotify.Watcher
	seen     map[string]string // content hash -> first path

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a watcher manager. The handler is called from its
// own goroutine once a file has been quiet for the debounce window.
func NewManager(watchPaths []string, handler Handler) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		watchPaths: watchPaths,
		handler:    handler,
		watchers:   make(map[string]*fsnotify.Watcher),
		seen:       make(map[string]string),
		ctx:        ctx,
		cancel:     cancel,
	}
	m.debouncer = NewDebouncer(500*time.Millisecond, m.dispatch)
	return m
}

// Start begins watching all configured paths. Existing files are
// scanned and dispatched through the same debounce path as new ones.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, path := range m.watchPaths {
		if err := m.addWatchPath(path); err != nil {
			log.Printf("Failed to watch path %s: %v", path, err)
			continue
		}
	}
	if len(m.watchers) == 0 {
		return fmt.Errorf("no watchable paths out of %d configured", len(m.watchPaths))
	}

	for path, w := range m.watchers {
		m.wg.Add(1)
		go m.processEvents(path, w)
	}
	return nil
}

// Stop shuts down all watchers and waits for event loops to exit.
func (m *Manager) Stop() {
	m.cancel()
	m.debouncer.Stop()

	m.mu.Lock()
	for path, w := range m.watchers {
		if err := w.Close(); err != nil {
			log.Printf("Error closing watcher for %s: %v", path, err)
		}
		delete(m.watchers, path)
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Watching returns the directories currently being watched.
func (m *Manager) Watching() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := make([]string, 0, len(m.watchers))
	for path := range m.watchers {
		paths = append(paths, path)
	}
	return paths
}

// addWatchPath watches rootPath and every subdirectory. Caller holds mu.
func (m *Manager) addWatchPath(rootPath string) error {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, exists := m.watchers[absPath]; exists {
		return nil
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		if err := os.MkdirAll(absPath, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		log.Printf("Created watch directory: %s", absPath)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.Add(path); err != nil {
				log.Printf("Warning: failed to watch %s: %v", path, err)
			}
		}
		return nil
	}); err != nil {
		w.Close()
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	m.watchers[absPath] = w
	log.Printf("Watching directory (recursive): %s", absPath)

	go m.scanExisting(absPath)
	return nil
}

func (m *Manager) processEvents(path string, w *fsnotify.Watcher) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.Add(event.Name); err != nil {
						log.Printf("Failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if parser.IsTemporaryFile(event.Name) {
					continue
				}
				if parser.IsSupportedFile(event.Name) {
					m.debouncer.Trigger(event.Name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error for %s: %v", path, err)
		}
	}
}

// scanExisting queues files already present when watching begins.
func (m *Manager) scanExisting(dir string) {
	log.Printf("Scanning existing files in %s", dir)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || parser.IsTemporaryFile(path) {
			return nil
		}
		if parser.IsSupportedFile(path) {
			m.debouncer.Trigger(path)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error scanning directory %s: %v", dir, err)
	}
}

// dispatch runs after the debounce window: hash the file, skip content
// we have already handed off, then invoke the handler.
func (m *Manager) dispatch(filePath string) {
	hash, err := hashFile(filePath)
	if err != nil {
		log.Printf("Failed to hash %s: %v", filePath, err)
		return
	}

	m.mu.Lock()
	if prev, dup := m.seen[hash]; dup {
		m.mu.Unlock()
		log.Printf("Skipping %s: same content already ingested from %s", filePath, prev)
		return
	}
	m.seen[hash] = filePath
	m.mu.Unlock()

	if m.handler != nil {
		m.handler(filePath)
	}
}

func hashFile(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
