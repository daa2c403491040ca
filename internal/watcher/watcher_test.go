// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger("/tmp/report.pdf")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 coalesced call, got %d", calls)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	d.Trigger("/tmp/a.txt")
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no calls after Stop, got %d", calls)
	}
}

func TestManagerDetectsNewFile(t *testing.T) {
	dir := t.TempDir()

	paths := make(chan string, 10)
	m := NewManager([]string{dir}, func(p string) { paths <- p })
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	target := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("some document content"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	select {
	case got := <-paths:
		if got != target {
			t.Errorf("expected %s, got %s", target, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file detection")
	}
}

func TestManagerSkipsDuplicateContent(t *testing.T) {
	dir := t.TempDir()

	paths := make(chan string, 10)
	m := NewManager([]string{dir}, func(p string) { paths <- p })
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	content := []byte("identical document content")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), content, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	select {
	case <-paths:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for first file")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.txt"), content, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	select {
	case got := <-paths:
		t.Errorf("duplicate content should be skipped, got %s", got)
	case <-time.After(1 * time.Second):
	}
}

func TestManagerIgnoresTemporaryFiles(t *testing.T) {
	dir := t.TempDir()

	paths := make(chan string, 10)
	m := NewManager([]string{dir}, func(p string) { paths <- p })
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	if err := os.WriteFile(filepath.Join(dir, "~$draft.docx"), []byte("lock"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	select {
	case got := <-paths:
		t.Errorf("temporary file should be ignored, got %s", got)
	case <-time.After(1 * time.Second):
	}
}
