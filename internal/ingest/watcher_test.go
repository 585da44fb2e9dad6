package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()

	seen := make(chan string, 16)
	w := NewWatcher(dir, func(ctx context.Context, path string) {
		seen <- path
	}, nil)
	w.settle = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register before dropping files.
	time.Sleep(100 * time.Millisecond)

	accepted := filepath.Join(dir, "invoice.pdf")
	if err := os.WriteFile(accepted, []byte("pdf-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	ignored := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(ignored, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-seen:
		if path != accepted {
			t.Errorf("expected %s, got %s", accepted, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the watcher to pick up the file")
	}

	// Make sure the .txt never shows up.
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case path := <-seen:
			t.Errorf("unexpected pickup of %s", path)
		case <-deadline:
			cancel()
			if err := <-done; err != context.Canceled {
				t.Errorf("expected context.Canceled, got %v", err)
			}
			return
		}
	}
}

func TestWatcher_CoalescesEventBursts(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int64
	w := NewWatcher(dir, func(ctx context.Context, path string) {
		calls.Add(1)
	}, nil)
	w.settle = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	// A slow copy: Create plus several Write events for one file.
	path := filepath.Join(dir, "invoice.pdf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if _, err := f.Write([]byte("chunk")); err != nil {
			t.Fatal(err)
		}
		if err := f.Sync(); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	// Wait out the settle window plus slack, then make sure no late
	// duplicates arrive.
	time.Sleep(500 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 process call for one dropped file, got %d", got)
	}
}
