package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"agentdesk/internal/logging"
	"agentdesk/internal/watcher"
	"agentdesk/internal/workspace"
)

// waitForEvent drains events until one matches path or the timeout elapses.
func waitForEvent(t *testing.T, ch <-chan watcher.Event, path string) watcher.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Path == path {
				return ev
			}
		case <-deadline:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcherReportsFileChanges(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}

	resolver := workspace.NewResolver(root, []string{"src"}, nil)

	events := make(chan watcher.Event, 16)
	w, err := watcher.New(resolver, logging.NopLogger(), func(ev watcher.Event) {
		events <- ev
	})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	w.Start()
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	ev := waitForEvent(t, events, "src/main.go")
	if ev.Op != "create" && ev.Op != "write" {
		t.Errorf("op = %q, want create or write", ev.Op)
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}

	resolver := workspace.NewResolver(root, []string{"src"}, nil)

	events := make(chan watcher.Event, 16)
	w, err := watcher.New(resolver, logging.NopLogger(), func(ev watcher.Event) {
		events <- ev
	})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	w.Start()
	t.Cleanup(func() { _ = w.Close() })

	if err := os.MkdirAll(filepath.Join(root, "src", "sub"), 0755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	waitForEvent(t, events, "src/sub")

	// Give the watcher a moment to register the new directory, then create
	// a file inside it.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "src", "sub", "x.go"), []byte("package sub\n"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	waitForEvent(t, events, "src/sub/x.go")
}
