package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunInvokesCallbackOnMatchingWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.qmd")
	if err := os.WriteFile(target, []byte("AFFECT f.qml\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := New(dir, ".qmd")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	seen := make(chan string, 1)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(stop, func(path string) { seen <- path }) }()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(target, []byte("AFFECT f.qml\nREMOVE width\n"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	select {
	case path := <-seen:
		if filepath.Base(path) != "a.qmd" {
			t.Fatalf("onChange path = %q, want a.qmd", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for onChange")
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Run to return after stop")
	}
}

func TestRunIgnoresNonMatchingSuffix(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := New(dir, ".qmd")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	seen := make(chan string, 1)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(stop, func(path string) { seen <- path }) }()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(other, []byte("hello again"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	select {
	case path := <-seen:
		t.Fatalf("unexpected onChange for non-.qmd file: %q", path)
	case <-time.After(200 * time.Millisecond):
	}

	close(stop)
	<-done
}
