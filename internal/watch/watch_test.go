package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDeliversWriteEvents(t *testing.T) {
	dir := t.TempDir()

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatalf("Add(%s): %v", dir, err)
	}

	target := filepath.Join(dir, "sample.vty")
	if err := os.WriteFile(target, []byte("fn f() { }\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path != target {
				continue
			}
			if !ev.Has(OpCreate) && !ev.Has(OpWrite) {
				t.Fatalf("event op = %v, want create or write", ev.Op)
			}
			return
		case err := <-w.Errors():
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatal("no event within deadline")
		}
	}
}

func TestEventHas(t *testing.T) {
	ev := Event{Path: "a.vty", Op: OpCreate | OpWrite}

	if !ev.Has(OpCreate) || !ev.Has(OpWrite) {
		t.Error("Has() missed a set operation")
	}
	if ev.Has(OpRemove) {
		t.Error("Has(OpRemove) = true, want false")
	}
}

func TestRemoveStopsDelivery(t *testing.T) {
	dir := t.TempDir()

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Remove(dir); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}
