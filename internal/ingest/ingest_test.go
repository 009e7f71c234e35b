package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "A.PDF", "notes.txt", ".hidden.pdf", "c.pdf"} {
		touch(t, filepath.Join(dir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListDocuments(dir, true)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	want := []string{"A.PDF", "b.pdf", "c.pdf"}
	if len(got) != len(want) {
		t.Fatalf("ListDocuments() = %v, want %v", got, want)
	}
	for i := range want {
		if filepath.Base(got[i]) != want[i] {
			t.Errorf("ListDocuments()[%d] = %s, want %s", i, filepath.Base(got[i]), want[i])
		}
	}

	all, _ := ListDocuments(dir, false)
	if len(all) != 4 {
		t.Errorf("ListDocuments(skipHidden=false) returned %d, want 4", len(all))
	}
	if _, err := ListDocuments(filepath.Join(dir, "missing"), false); err == nil {
		t.Error("ListDocuments(missing) error = nil")
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	touch(t, path, "abc")
	got, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("HashFile() = %s, want %s", got, want)
	}
}

func TestWatcherEmitsDocuments(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "existing.pdf"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("StartWatcher() error = %v", err)
	}

	expect := func(name string) {
		t.Helper()
		select {
		case p := <-events:
			if filepath.Base(p) != name {
				t.Fatalf("event = %s, want %s", p, name)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("no event for %s", name)
		}
	}
	expect("existing.pdf")

	touch(t, filepath.Join(dir, "ignored.txt"), "x")
	touch(t, filepath.Join(dir, "new.pdf"), "x")
	expect("new.pdf")

	cancel()
	for range events {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}, nil); err == nil {
		t.Error("StartWatcher() error = nil, want error")
	}
}
