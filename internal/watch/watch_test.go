package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// waitForCount polls until the watcher has seen n files or the deadline passes.
func waitForCount(t *testing.T, w *Watcher, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Count() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("watcher saw %d files, want %d", w.Count(), n)
}

func TestNew_CreatesArtifactDirs(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	for _, sub := range []string{"migrations", "seeds"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Errorf("%s not created: %v", sub, err)
		}
	}
}

func TestWatcher_RecordsSQLFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "migrations", "001_users.sql"))
	writeFile(t, filepath.Join(dir, "seeds", "users.sql"))

	waitForCount(t, w, 2)

	files := w.Files()
	want := []string{
		filepath.Join("migrations", "001_users.sql"),
		filepath.Join("seeds", "users.sql"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestWatcher_IgnoresNonSQL(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "migrations", "notes.txt"))
	writeFile(t, filepath.Join(dir, "migrations", "001_users.sql"))

	waitForCount(t, w, 1)

	// Give the ignored file a chance to appear if the filter were broken.
	time.Sleep(50 * time.Millisecond)
	if got := w.Count(); got != 1 {
		t.Errorf("Count = %d, want 1 (non-SQL file ignored)", got)
	}
}

func TestWatcher_RewriteCountedOnce(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "migrations", "001_users.sql")
	writeFile(t, path)
	waitForCount(t, w, 1)

	if err := os.WriteFile(path, []byte("ALTER TABLE users;"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if got := w.Count(); got != 1 {
		t.Errorf("Count = %d, want 1 after rewrite", got)
	}
}

func TestNilWatcher_NoOps(t *testing.T) {
	var w *Watcher
	if w.Count() != 0 {
		t.Error("nil Count should be 0")
	}
	if w.Files() != nil {
		t.Error("nil Files should be nil")
	}
	w.Close()
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Close()
	w.Close()
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("SELECT 1;"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
