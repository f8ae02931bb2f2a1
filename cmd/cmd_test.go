package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notebook/sources"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("notebook %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestDocumentLifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "notebook.db")
	doc := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(doc, []byte("First page.\fSecond page."), 0o644); err != nil {
		t.Fatal(err)
	}

	id := strings.TrimSpace(run(t, "--db", db, "-q", "add", doc))
	if len(id) != 16 {
		t.Fatalf("add printed %q, want a 16 char id", id)
	}
	if again := strings.TrimSpace(run(t, "--db", db, "-q", "add", doc)); again != id {
		t.Errorf("re-adding gave id %q, want %q", again, id)
	}

	if out := run(t, "--db", db, "-q", "list"); !strings.Contains(out, id) || !strings.Contains(out, "new") {
		t.Errorf("list before select:\n%s", out)
	}

	out := run(t, "--db", db, "-q", "select", id)
	if !strings.Contains(out, "First page.\n\nSecond page.") {
		t.Errorf("select output:\n%s", out)
	}

	if out := run(t, "--db", db, "-q", "list"); !strings.Contains(out, "processed") {
		t.Errorf("list after select:\n%s", out)
	}

	run(t, "--db", db, "-q", "rm", id)
	if out := run(t, "--db", db, "-q", "list"); strings.Contains(out, id) {
		t.Errorf("list after rm still shows %s:\n%s", id, out)
	}
}

func TestGuessKind(t *testing.T) {
	tests := []struct {
		locator string
		want    sources.Kind
	}{
		{"/tmp/lecture.mp3", sources.KindAudio},
		{"/tmp/notes.TXT", sources.KindDocument},
		{"https://example.com/a/readme.md", sources.KindDocument},
		{"https://example.com/stream", sources.KindAudio},
	}
	for _, tt := range tests {
		if got := guessKind(tt.locator); got != tt.want {
			t.Errorf("guessKind(%q) = %q, want %q", tt.locator, got, tt.want)
		}
	}
}
