package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	format, err := parseOutputFormat("  JSON ", outputFormatTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != outputFormatJSON {
		t.Fatalf("expected json, got %q", format)
	}

	format, err = parseOutputFormat("", outputFormatTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != outputFormatTable {
		t.Fatalf("expected default table, got %q", format)
	}

	if _, err := parseOutputFormat("yaml", outputFormatTable); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestTruncateForTable(t *testing.T) {
	t.Parallel()

	if got := truncateForTable("  short  ", 20); got != "short" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := truncateForTable("a very long order name indeed", 10); got != "a very ..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestCollectDocumentPathsSortsDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b_order.json", "a_order.json", "notes.txt", "c_order.JSON"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	paths, err := collectDocumentPaths(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a_order.json"),
		filepath.Join(dir, "b_order.json"),
		filepath.Join(dir, "c_order.JSON"),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %d: %v", len(want), len(paths), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("unexpected order at %d: got %q want %q", i, paths[i], want[i])
		}
	}
}

func TestCollectDocumentPathsSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "order.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	paths, err := collectDocumentPaths(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0] != file {
		t.Fatalf("expected the single file back, got %v", paths)
	}
}
