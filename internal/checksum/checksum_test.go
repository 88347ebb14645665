package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestSum(t *testing.T) {
	// sha256("")
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestFileMatchesSum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loans")
	writeFile(t, path, `[{"id":"L1"}]`)

	got, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := Sum([]byte(`[{"id":"L1"}]`)); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestTreeEqualForEqualContent(t *testing.T) {
	a, b, c := t.TempDir(), t.TempDir(), t.TempDir()
	for _, dir := range []string{a, b} {
		writeFile(t, filepath.Join(dir, "anna", "loans"), "[]")
		writeFile(t, filepath.Join(dir, "anna", "cards"), `[{"displayName":"Anna"}]`)
	}
	writeFile(t, filepath.Join(c, "anna", "loans"), `[{"id":"L1"}]`)
	writeFile(t, filepath.Join(c, "anna", "cards"), `[{"displayName":"Anna"}]`)

	sumA, err := Tree(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sumB, err := Tree(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sumC, err := Tree(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sumA != sumB {
		t.Error("expected identical trees to have the same digest")
	}
	if sumA == sumC {
		t.Error("expected different content to change the digest")
	}
}

func TestTreeMissing(t *testing.T) {
	if _, err := Tree(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}
