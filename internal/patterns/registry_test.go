package patterns

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writePattern(t *testing.T, dir, name, system string) {
	t.Helper()
	patDir := filepath.Join(dir, name)
	if err := os.MkdirAll(patDir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", patDir, err)
	}
	if err := os.WriteFile(filepath.Join(patDir, "system.md"), []byte(system), 0644); err != nil {
		t.Fatalf("write system.md: %v", err)
	}
}

func TestDirRegistryGet(t *testing.T) {
	dir := t.TempDir()
	writePattern(t, dir, "summarize", "You summarize text.\n")

	reg := NewDirRegistry(dir)
	pat, err := reg.Get("summarize")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat.Name != "summarize" {
		t.Fatalf("name=%q, want %q", pat.Name, "summarize")
	}
	if pat.System != "You summarize text.\n" {
		t.Fatalf("system=%q", pat.System)
	}
}

func TestDirRegistryGetMissing(t *testing.T) {
	reg := NewDirRegistry(t.TempDir())
	if _, err := reg.Get("nope"); err == nil {
		t.Fatal("expected error for missing pattern")
	}
}

func TestDirRegistryNamesSkipsFiles(t *testing.T) {
	dir := t.TempDir()
	writePattern(t, dir, "extract", "x")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a pattern"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	names, err := NewDirRegistry(dir).Names()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"extract"}) {
		t.Fatalf("names=%v", names)
	}
}

func TestSourceUnionAndPrecedence(t *testing.T) {
	base := t.TempDir()
	extra := t.TempDir()
	writePattern(t, base, "summarize", "base summarize")
	writePattern(t, extra, "summarize", "extra summarize")
	writePattern(t, extra, "translate", "extra translate")

	src := NewSource(base, extra)

	names, err := src.Names()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"summarize", "translate"}) {
		t.Fatalf("names=%v", names)
	}

	// Base registry wins when both define the same pattern.
	pat, err := src.Get("summarize")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat.System != "base summarize" {
		t.Fatalf("system=%q, want base copy", pat.System)
	}

	pat, err = src.Get("translate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pat.System != "extra translate" {
		t.Fatalf("system=%q", pat.System)
	}
}

func TestSourceSkipsBrokenRegistry(t *testing.T) {
	good := t.TempDir()
	writePattern(t, good, "extract", "x")

	src := NewSource(filepath.Join(good, "does-not-exist"), good)
	names, err := src.Names()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"extract"}) {
		t.Fatalf("names=%v", names)
	}
}
