package preflight

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, true)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "read/write ok") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), false)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, false)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if _, err := FreeBytes(dir); err != nil {
		t.Skipf("free space unavailable: %v", err)
	}
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected one byte to fit, got %s", result.Detail)
	}
	if result := CheckFreeSpace("space", dir, math.MaxInt64); result.Passed {
		t.Fatalf("expected max int64 to fail, got %s", result.Detail)
	}
}

func TestRunAllSkipsDuplicateOutput(t *testing.T) {
	dir := t.TempDir()
	results := RunAll(dir, dir, 0)
	if len(results) != 2 {
		t.Fatalf("expected source and space checks, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	out := t.TempDir()
	if results := RunAll(dir, out, 0); len(results) != 3 {
		t.Fatalf("expected three checks for a separate output dir, got %d", len(results))
	}
}
