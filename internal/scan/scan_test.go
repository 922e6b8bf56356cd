package scan_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stemzipper/internal/packerr"
	"stemzipper/internal/scan"
	"stemzipper/internal/testsupport"
)

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "b.WAV"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "a.mp3"), 20)
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 5)
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "c.wav"), 5)

	files, err := scan.Scan(dir, []string{".wav", ".mp3"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}
	if filepath.Base(files[0].Path) != "a.mp3" || filepath.Base(files[1].Path) != "b.WAV" {
		t.Fatalf("unexpected order: %s, %s", files[0].Path, files[1].Path)
	}
	if files[1].Extension != ".wav" {
		t.Fatalf("expected lowercased extension, got %q", files[1].Extension)
	}
	if files[0].Size != 20 {
		t.Fatalf("expected size 20, got %d", files[0].Size)
	}
	if !filepath.IsAbs(files[0].Path) {
		t.Fatalf("expected absolute path, got %q", files[0].Path)
	}
}

func TestScanEmptyFolder(t *testing.T) {
	files, err := scan.Scan(t.TempDir(), []string{".wav"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %d", len(files))
	}
}

func TestScanSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.wav")
	testsupport.WriteFile(t, target, 10)
	if err := os.Symlink(target, filepath.Join(dir, "link.wav")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	files, err := scan.Scan(dir, []string{".wav"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected symlink to be skipped, got %+v", files)
	}
}

func TestScanInvalidPath(t *testing.T) {
	_, err := scan.Scan(filepath.Join(t.TempDir(), "missing"), []string{".wav"})
	if !errors.Is(err, packerr.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "file.wav")
	testsupport.WriteFile(t, file, 1)
	_, err = scan.Scan(file, []string{".wav"})
	if !errors.Is(err, packerr.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for file, got %v", err)
	}
}

func TestItemsKeepDiscoveryOrder(t *testing.T) {
	files := []scan.CandidateFile{
		{Path: "/x/a.wav", Size: 3},
		{Path: "/x/b.wav", Size: 5},
	}
	items := scan.Items(files)
	if len(items) != 2 || items[0].Order != 0 || items[1].Order != 1 {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[1].Size != 5 || items[1].Path != "/x/b.wav" {
		t.Fatalf("unexpected item %+v", items[1])
	}
}
