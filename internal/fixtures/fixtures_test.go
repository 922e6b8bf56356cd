package fixtures_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stemzipper/internal/config"
	"stemzipper/internal/fixtures"
	"stemzipper/internal/media/wav"
)

func TestGenerateDummyFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stems")
	paths, err := fixtures.Generate(dir, fixtures.Options{Count: 4, MinMB: 0.01, MaxMB: 0.02, Seed: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "testfile_001.flac" {
		t.Fatalf("unexpected first name %s", paths[0])
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if !strings.HasPrefix(string(data), "FAKEAUDIO") {
			t.Fatalf("%s missing fake header", path)
		}
		lower, upper := 0.01, 0.02
		if size := float64(len(data)); size < lower*config.BytesPerMB-1 || size > upper*config.BytesPerMB {
			t.Fatalf("%s size %d outside [%.2f, %.2f] MB", path, len(data), lower, upper)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	opts := fixtures.Options{Count: 2, MinMB: 0.01, MaxMB: 0.05, Seed: 42}
	a, err := fixtures.Generate(t.TempDir(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := fixtures.Generate(t.TempDir(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := range a {
		da, _ := os.ReadFile(a[i])
		db, _ := os.ReadFile(b[i])
		if string(da) != string(db) {
			t.Fatalf("file %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerateStereoWAV(t *testing.T) {
	paths, err := fixtures.Generate(t.TempDir(), fixtures.Options{Count: 2, MinMB: 0.01, MaxMB: 0.02, StereoWAV: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, path := range paths {
		if filepath.Ext(path) != ".wav" {
			t.Fatalf("expected wav extension, got %s", path)
		}
		info, err := wav.Probe(path)
		if err != nil {
			t.Fatalf("Probe %s: %v", path, err)
		}
		if info.Channels != 2 || info.BitsPerSample != 16 || info.Frames() == 0 {
			t.Fatalf("unexpected wav info %+v", info)
		}
	}
}
