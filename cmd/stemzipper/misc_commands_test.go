package main

import (
	"os"
	"path/filepath"
	"testing"

	"stemzipper/internal/archive"
)

func TestTestdataRequiresDevMode(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "fixtures")

	_, _, err := runCLI(t, []string{"testdata", dir}, env.configPath)
	if err == nil {
		t.Fatal("expected developer mode error")
	}
	requireContains(t, err.Error(), "developer mode")
}

func TestTestdataGeneratesFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "fixtures")

	out, _, err := runCLI(t, []string{"testdata", dir, "--dev", "--count", "3", "--min-mb", "0.01", "--max-mb", "0.02", "--seed", "7"}, env.configPath)
	if err != nil {
		t.Fatalf("testdata: %v", err)
	}
	requireContains(t, out, "3 dummy files created in")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 files, got %d", len(entries))
	}
}

func TestVersionCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"version"}, env.configPath)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "Stem ZIPper version "+archive.Version)
}

func TestDepsCommandReportsDisabledVolumes(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "disabled in configuration")
}
