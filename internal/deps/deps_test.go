package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"stemzipper/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path == "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("expected not configured detail, got %q", results[2].Detail)
	}
}

func TestRequirementsByPlatform(t *testing.T) {
	cfg := config.Default().Volumes
	cfg.Enabled = true

	linux := Requirements("linux", cfg)
	if linux[0].Optional || !linux[1].Optional {
		t.Fatalf("expected zip required and 7z optional on linux: %+v", linux)
	}
	windows := Requirements("windows", cfg)
	if !windows[0].Optional || windows[1].Optional {
		t.Fatalf("expected 7z required and zip optional on windows: %+v", windows)
	}

	cfg.Enabled = false
	for _, req := range Requirements("linux", cfg) {
		if !req.Optional {
			t.Fatalf("expected %s optional when volumes disabled", req.Name)
		}
	}
}

func TestMissingRequired(t *testing.T) {
	reqs := []Requirement{
		{Name: "zip", Command: "zip"},
		{Name: "7-Zip", Command: "7z", Optional: true},
	}
	statuses := checkWith(reqs, func(string) (string, error) { return "", exec.ErrNotFound })
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "zip" {
		t.Fatalf("expected only zip missing, got %+v", missing)
	}
}
