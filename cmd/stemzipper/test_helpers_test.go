package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stemzipper/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	stateDir   string
	sourceDir  string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("STEMZIPPER_LOCALE", "")
	t.Setenv(devModeEnv, "")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		stateDir:   filepath.Join(base, "state"),
		sourceDir:  filepath.Join(base, "stems"),
		baseDir:    base,
	}
	if err := os.MkdirAll(env.sourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	writeTestConfig(t, env.configPath, env.stateDir)
	return env
}

func writeTestConfig(t *testing.T, path, stateDir string) {
	t.Helper()
	content := strings.Join([]string{
		"[paths]",
		"state_dir = " + quote(stateDir),
		"",
		"[packing]",
		"max_size_mb = 1",
		"",
		"[volumes]",
		"enabled = false",
		"",
		"[display]",
		`locale = "en"`,
		"",
		"[history]",
		"enabled = true",
		"",
		"[logging]",
		`level = "error"`,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func quote(value string) string {
	return "'" + value + "'"
}

// writeStems fills the source folder with incompressible files of the given
// sizes in KiB, named a.mp3, b.mp3, ...
func (e *cliTestEnv) writeStems(t *testing.T, sizesKiB ...int64) {
	t.Helper()
	for i, size := range sizesKiB {
		name := string(rune('a'+i)) + ".mp3"
		testsupport.WriteRandomFile(t, filepath.Join(e.sourceDir, name), size*1024, int64(i+1))
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
