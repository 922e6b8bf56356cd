package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// BytesPerMB converts the configured megabyte ceiling into bytes.
const BytesPerMB = 1024 * 1024

// Paths contains directory configuration.
type Paths struct {
	// StateDir holds the run history database, the log file, and nothing else.
	StateDir string `toml:"state_dir"`
	// OutputDir receives the archives. Empty means "next to the source files".
	OutputDir string `toml:"output_dir"`
}

// Packing contains the knobs of the packing engine itself.
type Packing struct {
	MaxSizeMB     int      `toml:"max_size_mb"`
	Extensions    []string `toml:"extensions"`
	ArchivePrefix string   `toml:"archive_prefix"`
	SplitStereo   bool     `toml:"split_stereo"`
}

// Volumes configures the external multi-volume splitting step for archives
// that remain above the ceiling after compression.
type Volumes struct {
	Enabled         bool   `toml:"enabled"`
	ZipCommand      string `toml:"zip_command"`
	SevenZipCommand string `toml:"sevenzip_command"`
	// VolumeSizeMB defaults to packing.max_size_mb when zero.
	VolumeSizeMB int `toml:"volume_size_mb"`
}

// Metadata describes optional pack metadata embedded into every archive.
// Title and Artist must both be set for the metadata entries to be written.
type Metadata struct {
	Title        string `toml:"title"`
	Artist       string `toml:"artist"`
	Album        string `toml:"album"`
	BPM          string `toml:"bpm"`
	Key          string `toml:"key"`
	License      string `toml:"license"`
	Attribution  string `toml:"attribution"`
	ArtistURL    string `toml:"artist_url"`
	ContactEmail string `toml:"contact_email"`
}

// Display contains presentation-only settings.
type Display struct {
	Locale string `toml:"locale"`
}

// History controls the SQLite run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File additionally writes logs to <state_dir>/stemzipper.log.
	File bool `toml:"file"`
}

// Config encapsulates all configuration values for Stem Zipper.
//
// Configuration sections by subsystem:
//   - Paths: state and output directories
//   - Packing: size ceiling, extension set, archive naming, stereo splitting
//   - Volumes: external zip/7z volume splitting
//   - Metadata: optional pack metadata written into each archive
//   - Display: locale for operator-facing strings
//   - History: run ledger
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Packing  Packing  `toml:"packing"`
	Volumes  Volumes  `toml:"volumes"`
	Metadata Metadata `toml:"metadata"`
	Display  Display  `toml:"display"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`

	// Warnings collects non-fatal adjustments made during normalization.
	Warnings []string `toml:"-"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stemzipper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stemzipper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory. The output directory is
// created per run by the packer because it defaults to the source folder.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// CapacityBytes returns the archive size ceiling in bytes.
func (c *Config) CapacityBytes() int64 {
	return int64(c.Packing.MaxSizeMB) * BytesPerMB
}

// VolumeBytes returns the target size of each split volume in bytes.
func (c *Config) VolumeBytes() int64 {
	if c.Volumes.VolumeSizeMB > 0 {
		return int64(c.Volumes.VolumeSizeMB) * BytesPerMB
	}
	return c.CapacityBytes()
}

// HistoryPath returns the location of the run ledger database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogPath returns the location of the optional log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "stemzipper.log")
}

// SetMaxSizeMB applies an operator override of the size ceiling, clamping it
// the same way configuration values are clamped. The returned message is
// empty when the value was accepted unchanged; reporting it is left to the
// caller, so it is not added to Warnings.
func (c *Config) SetMaxSizeMB(value int) string {
	clamped, msg := ClampMaxSizeMB(value)
	c.Packing.MaxSizeMB = clamped
	return msg
}

// ClampMaxSizeMB forces value into (0, MaxSizeLimitMB]. Non-positive values
// reset to the default; oversized values are capped at the limit.
func ClampMaxSizeMB(value int) (int, string) {
	switch {
	case value <= 0:
		return defaultMaxSizeMB, fmt.Sprintf("packing.max_size_mb %d is not positive; using %d MB", value, defaultMaxSizeMB)
	case value > MaxSizeLimitMB:
		return MaxSizeLimitMB, fmt.Sprintf("packing.max_size_mb %d exceeds the %d MB limit; using %d MB", value, MaxSizeLimitMB, MaxSizeLimitMB)
	default:
		return value, ""
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
