package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePacking()
	c.normalizeVolumes()
	c.normalizeMetadata()
	c.normalizeDisplay()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.OutputDir = strings.TrimSpace(c.Paths.OutputDir)
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePacking() {
	if clamped, msg := ClampMaxSizeMB(c.Packing.MaxSizeMB); msg != "" {
		c.Packing.MaxSizeMB = clamped
		c.Warnings = append(c.Warnings, msg)
	}
	c.Packing.Extensions = NormalizeExtensions(c.Packing.Extensions)
	if len(c.Packing.Extensions) == 0 {
		c.Packing.Extensions = append([]string(nil), DefaultExtensions...)
	}
	c.Packing.ArchivePrefix = strings.TrimSpace(c.Packing.ArchivePrefix)
	if c.Packing.ArchivePrefix == "" {
		c.Packing.ArchivePrefix = defaultArchivePrefix
	}
}

// NormalizeExtensions lowercases, dot-prefixes, and de-duplicates extensions
// while preserving their order.
func NormalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, exists := seen[ext]; exists {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (c *Config) normalizeVolumes() {
	c.Volumes.ZipCommand = strings.TrimSpace(c.Volumes.ZipCommand)
	if c.Volumes.ZipCommand == "" {
		c.Volumes.ZipCommand = defaultZipCommand
	}
	c.Volumes.SevenZipCommand = strings.TrimSpace(c.Volumes.SevenZipCommand)
	if c.Volumes.SevenZipCommand == "" {
		c.Volumes.SevenZipCommand = defaultSevenZipCommand
	}
	if c.Volumes.VolumeSizeMB < 0 {
		c.Volumes.VolumeSizeMB = 0
	}
}

func (c *Config) normalizeMetadata() {
	m := &c.Metadata
	m.Title = strings.TrimSpace(m.Title)
	m.Artist = strings.TrimSpace(m.Artist)
	m.Album = strings.TrimSpace(m.Album)
	m.BPM = strings.TrimSpace(m.BPM)
	m.Key = strings.TrimSpace(m.Key)
	m.Attribution = strings.TrimSpace(m.Attribution)
	m.ArtistURL = strings.TrimSpace(m.ArtistURL)
	m.ContactEmail = strings.TrimSpace(m.ContactEmail)
	m.License = strings.TrimSpace(m.License)
	if m.License == "" {
		m.License = defaultLicense
	}
	for _, id := range SupportedLicenses {
		if strings.EqualFold(id, m.License) {
			m.License = id
			break
		}
	}
}

func (c *Config) normalizeDisplay() {
	c.Display.Locale = strings.ToLower(strings.TrimSpace(c.Display.Locale))
	if value, ok := os.LookupEnv("STEMZIPPER_LOCALE"); ok && strings.TrimSpace(value) != "" {
		c.Display.Locale = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Display.Locale == "" {
		c.Display.Locale = defaultLocale
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
