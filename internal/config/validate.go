package config

import (
	"errors"
	"fmt"
	"strings"
)

// SupportedLicenses lists the license identifiers accepted in [metadata].
var SupportedLicenses = []string{"CC0-1.0", "CC-BY-4.0", "CC-BY-SA-4.0", "CC-BY-NC-4.0"}

// SupportedLocales lists the locales with a complete string table.
var SupportedLocales = []string{"en", "de", "fr", "it", "es", "pt"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePacking(); err != nil {
		return err
	}
	if err := c.validateVolumes(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePacking() error {
	if c.Packing.MaxSizeMB <= 0 || c.Packing.MaxSizeMB > MaxSizeLimitMB {
		return fmt.Errorf("packing.max_size_mb must be between 1 and %d", MaxSizeLimitMB)
	}
	if len(c.Packing.Extensions) == 0 {
		return errors.New("packing.extensions must list at least one extension")
	}
	if strings.ContainsAny(c.Packing.ArchivePrefix, `/\`) {
		return fmt.Errorf("packing.archive_prefix %q must not contain path separators", c.Packing.ArchivePrefix)
	}
	return nil
}

func (c *Config) validateVolumes() error {
	if c.Volumes.VolumeSizeMB > MaxSizeLimitMB {
		return fmt.Errorf("volumes.volume_size_mb must not exceed %d", MaxSizeLimitMB)
	}
	return nil
}

func (c *Config) validateMetadata() error {
	m := c.Metadata
	if (m.Title == "") != (m.Artist == "") {
		return errors.New("metadata.title and metadata.artist must be set together")
	}
	for _, id := range SupportedLicenses {
		if id == m.License {
			return nil
		}
	}
	return fmt.Errorf("metadata.license %q is not supported (choose one of %s)", m.License, strings.Join(SupportedLicenses, ", "))
}

// MetadataEnabled reports whether pack metadata should be written into archives.
func (c *Config) MetadataEnabled() bool {
	return c.Metadata.Title != "" && c.Metadata.Artist != ""
}

func (c *Config) validateDisplay() error {
	for _, locale := range SupportedLocales {
		if locale == c.Display.Locale {
			return nil
		}
	}
	return fmt.Errorf("display.locale %q is not supported (choose one of %s)", c.Display.Locale, strings.Join(SupportedLocales, ", "))
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}
