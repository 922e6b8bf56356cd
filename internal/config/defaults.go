package config

const (
	defaultStateDir        = "~/.local/share/stemzipper"
	defaultMaxSizeMB       = 48
	defaultArchivePrefix   = "stems"
	defaultZipCommand      = "zip"
	defaultSevenZipCommand = "7z"
	defaultLocale          = "en"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLicense         = "CC-BY-4.0"

	// MaxSizeLimitMB is the largest archive ceiling an operator may request.
	MaxSizeLimitMB = 500
	// DefaultMaxSizeMB is the archive ceiling used when none (or an invalid one) is configured.
	DefaultMaxSizeMB = defaultMaxSizeMB
)

// DefaultExtensions lists the audio extensions that participate in packing.
var DefaultExtensions = []string{".wav", ".flac", ".mp3", ".aiff", ".ogg", ".aac", ".wma"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Packing: Packing{
			MaxSizeMB:     defaultMaxSizeMB,
			Extensions:    append([]string(nil), DefaultExtensions...),
			ArchivePrefix: defaultArchivePrefix,
			SplitStereo:   true,
		},
		Volumes: Volumes{
			Enabled:         true,
			ZipCommand:      defaultZipCommand,
			SevenZipCommand: defaultSevenZipCommand,
		},
		Metadata: Metadata{
			License: defaultLicense,
		},
		Display: Display{
			Locale: defaultLocale,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
