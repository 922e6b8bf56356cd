package workflow

import (
	"time"

	"stemzipper/internal/archive"
	"stemzipper/internal/packing"
)

// LockFileName is created in the output folder for the duration of a run.
const LockFileName = ".stemzipper.lock"

// Stage identifies the phase a progress event belongs to.
type Stage string

const (
	StagePreparing Stage = "preparing"
	StageSplitting Stage = "splitting"
	StagePacking   Stage = "packing"
	StageDone      Stage = "done"
)

// Event is one progress notification.
type Event struct {
	Stage   Stage
	Current int
	Total   int
	// Archive is set during packing.
	Archive string
	// File is set during splitting.
	File    string
	Percent float64
}

// ProgressFunc receives progress events on the calling goroutine.
type ProgressFunc func(Event)

// Request describes one run.
type Request struct {
	SourceDir string
	// OutputDir overrides the configured output folder. Empty falls back to
	// the configuration, then to SourceDir.
	OutputDir string
	// NoVolumeSplit disables volume remediation for this run.
	NoVolumeSplit bool
	Progress      ProgressFunc
}

// SplitResult records a stereo file replaced by its two channels.
type SplitResult struct {
	Source string
	Left   string
	Right  string
}

// Summary is the outcome of a run.
type Summary struct {
	RunID         string
	SourceDir     string
	OutputDir     string
	CapacityBytes int64
	FileCount     int
	Archives      []archive.Group
	Splits        []SplitResult
	Totals        packing.Totals
	Warnings      []error
	// Empty is set when the folder held no supported files.
	Empty     bool
	Cancelled bool
	StartedAt time.Time
	Duration  time.Duration
}

// Oversized returns the archives that ended above the ceiling and were not
// split into volumes.
func (s Summary) Oversized() []archive.Group {
	var out []archive.Group
	for _, g := range s.Archives {
		if g.Oversized && len(g.Volumes) == 0 {
			out = append(out, g)
		}
	}
	return out
}
