package packing

import (
	"math"
	"path/filepath"
	"strings"
)

// Per-archive overhead assumed by Estimate: zip directory and local headers,
// the marker entry, and the optional license text.
const (
	ZipOverheadBytes = 16 * 1024
	StampBytes       = 2 * 1024
	LicenseBytes     = 4 * 1024
	// SplitRatio scales a stereo WAV that will be split; the two mono files
	// carry a second header and each lands in a bin with its own slack.
	SplitRatio = 1.01
)

// EstimateInput is one file considered by Estimate.
type EstimateInput struct {
	Path   string
	Size   int64
	Stereo bool
}

// Estimate is a preview-only archive count.
type Estimate struct {
	Archives      int
	LogicalBytes  int64
	CapacityBytes int64
}

// EstimateArchives predicts how many archives a folder will produce without
// running the packer. The usable capacity is the target minus the per-archive
// overhead (never below one byte) and the result is at least one.
func EstimateArchives(files []EstimateInput, target int64) Estimate {
	capacity := target - (ZipOverheadBytes + StampBytes + LicenseBytes)
	if capacity <= 0 {
		capacity = 1
	}

	var logical int64
	for _, file := range files {
		if file.Size <= 0 {
			continue
		}
		if file.Stereo && file.Size > target && strings.EqualFold(filepath.Ext(file.Path), ".wav") {
			logical += int64(math.Ceil(float64(file.Size) * SplitRatio))
			continue
		}
		logical += file.Size
	}

	archives := int((logical + capacity - 1) / capacity)
	if archives < 1 {
		archives = 1
	}
	return Estimate{Archives: archives, LogicalBytes: logical, CapacityBytes: capacity}
}
