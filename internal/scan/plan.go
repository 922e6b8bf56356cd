package scan

import (
	"strings"

	"stemzipper/internal/media/wav"
	"stemzipper/internal/packing"
)

// Classification is the preview action for a file.
type Classification string

const (
	Normal    Classification = "normal"
	SplitMono Classification = "split_mono"
	SplitZip  Classification = "split_zip"
)

// PlanEntry is the preview for one candidate.
type PlanEntry struct {
	File   CandidateFile
	Action Classification
	Kind   Kind
	// Stereo is only probed for oversized WAV files.
	Stereo bool
}

// Plan classifies candidates against capacity without touching them.
// Oversized stereo PCM WAV files are split into mono when splitStereo is set;
// every other oversized file needs volume splitting after compression.
func Plan(files []CandidateFile, capacity int64, splitStereo bool) []PlanEntry {
	entries := make([]PlanEntry, 0, len(files))
	for _, f := range files {
		entry := PlanEntry{File: f, Action: Normal, Kind: Sniff(f.Path)}
		if f.Size > capacity {
			entry.Action = SplitZip
			if strings.EqualFold(f.Extension, ".wav") {
				if info, err := wav.Probe(f.Path); err == nil {
					entry.Stereo = info.Channels == 2
					if splitStereo && entry.Stereo && info.Splittable() {
						entry.Action = SplitMono
					}
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// EstimateInputs adapts plan entries for packing.EstimateArchives.
func EstimateInputs(entries []PlanEntry) []packing.EstimateInput {
	inputs := make([]packing.EstimateInput, len(entries))
	for i, e := range entries {
		inputs[i] = packing.EstimateInput{Path: e.File.Path, Size: e.File.Size, Stereo: e.Action == SplitMono}
	}
	return inputs
}

// Counts tallies plan entries per classification.
func Counts(entries []PlanEntry) map[Classification]int {
	counts := make(map[Classification]int, 3)
	for _, e := range entries {
		counts[e.Action]++
	}
	return counts
}
