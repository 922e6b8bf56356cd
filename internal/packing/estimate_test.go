package packing_test

import (
	"math"
	"testing"

	"stemzipper/internal/packing"
)

func TestEstimateArchivesMinimumOne(t *testing.T) {
	est := packing.EstimateArchives(nil, 48*mb)
	if est.Archives != 1 {
		t.Fatalf("expected at least one archive, got %d", est.Archives)
	}
	if est.LogicalBytes != 0 {
		t.Fatalf("expected zero logical bytes, got %d", est.LogicalBytes)
	}
}

func TestEstimateArchivesAppliesSplitRatio(t *testing.T) {
	target := int64(50 * mb)
	wavSize := int64(120 * mb)
	files := []packing.EstimateInput{
		{Path: "/in/mix.wav", Size: wavSize, Stereo: true},
		{Path: "/in/bass.flac", Size: 10 * mb},
		{Path: "/in/empty.mp3", Size: 0},
	}
	est := packing.EstimateArchives(files, target)

	wantLogical := int64(math.Ceil(float64(wavSize)*packing.SplitRatio)) + 10*mb
	if est.LogicalBytes != wantLogical {
		t.Fatalf("logical = %d, want %d", est.LogicalBytes, wantLogical)
	}
	wantCapacity := target - (packing.ZipOverheadBytes + packing.StampBytes + packing.LicenseBytes)
	if est.CapacityBytes != wantCapacity {
		t.Fatalf("capacity = %d, want %d", est.CapacityBytes, wantCapacity)
	}
	wantArchives := int((wantLogical + wantCapacity - 1) / wantCapacity)
	if est.Archives != wantArchives {
		t.Fatalf("archives = %d, want %d", est.Archives, wantArchives)
	}
}

func TestEstimateArchivesIgnoresMonoAndSmallWAV(t *testing.T) {
	files := []packing.EstimateInput{
		{Path: "mono.wav", Size: 60 * mb, Stereo: false},
		{Path: "small.wav", Size: 5 * mb, Stereo: true},
	}
	est := packing.EstimateArchives(files, 50*mb)
	if est.LogicalBytes != 65*mb {
		t.Fatalf("logical = %d, want %d", est.LogicalBytes, 65*mb)
	}
}

func TestEstimateArchivesTinyTarget(t *testing.T) {
	est := packing.EstimateArchives([]packing.EstimateInput{{Path: "a.mp3", Size: 10}}, 100)
	if est.CapacityBytes != 1 {
		t.Fatalf("expected capacity floor of 1, got %d", est.CapacityBytes)
	}
	if est.Archives != 10 {
		t.Fatalf("expected 10 archives, got %d", est.Archives)
	}
}
