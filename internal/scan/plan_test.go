package scan_test

import (
	"path/filepath"
	"testing"

	"stemzipper/internal/scan"
	"stemzipper/internal/testsupport"
)

func TestPlanClassifies(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteWAV(t, filepath.Join(dir, "big.wav"), 2, 16, 400)
	testsupport.WriteWAV(t, filepath.Join(dir, "small.wav"), 2, 16, 10)
	testsupport.WriteFile(t, filepath.Join(dir, "big.mp3"), 2000)

	files, err := scan.Scan(dir, []string{".wav", ".mp3"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	entries := scan.Plan(files, 1000, true)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	byName := make(map[string]scan.PlanEntry)
	for _, e := range entries {
		byName[filepath.Base(e.File.Path)] = e
	}
	if got := byName["big.wav"]; got.Action != scan.SplitMono || !got.Stereo || got.Kind != scan.KindWAV {
		t.Fatalf("big.wav: %+v", got)
	}
	if got := byName["small.wav"]; got.Action != scan.Normal || got.Stereo {
		t.Fatalf("small.wav: %+v", got)
	}
	if got := byName["big.mp3"]; got.Action != scan.SplitZip {
		t.Fatalf("big.mp3: %+v", got)
	}

	counts := scan.Counts(entries)
	if counts[scan.Normal] != 1 || counts[scan.SplitMono] != 1 || counts[scan.SplitZip] != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}

	inputs := scan.EstimateInputs(entries)
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}
	for _, in := range inputs {
		if filepath.Base(in.Path) == "big.wav" && !in.Stereo {
			t.Fatalf("expected stereo estimate input for big.wav")
		}
	}
}

func TestPlanLeavesFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.wav")
	testsupport.WriteWAV(t, path, 2, 16, 400)

	files, err := scan.Scan(dir, []string{".wav"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	_ = scan.Plan(files, 100, true)

	after, err := scan.Scan(dir, []string{".wav"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(after) != 1 || after[0].Size != files[0].Size {
		t.Fatalf("plan modified the folder: %+v", after)
	}
}

func TestPlanOversizedWAVWithoutMonoSplit(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteWAV(t, filepath.Join(dir, "vox.wav"), 1, 16, 800)
	testsupport.WriteWAV(t, filepath.Join(dir, "pad.wav"), 2, 16, 400)

	files, err := scan.Scan(dir, []string{".wav"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	cases := []struct {
		name        string
		splitStereo bool
		want        map[string]scan.Classification
	}{
		{"split enabled", true, map[string]scan.Classification{"vox.wav": scan.SplitZip, "pad.wav": scan.SplitMono}},
		{"split disabled", false, map[string]scan.Classification{"vox.wav": scan.SplitZip, "pad.wav": scan.SplitZip}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := scan.Plan(files, 1000, tc.splitStereo)
			for _, e := range entries {
				name := filepath.Base(e.File.Path)
				if e.Action != tc.want[name] {
					t.Fatalf("%s classified %s, want %s", name, e.Action, tc.want[name])
				}
			}
			for _, in := range scan.EstimateInputs(entries) {
				wantStereo := tc.want[filepath.Base(in.Path)] == scan.SplitMono
				if in.Stereo != wantStereo {
					t.Fatalf("%s estimate stereo=%v, want %v", filepath.Base(in.Path), in.Stereo, wantStereo)
				}
			}
		})
	}
}
