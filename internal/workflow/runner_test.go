package workflow_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/gofrs/flock"

	"stemzipper/internal/archive"
	"stemzipper/internal/history"
	"stemzipper/internal/logging"
	"stemzipper/internal/packerr"
	"stemzipper/internal/testsupport"
	"stemzipper/internal/workflow"
)

const kib = 1024

func zipMembers(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		if f.Name == archive.MarkerName {
			continue
		}
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestRunEmptyFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "readme.txt"), 10)

	var stages []workflow.Stage
	runner := workflow.NewRunner(cfg, logging.NewNop())
	summary, err := runner.Run(context.Background(), workflow.Request{
		SourceDir: dir,
		Progress:  func(e workflow.Event) { stages = append(stages, e.Stage) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Empty || len(summary.Archives) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.zip"))
	if len(matches) != 0 {
		t.Fatalf("expected no archives, got %v", matches)
	}
	if len(stages) != 2 || stages[0] != workflow.StagePreparing || stages[1] != workflow.StageDone {
		t.Fatalf("unexpected stages %v", stages)
	}
}

func TestRunPacksBestFit(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxSizeMB(1))
	dir := t.TempDir()
	// Scaled version of [30,30,25,20,15] into a 50-unit bin.
	sizes := map[string]int64{"a.mp3": 600, "b.mp3": 600, "c.mp3": 500, "d.mp3": 400, "e.mp3": 300}
	for name, size := range sizes {
		testsupport.WriteRandomFile(t, filepath.Join(dir, name), size*kib, size)
	}

	var events []workflow.Event
	var missing []string
	runner := workflow.NewRunner(cfg, logging.NewNop())
	summary, err := runner.Run(context.Background(), workflow.Request{
		SourceDir: dir,
		Progress: func(e workflow.Event) {
			events = append(events, e)
			if e.Stage != workflow.StagePacking {
				return
			}
			if _, err := os.Stat(filepath.Join(dir, e.Archive)); err != nil {
				missing = append(missing, e.Archive)
			}
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.FileCount != 5 || len(summary.Archives) != 3 {
		t.Fatalf("expected 5 files in 3 archives, got %d files %d archives", summary.FileCount, len(summary.Archives))
	}
	want := [][]string{{"a.mp3", "d.mp3"}, {"b.mp3", "e.mp3"}, {"c.mp3"}}
	for i, group := range summary.Archives {
		if group.Name != archive.ArchiveName("stems", i+1) {
			t.Fatalf("archive %d named %s", i, group.Name)
		}
		if group.Oversized {
			t.Fatalf("archive %s unexpectedly oversized (%d bytes)", group.Name, group.Size)
		}
		got := zipMembers(t, group.Path)
		if len(got) != len(want[i]) || got[0] != want[i][0] || got[len(got)-1] != want[i][len(want[i])-1] {
			t.Fatalf("archive %s members %v, want %v", group.Name, got, want[i])
		}
	}
	if len(summary.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", summary.Warnings)
	}

	var packing int
	for _, e := range events {
		if e.Stage == workflow.StagePacking {
			packing++
			if e.Total != 3 || e.Archive == "" {
				t.Fatalf("unexpected packing event %+v", e)
			}
			if want := float64(e.Current) / 3 * 100; e.Percent != want {
				t.Fatalf("packing event %d reported %.2f%%, want %.2f%%", e.Current, e.Percent, want)
			}
		}
	}
	if packing != 3 {
		t.Fatalf("expected 3 packing events, got %d", packing)
	}
	if len(missing) != 0 {
		t.Fatalf("packing events fired before archives were written: %v", missing)
	}
	if last := events[len(events)-1]; last.Stage != workflow.StageDone || last.Percent != 100 {
		t.Fatalf("expected final done event, got %+v", last)
	}
}

func TestRunSplitsOversizedStereoWAV(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxSizeMB(1))
	dir := t.TempDir()
	source := filepath.Join(dir, "drums.wav")
	testsupport.WriteWAV(t, source, 2, 16, 300000)

	summary, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{SourceDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Splits) != 1 {
		t.Fatalf("expected one split, got %+v", summary.Splits)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected original to be removed, stat err %v", err)
	}
	if len(summary.Archives) != 2 {
		t.Fatalf("expected left and right in separate archives, got %d", len(summary.Archives))
	}
	if got := zipMembers(t, summary.Archives[0].Path); len(got) != 1 || got[0] != "drums_L.wav" {
		t.Fatalf("first archive members %v", got)
	}
	if got := zipMembers(t, summary.Archives[1].Path); len(got) != 1 || got[0] != "drums_R.wav" {
		t.Fatalf("second archive members %v", got)
	}
	if len(summary.Oversized()) != 0 {
		t.Fatalf("expected no oversized archives")
	}
}

func TestRunSplitKeepsExistingChannelFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxSizeMB(1))
	dir := t.TempDir()
	source := filepath.Join(dir, "drums.wav")
	testsupport.WriteWAV(t, source, 2, 16, 300000)
	taken := filepath.Join(dir, "drums_L.wav")
	testsupport.WriteWAV(t, taken, 1, 16, 1000)
	original, err := os.ReadFile(taken)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	summary, err := workflow.NewRunner(cfg, logging.NewNop(), workflow.WithVolumeSplitter(nil)).
		Run(context.Background(), workflow.Request{SourceDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Splits) != 0 {
		t.Fatalf("expected no split, got %+v", summary.Splits)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("expected original kept: %v", err)
	}
	got, err := os.ReadFile(taken)
	if err != nil || string(got) != string(original) {
		t.Fatalf("existing drums_L.wav was modified (err=%v)", err)
	}
	var splitWarning bool
	for _, w := range summary.Warnings {
		splitWarning = splitWarning || errors.Is(w, packerr.ErrSplit)
	}
	if !splitWarning {
		t.Fatalf("expected a split warning, got %v", summary.Warnings)
	}

	seen := map[string]int{}
	for _, group := range summary.Archives {
		for _, name := range zipMembers(t, group.Path) {
			seen[name]++
		}
	}
	if len(seen) != 2 || seen["drums.wav"] != 1 || seen["drums_L.wav"] != 1 {
		t.Fatalf("expected each file packed exactly once, got %v", seen)
	}
}

func TestRunCorruptWAVPassesThroughWithWarning(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxSizeMB(1))
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.wav")
	testsupport.WriteRandomFile(t, bad, 1100*kib, 7)

	summary, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{SourceDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(bad); err != nil {
		t.Fatalf("expected original to remain: %v", err)
	}
	var unsupported, unavailable bool
	for _, w := range summary.Warnings {
		unsupported = unsupported || errors.Is(w, packerr.ErrUnsupportedAudio)
		unavailable = unavailable || errors.Is(w, packerr.ErrSplitterUnavailable)
	}
	if !unsupported || !unavailable {
		t.Fatalf("expected unsupported audio and splitter unavailable warnings, got %v", summary.Warnings)
	}
	if len(summary.Oversized()) != 1 {
		t.Fatalf("expected one oversized archive, got %d", len(summary.Oversized()))
	}
}

type fakeSplitter struct {
	calls []string
}

func (f *fakeSplitter) Name() string    { return "fake" }
func (f *fakeSplitter) Available() bool { return true }
func (f *fakeSplitter) Split(_ context.Context, path string, _ int64) ([]string, error) {
	f.calls = append(f.calls, path)
	return []string{path + ".001", path + ".002"}, nil
}

func TestRunOversizedInvokesVolumeSplitter(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxSizeMB(1))
	dir := t.TempDir()
	// 80 and 50 against a 50 ceiling, scaled.
	testsupport.WriteRandomFile(t, filepath.Join(dir, "big.mp3"), 1600*kib, 1)
	testsupport.WriteRandomFile(t, filepath.Join(dir, "small.mp3"), 1000*kib, 2)

	splitter := &fakeSplitter{}
	runner := workflow.NewRunner(cfg, logging.NewNop(), workflow.WithVolumeSplitter(splitter))
	summary, err := runner.Run(context.Background(), workflow.Request{SourceDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Archives) != 2 {
		t.Fatalf("expected 2 archives, got %d", len(summary.Archives))
	}
	if len(splitter.calls) != 1 || splitter.calls[0] != summary.Archives[0].Path {
		t.Fatalf("expected splitter called for first archive, got %v", splitter.calls)
	}
	if len(summary.Archives[0].Volumes) != 2 {
		t.Fatalf("expected volumes on oversized archive, got %+v", summary.Archives[0])
	}
	if len(summary.Oversized()) != 0 {
		t.Fatalf("expected remediated archive not to count as oversized")
	}

	summary, err = runner.Run(context.Background(), workflow.Request{SourceDir: dir, NoVolumeSplit: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(splitter.calls) != 1 {
		t.Fatalf("expected splitter not to run with NoVolumeSplit")
	}
	if len(summary.Oversized()) != 1 {
		t.Fatalf("expected oversized archive without volume split")
	}
}

func TestRunCancelledBetweenArchives(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxSizeMB(1), testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	dir := t.TempDir()
	for i, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		testsupport.WriteRandomFile(t, filepath.Join(dir, name), 700*kib, int64(i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := workflow.NewRunner(cfg, logging.NewNop(), workflow.WithHistory(store))
	summary, err := runner.Run(ctx, workflow.Request{
		SourceDir: dir,
		Progress: func(e workflow.Event) {
			if e.Stage == workflow.StagePacking && e.Current == 1 {
				cancel()
			}
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !summary.Cancelled || len(summary.Archives) != 1 {
		t.Fatalf("expected one archive before cancellation, got %+v", summary)
	}

	runs, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusCancelled || runs[0].ArchiveCount != 1 {
		t.Fatalf("unexpected history %+v", runs)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "vox.flac"), 2048)

	runner := workflow.NewRunner(cfg, logging.NewNop(), workflow.WithHistory(store))
	summary, err := runner.Run(context.Background(), workflow.Request{SourceDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := store.Get(context.Background(), summary.RunID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.Status != history.StatusCompleted || got.FileCount != 1 || len(got.Archives) != 1 {
		t.Fatalf("unexpected ledger entry %+v", got)
	}
	if got.Archives[0].Name != "stems-01.zip" {
		t.Fatalf("unexpected archive name %s", got.Archives[0].Name)
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.wav"), 10)

	lock := flock.New(filepath.Join(dir, workflow.LockFileName))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: %v %v", locked, err)
	}
	defer lock.Unlock()

	_, err = workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{SourceDir: dir})
	if !errors.Is(err, packerr.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunInvalidSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		SourceDir: filepath.Join(t.TempDir(), "missing"),
	})
	if !errors.Is(err, packerr.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestRunWritesToSeparateOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "archives")
	cfg := testsupport.NewConfig(t, testsupport.WithOutputDir(out))
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "keys.aiff"), 4096)

	summary, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{SourceDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.OutputDir != out {
		t.Fatalf("expected output dir %s, got %s", out, summary.OutputDir)
	}
	if _, err := os.Stat(filepath.Join(out, "stems-01.zip")); err != nil {
		t.Fatalf("expected archive in output dir: %v", err)
	}
}
