package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"stemzipper/internal/archive"
	"stemzipper/internal/config"
	"stemzipper/internal/history"
	"stemzipper/internal/logging"
	"stemzipper/internal/media/wav"
	"stemzipper/internal/packerr"
	"stemzipper/internal/packing"
	"stemzipper/internal/preflight"
	"stemzipper/internal/scan"
)

// Runner executes packing runs for one configuration.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	splitter    archive.VolumeSplitter
	splitterSet bool
	history     *history.Store
	now         func() time.Time
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithVolumeSplitter overrides splitter detection. A nil splitter disables
// volume remediation.
func WithVolumeSplitter(splitter archive.VolumeSplitter) Option {
	return func(r *Runner) {
		r.splitter = splitter
		r.splitterSet = true
	}
}

// WithHistory records every run in store.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner constructs a Runner. Without WithVolumeSplitter the splitter is
// detected from the configuration and the host OS.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.splitterSet {
		r.splitter = archive.DetectSplitter(runtime.GOOS, cfg.Volumes)
	}
	return r
}

// run carries per-run state.
type run struct {
	*Runner
	req      Request
	logger   *slog.Logger
	summary  Summary
	sampler  *logging.ProgressSampler
	splitter archive.VolumeSplitter
}

// Run performs one packing pass. The returned Summary is populated as far as
// the run got, including on error.
func (r *Runner) Run(ctx context.Context, req Request) (Summary, error) {
	started := r.now()
	summary := Summary{
		RunID:         history.NewRunID(),
		CapacityBytes: r.cfg.CapacityBytes(),
		StartedAt:     started,
	}
	ctx = logging.WithRunID(ctx, summary.RunID)

	source, output, err := r.resolveDirs(req)
	if err != nil {
		return summary, err
	}
	summary.SourceDir = source
	summary.OutputDir = output

	lock := flock.New(filepath.Join(output, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, packerr.Wrap(packerr.ErrLocked, "workflow", "lock", output, err)
	}
	if !locked {
		return summary, packerr.Wrap(packerr.ErrLocked, "workflow", "lock", fmt.Sprintf("another run is using %s", output), nil)
	}
	defer func() { _ = lock.Unlock() }()

	state := &run{
		Runner:   r,
		req:      req,
		logger:   logging.WithContext(ctx, r.logger),
		summary:  summary,
		sampler:  logging.NewProgressSampler(25),
		splitter: r.splitter,
	}
	if req.NoVolumeSplit {
		state.splitter = nil
	}

	err = state.execute(ctx)
	state.summary.Duration = r.now().Sub(started)
	state.record(ctx, err)
	return state.summary, err
}

func (r *Runner) resolveDirs(req Request) (string, string, error) {
	source, err := filepath.Abs(strings.TrimSpace(req.SourceDir))
	if err != nil {
		return "", "", packerr.Wrap(packerr.ErrInvalidPath, "workflow", "resolve source", req.SourceDir, err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return "", "", packerr.Wrap(packerr.ErrInvalidPath, "workflow", "stat source", source, err)
	}
	if !info.IsDir() {
		return "", "", packerr.Wrap(packerr.ErrInvalidPath, "workflow", "stat source", fmt.Sprintf("%s is not a directory", source), nil)
	}

	output := strings.TrimSpace(req.OutputDir)
	if output == "" {
		output = r.cfg.Paths.OutputDir
	}
	if output == "" {
		return source, source, nil
	}
	if output, err = filepath.Abs(output); err != nil {
		return "", "", packerr.Wrap(packerr.ErrInvalidPath, "workflow", "resolve output", req.OutputDir, err)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return "", "", packerr.Wrap(packerr.ErrInvalidPath, "workflow", "create output", output, err)
	}
	return source, output, nil
}

func (s *run) execute(ctx context.Context) error {
	s.emit(Event{Stage: StagePreparing})

	files, err := scan.Scan(s.summary.SourceDir, s.cfg.Packing.Extensions)
	if err != nil {
		return err
	}
	s.summary.FileCount = len(files)
	if len(files) == 0 {
		s.summary.Empty = true
		s.logger.Info("no supported audio files found",
			logging.String("source", s.summary.SourceDir),
			logging.String(logging.FieldEventType, "folder_empty"),
		)
		s.emit(Event{Stage: StageDone, Percent: 100})
		return nil
	}
	s.logger.Info("scan complete",
		logging.Int("files", len(files)),
		logging.Size("capacity", s.summary.CapacityBytes),
	)

	s.runPreflight(files)

	items, err := s.expand(ctx, files)
	if err != nil {
		return err
	}

	bins := packing.Pack(items, s.summary.CapacityBytes)
	s.summary.Totals = packing.Summarize(bins)
	s.logger.Info("packing plan ready",
		logging.Int("archives", len(bins)),
		logging.Int("items", s.summary.Totals.Items),
		logging.Int("oversized", s.summary.Totals.Oversized),
	)

	if err := s.build(ctx, bins); err != nil {
		return err
	}

	s.emit(Event{Stage: StageDone, Current: len(bins), Total: len(bins), Percent: 100})
	s.logger.Info("run complete",
		logging.Int("archives", len(s.summary.Archives)),
		logging.Int("splits", len(s.summary.Splits)),
		logging.Int("warnings", len(s.summary.Warnings)),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return nil
}

func (s *run) runPreflight(files []scan.CandidateFile) {
	var need int64
	for _, f := range files {
		need += f.Size
		if s.needsChannelSplit(f.Path, f.Size) {
			need += f.Size
		}
	}
	for _, result := range preflight.Failed(preflight.RunAll(s.summary.SourceDir, s.summary.OutputDir, need)) {
		err := fmt.Errorf("preflight %s: %s", strings.ToLower(result.Name), result.Detail)
		s.warn(err)
		logging.WarnWithContext(s.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "free space or fix permissions before packing"),
			logging.String(logging.FieldImpact, "the run continues and may fail while writing"),
		)
	}
}

func (s *run) needsChannelSplit(path string, size int64) bool {
	return s.cfg.Packing.SplitStereo &&
		size > s.summary.CapacityBytes &&
		strings.EqualFold(filepath.Ext(path), ".wav")
}

// expand splits oversized stereo WAV files into mono halves. Failures leave
// the file in place and become warnings.
func (s *run) expand(ctx context.Context, files []scan.CandidateFile) ([]packing.Item, error) {
	items := scan.Items(files)
	var pending []int
	for i, item := range items {
		if s.needsChannelSplit(item.Path, item.Size) {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return items, nil
	}

	splitter := wav.NewSplitter(s.logger)
	splitCtx := logging.WithStage(ctx, string(StageSplitting))
	expanded := make([]packing.Item, 0, len(items)+len(pending))
	next := 0
	for i, item := range items {
		if next >= len(pending) || pending[next] != i {
			expanded = append(expanded, item)
			continue
		}
		next++
		if err := ctx.Err(); err != nil {
			s.summary.Cancelled = true
			return nil, err
		}
		s.emit(Event{
			Stage:   StageSplitting,
			Current: next,
			Total:   len(pending),
			File:    filepath.Base(item.Path),
			Percent: percent(next-1, len(pending)),
		})

		out, err := splitter.Split(splitCtx, item)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.summary.Cancelled = true
				return nil, err
			}
			s.warn(err)
			logging.WarnWithContext(s.logger, "channel split failed; packing file unsplit", "channel_split_failed",
				logging.String("file", filepath.Base(item.Path)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, packerr.Hint(err)),
				logging.String(logging.FieldImpact, "the archive holding this file may exceed the size limit"),
			)
		}
		if len(out) == 2 {
			s.summary.Splits = append(s.summary.Splits, SplitResult{Source: item.Path, Left: out[0].Path, Right: out[1].Path})
		}
		expanded = append(expanded, out...)
	}
	return expanded, nil
}

func (s *run) build(ctx context.Context, bins []packing.Bin) error {
	builder := archive.NewBuilder(archive.Options{
		Prefix:        s.cfg.Packing.ArchivePrefix,
		CapacityBytes: s.summary.CapacityBytes,
		VolumeBytes:   s.cfg.VolumeBytes(),
		Splitter:      s.splitter,
		Metadata:      archive.MetadataFromConfig(s.cfg.Metadata),
		Locale:        s.cfg.Display.Locale,
		Logger:        s.logger,
		Now:           s.now,
	})
	packCtx := logging.WithStage(ctx, string(StagePacking))

	for i, bin := range bins {
		if err := ctx.Err(); err != nil {
			s.summary.Cancelled = true
			s.logger.Info("run cancelled between archives",
				logging.Int("built", i),
				logging.Int("planned", len(bins)),
				logging.String(logging.FieldEventType, "run_cancelled"),
			)
			return err
		}
		name := archive.ArchiveName(builder.Prefix(), i+1)
		s.logger.Debug("archive members",
			logging.String(logging.FieldArchive, name),
			logging.String("files", memberList(bin)),
			logging.Size("used", bin.Used),
		)

		group, err := builder.Build(packCtx, bin, s.summary.OutputDir, i+1)
		if err != nil {
			logging.ErrorWithContext(s.logger, "archive write failed", "archive_write_failed",
				logging.String(logging.FieldArchive, name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, packerr.Hint(err)),
			)
			return err
		}
		if group.Warning != nil {
			s.warn(group.Warning)
		}
		s.summary.Archives = append(s.summary.Archives, group)

		s.emit(Event{Stage: StagePacking, Current: i + 1, Total: len(bins), Archive: name, Percent: percent(i+1, len(bins))})
		if s.sampler.ShouldLog(i+1, len(bins)) {
			s.logger.Info("packing progress",
				logging.String(logging.FieldArchive, name),
				logging.Int("current", i+1),
				logging.Int("total", len(bins)),
			)
		}
	}
	return nil
}

func (s *run) emit(event Event) {
	if s.req.Progress != nil {
		s.req.Progress(event)
	}
}

func (s *run) warn(err error) {
	s.summary.Warnings = append(s.summary.Warnings, err)
}

func (s *run) record(ctx context.Context, runErr error) {
	if s.history == nil {
		return
	}
	entry := history.Run{
		ID:            s.summary.RunID,
		SourceDir:     s.summary.SourceDir,
		OutputDir:     s.summary.OutputDir,
		Status:        runStatus(s.summary, runErr),
		StartedAt:     s.summary.StartedAt,
		FinishedAt:    s.summary.StartedAt.Add(s.summary.Duration),
		CapacityBytes: s.summary.CapacityBytes,
		FileCount:     s.summary.FileCount,
		SplitCount:    len(s.summary.Splits),
		WarningCount:  len(s.summary.Warnings),
	}
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
	}
	for i, g := range s.summary.Archives {
		entry.Archives = append(entry.Archives, history.Archive{
			Seq:         i + 1,
			Name:        g.Name,
			Path:        g.Path,
			SizeBytes:   g.Size,
			MemberCount: len(g.Members),
			VolumeCount: len(g.Volumes),
			Oversized:   g.Oversized,
		})
	}
	// The ledger write must land even when the run context was cancelled.
	if err := s.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(s.logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state directory and history database"),
			logging.String(logging.FieldImpact, "this run will not appear in stemzipper history"),
		)
	}
}

func runStatus(summary Summary, err error) history.Status {
	switch {
	case summary.Cancelled:
		return history.StatusCancelled
	case err != nil:
		return history.StatusFailed
	case summary.Empty:
		return history.StatusEmpty
	default:
		return history.StatusCompleted
	}
}

func memberList(bin packing.Bin) string {
	paths := bin.Paths()
	for i, p := range paths {
		paths[i] = filepath.Base(p)
	}
	return strings.Join(paths, ", ")
}

func percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}
