package archive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"stemzipper/internal/config"
	"stemzipper/internal/packerr"
)

// VolumeSplitter rewrites an archive as numbered fixed-size parts.
type VolumeSplitter interface {
	Name() string
	Available() bool
	// Split returns the part paths in order. The unsplit archive is gone on
	// success and left intact on failure.
	Split(ctx context.Context, archivePath string, volumeBytes int64) ([]string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures a splitter.
type Option func(*toolSplitter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(s *toolSplitter) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithLookPath replaces the binary lookup used by Available.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(s *toolSplitter) {
		if lookPath != nil {
			s.lookPath = lookPath
		}
	}
}

type toolSplitter struct {
	binary   string
	exec     Executor
	lookPath func(string) (string, error)
	output   []string
}

func newToolSplitter(binary string, opts []Option) toolSplitter {
	s := toolSplitter{binary: binary, exec: commandExecutor{}, lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *toolSplitter) Available() bool {
	_, err := s.lookPath(s.binary)
	return err == nil
}

func (s *toolSplitter) run(ctx context.Context, args []string) error {
	s.output = s.output[:0]
	err := s.exec.Run(ctx, s.binary, args, func(line string) {
		if len(s.output) < 20 {
			s.output = append(s.output, line)
		}
	})
	if err != nil && len(s.output) > 0 {
		return fmt.Errorf("%w: %s", err, strings.Join(s.output, " | "))
	}
	return err
}

// volumeMB rounds the byte size down to whole MiB, never below one.
func volumeMB(volumeBytes int64) int64 {
	mb := volumeBytes / config.BytesPerMB
	if mb < 1 {
		mb = 1
	}
	return mb
}

// ZipSplitter uses Info-ZIP's split mode: parts .z01, .z02, ... and a final .zip.
type ZipSplitter struct {
	toolSplitter
}

// NewZipSplitter constructs a splitter around the zip binary.
func NewZipSplitter(binary string, opts ...Option) *ZipSplitter {
	if binary == "" {
		binary = "zip"
	}
	return &ZipSplitter{toolSplitter: newToolSplitter(binary, opts)}
}

func (z *ZipSplitter) Name() string { return "zip" }

// Split moves the archive aside and lets zip write the split set under the
// original name, so the last part keeps the expected stems-NN.zip path.
func (z *ZipSplitter) Split(ctx context.Context, archivePath string, volumeBytes int64) ([]string, error) {
	source := stagedPath(archivePath)
	removeParts(zipVolumes(archivePath))
	if err := os.Rename(archivePath, source); err != nil {
		return nil, packerr.Wrap(packerr.ErrVolumeSplit, "archive", "zip split", "stage archive", err)
	}

	args := []string{"-s", strconv.FormatInt(volumeMB(volumeBytes), 10) + "m", source, "--out", archivePath}
	if err := z.run(ctx, args); err != nil {
		removeParts(zipParts(archivePath))
		_ = os.Rename(source, archivePath)
		return nil, packerr.Wrap(packerr.ErrVolumeSplit, "archive", "zip split", filepath.Base(archivePath), err)
	}
	parts := zipParts(archivePath)
	if len(parts) == 0 {
		_ = os.Rename(source, archivePath)
		return nil, packerr.Wrap(packerr.ErrVolumeSplit, "archive", "zip split", "no parts produced", nil)
	}
	_ = os.Remove(source)
	return parts, nil
}

func stagedPath(archivePath string) string {
	return strings.TrimSuffix(archivePath, filepath.Ext(archivePath)) + ".unsplit.zip"
}

// zipVolumes lists the numbered <base>.z01.. parts only.
func zipVolumes(archivePath string) []string {
	base := strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
	matches, _ := filepath.Glob(base + ".z[0-9][0-9]*")
	sort.Strings(matches)
	return matches
}

// zipParts lists <base>.z01.. followed by <base>.zip when present.
func zipParts(archivePath string) []string {
	matches := zipVolumes(archivePath)
	if _, err := os.Stat(archivePath); err == nil {
		matches = append(matches, archivePath)
	}
	return matches
}

// SevenZipSplitter uses 7-Zip volumes: <archive>.7z.001, .002, ...
type SevenZipSplitter struct {
	toolSplitter
}

// NewSevenZipSplitter constructs a splitter around the 7z binary.
func NewSevenZipSplitter(binary string, opts ...Option) *SevenZipSplitter {
	if binary == "" {
		binary = "7z"
	}
	return &SevenZipSplitter{toolSplitter: newToolSplitter(binary, opts)}
}

func (s *SevenZipSplitter) Name() string { return "7z" }

func (s *SevenZipSplitter) Split(ctx context.Context, archivePath string, volumeBytes int64) ([]string, error) {
	target := archivePath + ".7z"
	removeParts(sevenZipParts(target))
	args := []string{"a", "-v" + strconv.FormatInt(volumeMB(volumeBytes), 10) + "m", target, archivePath}
	if err := s.run(ctx, args); err != nil {
		removeParts(sevenZipParts(target))
		return nil, packerr.Wrap(packerr.ErrVolumeSplit, "archive", "7z split", filepath.Base(archivePath), err)
	}
	parts := sevenZipParts(target)
	if len(parts) == 0 {
		return nil, packerr.Wrap(packerr.ErrVolumeSplit, "archive", "7z split", "no parts produced", nil)
	}
	_ = os.Remove(archivePath)
	return parts, nil
}

func sevenZipParts(target string) []string {
	matches, _ := filepath.Glob(target + ".[0-9][0-9][0-9]*")
	sort.Strings(matches)
	return matches
}

func removeParts(paths []string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// RemoveStaleVolumes deletes split parts and staging files an earlier run
// left next to archivePath. The archive itself is not touched.
func RemoveStaleVolumes(archivePath string) ([]string, error) {
	candidates := zipVolumes(archivePath)
	candidates = append(candidates, sevenZipParts(archivePath+".7z")...)
	if _, err := os.Lstat(stagedPath(archivePath)); err == nil {
		candidates = append(candidates, stagedPath(archivePath))
	}
	removed := make([]string, 0, len(candidates))
	for _, path := range candidates {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// DetectSplitter picks the adapter for goos and returns nil when volume
// splitting is disabled or the binary is not installed.
func DetectSplitter(goos string, cfg config.Volumes, opts ...Option) VolumeSplitter {
	if !cfg.Enabled {
		return nil
	}
	if goos == "windows" {
		if s := NewSevenZipSplitter(cfg.SevenZipCommand, opts...); s.Available() {
			return s
		}
		return nil
	}
	if s := NewZipSplitter(cfg.ZipCommand, opts...); s.Available() {
		return s
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput == nil {
				continue
			}
			mu.Lock()
			onOutput(scanner.Text())
			mu.Unlock()
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func joinBase(paths []string) string {
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = filepath.Base(path)
	}
	return strings.Join(names, ", ")
}
